// Package events provides event types and publishing infrastructure for finch.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event.
type EventType string

const (
	// EventMatterCreated indicates a new matter was created.
	EventMatterCreated EventType = "matter_created"
	// EventMatterRepaired indicates default tasks were re-added to a matter.
	EventMatterRepaired EventType = "matter_repaired"
	// EventMattersImported indicates the whole matter set was replaced.
	EventMattersImported EventType = "matters_imported"

	// EventTaskCreated indicates a task was added to a matter.
	EventTaskCreated EventType = "task_created"
	// EventDependencyAdded indicates a dependency was appended to a task.
	EventDependencyAdded EventType = "dependency_added"
	// EventDependenciesUpdated indicates a task's dependency list was replaced.
	EventDependenciesUpdated EventType = "dependencies_updated"
	// EventTaskInserted indicates a task was spliced in after another.
	EventTaskInserted EventType = "task_inserted"
	// EventTaskCompleted indicates a task moved to completed.
	EventTaskCompleted EventType = "task_completed"

	// EventClientCreated indicates a client was added to the directory.
	EventClientCreated EventType = "client_created"
)

// Event represents a published event.
type Event struct {
	ID       string    `json:"id"`
	Type     EventType `json:"type"`
	MatterID string    `json:"matter_id"`
	TaskID   string    `json:"task_id,omitempty"`
	Data     any       `json:"data,omitempty"`
	Time     time.Time `json:"time"`
}

// NewEvent creates a new event with a fresh ID and the current time.
func NewEvent(eventType EventType, matterID string, data any) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		MatterID: matterID,
		Data:     data,
		Time:     time.Now().UTC(),
	}
}

// NewTaskEvent creates an event about one task of a matter.
func NewTaskEvent(eventType EventType, matterID, taskID string, data any) Event {
	e := NewEvent(eventType, matterID, data)
	e.TaskID = taskID
	return e
}
