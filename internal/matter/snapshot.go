package matter

import (
	"fmt"
	"sort"
	"time"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// TaskData is the serializable form of a task.
type TaskData struct {
	TaskID         string       `json:"taskId" yaml:"task_id"`
	Name           string       `json:"name" yaml:"name"`
	Dependencies   []Dependency `json:"dependencies" yaml:"dependencies"`
	Completed      bool         `json:"completed" yaml:"completed"`
	CompletionDate *time.Time   `json:"completionDate,omitempty" yaml:"completion_date,omitempty"`
	CreatedDate    time.Time    `json:"createdDate" yaml:"created_date"`
}

// MatterData is a fully serializable snapshot of a matter: its attributes,
// all tasks and all dependencies. TaskOrder is optional; when absent or
// inconsistent the display order is rebuilt from creation dates.
type MatterData struct {
	MatterID    string              `json:"matterId" yaml:"matter_id"`
	ClientID    string              `json:"clientId,omitempty" yaml:"client_id,omitempty"`
	ClientName  string              `json:"clientName" yaml:"client_name"`
	MatterName  string              `json:"matterName,omitempty" yaml:"matter_name,omitempty"`
	CreatedDate time.Time           `json:"createdDate" yaml:"created_date"`
	TaskOrder   []string            `json:"taskOrder,omitempty" yaml:"task_order,omitempty"`
	Tasks       map[string]TaskData `json:"tasks" yaml:"tasks"`
}

// Data returns a snapshot of the matter.
func (m *Matter) Data() MatterData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d := MatterData{
		MatterID:    m.id,
		ClientID:    m.clientID,
		ClientName:  m.clientName,
		MatterName:  m.name,
		CreatedDate: m.createdDate,
		TaskOrder:   append([]string(nil), m.order...),
		Tasks:       make(map[string]TaskData, len(m.tasks)),
	}
	for id, t := range m.tasks {
		c := t.Clone()
		d.Tasks[id] = TaskData{
			TaskID:         c.ID,
			Name:           c.Name,
			Dependencies:   c.Dependencies,
			Completed:      c.Completed,
			CompletionDate: c.CompletionDate,
			CreatedDate:    c.CreatedDate,
		}
	}
	return d
}

// FromData reconstructs a matter from a snapshot. The persisted task set
// replaces the default workflow entirely. Dependencies are restored as-is,
// including ones whose target is missing.
func FromData(d MatterData) (*Matter, error) {
	if err := validateID("matterId", d.MatterID); err != nil {
		return nil, err
	}

	m := newEmpty(d.MatterID, d.ClientName, d.CreatedDate, WithClientID(d.ClientID), WithName(d.MatterName))
	for key, td := range d.Tasks {
		id := td.TaskID
		if id == "" {
			id = key
		}
		if id != key {
			return nil, fincherrors.ErrInvalidInput("tasks", fmt.Sprintf("matter %s: key %q holds task %q", d.MatterID, key, id))
		}
		for i, dep := range td.Dependencies {
			if errs := dep.Validate(); errs.HasErrors() {
				return nil, fincherrors.ErrInvalidDependency(id, fmt.Sprintf("dependency %d: %s", i, errs.Error()))
			}
		}
		t := &Task{
			ID:           id,
			Name:         td.Name,
			Dependencies: cloneDependencies(td.Dependencies),
			Completed:    td.Completed,
			CreatedDate:  td.CreatedDate,
		}
		if td.CompletionDate != nil {
			cd := *td.CompletionDate
			t.CompletionDate = &cd
		}
		m.tasks[id] = t
	}
	m.order = restoreOrder(d.TaskOrder, m.tasks)
	return m, nil
}

// restoreOrder uses the snapshot order when it names every task exactly
// once; otherwise it sorts by creation date, then default seed position,
// then ID.
func restoreOrder(order []string, tasks map[string]*Task) []string {
	if len(order) == len(tasks) {
		seen := make(map[string]bool, len(order))
		valid := true
		for _, id := range order {
			if _, ok := tasks[id]; !ok || seen[id] {
				valid = false
				break
			}
			seen[id] = true
		}
		if valid {
			return append([]string(nil), order...)
		}
	}

	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := tasks[ids[i]], tasks[ids[j]]
		if !a.CreatedDate.Equal(b.CreatedDate) {
			return a.CreatedDate.Before(b.CreatedDate)
		}
		ra, rb := seedRank(a.ID), seedRank(b.ID)
		if ra != rb {
			// Seed tasks sort ahead of custom tasks created at the same instant.
			if ra < 0 {
				return false
			}
			if rb < 0 {
				return true
			}
			return ra < rb
		}
		return a.ID < b.ID
	})
	return ids
}
