package matter

import (
	"fmt"
	"time"
)

// Summary is the list-view summary of a matter.
type Summary struct {
	MatterID       string    `json:"matterId"`
	ClientID       string    `json:"clientId,omitempty"`
	ClientName     string    `json:"clientName"`
	MatterName     string    `json:"matterName,omitempty"`
	CreatedDate    time.Time `json:"createdDate"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
}

// TaskStatus is the derived status of one task at a point in time.
type TaskStatus struct {
	TaskID          string     `json:"taskId"`
	Name            string     `json:"name"`
	State           State      `json:"state"`
	Completed       bool       `json:"completed"`
	CompletionDate  *time.Time `json:"completionDate,omitempty"`
	DependenciesMet bool       `json:"dependenciesMet"`
	CanExecute      bool       `json:"canExecute"`
}

// Status is the status projection of a whole matter. It is computed from a
// single clock read and must not be cached across time.
type Status struct {
	MatterID       string                `json:"matterId"`
	ClientID       string                `json:"clientId,omitempty"`
	ClientName     string                `json:"clientName"`
	MatterName     string                `json:"matterName,omitempty"`
	CreatedDate    time.Time             `json:"createdDate"`
	EvaluatedAt    time.Time             `json:"evaluatedAt"`
	TaskOrder      []string              `json:"taskOrder"`
	Tasks          map[string]TaskStatus `json:"tasks"`
	TotalTasks     int                   `json:"totalTasks"`
	CompletedTasks int                   `json:"completedTasks"`
}

// DependencyDetail describes one dependency of a task at a point in time.
type DependencyDetail struct {
	Kind         DependencyKind `json:"type"`
	TargetTaskID string         `json:"targetTask"`
	TargetName   string         `json:"targetTaskName,omitempty"`
	DelayWeeks   *int           `json:"timeDelayWeeks,omitempty"`
	Description  string         `json:"description"`
	IsMet        bool           `json:"isMet"`
	Missing      bool           `json:"missing,omitempty"`
	AvailableAt  *time.Time     `json:"availableAt,omitempty"`
}

// DependencyReport is the dependency-detail projection of a matter.
type DependencyReport struct {
	MatterID     string                        `json:"matterId"`
	ClientName   string                        `json:"clientName"`
	EvaluatedAt  time.Time                     `json:"evaluatedAt"`
	TaskOrder    []string                      `json:"taskOrder"`
	Dependencies map[string][]DependencyDetail `json:"dependencies"`
	Tasks        map[string]TaskStatus         `json:"tasks"`
}

// Status projects every task's derived status at now.
func (m *Matter) Status(now time.Time) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		MatterID:    m.id,
		ClientID:    m.clientID,
		ClientName:  m.clientName,
		MatterName:  m.name,
		CreatedDate: m.createdDate,
		EvaluatedAt: now,
		TaskOrder:   append([]string(nil), m.order...),
		Tasks:       m.taskStatuses(now),
		TotalTasks:  len(m.tasks),
	}
	for _, ts := range s.Tasks {
		if ts.Completed {
			s.CompletedTasks++
		}
	}
	return s
}

// taskStatuses must be called with the read lock held.
func (m *Matter) taskStatuses(now time.Time) map[string]TaskStatus {
	out := make(map[string]TaskStatus, len(m.tasks))
	for id, t := range m.tasks {
		met := t.DependenciesMet(m.tasks, now)
		ts := TaskStatus{
			TaskID:          id,
			Name:            t.Name,
			Completed:       t.Completed,
			DependenciesMet: met,
			CanExecute:      !t.Completed && met,
			State:           t.State(m.tasks, now),
		}
		if t.CompletionDate != nil {
			d := *t.CompletionDate
			ts.CompletionDate = &d
		}
		out[id] = ts
	}
	return out
}

// DependencyReport projects a detail entry for every dependency of every
// task at now, alongside the task statuses.
func (m *Matter) DependencyReport(now time.Time) DependencyReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := DependencyReport{
		MatterID:     m.id,
		ClientName:   m.clientName,
		EvaluatedAt:  now,
		TaskOrder:    append([]string(nil), m.order...),
		Dependencies: make(map[string][]DependencyDetail, len(m.tasks)),
		Tasks:        m.taskStatuses(now),
	}
	for id, t := range m.tasks {
		details := make([]DependencyDetail, 0, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			details = append(details, m.describe(dep, now))
		}
		r.Dependencies[id] = details
	}
	return r
}

func (m *Matter) describe(dep Dependency, now time.Time) DependencyDetail {
	d := DependencyDetail{
		Kind:         dep.Kind,
		TargetTaskID: dep.TargetTaskID,
		IsMet:        dep.IsMet(m.tasks, now),
	}
	if dep.DelayWeeks != nil {
		w := *dep.DelayWeeks
		d.DelayWeeks = &w
	}

	target, ok := m.tasks[dep.TargetTaskID]
	if !ok {
		d.Missing = true
		d.Description = fmt.Sprintf("Missing: %s", dep.TargetTaskID)
		return d
	}
	d.TargetName = target.Name

	switch dep.Kind {
	case KindTimeBased:
		w := dep.Weeks()
		d.Description = fmt.Sprintf("Wait: %d %s after %s", w, pluralWeeks(w), target.Name)
		if target.Completed && target.CompletionDate != nil {
			at := dep.DueAt(*target.CompletionDate)
			d.AvailableAt = &at
		}
	default:
		d.Description = fmt.Sprintf("Complete: %s", target.Name)
	}
	return d
}
