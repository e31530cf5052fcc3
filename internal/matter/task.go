package matter

import (
	"fmt"
	"time"
)

// State is the derived execution state of a task. It is computed on every
// read and never stored.
type State string

const (
	StatePending   State = "pending"
	StateReady     State = "ready"
	StateCompleted State = "completed"
)

// Task is a unit of work within a matter.
type Task struct {
	ID             string       `json:"taskId" yaml:"task_id"`
	Name           string       `json:"name" yaml:"name"`
	Dependencies   []Dependency `json:"dependencies" yaml:"dependencies"`
	Completed      bool         `json:"completed" yaml:"completed"`
	CompletionDate *time.Time   `json:"completionDate,omitempty" yaml:"completion_date,omitempty"`
	CreatedDate    time.Time    `json:"createdDate" yaml:"created_date"`
}

func newTask(id, name string, deps []Dependency, now time.Time) *Task {
	return &Task{
		ID:           id,
		Name:         name,
		Dependencies: cloneDependencies(deps),
		CreatedDate:  now,
	}
}

// DependenciesMet reports whether every dependency is met at now.
// A task with no dependencies is always met.
func (t *Task) DependenciesMet(tasks map[string]*Task, now time.Time) bool {
	for _, dep := range t.Dependencies {
		if !dep.IsMet(tasks, now) {
			return false
		}
	}
	return true
}

// State derives the task's execution state at now.
func (t *Task) State(tasks map[string]*Task, now time.Time) State {
	if t.Completed {
		return StateCompleted
	}
	if t.DependenciesMet(tasks, now) {
		return StateReady
	}
	return StatePending
}

// CanExecute reports whether the task is ready to run.
func (t *Task) CanExecute(tasks map[string]*Task, now time.Time) bool {
	return t.State(tasks, now) == StateReady
}

// UnmetDependencies returns a human-readable line for each dependency that
// is not met at now, in dependency order.
func (t *Task) UnmetDependencies(tasks map[string]*Task, now time.Time) []string {
	var unmet []string
	for _, dep := range t.Dependencies {
		target, ok := tasks[dep.TargetTaskID]
		if !ok {
			unmet = append(unmet, fmt.Sprintf("Task %q not found", dep.TargetTaskID))
			continue
		}
		if dep.IsMet(tasks, now) {
			continue
		}
		if !target.Completed || dep.Kind != KindTimeBased {
			unmet = append(unmet, fmt.Sprintf("%q not completed", target.Name))
			continue
		}
		w := dep.Weeks()
		unmet = append(unmet, fmt.Sprintf("%d %s waiting period after %q not complete", w, pluralWeeks(w), target.Name))
	}
	return unmet
}

// markComplete performs the Ready -> Completed transition.
func (t *Task) markComplete(now time.Time) {
	t.Completed = true
	completed := now
	t.CompletionDate = &completed
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() Task {
	c := *t
	c.Dependencies = cloneDependencies(t.Dependencies)
	if t.CompletionDate != nil {
		d := *t.CompletionDate
		c.CompletionDate = &d
	}
	return c
}
