// Package matter implements the matter task dependency engine: tasks, their
// dependencies, eligibility evaluation, and the graph operations that mutate
// a matter's workflow.
package matter

import (
	"fmt"
	"time"
)

// DependencyKind identifies how a dependency is satisfied.
type DependencyKind string

const (
	// KindTaskCompletion is met once the target task is completed.
	KindTaskCompletion DependencyKind = "task_completion"
	// KindTimeBased is met a number of weeks after the target task completed.
	KindTimeBased DependencyKind = "time_based"
)

// ValidKinds returns all valid dependency kinds.
func ValidKinds() []DependencyKind {
	return []DependencyKind{KindTaskCompletion, KindTimeBased}
}

// IsValid returns true if the kind is a known dependency kind.
func (k DependencyKind) IsValid() bool {
	switch k {
	case KindTaskCompletion, KindTimeBased:
		return true
	}
	return false
}

// Dependency is one precondition a task has on another task in the same
// matter. DelayWeeks is only meaningful for KindTimeBased.
type Dependency struct {
	Kind         DependencyKind `json:"dependencyType" yaml:"dependency_type"`
	TargetTaskID string         `json:"targetTaskId" yaml:"target_task_id"`
	DelayWeeks   *int           `json:"timeDelayWeeks,omitempty" yaml:"time_delay_weeks,omitempty"`
}

// TaskCompletion returns a dependency met once target is completed.
func TaskCompletion(target string) Dependency {
	return Dependency{Kind: KindTaskCompletion, TargetTaskID: target}
}

// TimeBased returns a dependency met weeks after target is completed.
func TimeBased(target string, weeks int) Dependency {
	return Dependency{Kind: KindTimeBased, TargetTaskID: target, DelayWeeks: &weeks}
}

// Weeks returns the delay in weeks, treating an absent delay as zero.
func (d Dependency) Weeks() int {
	if d.DelayWeeks == nil {
		return 0
	}
	return *d.DelayWeeks
}

// DueAt returns the instant a time-based dependency becomes met given the
// target's completion time.
func (d Dependency) DueAt(completed time.Time) time.Time {
	return completed.AddDate(0, 0, 7*d.Weeks())
}

// IsMet evaluates the dependency against the matter's tasks at now.
// A missing target is never met.
func (d Dependency) IsMet(tasks map[string]*Task, now time.Time) bool {
	target, ok := tasks[d.TargetTaskID]
	if !ok {
		return false
	}
	switch d.Kind {
	case KindTaskCompletion:
		return target.Completed
	case KindTimeBased:
		if !target.Completed || target.CompletionDate == nil {
			return false
		}
		return !now.Before(d.DueAt(*target.CompletionDate))
	default:
		return false
	}
}

// Validate checks the shape of a dependency. It does not check that the
// target exists.
func (d Dependency) Validate() ValidationErrors {
	var errs ValidationErrors
	if !d.Kind.IsValid() {
		errs = append(errs, ValidationError{
			Field:   "dependencyType",
			Value:   string(d.Kind),
			Message: fmt.Sprintf("must be one of %v", ValidKinds()),
		})
	}
	if d.TargetTaskID == "" {
		errs = append(errs, ValidationError{
			Field:   "targetTaskId",
			Message: "is required",
		})
	}
	if d.DelayWeeks != nil && *d.DelayWeeks < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeDelayWeeks",
			Value:   fmt.Sprint(*d.DelayWeeks),
			Message: "must not be negative",
		})
	}
	return errs
}

// clone returns a deep copy so callers can't alias the delay pointer.
func (d Dependency) clone() Dependency {
	if d.DelayWeeks != nil {
		w := *d.DelayWeeks
		d.DelayWeeks = &w
	}
	return d
}

func cloneDependencies(deps []Dependency) []Dependency {
	if deps == nil {
		return []Dependency{}
	}
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		out[i] = d.clone()
	}
	return out
}

func pluralWeeks(n int) string {
	if n == 1 {
		return "week"
	}
	return "weeks"
}
