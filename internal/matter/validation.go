package matter

import (
	"fmt"
	"strings"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error returns a combined error message.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ToError returns an error if there are validation errors, nil otherwise.
func (e ValidationErrors) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// validateID rejects empty or whitespace-padded identifiers.
func validateID(field, id string) error {
	if id == "" {
		return fincherrors.ErrInvalidInput(field, "is required")
	}
	if strings.TrimSpace(id) != id {
		return fincherrors.ErrInvalidInput(field, "must not have leading or trailing whitespace")
	}
	return nil
}

// validateDependencies checks shape and self-dependency for every
// dependency. When existing is non-nil every target must be a key of it.
func validateDependencies(taskID string, deps []Dependency, existing map[string]*Task) error {
	for i, dep := range deps {
		if errs := dep.Validate(); errs.HasErrors() {
			return fincherrors.ErrInvalidDependency(taskID, fmt.Sprintf("dependency %d: %s", i, errs.Error()))
		}
		if dep.TargetTaskID == taskID {
			return fincherrors.ErrSelfDependency(taskID)
		}
		if existing != nil {
			if _, ok := existing[dep.TargetTaskID]; !ok {
				return fincherrors.ErrDependencyTargetNotFound(taskID, dep.TargetTaskID)
			}
		}
	}
	return nil
}

// dependencyGraph builds an adjacency list task -> targets from tasks, with
// overrides replacing (or adding) the dependency list of specific tasks.
// Slices are copied so the caller's tasks are never touched.
func dependencyGraph(tasks map[string]*Task, overrides map[string][]Dependency) map[string][]string {
	graph := make(map[string][]string, len(tasks)+len(overrides))
	for id, t := range tasks {
		if _, ok := overrides[id]; ok {
			continue
		}
		graph[id] = targetIDs(t.Dependencies)
	}
	for id, deps := range overrides {
		graph[id] = targetIDs(deps)
	}
	return graph
}

func targetIDs(deps []Dependency) []string {
	ids := make([]string, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.TargetTaskID)
	}
	return ids
}

// DetectCycle runs a depth-first search from start over graph and returns
// the cycle path (first and last element equal) if one is reachable, nil
// otherwise. Targets missing from graph are treated as leaves.
func DetectCycle(start string, graph map[string][]string) []string {
	visited := make(map[string]bool)
	path := make(map[string]bool)
	var cyclePath []string
	var cycleStart string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		if path[id] {
			cycleStart = id
			cyclePath = append(cyclePath, id)
			return true
		}
		if visited[id] {
			return false
		}

		visited[id] = true
		path[id] = true

		for _, dep := range graph[id] {
			if dfs(dep) {
				cyclePath = append(cyclePath, id)
				return true
			}
		}

		path[id] = false
		return false
	}

	if !dfs(start) {
		return nil
	}

	// cyclePath was built while unwinding: reverse it, then trim the
	// lead-in so the path starts where the cycle closes.
	for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
		cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
	}
	for i, id := range cyclePath {
		if id == cycleStart {
			return cyclePath[i:]
		}
	}
	return cyclePath
}

// checkCycle returns a DEPENDENCY_CYCLE error if applying overrides to tasks
// would make any overridden task reachable from itself.
func checkCycle(tasks map[string]*Task, overrides map[string][]Dependency) error {
	graph := dependencyGraph(tasks, overrides)
	for id := range overrides {
		if cycle := DetectCycle(id, graph); cycle != nil {
			return fincherrors.ErrDependencyCycle(id, cycle)
		}
	}
	return nil
}
