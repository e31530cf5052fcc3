package matter

import (
	"sort"
	"sync"
	"time"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// Clock supplies the current time. Every registry operation reads it once.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Registry is an in-memory collection of matters keyed by ID. It is safe for
// concurrent use and is meant to be constructed and injected, not shared as
// a package global.
type Registry struct {
	mu      sync.RWMutex
	matters map[string]*Matter
	clock   Clock
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the clock used for creation, completion and evaluation.
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		matters: make(map[string]*Matter),
		clock:   SystemClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock's current time.
func (r *Registry) Now() time.Time {
	return r.clock.Now()
}

// CreateMatter creates and registers a matter seeded with the default
// workflow.
func (r *Registry) CreateMatter(id, clientName string, opts ...Option) (*Matter, error) {
	if err := validateID("matterId", id); err != nil {
		return nil, err
	}
	if clientName == "" {
		return nil, fincherrors.ErrInvalidInput("clientName", "is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matters[id]; exists {
		return nil, fincherrors.ErrMatterExists(id)
	}
	m := New(id, clientName, r.clock.Now(), opts...)
	r.matters[id] = m
	return m, nil
}

// GetMatter returns the matter with the given ID.
func (r *Registry) GetMatter(id string) (*Matter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matters[id]
	return m, ok
}

func (r *Registry) lookup(id string) (*Matter, error) {
	m, ok := r.GetMatter(id)
	if !ok {
		return nil, fincherrors.ErrMatterNotFound(id)
	}
	return m, nil
}

// ListMatters returns summaries of all matters, oldest first.
func (r *Registry) ListMatters() []Summary {
	r.mu.RLock()
	matters := make([]*Matter, 0, len(r.matters))
	for _, m := range r.matters {
		matters = append(matters, m)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(matters))
	for _, m := range matters {
		out = append(out, m.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.Before(out[j].CreatedDate)
		}
		return out[i].MatterID < out[j].MatterID
	})
	return out
}

// CreateTask adds a task to a matter.
func (r *Registry) CreateTask(matterID, taskID, name string, deps []Dependency) (Task, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return Task{}, err
	}
	return m.CreateTask(taskID, name, deps, r.clock.Now())
}

// AddDependency appends a dependency to a task.
func (r *Registry) AddDependency(matterID, taskID string, dep Dependency) (Task, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return Task{}, err
	}
	return m.AddDependency(taskID, dep)
}

// ReplaceDependencies replaces a task's dependency list.
func (r *Registry) ReplaceDependencies(matterID, taskID string, deps []Dependency) (Task, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return Task{}, err
	}
	return m.ReplaceDependencies(taskID, deps)
}

// InsertTaskAfter splices a new task after an existing one.
func (r *Registry) InsertTaskAfter(matterID, newTaskID, newTaskName, afterTaskID string) (InsertResult, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return InsertResult{}, err
	}
	return m.InsertAfter(newTaskID, newTaskName, afterTaskID, r.clock.Now())
}

// ExecuteTask attempts to complete a task.
func (r *Registry) ExecuteTask(matterID, taskID string) (ExecuteResult, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return ExecuteResult{}, err
	}
	return m.Execute(taskID, r.clock.Now())
}

// MatterStatus projects a matter's task statuses.
func (r *Registry) MatterStatus(matterID string) (Status, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return Status{}, err
	}
	return m.Status(r.clock.Now()), nil
}

// DependencyDetail projects a matter's dependency details.
func (r *Registry) DependencyDetail(matterID string) (DependencyReport, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return DependencyReport{}, err
	}
	return m.DependencyReport(r.clock.Now()), nil
}

// RepairDefaults re-adds missing default tasks to a matter.
func (r *Registry) RepairDefaults(matterID string) ([]string, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return nil, err
	}
	return m.RepairDefaults(r.clock.Now()), nil
}

// ExportMatter returns a snapshot of one matter.
func (r *Registry) ExportMatter(matterID string) (MatterData, error) {
	m, err := r.lookup(matterID)
	if err != nil {
		return MatterData{}, err
	}
	return m.Data(), nil
}

// ExportAll returns snapshots of every matter keyed by ID.
func (r *Registry) ExportAll() map[string]MatterData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]MatterData, len(r.matters))
	for id, m := range r.matters {
		out[id] = m.Data()
	}
	return out
}

// BuildAll reconstructs matters from snapshots without registering them.
// Keys must match the snapshot's matter ID (an empty ID takes the key).
func BuildAll(data map[string]MatterData) (map[string]*Matter, error) {
	built := make(map[string]*Matter, len(data))
	for key, md := range data {
		if md.MatterID == "" {
			md.MatterID = key
		}
		if md.MatterID != key {
			return nil, fincherrors.ErrInvalidInput("matters", "key "+key+" holds matter "+md.MatterID)
		}
		m, err := FromData(md)
		if err != nil {
			return nil, err
		}
		built[key] = m
	}
	return built, nil
}

// ImportAll replaces the registry's entire state with the given snapshots.
// Nothing changes if any snapshot is invalid.
func (r *Registry) ImportAll(data map[string]MatterData) error {
	built, err := BuildAll(data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.matters = built
	r.mu.Unlock()
	return nil
}
