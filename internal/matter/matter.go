package matter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// Default workflow task IDs.
const (
	TaskIntakeCall            = "intake_call"
	TaskSignEngagement        = "sign_engagement"
	TaskCollectMedicalRecords = "collect_medical_records"
	TaskClientCheckin         = "client_checkin"
	TaskCreateDemand          = "create_demand"
)

type seedTask struct {
	id   string
	name string
	deps []Dependency
}

// defaultWorkflow is the fixed topology every new matter starts with.
func defaultWorkflow() []seedTask {
	return []seedTask{
		{TaskIntakeCall, "Intake Call", nil},
		{TaskSignEngagement, "Sign Engagement Letter", []Dependency{TaskCompletion(TaskIntakeCall)}},
		{TaskCollectMedicalRecords, "Collect Medical Records", []Dependency{TaskCompletion(TaskSignEngagement)}},
		{TaskClientCheckin, "Client Check In", []Dependency{
			TaskCompletion(TaskSignEngagement),
			TimeBased(TaskIntakeCall, 2),
		}},
		{TaskCreateDemand, "Create Demand", []Dependency{TaskCompletion(TaskCollectMedicalRecords)}},
	}
}

// DefaultTaskIDs returns the default workflow task IDs in seed order.
func DefaultTaskIDs() []string {
	seed := defaultWorkflow()
	ids := make([]string, len(seed))
	for i, s := range seed {
		ids[i] = s.id
	}
	return ids
}

// seedRank returns the position of id in the default workflow, or -1.
func seedRank(id string) int {
	for i, s := range defaultWorkflow() {
		if s.id == id {
			return i
		}
	}
	return -1
}

// Matter is a legal case: an aggregate of tasks with dependencies.
// All methods are safe for concurrent use; mutations hold the matter's
// exclusive lock for their whole duration.
type Matter struct {
	mu sync.RWMutex

	id          string
	clientID    string
	clientName  string
	name        string
	createdDate time.Time

	tasks map[string]*Task
	order []string
}

// Option configures optional matter attributes.
type Option func(*Matter)

// WithClientID associates the matter with a client directory entry.
func WithClientID(id string) Option {
	return func(m *Matter) { m.clientID = id }
}

// WithName sets a display name for the matter.
func WithName(name string) Option {
	return func(m *Matter) { m.name = name }
}

// New creates a matter seeded with the default workflow.
func New(id, clientName string, now time.Time, opts ...Option) *Matter {
	m := newEmpty(id, clientName, now, opts...)
	for _, s := range defaultWorkflow() {
		m.insert(newTask(s.id, s.name, s.deps, now))
	}
	return m
}

func newEmpty(id, clientName string, created time.Time, opts ...Option) *Matter {
	m := &Matter{
		id:          id,
		clientName:  clientName,
		createdDate: created,
		tasks:       make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matter) insert(t *Task) {
	m.tasks[t.ID] = t
	m.order = append(m.order, t.ID)
}

// ID returns the matter ID.
func (m *Matter) ID() string { return m.id }

// ClientID returns the client directory ID, if any.
func (m *Matter) ClientID() string { return m.clientID }

// ClientName returns the client's display name.
func (m *Matter) ClientName() string { return m.clientName }

// Name returns the matter's display name, if any.
func (m *Matter) Name() string { return m.name }

// CreatedDate returns when the matter was created.
func (m *Matter) CreatedDate() time.Time { return m.createdDate }

// Task returns a copy of the task with the given ID.
func (m *Matter) Task(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.Clone(), true
}

// Tasks returns copies of all tasks in display order.
func (m *Matter) Tasks() []Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id].Clone())
	}
	return out
}

// TaskCount returns the number of tasks in the matter.
func (m *Matter) TaskCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// CreateTask adds a new task. Dependency targets are not required to exist,
// but the dependency shape is validated and cycles are rejected.
func (m *Matter) CreateTask(id, name string, deps []Dependency, now time.Time) (Task, error) {
	if err := validateID("taskId", id); err != nil {
		return Task{}, err
	}
	if name == "" {
		return Task{}, fincherrors.ErrInvalidInput("name", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[id]; exists {
		return Task{}, fincherrors.ErrTaskExists(m.id, id)
	}
	if err := validateDependencies(id, deps, nil); err != nil {
		return Task{}, err
	}
	if err := checkCycle(m.tasks, map[string][]Dependency{id: deps}); err != nil {
		return Task{}, err
	}

	t := newTask(id, name, deps, now)
	m.insert(t)
	return t.Clone(), nil
}

// AddDependency appends a dependency to a task. The target is not required
// to exist.
func (m *Matter) AddDependency(taskID string, dep Dependency) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return Task{}, fincherrors.ErrTaskNotFound(m.id, taskID)
	}
	if err := validateDependencies(taskID, []Dependency{dep}, nil); err != nil {
		return Task{}, err
	}
	next := append(cloneDependencies(t.Dependencies), dep.clone())
	if err := checkCycle(m.tasks, map[string][]Dependency{taskID: next}); err != nil {
		return Task{}, err
	}

	t.Dependencies = next
	return t.Clone(), nil
}

// ReplaceDependencies swaps a task's whole dependency list. Every target must
// exist in the matter and differ from the task itself.
func (m *Matter) ReplaceDependencies(taskID string, deps []Dependency) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return Task{}, fincherrors.ErrTaskNotFound(m.id, taskID)
	}
	if err := validateDependencies(taskID, deps, m.tasks); err != nil {
		return Task{}, err
	}
	if err := checkCycle(m.tasks, map[string][]Dependency{taskID: deps}); err != nil {
		return Task{}, err
	}

	t.Dependencies = cloneDependencies(deps)
	return t.Clone(), nil
}

// Rewire identifies one dependency redirected by InsertAfter.
type Rewire struct {
	TaskID          string `json:"taskId"`
	DependencyIndex int    `json:"dependencyIndex"`
}

// InsertResult reports the outcome of InsertAfter.
type InsertResult struct {
	Task           Task     `json:"insertedTask"`
	After          Task     `json:"insertedAfter"`
	Rewired        []Rewire `json:"rewired"`
	RewiredCount   int      `json:"rewiredCount"`
	RewiredTaskIDs []string `json:"rewiredTaskIds"`
}

// InsertAfter splices a new task between afterID and everything that
// currently depends on it: every dependency targeting afterID is redirected
// to newID, then newID is created depending on afterID. All checks run
// before the first rewrite, and the matter stays locked throughout, so
// readers never see rewired dependents without the new task.
func (m *Matter) InsertAfter(newID, newName, afterID string, now time.Time) (InsertResult, error) {
	if err := validateID("newTaskId", newID); err != nil {
		return InsertResult{}, err
	}
	if newName == "" {
		return InsertResult{}, fincherrors.ErrInvalidInput("newTaskName", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	after, ok := m.tasks[afterID]
	if !ok {
		return InsertResult{}, fincherrors.ErrTaskNotFound(m.id, afterID)
	}
	if _, exists := m.tasks[newID]; exists {
		return InsertResult{}, fincherrors.ErrTaskExists(m.id, newID)
	}

	// Step 1: collect (task, index) pairs targeting afterID.
	var rewires []Rewire
	for _, id := range m.order {
		for i, dep := range m.tasks[id].Dependencies {
			if dep.TargetTaskID == afterID {
				rewires = append(rewires, Rewire{TaskID: id, DependencyIndex: i})
			}
		}
	}

	newDeps := []Dependency{TaskCompletion(afterID)}
	overrides := map[string][]Dependency{newID: newDeps}
	for _, rw := range rewires {
		deps, ok := overrides[rw.TaskID]
		if !ok {
			deps = cloneDependencies(m.tasks[rw.TaskID].Dependencies)
		}
		deps[rw.DependencyIndex].TargetTaskID = newID
		overrides[rw.TaskID] = deps
	}
	if err := checkCycle(m.tasks, overrides); err != nil {
		return InsertResult{}, err
	}

	// Step 2: redirect dependents to the new task.
	for _, rw := range rewires {
		m.tasks[rw.TaskID].Dependencies[rw.DependencyIndex].TargetTaskID = newID
	}

	// Step 3: create the new task depending on afterID.
	t := newTask(newID, newName, newDeps, now)
	m.insert(t)

	// Step 4: report.
	ids := make([]string, 0, len(rewires))
	seen := make(map[string]bool)
	for _, rw := range rewires {
		if !seen[rw.TaskID] {
			seen[rw.TaskID] = true
			ids = append(ids, rw.TaskID)
		}
	}
	return InsertResult{
		Task:           t.Clone(),
		After:          after.Clone(),
		Rewired:        rewires,
		RewiredCount:   len(rewires),
		RewiredTaskIDs: ids,
	}, nil
}

// ExecuteOutcome classifies the result of an execute attempt. None of these
// are errors.
type ExecuteOutcome string

const (
	OutcomeCompleted        ExecuteOutcome = "completed"
	OutcomeAlreadyCompleted ExecuteOutcome = "already_completed"
	OutcomeNotReady         ExecuteOutcome = "not_ready"
)

// ExecuteResult reports the outcome of Execute.
type ExecuteResult struct {
	TaskID            string         `json:"taskId"`
	TaskName          string         `json:"taskName"`
	Executed          bool           `json:"executed"`
	Outcome           ExecuteOutcome `json:"outcome"`
	Message           string         `json:"result"`
	CompletionDate    *time.Time     `json:"completionDate,omitempty"`
	UnmetDependencies []string       `json:"unmetDependencies,omitempty"`
}

// Execute attempts the Ready -> Completed transition. Completed tasks are
// left untouched and tasks with unmet dependencies are rejected without
// mutation.
func (m *Matter) Execute(taskID string, now time.Time) (ExecuteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return ExecuteResult{}, fincherrors.ErrTaskNotFound(m.id, taskID)
	}

	res := ExecuteResult{TaskID: t.ID, TaskName: t.Name}
	switch {
	case t.Completed:
		res.Outcome = OutcomeAlreadyCompleted
		res.Message = fmt.Sprintf("Task %q already completed", t.Name)
	case !t.DependenciesMet(m.tasks, now):
		res.Outcome = OutcomeNotReady
		res.UnmetDependencies = t.UnmetDependencies(m.tasks, now)
		res.Message = fmt.Sprintf("Task %q not ready (%s)", t.Name, strings.Join(res.UnmetDependencies, ", "))
	default:
		t.markComplete(now)
		res.Executed = true
		res.Outcome = OutcomeCompleted
		res.Message = fmt.Sprintf("Task %q complete", t.Name)
	}
	if t.CompletionDate != nil {
		d := *t.CompletionDate
		res.CompletionDate = &d
	}
	return res, nil
}

// RepairDefaults re-adds any default workflow task missing from the matter,
// with its default dependencies. Existing tasks are left untouched. Returns
// the IDs that were added.
func (m *Matter) RepairDefaults(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var added []string
	for _, s := range defaultWorkflow() {
		if _, ok := m.tasks[s.id]; ok {
			continue
		}
		m.insert(newTask(s.id, s.name, s.deps, now))
		added = append(added, s.id)
	}
	return added
}

// Summary returns the matter's list-view summary.
func (m *Matter) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Summary{
		MatterID:    m.id,
		ClientID:    m.clientID,
		ClientName:  m.clientName,
		MatterName:  m.name,
		CreatedDate: m.createdDate,
		TotalTasks:  len(m.tasks),
	}
	for _, t := range m.tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	return s
}
