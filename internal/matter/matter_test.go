package matter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

func depsOf(t *testing.T, m *Matter, id string) []Dependency {
	t.Helper()
	task, ok := m.Task(id)
	require.True(t, ok, "task %s should exist", id)
	return task.Dependencies
}

func stateOf(t *testing.T, m *Matter, id string) State {
	t.Helper()
	s := m.Status(t0)
	ts, ok := s.Tasks[id]
	require.True(t, ok, "task %s should exist", id)
	return ts.State
}

func TestNew_SeedsDefaultWorkflow(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	assert.Equal(t, "m1", m.ID())
	assert.Equal(t, "Jane Doe", m.ClientName())
	assert.Equal(t, t0, m.CreatedDate())
	assert.Equal(t, 5, m.TaskCount())

	var ids []string
	for _, task := range m.Tasks() {
		ids = append(ids, task.ID)
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletionDate)
		assert.Equal(t, t0, task.CreatedDate)
	}
	assert.Equal(t, DefaultTaskIDs(), ids)

	assert.Empty(t, depsOf(t, m, TaskIntakeCall))
	assert.Equal(t, []Dependency{TaskCompletion(TaskIntakeCall)}, depsOf(t, m, TaskSignEngagement))
	assert.Equal(t, []Dependency{TaskCompletion(TaskSignEngagement)}, depsOf(t, m, TaskCollectMedicalRecords))
	assert.Equal(t, []Dependency{
		TaskCompletion(TaskSignEngagement),
		TimeBased(TaskIntakeCall, 2),
	}, depsOf(t, m, TaskClientCheckin))
	assert.Equal(t, []Dependency{TaskCompletion(TaskCollectMedicalRecords)}, depsOf(t, m, TaskCreateDemand))

	assert.Equal(t, StateReady, stateOf(t, m, TaskIntakeCall))
	for _, id := range DefaultTaskIDs()[1:] {
		assert.Equal(t, StatePending, stateOf(t, m, id), id)
	}
}

func TestNew_Options(t *testing.T) {
	m := New("m1", "Jane Doe", t0, WithClientID("jane_doe"), WithName("Slip and fall"))
	assert.Equal(t, "jane_doe", m.ClientID())
	assert.Equal(t, "Slip and fall", m.Name())
}

func TestExecute_DefaultWorkflowScenario(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	res, err := m.Execute(TaskIntakeCall, t0)
	require.NoError(t, err)
	assert.True(t, res.Executed)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, `Task "Intake Call" complete`, res.Message)
	require.NotNil(t, res.CompletionDate)
	assert.Equal(t, t0, *res.CompletionDate)

	res, err = m.Execute(TaskSignEngagement, t0)
	require.NoError(t, err)
	assert.True(t, res.Executed)

	// Sign engagement done, but the two week wait after intake is not over.
	day13 := t0.AddDate(0, 0, 13)
	res, err = m.Execute(TaskClientCheckin, day13)
	require.NoError(t, err)
	assert.False(t, res.Executed)
	assert.Equal(t, OutcomeNotReady, res.Outcome)
	assert.Equal(t, []string{`2 weeks waiting period after "Intake Call" not complete`}, res.UnmetDependencies)
	assert.Equal(t, `Task "Client Check In" not ready (2 weeks waiting period after "Intake Call" not complete)`, res.Message)
	assert.Nil(t, res.CompletionDate)

	day14 := t0.AddDate(0, 0, 14)
	res, err = m.Execute(TaskClientCheckin, day14)
	require.NoError(t, err)
	assert.True(t, res.Executed)
	assert.Equal(t, day14, *res.CompletionDate)

	// Create demand still waits on medical records.
	res, err = m.Execute(TaskCreateDemand, day14)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotReady, res.Outcome)
	assert.Equal(t, []string{`"Collect Medical Records" not completed`}, res.UnmetDependencies)

	_, err = m.Execute(TaskCollectMedicalRecords, day14)
	require.NoError(t, err)
	res, err = m.Execute(TaskCreateDemand, day14)
	require.NoError(t, err)
	assert.True(t, res.Executed)

	s := m.Summary()
	assert.Equal(t, 5, s.TotalTasks)
	assert.Equal(t, 5, s.CompletedTasks)
}

func TestExecute_AlreadyCompletedIsIdempotent(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	_, err := m.Execute(TaskIntakeCall, t0)
	require.NoError(t, err)

	later := t0.AddDate(0, 0, 3)
	res, err := m.Execute(TaskIntakeCall, later)
	require.NoError(t, err)
	assert.False(t, res.Executed)
	assert.Equal(t, OutcomeAlreadyCompleted, res.Outcome)
	assert.Equal(t, `Task "Intake Call" already completed`, res.Message)
	require.NotNil(t, res.CompletionDate)
	assert.Equal(t, t0, *res.CompletionDate, "completion date must not move")
}

func TestExecute_PendingDoesNotMutate(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	res, err := m.Execute(TaskCreateDemand, t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotReady, res.Outcome)

	task, _ := m.Task(TaskCreateDemand)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletionDate)
}

func TestExecute_UnknownTask(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	_, err := m.Execute("nope", t0)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeTaskNotFound))
}

func TestCreateTask(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	task, err := m.CreateTask("file_complaint", "File Complaint", []Dependency{TaskCompletion(TaskCreateDemand)}, t0)
	require.NoError(t, err)
	assert.Equal(t, "file_complaint", task.ID)
	assert.Equal(t, "File Complaint", task.Name)
	assert.Equal(t, t0, task.CreatedDate)
	assert.Equal(t, 6, m.TaskCount())
	assert.Equal(t, StatePending, stateOf(t, m, "file_complaint"))

	tasks := m.Tasks()
	assert.Equal(t, "file_complaint", tasks[len(tasks)-1].ID, "new tasks append to display order")
}

func TestCreateTask_NoDependenciesIsReady(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	_, err := m.CreateTask("misc", "Misc", nil, t0)
	require.NoError(t, err)
	assert.Equal(t, StateReady, stateOf(t, m, "misc"))
	assert.NotNil(t, depsOf(t, m, "misc"))
}

func TestCreateTask_DanglingTargetAllowed(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	_, err := m.CreateTask("later", "Later", []Dependency{TaskCompletion("ghost")}, t0)
	require.NoError(t, err)

	res, err := m.Execute("later", t0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotReady, res.Outcome)
	assert.Equal(t, []string{`Task "ghost" not found`}, res.UnmetDependencies)
}

func TestCreateTask_Errors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		task string
		deps []Dependency
		code fincherrors.Code
	}{
		{"duplicate", TaskIntakeCall, "Again", nil, fincherrors.CodeTaskExists},
		{"empty id", "", "Name", nil, fincherrors.CodeInvalidInput},
		{"padded id", " x ", "Name", nil, fincherrors.CodeInvalidInput},
		{"empty name", "x", "", nil, fincherrors.CodeInvalidInput},
		{"self dependency", "x", "X", []Dependency{TaskCompletion("x")}, fincherrors.CodeSelfDependency},
		{"bad kind", "x", "X", []Dependency{{Kind: "soon", TargetTaskID: TaskIntakeCall}}, fincherrors.CodeInvalidDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m1", "Jane Doe", t0)
			_, err := m.CreateTask(tt.id, tt.task, tt.deps, t0)
			require.Error(t, err)
			assert.Equal(t, tt.code, fincherrors.CodeOf(err))
			assert.Equal(t, 5, m.TaskCount())
		})
	}
}

func TestCreateTask_RejectsCycleThroughDanglingTarget(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	_, err := m.CreateTask("a", "A", []Dependency{TaskCompletion("b")}, t0)
	require.NoError(t, err)

	_, err = m.CreateTask("b", "B", []Dependency{TaskCompletion("a")}, t0)
	require.Error(t, err)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeDependencyCycle))
	_, exists := m.Task("b")
	assert.False(t, exists)
}

func TestAddDependency(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	task, err := m.AddDependency(TaskCreateDemand, TimeBased(TaskClientCheckin, 1))
	require.NoError(t, err)
	assert.Equal(t, []Dependency{
		TaskCompletion(TaskCollectMedicalRecords),
		TimeBased(TaskClientCheckin, 1),
	}, task.Dependencies)

	// Targets need not exist yet.
	_, err = m.AddDependency(TaskCreateDemand, TaskCompletion("future"))
	require.NoError(t, err)
	assert.Len(t, depsOf(t, m, TaskCreateDemand), 3)
}

func TestAddDependency_Errors(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		dep    Dependency
		code   fincherrors.Code
	}{
		{"unknown task", "nope", TaskCompletion(TaskIntakeCall), fincherrors.CodeTaskNotFound},
		{"self", TaskIntakeCall, TaskCompletion(TaskIntakeCall), fincherrors.CodeSelfDependency},
		{"cycle", TaskIntakeCall, TaskCompletion(TaskCreateDemand), fincherrors.CodeDependencyCycle},
		{"empty target", TaskIntakeCall, Dependency{Kind: KindTaskCompletion}, fincherrors.CodeInvalidDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m1", "Jane Doe", t0)
			_, err := m.AddDependency(tt.taskID, tt.dep)
			require.Error(t, err)
			assert.Equal(t, tt.code, fincherrors.CodeOf(err))
			assert.Empty(t, depsOf(t, m, TaskIntakeCall))
		})
	}
}

func TestReplaceDependencies(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	task, err := m.ReplaceDependencies(TaskCreateDemand, []Dependency{TaskCompletion(TaskIntakeCall)})
	require.NoError(t, err)
	assert.Equal(t, []Dependency{TaskCompletion(TaskIntakeCall)}, task.Dependencies)

	_, err = m.ReplaceDependencies(TaskCreateDemand, nil)
	require.NoError(t, err)
	assert.Empty(t, depsOf(t, m, TaskCreateDemand))
	assert.Equal(t, StateReady, stateOf(t, m, TaskCreateDemand))
}

func TestReplaceDependencies_Strict(t *testing.T) {
	tests := []struct {
		name string
		deps []Dependency
		code fincherrors.Code
	}{
		{"missing target", []Dependency{TaskCompletion("ghost")}, fincherrors.CodeDependencyTargetNotFound},
		{"self", []Dependency{TaskCompletion(TaskCreateDemand)}, fincherrors.CodeSelfDependency},
		{"partial missing", []Dependency{TaskCompletion(TaskIntakeCall), TaskCompletion("ghost")}, fincherrors.CodeDependencyTargetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m1", "Jane Doe", t0)
			_, err := m.ReplaceDependencies(TaskCreateDemand, tt.deps)
			require.Error(t, err)
			assert.Equal(t, tt.code, fincherrors.CodeOf(err))
			assert.Equal(t, []Dependency{TaskCompletion(TaskCollectMedicalRecords)}, depsOf(t, m, TaskCreateDemand))
		})
	}

	m := New("m1", "Jane Doe", t0)
	_, err := m.ReplaceDependencies("nope", nil)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeTaskNotFound))

	_, err = m.ReplaceDependencies(TaskIntakeCall, []Dependency{TaskCompletion(TaskCreateDemand)})
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeDependencyCycle))
}

func TestInsertAfter_RewiresDependents(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	res, err := m.InsertAfter("conflict_check", "Conflict Check", TaskSignEngagement, t0)
	require.NoError(t, err)

	assert.Equal(t, "conflict_check", res.Task.ID)
	assert.Equal(t, []Dependency{TaskCompletion(TaskSignEngagement)}, res.Task.Dependencies)
	assert.Equal(t, TaskSignEngagement, res.After.ID)
	assert.Equal(t, 2, res.RewiredCount)
	assert.Equal(t, []Rewire{
		{TaskID: TaskCollectMedicalRecords, DependencyIndex: 0},
		{TaskID: TaskClientCheckin, DependencyIndex: 0},
	}, res.Rewired)
	assert.Equal(t, []string{TaskCollectMedicalRecords, TaskClientCheckin}, res.RewiredTaskIDs)

	assert.Equal(t, []Dependency{TaskCompletion("conflict_check")}, depsOf(t, m, TaskCollectMedicalRecords))
	assert.Equal(t, []Dependency{
		TaskCompletion("conflict_check"),
		TimeBased(TaskIntakeCall, 2),
	}, depsOf(t, m, TaskClientCheckin), "kind and delay are preserved, other deps untouched")

	// Nothing targets the after task except the new one.
	for _, task := range m.Tasks() {
		for _, dep := range task.Dependencies {
			if dep.TargetTaskID == TaskSignEngagement {
				assert.Equal(t, "conflict_check", task.ID)
			}
		}
	}
	assert.Equal(t, 6, m.TaskCount())
}

func TestInsertAfter_PreservesTimeBasedKind(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	res, err := m.InsertAfter("voicemail", "Leave Voicemail", TaskIntakeCall, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{TaskSignEngagement, TaskClientCheckin}, res.RewiredTaskIDs)
	assert.Equal(t, []Dependency{
		TaskCompletion(TaskSignEngagement),
		TimeBased("voicemail", 2),
	}, depsOf(t, m, TaskClientCheckin))
}

func TestInsertAfter_MultipleDepsOnSameTarget(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	_, err := m.CreateTask("x", "X", []Dependency{TaskCompletion(TaskCreateDemand), TimeBased(TaskCreateDemand, 1)}, t0)
	require.NoError(t, err)

	res, err := m.InsertAfter("y", "Y", TaskCreateDemand, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RewiredCount)
	assert.Equal(t, []string{"x"}, res.RewiredTaskIDs)
	assert.Equal(t, []Dependency{TaskCompletion("y"), TimeBased("y", 1)}, depsOf(t, m, "x"))
}

func TestInsertAfter_LeafTask(t *testing.T) {
	m := New("m1", "Jane Doe", t0)

	res, err := m.InsertAfter("settle", "Settle", TaskCreateDemand, t0)
	require.NoError(t, err)
	assert.Zero(t, res.RewiredCount)
	assert.Empty(t, res.RewiredTaskIDs)
	assert.Equal(t, []Dependency{TaskCompletion(TaskCreateDemand)}, depsOf(t, m, "settle"))
}

func TestInsertAfter_NewTaskStateFollowsAfterTask(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	_, err := m.Execute(TaskIntakeCall, t0)
	require.NoError(t, err)

	_, err = m.InsertAfter("voicemail", "Leave Voicemail", TaskIntakeCall, t0)
	require.NoError(t, err)
	assert.Equal(t, StateReady, stateOf(t, m, "voicemail"))
	assert.Equal(t, StatePending, stateOf(t, m, TaskSignEngagement), "sign now waits on the inserted task")
}

func TestInsertAfter_ErrorsLeaveMatterUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		newID   string
		newName string
		afterID string
		code    fincherrors.Code
	}{
		{"after missing", "n", "N", "ghost", fincherrors.CodeTaskNotFound},
		{"new exists", TaskCreateDemand, "N", TaskIntakeCall, fincherrors.CodeTaskExists},
		{"empty id", "", "N", TaskIntakeCall, fincherrors.CodeInvalidInput},
		{"empty name", "n", "", TaskIntakeCall, fincherrors.CodeInvalidInput},
		{"self", TaskIntakeCall, "N", TaskIntakeCall, fincherrors.CodeTaskExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("m1", "Jane Doe", t0)
			before := m.Data()

			_, err := m.InsertAfter(tt.newID, tt.newName, tt.afterID, t0)
			require.Error(t, err)
			assert.Equal(t, tt.code, fincherrors.CodeOf(err))
			assert.Equal(t, before, m.Data())
		})
	}
}

func TestInsertAfter_RejectsCycleFromDanglingReference(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	// intake_call waits on a task that does not exist yet; inserting that
	// task after create_demand would close a loop.
	_, err := m.AddDependency(TaskIntakeCall, TaskCompletion("late"))
	require.NoError(t, err)
	before := m.Data()

	_, err = m.InsertAfter("late", "Late", TaskCreateDemand, t0)
	require.Error(t, err)
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeDependencyCycle))
	assert.Equal(t, before, m.Data())
}

func TestRepairDefaults(t *testing.T) {
	d := New("m1", "Jane Doe", t0).Data()
	delete(d.Tasks, TaskClientCheckin)
	delete(d.Tasks, TaskCreateDemand)
	custom := d.Tasks[TaskIntakeCall]
	custom.Name = "Renamed Intake"
	d.Tasks[TaskIntakeCall] = custom
	d.TaskOrder = nil

	m, err := FromData(d)
	require.NoError(t, err)

	later := t0.AddDate(0, 0, 1)
	added := m.RepairDefaults(later)
	assert.Equal(t, []string{TaskClientCheckin, TaskCreateDemand}, added)
	assert.Equal(t, 5, m.TaskCount())

	intake, _ := m.Task(TaskIntakeCall)
	assert.Equal(t, "Renamed Intake", intake.Name, "existing tasks are not reset")
	demand, _ := m.Task(TaskCreateDemand)
	assert.Equal(t, later, demand.CreatedDate)
	assert.Equal(t, []Dependency{TaskCompletion(TaskCollectMedicalRecords)}, demand.Dependencies)

	assert.Empty(t, m.RepairDefaults(later))
}

func TestTask_CloneDoesNotAlias(t *testing.T) {
	m := New("m1", "Jane Doe", t0)
	_, err := m.Execute(TaskIntakeCall, t0)
	require.NoError(t, err)

	task, _ := m.Task(TaskClientCheckin)
	task.Dependencies[0].TargetTaskID = "mutated"
	*task.Dependencies[1].DelayWeeks = 99

	intake, _ := m.Task(TaskIntakeCall)
	*intake.CompletionDate = t0.AddDate(1, 0, 0)

	assert.Equal(t, []Dependency{
		TaskCompletion(TaskSignEngagement),
		TimeBased(TaskIntakeCall, 2),
	}, depsOf(t, m, TaskClientCheckin))
	again, _ := m.Task(TaskIntakeCall)
	assert.Equal(t, t0, *again.CompletionDate)
}
