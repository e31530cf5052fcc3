package matter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func completedAt(id string, at time.Time) *Task {
	t := newTask(id, id, nil, at)
	t.markComplete(at)
	return t
}

func TestDependency_IsMet_TaskCompletion(t *testing.T) {
	dep := TaskCompletion("a")

	assert.False(t, dep.IsMet(map[string]*Task{}, t0), "missing target is never met")

	pending := map[string]*Task{"a": newTask("a", "A", nil, t0)}
	assert.False(t, dep.IsMet(pending, t0))

	done := map[string]*Task{"a": completedAt("a", t0)}
	assert.True(t, dep.IsMet(done, t0))
}

func TestDependency_IsMet_TimeBased(t *testing.T) {
	tasks := map[string]*Task{"a": completedAt("a", t0)}

	tests := []struct {
		name  string
		weeks int
		now   time.Time
		want  bool
	}{
		{"zero weeks at completion", 0, t0, true},
		{"one day short", 2, t0.AddDate(0, 0, 13), false},
		{"one second short", 2, t0.AddDate(0, 0, 14).Add(-time.Second), false},
		{"exact boundary", 2, t0.AddDate(0, 0, 14), true},
		{"after boundary", 2, t0.AddDate(0, 1, 0), true},
		{"one week", 1, t0.AddDate(0, 0, 7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeBased("a", tt.weeks).IsMet(tasks, tt.now))
		})
	}
}

func TestDependency_IsMet_TimeBasedRequiresCompletion(t *testing.T) {
	dep := TimeBased("a", 0)

	pending := map[string]*Task{"a": newTask("a", "A", nil, t0)}
	assert.False(t, dep.IsMet(pending, t0.AddDate(1, 0, 0)))

	noDate := newTask("a", "A", nil, t0)
	noDate.Completed = true
	assert.False(t, dep.IsMet(map[string]*Task{"a": noDate}, t0.AddDate(1, 0, 0)))

	assert.False(t, dep.IsMet(map[string]*Task{}, t0))
}

func TestDependency_IsMet_UnknownKind(t *testing.T) {
	dep := Dependency{Kind: "eventually", TargetTaskID: "a"}
	assert.False(t, dep.IsMet(map[string]*Task{"a": completedAt("a", t0)}, t0))
}

func TestDependency_Weeks(t *testing.T) {
	assert.Equal(t, 0, TaskCompletion("a").Weeks())
	assert.Equal(t, 3, TimeBased("a", 3).Weeks())
	assert.Equal(t, t0.AddDate(0, 0, 21), TimeBased("a", 3).DueAt(t0))
}

func TestDependency_Validate(t *testing.T) {
	neg := -1

	tests := []struct {
		name   string
		dep    Dependency
		fields []string
	}{
		{"valid completion", TaskCompletion("a"), nil},
		{"valid time based", TimeBased("a", 2), nil},
		{"unknown kind", Dependency{Kind: "later", TargetTaskID: "a"}, []string{"dependencyType"}},
		{"empty target", Dependency{Kind: KindTaskCompletion}, []string{"targetTaskId"}},
		{"negative delay", Dependency{Kind: KindTimeBased, TargetTaskID: "a", DelayWeeks: &neg}, []string{"timeDelayWeeks"}},
		{"everything wrong", Dependency{DelayWeeks: &neg}, []string{"dependencyType", "targetTaskId", "timeDelayWeeks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.dep.Validate()
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
			if tt.fields == nil {
				assert.NoError(t, errs.ToError())
			} else {
				assert.Error(t, errs.ToError())
			}
		})
	}
}

func TestDependency_Validate_KindMessageListsKinds(t *testing.T) {
	errs := Dependency{Kind: "sometime", TargetTaskID: "a"}.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "dependencyType", errs[0].Field)
	assert.Equal(t, "must be one of [task_completion time_based]", errs[0].Message)
	for _, k := range ValidKinds() {
		assert.True(t, k.IsValid(), k)
	}
}

func TestCloneDependencies_DoesNotAlias(t *testing.T) {
	orig := []Dependency{TimeBased("a", 2)}
	c := cloneDependencies(orig)
	*c[0].DelayWeeks = 5
	c[0].TargetTaskID = "b"

	assert.Equal(t, 2, orig[0].Weeks())
	assert.Equal(t, "a", orig[0].TargetTaskID)

	empty := cloneDependencies(nil)
	require.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDetectCycle(t *testing.T) {
	tests := []struct {
		name  string
		start string
		graph map[string][]string
		want  []string
	}{
		{"no deps", "a", map[string][]string{"a": nil}, nil},
		{"chain", "a", map[string][]string{"a": {"b"}, "b": {"c"}}, nil},
		{"dangling target", "a", map[string][]string{"a": {"ghost"}}, nil},
		{"self loop", "a", map[string][]string{"a": {"a"}}, []string{"a", "a"}},
		{"two node", "a", map[string][]string{"a": {"b"}, "b": {"a"}}, []string{"a", "b", "a"}},
		{"lead in", "x", map[string][]string{"x": {"a"}, "a": {"b"}, "b": {"a"}}, []string{"a", "b", "a"}},
		{"diamond", "a", map[string][]string{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCycle(tt.start, tt.graph))
		})
	}
}
