package matter

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// fakeClock is a settable clock for tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry() (*Registry, *fakeClock) {
	clock := &fakeClock{now: t0}
	return NewRegistry(WithClock(clock)), clock
}

func TestRegistry_CreateAndGet(t *testing.T) {
	r, _ := newTestRegistry()

	m, err := r.CreateMatter("m1", "Jane Doe", WithName("Slip and fall"))
	require.NoError(t, err)
	assert.Equal(t, t0, m.CreatedDate())

	got, ok := r.GetMatter("m1")
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = r.GetMatter("nope")
	assert.False(t, ok)

	_, err = r.CreateMatter("m1", "Someone Else")
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeMatterExists))

	_, err = r.CreateMatter("", "Jane Doe")
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeInvalidInput))
	_, err = r.CreateMatter("m2", "")
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeInvalidInput))
}

func TestRegistry_UnknownMatter(t *testing.T) {
	r, _ := newTestRegistry()

	checks := map[string]error{}
	_, checks["CreateTask"] = r.CreateTask("nope", "t", "T", nil)
	_, checks["AddDependency"] = r.AddDependency("nope", "t", TaskCompletion("x"))
	_, checks["ReplaceDependencies"] = r.ReplaceDependencies("nope", "t", nil)
	_, checks["InsertTaskAfter"] = r.InsertTaskAfter("nope", "n", "N", "t")
	_, checks["ExecuteTask"] = r.ExecuteTask("nope", "t")
	_, checks["MatterStatus"] = r.MatterStatus("nope")
	_, checks["DependencyDetail"] = r.DependencyDetail("nope")
	_, checks["RepairDefaults"] = r.RepairDefaults("nope")
	_, checks["ExportMatter"] = r.ExportMatter("nope")

	for op, err := range checks {
		assert.True(t, fincherrors.HasCode(err, fincherrors.CodeMatterNotFound), op)
	}
}

func TestRegistry_ListMattersOldestFirst(t *testing.T) {
	r, clock := newTestRegistry()

	_, err := r.CreateMatter("b", "B")
	require.NoError(t, err)
	_, err = r.CreateMatter("a", "A")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, err = r.CreateMatter("c", "C")
	require.NoError(t, err)

	list := r.ListMatters()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].MatterID)
	assert.Equal(t, "b", list[1].MatterID)
	assert.Equal(t, "c", list[2].MatterID)
	assert.Equal(t, 5, list[0].TotalTasks)
}

func TestRegistry_UsesClock(t *testing.T) {
	r, clock := newTestRegistry()
	_, err := r.CreateMatter("m1", "Jane Doe")
	require.NoError(t, err)

	_, err = r.ExecuteTask("m1", TaskIntakeCall)
	require.NoError(t, err)
	_, err = r.ExecuteTask("m1", TaskSignEngagement)
	require.NoError(t, err)

	res, err := r.ExecuteTask("m1", TaskClientCheckin)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotReady, res.Outcome)

	status, err := r.MatterStatus("m1")
	require.NoError(t, err)
	assert.Equal(t, StatePending, status.Tasks[TaskClientCheckin].State)

	clock.Advance(14 * 24 * time.Hour)

	status, err = r.MatterStatus("m1")
	require.NoError(t, err)
	assert.Equal(t, StateReady, status.Tasks[TaskClientCheckin].State)
	assert.Equal(t, clock.Now(), status.EvaluatedAt)

	res, err = r.ExecuteTask("m1", TaskClientCheckin)
	require.NoError(t, err)
	assert.True(t, res.Executed)
	assert.Equal(t, clock.Now(), *res.CompletionDate)
}

func TestRegistry_ExportImport(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.CreateMatter("m1", "Jane Doe")
	require.NoError(t, err)
	_, err = r.InsertTaskAfter("m1", "conflict_check", "Conflict Check", TaskSignEngagement)
	require.NoError(t, err)
	_, err = r.CreateMatter("m2", "John Roe")
	require.NoError(t, err)

	exported := r.ExportAll()
	require.Len(t, exported, 2)

	other, _ := newTestRegistry()
	_, err = other.CreateMatter("stale", "Stale")
	require.NoError(t, err)

	require.NoError(t, other.ImportAll(exported))
	_, ok := other.GetMatter("stale")
	assert.False(t, ok, "import replaces the whole registry")
	assert.Equal(t, exported, other.ExportAll())
}

func TestRegistry_ImportAllIsAtomic(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.CreateMatter("keep", "Keep")
	require.NoError(t, err)

	good := New("good", "Good", t0).Data()
	bad := New("bad", "Bad", t0).Data()
	td := bad.Tasks[TaskIntakeCall]
	td.Dependencies = []Dependency{{Kind: "bogus", TargetTaskID: TaskCreateDemand}}
	bad.Tasks[TaskIntakeCall] = td

	err = r.ImportAll(map[string]MatterData{"good": good, "bad": bad})
	require.Error(t, err)

	_, ok := r.GetMatter("keep")
	assert.True(t, ok)
	_, ok = r.GetMatter("good")
	assert.False(t, ok)

	err = r.ImportAll(map[string]MatterData{"x": good})
	assert.True(t, fincherrors.HasCode(err, fincherrors.CodeInvalidInput))
}

func TestRegistry_ConcurrentExecuteCompletesOnce(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.CreateMatter("m1", "Jane Doe")
	require.NoError(t, err)

	const workers = 16
	results := make([]ExecuteResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.ExecuteTask("m1", TaskIntakeCall)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	completed := 0
	for _, res := range results {
		if res.Outcome == OutcomeCompleted {
			completed++
		} else {
			assert.Equal(t, OutcomeAlreadyCompleted, res.Outcome)
		}
	}
	assert.Equal(t, 1, completed)
}

func TestRegistry_ConcurrentMutationsAcrossMatters(t *testing.T) {
	r, _ := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", i)
			_, err := r.CreateMatter(id, "Client")
			assert.NoError(t, err)
			for j := 0; j < 5; j++ {
				_, err := r.InsertTaskAfter(id, fmt.Sprintf("step%d", j), "Step", TaskIntakeCall)
				assert.NoError(t, err)
				_, err = r.MatterStatus(id)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	list := r.ListMatters()
	require.Len(t, list, 8)
	for _, s := range list {
		assert.Equal(t, 10, s.TotalTasks)
	}
}
