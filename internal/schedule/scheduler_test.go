package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/plansched/internal/catalog"
	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

type flatDomain struct{}

func (flatDomain) Preconds(domain.TaskID) []domain.Condition { return nil }
func (flatDomain) ClinkPorts(domain.TaskID, domain.CondID, domain.TaskID) domain.LinkPorts {
	return domain.LinkPorts{}
}

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type fixture struct {
	cat   *catalog.TaskMap
	plan  *workplan.WorkingPlan
	stack *command.Stack
	sched *Scheduler
}

// newFixture creates one instance per task, task i supplying goal
// condition i. Instances get ids 1..len(tasks) in order.
func newFixture(t testingT, cat *catalog.TaskMap, goal domain.Goal, tasks []domain.TaskID, opts ...Option) *fixture {
	t.Helper()
	conds := make(domain.GoalMap, len(tasks))
	for i := range tasks {
		conds[domain.Condition{ID: domain.CondID(i + 1), Value: true}] = 1
	}
	goal.Conditions = conds

	wp := workplan.New(flatDomain{}, cat)
	wp.Reset(goal)
	stack := command.NewStack()
	for i, task := range tasks {
		oc := domain.OpenCond{Cond: domain.Condition{ID: domain.CondID(i + 1), Value: true}, Inst: domain.GoalInstID}
		require.True(t, stack.Execute(wp.AddInstanceCommand(oc, []domain.Producer{{Kind: domain.NewInst, Task: task}})))
	}
	return &fixture{
		cat:   cat,
		plan:  wp,
		stack: stack,
		sched: New(wp, stack, cat, strategy.DefaultSched{}, opts...),
	}
}

func (f *fixture) order(t *testing.T, before, after domain.TaskInstID) {
	t.Helper()
	require.True(t, f.stack.Execute(f.plan.AddOrderingCommand(domain.OriginCausal, "test", []domain.Ordering{{Before: before, After: after}})))
}

func gpuCatalog(t *testing.T) *catalog.TaskMap {
	t.Helper()
	cat := catalog.New()
	require.NoError(t, cat.AddResource("gpu", 1))
	require.NoError(t, cat.AddImpl(catalog.Impl{ID: "a", Task: 1, Duration: 2, Resources: domain.ResourceMap{"gpu": 1}}))
	require.NoError(t, cat.AddImpl(catalog.Impl{ID: "b", Task: 2, Duration: 3, Resources: domain.ResourceMap{"gpu": 1}}))
	return cat
}

func TestPropagateChain(t *testing.T) {
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{1, 2}, WithHorizon(10))
	f.order(t, 1, 2)
	require.True(t, f.sched.Full())

	assert.Equal(t, domain.TimeWindow{Earliest: 0, Latest: 5}, f.plan.StartWindow(1))
	assert.Equal(t, domain.TimeWindow{Earliest: 2, Latest: 7}, f.plan.EndWindow(1))
	assert.Equal(t, domain.TimeWindow{Earliest: 2, Latest: 7}, f.plan.StartWindow(2))
	assert.Equal(t, domain.TimeWindow{Earliest: 5, Latest: 10}, f.plan.EndWindow(2))
}

func TestGoalTimingConstraints(t *testing.T) {
	goal := domain.NewGoal("g", "", nil)
	goal.StartWindow = domain.TimeWindow{Earliest: 3, Latest: 4}
	goal.Deadline = 20
	f := newFixture(t, gpuCatalog(t), goal, []domain.TaskID{1})

	require.True(t, f.sched.Full())
	assert.Equal(t, domain.TimeWindow{Earliest: 3, Latest: 4}, f.plan.StartWindow(1))
	assert.Equal(t, domain.TimeWindow{Earliest: 5, Latest: 6}, f.plan.EndWindow(1))
}

func TestDeadlineTooTightFails(t *testing.T) {
	goal := domain.NewGoal("g", "", nil)
	goal.Deadline = 4
	f := newFixture(t, gpuCatalog(t), goal, []domain.TaskID{1, 2})
	f.order(t, 1, 2)
	depth := f.stack.Len()

	assert.False(t, f.sched.Full())
	assert.Equal(t, depth, f.stack.Len(), "failed scheduling leaves no commands behind")
	assert.Equal(t, domain.NullTaskImplID, f.plan.ImplID(1))
	assert.Equal(t, domain.NullWindow, f.plan.StartWindow(1))
}

func TestResourceConflictIsSerialized(t *testing.T) {
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{1, 2})

	require.True(t, f.sched.Full())

	assert.Empty(t, Conflicts(f.plan, f.cat))
	assert.Len(t, f.plan.Orderings(domain.OriginSched), 1)
	assert.True(t, f.plan.Precedes(1, 2), "first resolution orders the lower id first")
	assert.Equal(t, domain.TimeValue(2), f.plan.StartWindow(2).Earliest)
}

func TestConflictObserverSeesResolvedConflicts(t *testing.T) {
	var seen []domain.ResourceID
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{1, 2},
		WithConflictObserver(func(c domain.Conflict) { seen = append(seen, c.Resource) }))

	require.True(t, f.sched.Full())
	assert.Equal(t, []domain.ResourceID{"gpu"}, seen)
}

func TestConflictsOnEarliestStartSchedule(t *testing.T) {
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{1, 2})
	require.True(t, f.stack.Execute(f.plan.BindResourceCommand(1, []domain.TaskImplID{"a"})))
	require.True(t, f.stack.Execute(f.plan.BindResourceCommand(2, []domain.TaskImplID{"b"})))

	got := Conflicts(f.plan, f.cat)

	require.Len(t, got, 1)
	assert.Equal(t, domain.Conflict{Resource: "gpu", At: 0, Insts: []domain.TaskInstID{1, 2}, Usage: 2, Capacity: 1}, got[0])
	assert.Equal(t, []domain.Ordering{{Before: 1, After: 2}, {Before: 2, After: 1}}, Resolutions(got[0]))
}

func TestBindingFallsBackToFittingImpl(t *testing.T) {
	cat := catalog.New()
	require.NoError(t, cat.AddResource("crew", 2))
	require.NoError(t, cat.AddImpl(catalog.Impl{ID: "cheap", Task: 1, Duration: 1, Cost: 1, Resources: domain.ResourceMap{"crew": 3}}))
	require.NoError(t, cat.AddImpl(catalog.Impl{ID: "pricey", Task: 1, Duration: 1, Cost: 5, Resources: domain.ResourceMap{"crew": 2}}))
	f := newFixture(t, cat, domain.NewGoal("g", "", nil), []domain.TaskID{1})

	require.True(t, f.sched.Full())
	assert.Equal(t, domain.TaskImplID("pricey"), f.plan.ImplID(1))
}

func TestRecurseCallsNextAndUnwinds(t *testing.T) {
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{1, 2})
	depth := f.stack.Len()

	var calls []domain.TaskImplID
	ok := f.sched.Recurse(1, func() bool {
		calls = append(calls, f.plan.ImplID(1))
		return false
	})

	assert.False(t, ok)
	assert.Equal(t, []domain.TaskImplID{"a"}, calls)
	assert.Equal(t, depth, f.stack.Len())
	assert.Equal(t, domain.NullTaskImplID, f.plan.ImplID(1))

	ok = f.sched.Recurse(1, nil)
	assert.True(t, ok)
	assert.Equal(t, domain.TaskImplID("a"), f.plan.ImplID(1))
	assert.Equal(t, domain.NullTaskImplID, f.plan.ImplID(2), "Recurse binds only the instance it is given")
}

func TestUnimplementedTasksTakeNoTime(t *testing.T) {
	f := newFixture(t, gpuCatalog(t), domain.NewGoal("g", "", nil), []domain.TaskID{7})

	require.True(t, f.sched.Full())
	assert.Equal(t, domain.NullTaskImplID, f.plan.ImplID(1))
	assert.Equal(t, domain.TimeWindow{Earliest: 0, Latest: DefaultHorizon}, f.plan.StartWindow(1))
}

func ExampleResolutions() {
	c := domain.Conflict{Resource: "gpu", At: 0, Insts: []domain.TaskInstID{1, 2}, Usage: 2, Capacity: 1}
	fmt.Println(Resolutions(c))
	// Output: [inst-1 < inst-2 inst-2 < inst-1]
}
