package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

var (
	fetched  = domain.Condition{ID: 1, Value: true}
	rendered = domain.Condition{ID: 2, Value: true}
)

type world struct {
	vals    map[domain.CondID]domain.Probability
	effects map[domain.TaskID]map[domain.CondID]domain.LinkWeight
}

func (w *world) CondVal(c domain.CondID) domain.Probability { return w.vals[c] }
func (w *world) EffectProb(t domain.TaskID, c domain.CondID) domain.LinkWeight {
	return w.effects[t][c]
}

type costs map[domain.TaskImplID]domain.Utility

func (c costs) Cost(impl domain.TaskImplID) domain.Utility { return c[impl] }

func newWorld() *world {
	return &world{
		vals: map[domain.CondID]domain.Probability{1: 0.8},
		effects: map[domain.TaskID]map[domain.CondID]domain.LinkWeight{
			7: {2: 0.9},
		},
	}
}

// renderPlan is init -fetched-> render -rendered-> goal.
func renderPlan() *plan.Plan {
	return &plan.Plan{
		Goal:  plan.Goal{ID: "g", Conditions: []plan.GoalCondition{{Cond: rendered, Utility: 10}}},
		Tasks: []plan.Task{{Inst: 1, Task: 7, Impl: "gpu"}},
		Links: []domain.CausalLink{
			{First: domain.InitInstID, Cond: fetched, Second: 1},
			{First: 1, Cond: rendered, Second: domain.GoalInstID},
		},
	}
}

func TestCalcPlanEU(t *testing.T) {
	tests := []struct {
		name  string
		plan  func() *plan.Plan
		costs costs
		want  domain.Utility
	}{
		{name: "chain through init", plan: renderPlan, costs: costs{"gpu": 1}, want: 10*0.9*0.8 - 1},
		{name: "no costs", plan: renderPlan, want: 10 * 0.9 * 0.8},
		{
			name: "unsupported goal",
			plan: func() *plan.Plan {
				p := renderPlan()
				p.Links = p.Links[:1]
				return p
			},
			costs: costs{"gpu": 1},
			want:  -1,
		},
		{
			name: "goal from init",
			plan: func() *plan.Plan {
				return &plan.Plan{
					Goal:  plan.Goal{Conditions: []plan.GoalCondition{{Cond: domain.Condition{ID: 1, Value: false}, Utility: 5}}},
					Links: []domain.CausalLink{{First: domain.InitInstID, Cond: domain.Condition{ID: 1, Value: false}, Second: domain.GoalInstID}},
				}
			},
			want: 5 * 0.2,
		},
		{name: "empty plan", plan: func() *plan.Plan { return &plan.Plan{} }, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcPlanEU(tt.plan(), newWorld(), tt.costs)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluatorCachesUntilInvalidated(t *testing.T) {
	w := newWorld()
	e := NewEvaluator(w, costs{})
	p := renderPlan()

	first := e.PlanEU(p)
	assert.InDelta(t, 7.2, first, 1e-9)

	w.effects[7][2] = 0.5
	assert.Equal(t, first, e.PlanEU(p), "cached value survives until Invalidate")

	e.Invalidate()
	assert.InDelta(t, 4, e.PlanEU(p), 1e-9)
}

func TestChangesClearOnRead(t *testing.T) {
	e := NewEvaluator(newWorld(), nil)

	e.Observe(domain.TaskEUMap{1: 2, 2: 3})
	assert.Equal(t, domain.TaskEUMap{1: 2, 2: 3}, e.Changes())
	assert.Empty(t, e.Changes())

	e.Observe(domain.TaskEUMap{1: 2, 2: 4})
	assert.Equal(t, domain.TaskEUMap{2: 4}, e.Changes())

	e.Observe(domain.TaskEUMap{1: 2 + Epsilon/2})
	assert.Empty(t, e.Changes())
}
