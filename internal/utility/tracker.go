package utility

import (
	"math"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// Epsilon is the smallest utility difference reported as a change.
const Epsilon = 1e-9

// Evaluator caches plan utilities and records task utility changes. It is
// not safe for concurrent use.
type Evaluator struct {
	conds Conditions
	costs Costs

	cache   map[string]domain.Utility
	last    domain.TaskEUMap
	changes domain.TaskEUMap
}

// NewEvaluator creates an evaluator.
func NewEvaluator(conds Conditions, costs Costs) *Evaluator {
	return &Evaluator{
		conds:   conds,
		costs:   costs,
		cache:   make(map[string]domain.Utility),
		last:    make(domain.TaskEUMap),
		changes: make(domain.TaskEUMap),
	}
}

// PlanEU returns CalcPlanEU for p, cached by plan hash until Invalidate.
func (e *Evaluator) PlanEU(p *plan.Plan) domain.Utility {
	key, err := plan.Hash(p)
	if err != nil {
		return CalcPlanEU(p, e.conds, e.costs)
	}

	if eu, ok := e.cache[key]; ok {
		return eu
	}
	eu := CalcPlanEU(p, e.conds, e.costs)
	e.cache[key] = eu
	return eu
}

// Invalidate drops every cached plan utility.
func (e *Evaluator) Invalidate() {
	e.cache = make(map[string]domain.Utility)
}

// Observe records the current task utilities. Tasks whose utility differs
// from the previous observation are reported by the next Changes call.
func (e *Evaluator) Observe(eus domain.TaskEUMap) {
	for task, eu := range eus {
		if prev, ok := e.last[task]; !ok || math.Abs(prev-eu) > Epsilon {
			e.changes[task] = eu
		}
		e.last[task] = eu
	}
}

// Changes returns the utilities that changed since the previous call and
// clears them.
func (e *Evaluator) Changes() domain.TaskEUMap {
	out := e.changes
	e.changes = make(domain.TaskEUMap)
	return out
}
