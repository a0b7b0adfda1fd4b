// Package utility computes the expected utility of committed plans and
// tracks how task utility estimates change between queries.
package utility

import (
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// Conditions reports current condition values and task effects.
type Conditions interface {
	CondVal(cond domain.CondID) domain.Probability
	EffectProb(task domain.TaskID, cond domain.CondID) domain.LinkWeight
}

// Costs reports implementation costs.
type Costs interface {
	Cost(impl domain.TaskImplID) domain.Utility
}

// CalcPlanEU returns the sum of goal utility times the probability that p
// achieves each goal condition, minus the cost of every bound
// implementation. A causal link from the initial state holds with the
// condition's current probability; a link from an instance holds with the
// producer's effect probability times the probability that all of the
// producer's own preconditions hold.
func CalcPlanEU(p *plan.Plan, conds Conditions, costs Costs) domain.Utility {
	into := make(map[domain.TaskInstID][]domain.CausalLink)
	for _, l := range p.Links {
		into[l.Second] = append(into[l.Second], l)
	}
	task := make(map[domain.TaskInstID]plan.Task, len(p.Tasks))
	for _, t := range p.Tasks {
		task[t.Inst] = t
	}

	ready := make(map[domain.TaskInstID]domain.Probability)
	visiting := make(map[domain.TaskInstID]bool)

	var linkProb func(l domain.CausalLink) domain.Probability
	var readyProb func(inst domain.TaskInstID) domain.Probability

	readyProb = func(inst domain.TaskInstID) domain.Probability {
		if pr, ok := ready[inst]; ok {
			return pr
		}
		if visiting[inst] {
			return 0
		}
		visiting[inst] = true
		pr := domain.Probability(1)
		for _, l := range into[inst] {
			pr *= linkProb(l)
		}
		visiting[inst] = false
		ready[inst] = pr
		return pr
	}

	linkProb = func(l domain.CausalLink) domain.Probability {
		if l.First == domain.InitInstID {
			return domain.ProbOf(conds.CondVal(l.Cond.ID), l.Cond.Value)
		}
		t, ok := task[l.First]
		if !ok {
			return 0
		}
		return domain.WeightProb(conds.EffectProb(t.Task, l.Cond.ID), l.Cond.Value) * readyProb(l.First)
	}

	var eu domain.Utility
	for _, gc := range p.Goal.Conditions {
		var best domain.Probability
		for _, l := range into[domain.GoalInstID] {
			if l.Cond == gc.Cond {
				if pr := linkProb(l); pr > best {
					best = pr
				}
			}
		}
		eu += gc.Utility * best
	}
	for _, t := range p.Tasks {
		if t.Impl != domain.NullTaskImplID && costs != nil {
			eu -= costs.Cost(t.Impl)
		}
	}
	return eu
}
