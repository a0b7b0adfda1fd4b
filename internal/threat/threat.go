// Package threat finds causal links that other task instances may clobber.
//
// The analyzer is policy free: it reports threats and the two orderings that
// would resolve each one, and leaves the choice to the plan strategy.
package threat

import (
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// PlanView is the part of the working plan the analyzer reads.
type PlanView interface {
	CausalLinks() []domain.CausalLink
	AllInsts() []domain.TaskInstID
	TaskFromInst(inst domain.TaskInstID) domain.TaskID
	BeforeOrderings(inst domain.TaskInstID) domain.TaskInstSet
	AfterOrderings(inst domain.TaskInstID) domain.TaskInstSet
}

// Effects reports the signed weight of a task's effect on a condition.
type Effects interface {
	EffectProb(task domain.TaskID, cond domain.CondID) domain.LinkWeight
}

// Generate returns every threat in plan. An instance threatens a link when
// its effect yields the opposite of the protected value with probability
// above 1-thresh and it is not ordered before the producer or after the
// consumer. Threats are sorted by link, then by threatening instance.
func Generate(plan PlanView, effects Effects, thresh domain.Probability) []domain.Threat {
	insts := plan.AllInsts()
	var out []domain.Threat

	for _, l := range plan.CausalLinks() {
		var before, after domain.TaskInstSet
		if l.First != domain.InitInstID {
			before = plan.BeforeOrderings(l.First)
		}
		if l.Second != domain.GoalInstID {
			after = plan.AfterOrderings(l.Second)
		}

		for _, inst := range insts {
			if inst == l.First || inst == l.Second {
				continue
			}
			if before.Has(inst) || after.Has(inst) {
				continue
			}
			w := effects.EffectProb(plan.TaskFromInst(inst), l.Cond.ID)
			if domain.WeightProb(w, !l.Cond.Value) > 1-thresh {
				out = append(out, domain.Threat{Threat: inst, Link: l})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Link != out[j].Link {
			return out[i].Link.Less(out[j].Link)
		}
		return out[i].Threat < out[j].Threat
	})
	return out
}

// Promotion orders the threat after the link's consumer.
func Promotion(t domain.Threat) domain.Ordering {
	return domain.Ordering{Before: t.Link.Second, After: t.Threat}
}

// Demotion orders the threat before the link's producer.
func Demotion(t domain.Threat) domain.Ordering {
	return domain.Ordering{Before: t.Threat, After: t.Link.First}
}

// Resolutions returns the orderings that could resolve t, promotion first.
// Orderings against the pseudo instances are left out since they can never
// be added.
func Resolutions(t domain.Threat) []domain.Ordering {
	var out []domain.Ordering
	if t.Link.Second != domain.GoalInstID {
		out = append(out, Promotion(t))
	}
	if t.Link.First != domain.InitInstID {
		out = append(out, Demotion(t))
	}
	return out
}
