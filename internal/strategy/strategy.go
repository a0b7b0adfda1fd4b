// Package strategy decides which flaw the search works on next and in which
// order the resolutions of that flaw are tried.
package strategy

import (
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// PlanStrategy steers causal planning.
type PlanStrategy interface {
	// ChooseOpenCond picks the open condition to support next.
	ChooseOpenCond(open []domain.OpenCond) (domain.OpenCond, bool)
	// OrderProducers orders the candidate producers for oc.
	OrderProducers(oc domain.OpenCond, cands []domain.Producer) []domain.Producer
	// ChooseThreat picks the threat to resolve next.
	ChooseThreat(threats []domain.Threat) (domain.Threat, bool)
	// OrderResolutions orders the promotion/demotion orderings of t.
	OrderResolutions(t domain.Threat, alts []domain.Ordering) []domain.Ordering
}

// ImplOption describes an implementation the scheduler may bind.
type ImplOption struct {
	ID       domain.TaskImplID
	Duration domain.TimeValue
	Cost     domain.Utility
}

// SchedStrategy steers scheduling.
type SchedStrategy interface {
	// OrderImpls orders the implementations to bind inst to.
	OrderImpls(inst domain.TaskInstID, impls []ImplOption) []domain.TaskImplID
	// ChooseConflict picks the resource conflict to resolve next.
	ChooseConflict(conflicts []domain.Conflict) (domain.Conflict, bool)
	// OrderConflictResolutions orders the orderings that separate the
	// instances of c.
	OrderConflictResolutions(c domain.Conflict, alts []domain.Ordering) []domain.Ordering
}

// OpenCondOrder selects which open condition the default plan strategy
// works on first.
type OpenCondOrder int

const (
	// NewestFirst supports the preconditions of the most recent instance
	// first, which keeps the search depth first.
	NewestFirst OpenCondOrder = iota
	// GoalFirst supports the goal conditions before any precondition.
	GoalFirst
)

// ParseOpenCondOrder parses "newest" or "goal".
func ParseOpenCondOrder(s string) (OpenCondOrder, bool) {
	switch s {
	case "", "newest":
		return NewestFirst, true
	case "goal":
		return GoalFirst, true
	default:
		return NewestFirst, false
	}
}

// DefaultPlan prefers the initial state, then reuse, then new instances
// ranked by spreading-activation utility.
type DefaultPlan struct {
	Order OpenCondOrder
}

// ChooseOpenCond implements PlanStrategy.
func (s DefaultPlan) ChooseOpenCond(open []domain.OpenCond) (domain.OpenCond, bool) {
	if len(open) == 0 {
		return domain.OpenCond{}, false
	}
	if s.Order == GoalFirst {
		for _, oc := range open {
			if oc.Inst == domain.GoalInstID {
				return oc, true
			}
		}
	}
	return open[0], true
}

// OrderProducers implements PlanStrategy.
func (DefaultPlan) OrderProducers(_ domain.OpenCond, cands []domain.Producer) []domain.Producer {
	out := append([]domain.Producer(nil), cands...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		switch a.Kind {
		case domain.Reuse:
			return a.Inst < b.Inst
		case domain.NewInst:
			if a.EU != b.EU {
				return a.EU > b.EU
			}
			return a.Task < b.Task
		}
		return false
	})
	return out
}

// ChooseThreat implements PlanStrategy.
func (DefaultPlan) ChooseThreat(threats []domain.Threat) (domain.Threat, bool) {
	if len(threats) == 0 {
		return domain.Threat{}, false
	}
	return threats[0], true
}

// OrderResolutions implements PlanStrategy.
func (DefaultPlan) OrderResolutions(_ domain.Threat, alts []domain.Ordering) []domain.Ordering {
	return append([]domain.Ordering(nil), alts...)
}

// DefaultSched binds the cheapest implementation first and resolves the
// earliest conflict first.
type DefaultSched struct{}

// OrderImpls implements SchedStrategy.
func (DefaultSched) OrderImpls(_ domain.TaskInstID, impls []ImplOption) []domain.TaskImplID {
	opts := append([]ImplOption(nil), impls...)
	sort.SliceStable(opts, func(i, j int) bool {
		a, b := opts[i], opts[j]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if a.Duration != b.Duration {
			return a.Duration < b.Duration
		}
		return a.ID < b.ID
	})
	out := make([]domain.TaskImplID, len(opts))
	for i, o := range opts {
		out[i] = o.ID
	}
	return out
}

// ChooseConflict implements SchedStrategy.
func (DefaultSched) ChooseConflict(conflicts []domain.Conflict) (domain.Conflict, bool) {
	if len(conflicts) == 0 {
		return domain.Conflict{}, false
	}
	best := conflicts[0]
	for _, c := range conflicts[1:] {
		if c.At < best.At || (c.At == best.At && c.Resource < best.Resource) {
			best = c
		}
	}
	return best, true
}

// OrderConflictResolutions implements SchedStrategy.
func (DefaultSched) OrderConflictResolutions(_ domain.Conflict, alts []domain.Ordering) []domain.Ordering {
	return append([]domain.Ordering(nil), alts...)
}
