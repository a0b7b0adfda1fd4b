package workplan

import (
	"fmt"

	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
)

// AddInstanceCommand supports oc by one of the candidate producers, tried
// in the given order.
func (wp *WorkingPlan) AddInstanceCommand(oc domain.OpenCond, cands []domain.Producer) *command.Command {
	alts := make([]command.Alternative, 0, len(cands))
	for _, p := range cands {
		p := p
		alts = append(alts, command.Alternative{
			Label: p.String(),
			Apply: func() (func(), bool) { return wp.supply(oc, p) },
		})
	}
	return command.New(command.AddInstance, oc.String(), alts...)
}

func (wp *WorkingPlan) supply(oc domain.OpenCond, p domain.Producer) (func(), bool) {
	if !wp.IsOpen(oc) {
		return nil, false
	}
	switch p.Kind {
	case domain.FromInit:
		return wp.addLink(domain.CausalLink{First: domain.InitInstID, Cond: oc.Cond, Second: oc.Inst})
	case domain.Reuse:
		return wp.addLink(domain.CausalLink{First: p.Inst, Cond: oc.Cond, Second: oc.Inst})
	case domain.NewInst:
		id, undoInst := wp.addInstance(p.Task)
		undoLink, ok := wp.addLink(domain.CausalLink{First: id, Cond: oc.Cond, Second: oc.Inst})
		if !ok {
			undoInst()
			return nil, false
		}
		return func() {
			undoLink()
			undoInst()
		}, true
	default:
		return nil, false
	}
}

// ProducerOf returns the instance supporting cond for consumer, or
// NullTaskInstID while the condition is open.
func (wp *WorkingPlan) ProducerOf(oc domain.OpenCond) domain.TaskInstID {
	for l := range wp.links {
		if l.Cond == oc.Cond && l.Second == oc.Inst {
			return l.First
		}
	}
	return domain.NullTaskInstID
}

// AddCausalLinkCommand links one of the existing producers to oc.
func (wp *WorkingPlan) AddCausalLinkCommand(oc domain.OpenCond, producers []domain.TaskInstID) *command.Command {
	alts := make([]command.Alternative, 0, len(producers))
	for _, p := range producers {
		l := domain.CausalLink{First: p, Cond: oc.Cond, Second: oc.Inst}
		alts = append(alts, command.Alternative{
			Label: l.String(),
			Apply: func() (func(), bool) {
				if !wp.IsOpen(oc) {
					return nil, false
				}
				return wp.addLink(l)
			},
		})
	}
	return command.New(command.AddCausalLink, oc.String(), alts...)
}

// AddOrderingCommand adds one of the orderings. Alternatives that would
// create a cycle or order against a pseudo instance are infeasible.
func (wp *WorkingPlan) AddOrderingCommand(origin domain.OrderingOrigin, label string, orderings []domain.Ordering) *command.Command {
	alts := make([]command.Alternative, 0, len(orderings))
	for _, o := range orderings {
		o := o
		alts = append(alts, command.Alternative{
			Label: o.String(),
			Apply: func() (func(), bool) { return wp.addOrdering(origin, o) },
		})
	}
	return command.New(command.AddOrdering, fmt.Sprintf("%s %s", origin, label), alts...)
}

// BindResourceCommand binds inst to one of the implementations.
func (wp *WorkingPlan) BindResourceCommand(inst domain.TaskInstID, impls []domain.TaskImplID) *command.Command {
	alts := make([]command.Alternative, 0, len(impls))
	for _, impl := range impls {
		impl := impl
		alts = append(alts, command.Alternative{
			Label: string(impl),
			Apply: func() (func(), bool) { return wp.bindImpl(inst, impl) },
		})
	}
	return command.New(command.BindResource, inst.String(), alts...)
}

// TightenWindowCommand intersects instance windows with target. Its single
// alternative is infeasible when any window would become empty.
func (wp *WorkingPlan) TightenWindowCommand(target map[domain.TaskInstID]Windows) *command.Command {
	return command.New(command.TightenWindow, fmt.Sprintf("%d windows", len(target)), command.Alternative{
		Label: "propagate",
		Apply: func() (func(), bool) { return wp.tighten(target) },
	})
}
