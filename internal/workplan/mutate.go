package workplan

import "github.com/felixgeelhaar/plansched/internal/domain"

// The functions in this file are the only mutators of WorkingPlan. Each
// returns the closure that reverts it.

func (wp *WorkingPlan) addInstance(task domain.TaskID) (domain.TaskInstID, func()) {
	id := wp.next
	wp.next++
	wp.insts[id] = &instance{task: task, impl: domain.NullTaskImplID, windows: NullWindows}

	var opened []domain.OpenCond
	if wp.dom != nil {
		for _, c := range wp.dom.Preconds(task) {
			oc := domain.OpenCond{Cond: c, Inst: id}
			if _, ok := wp.open[oc]; !ok {
				wp.open[oc] = struct{}{}
				opened = append(opened, oc)
			}
		}
	}

	return id, func() {
		for _, oc := range opened {
			delete(wp.open, oc)
		}
		delete(wp.insts, id)
		wp.next = id
	}
}

// canOrder reports whether before < after can be added without a cycle.
// Orderings against the pseudo instances are implicit and never stored.
func (wp *WorkingPlan) canOrder(before, after domain.TaskInstID) bool {
	if before == after || !wp.Has(before) || !wp.Has(after) {
		return false
	}
	return !wp.Precedes(after, before)
}

func (wp *WorkingPlan) addOrdering(origin domain.OrderingOrigin, o domain.Ordering) (func(), bool) {
	if !wp.canOrder(o.Before, o.After) {
		return nil, false
	}
	e := wp.edges[origin]
	e.add(o)
	return func() { e.remove(o) }, true
}

// addLink records l, closes the open condition it supports and orders the
// producer before the consumer.
func (wp *WorkingPlan) addLink(l domain.CausalLink) (func(), bool) {
	if l.First == l.Second || l.First == domain.GoalInstID || l.Second == domain.InitInstID {
		return nil, false
	}
	if l.First != domain.InitInstID && !wp.Has(l.First) {
		return nil, false
	}
	if l.Second != domain.GoalInstID && !wp.Has(l.Second) {
		return nil, false
	}
	if _, dup := wp.links[l]; dup {
		return nil, false
	}
	if wp.dom != nil {
		ports := wp.dom.ClinkPorts(wp.TaskFromInst(l.First), l.Cond.ID, wp.TaskFromInst(l.Second))
		if !ports.Compatible() {
			return nil, false
		}
	}

	var undoEdge func()
	if !l.First.IsSpecial() && !l.Second.IsSpecial() {
		u, ok := wp.addOrdering(domain.OriginCausal, domain.Ordering{Before: l.First, After: l.Second})
		if !ok {
			return nil, false
		}
		undoEdge = u
	}

	wp.links[l] = struct{}{}
	oc := domain.OpenCond{Cond: l.Cond, Inst: l.Second}
	_, wasOpen := wp.open[oc]
	delete(wp.open, oc)

	return func() {
		if wasOpen {
			wp.open[oc] = struct{}{}
		}
		delete(wp.links, l)
		if undoEdge != nil {
			undoEdge()
		}
	}, true
}

func (wp *WorkingPlan) bindImpl(inst domain.TaskInstID, impl domain.TaskImplID) (func(), bool) {
	in, ok := wp.insts[inst]
	if !ok || impl == domain.NullTaskImplID {
		return nil, false
	}
	old := in.impl
	in.impl = impl
	return func() { in.impl = old }, true
}

// tighten intersects the windows of every instance in target with its
// current windows. Nothing changes when any result would be empty.
func (wp *WorkingPlan) tighten(target map[domain.TaskInstID]Windows) (func(), bool) {
	type saved struct {
		in      *instance
		windows Windows
		hasWin  bool
	}
	next := make(map[domain.TaskInstID]Windows, len(target))
	for id, w := range target {
		in, ok := wp.insts[id]
		if !ok {
			return nil, false
		}
		if in.hasWin {
			w = Windows{Start: in.windows.Start.Intersect(w.Start), End: in.windows.End.Intersect(w.End)}
		}
		if w.Start.Empty() || w.End.Empty() {
			return nil, false
		}
		next[id] = w
	}

	undo := make([]saved, 0, len(next))
	for id, w := range next {
		in := wp.insts[id]
		undo = append(undo, saved{in: in, windows: in.windows, hasWin: in.hasWin})
		in.windows = w
		in.hasWin = true
	}
	return func() {
		for _, s := range undo {
			s.in.windows = s.windows
			s.in.hasWin = s.hasWin
		}
	}, true
}
