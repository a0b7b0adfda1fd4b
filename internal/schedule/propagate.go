// Package schedule makes a causally complete plan temporally and
// resource feasible.
//
// Windows are propagated over the precedence relation (earliest start
// forward, latest finish backward) and resource usage is checked on the
// earliest-start schedule. Every decision the scheduler makes is a command
// on the planner's stack, so scheduling backtracks together with planning.
package schedule

import (
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

// View is the part of the working plan scheduling reads.
type View interface {
	AllInsts() []domain.TaskInstID
	ImplID(inst domain.TaskInstID) domain.TaskImplID
	Duration(inst domain.TaskInstID) domain.TimeValue
	Windows(inst domain.TaskInstID) (workplan.Windows, bool)
	Predecessors(inst domain.TaskInstID) []domain.TaskInstID
	Successors(inst domain.TaskInstID) []domain.TaskInstID
	Goal() domain.Goal
}

// Resources reports implementation resource usage and capacities.
type Resources interface {
	AllResources(impl domain.TaskImplID) domain.ResourceMap
	Capacity(res domain.ResourceID) domain.ResourceValue
}

// Propagate computes the windows every instance must lie in, given the
// precedence relation, the horizon and the goal's timing constraints. The
// result is intersected with the windows already recorded, so applying it
// never widens a window. An empty window in the result means the plan
// cannot be scheduled.
func Propagate(v View, horizon domain.TimeValue) map[domain.TaskInstID]workplan.Windows {
	order := topoOrder(v)
	goal := v.Goal()

	var origin domain.TimeValue
	if goal.StartWindow != domain.NullWindow && goal.StartWindow.Earliest > origin {
		origin = goal.StartWindow.Earliest
	}
	finish := horizon
	if goal.Deadline != domain.NullTime && goal.Deadline < finish {
		finish = goal.Deadline
	}

	es := make(map[domain.TaskInstID]domain.TimeValue, len(order))
	lf := make(map[domain.TaskInstID]domain.TimeValue, len(order))

	for _, id := range order {
		t := origin
		for _, p := range v.Predecessors(id) {
			if end := es[p] + v.Duration(p); end > t {
				t = end
			}
		}
		if cur, ok := v.Windows(id); ok && cur.Start.Earliest > t {
			t = cur.Start.Earliest
		}
		es[id] = t
	}

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		t := finish
		for _, s := range v.Successors(id) {
			if start := lf[s] - v.Duration(s); start < t {
				t = start
			}
		}
		if cur, ok := v.Windows(id); ok && cur.End.Latest < t {
			t = cur.End.Latest
		}
		lf[id] = t
	}

	out := make(map[domain.TaskInstID]workplan.Windows, len(order))
	for _, id := range order {
		d := v.Duration(id)
		start := domain.TimeWindow{Earliest: es[id], Latest: lf[id] - d}
		if goal.StartWindow != domain.NullWindow && len(v.Predecessors(id)) == 0 {
			start = start.Intersect(goal.StartWindow)
		}
		out[id] = workplan.Windows{
			Start: start,
			End:   domain.TimeWindow{Earliest: start.Earliest + d, Latest: start.Latest + d},
		}
	}
	return out
}

// topoOrder returns the instances so that every instance follows its
// predecessors, breaking ties by id.
func topoOrder(v View) []domain.TaskInstID {
	insts := v.AllInsts()
	indeg := make(map[domain.TaskInstID]int, len(insts))
	for _, id := range insts {
		indeg[id] = len(v.Predecessors(id))
	}

	var ready []domain.TaskInstID
	for _, id := range insts {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]domain.TaskInstID, 0, len(insts))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)
		for _, s := range v.Successors(id) {
			indeg[s]--
			if indeg[s] == 0 {
				ready = append(ready, s)
			}
		}
	}
	return out
}

// Conflicts returns every instant of the earliest-start schedule at which
// the instances active at that instant use more of a resource than its
// capacity. An instance started at s with duration d is active on [s, s+d).
// Conflicts are sorted by time, then resource.
func Conflicts(v View, res Resources) []domain.Conflict {
	type active struct {
		id         domain.TaskInstID
		start, end domain.TimeValue
		usage      domain.ResourceMap
	}

	var acts []active
	for _, id := range v.AllInsts() {
		impl := v.ImplID(id)
		d := v.Duration(id)
		if impl == domain.NullTaskImplID || d <= 0 {
			continue
		}
		var s domain.TimeValue
		if w, ok := v.Windows(id); ok {
			s = w.Start.Earliest
		}
		acts = append(acts, active{id: id, start: s, end: s + d, usage: res.AllResources(impl)})
	}

	instants := make([]domain.TimeValue, 0, len(acts))
	seen := make(map[domain.TimeValue]bool)
	for _, a := range acts {
		if !seen[a.start] {
			seen[a.start] = true
			instants = append(instants, a.start)
		}
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i] < instants[j] })

	var out []domain.Conflict
	for _, t := range instants {
		usage := make(domain.ResourceMap)
		users := make(map[domain.ResourceID][]domain.TaskInstID)
		for _, a := range acts {
			if a.start > t || t >= a.end {
				continue
			}
			for r, q := range a.usage {
				if q == 0 {
					continue
				}
				usage[r] += q
				users[r] = append(users[r], a.id)
			}
		}
		for _, r := range usage.Sorted() {
			if capacity := res.Capacity(r); usage[r] > capacity {
				insts := users[r]
				sort.Slice(insts, func(i, j int) bool { return insts[i] < insts[j] })
				out = append(out, domain.Conflict{Resource: r, At: t, Insts: insts, Usage: usage[r], Capacity: capacity})
			}
		}
	}
	return out
}

// Resolutions returns every ordering of two instances of c, each of which
// stops them overlapping.
func Resolutions(c domain.Conflict) []domain.Ordering {
	var out []domain.Ordering
	for i, a := range c.Insts {
		for _, b := range c.Insts[i+1:] {
			out = append(out, domain.Ordering{Before: a, After: b}, domain.Ordering{Before: b, After: a})
		}
	}
	return out
}
