// Package workplan holds the mutable state of the plan under construction:
// task instances, causal links, precedence edges, time windows and
// implementation bindings.
//
// The structure is an arena indexed by opaque ids. Queries are exported;
// every mutation is reached through the commands built in commands.go so
// that the command stack can undo it exactly.
package workplan

import (
	"sort"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// Domain is the task network view the working plan needs.
type Domain interface {
	Preconds(task domain.TaskID) []domain.Condition
	ClinkPorts(producer domain.TaskID, cond domain.CondID, consumer domain.TaskID) domain.LinkPorts
}

// Catalog is the implementation view the working plan needs.
type Catalog interface {
	Duration(impl domain.TaskImplID) domain.TimeValue
	Capacity(res domain.ResourceID) domain.ResourceValue
}

// Windows are the start and end windows of one instance.
type Windows struct {
	Start domain.TimeWindow `json:"start" yaml:"start"`
	End   domain.TimeWindow `json:"end" yaml:"end"`
}

// NullWindows is reported for instances without temporal information.
var NullWindows = Windows{Start: domain.NullWindow, End: domain.NullWindow}

type instance struct {
	task    domain.TaskID
	impl    domain.TaskImplID
	windows Windows
	hasWin  bool
}

// edgeSet is a multiset of precedence edges with adjacency in both directions.
type edgeSet struct {
	count map[domain.Ordering]int
	succ  map[domain.TaskInstID]map[domain.TaskInstID]int
	pred  map[domain.TaskInstID]map[domain.TaskInstID]int
}

func newEdgeSet() *edgeSet {
	return &edgeSet{
		count: make(map[domain.Ordering]int),
		succ:  make(map[domain.TaskInstID]map[domain.TaskInstID]int),
		pred:  make(map[domain.TaskInstID]map[domain.TaskInstID]int),
	}
}

func (e *edgeSet) add(o domain.Ordering) {
	e.count[o]++
	bump(e.succ, o.Before, o.After, 1)
	bump(e.pred, o.After, o.Before, 1)
}

func (e *edgeSet) remove(o domain.Ordering) {
	if e.count[o] <= 1 {
		delete(e.count, o)
	} else {
		e.count[o]--
	}
	bump(e.succ, o.Before, o.After, -1)
	bump(e.pred, o.After, o.Before, -1)
}

func bump(m map[domain.TaskInstID]map[domain.TaskInstID]int, from, to domain.TaskInstID, d int) {
	inner := m[from]
	if inner == nil {
		inner = make(map[domain.TaskInstID]int)
		m[from] = inner
	}
	inner[to] += d
	if inner[to] <= 0 {
		delete(inner, to)
	}
	if len(inner) == 0 {
		delete(m, from)
	}
}

func (e *edgeSet) sorted() []domain.Ordering {
	out := make([]domain.Ordering, 0, len(e.count))
	for o := range e.count {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Before != out[j].Before {
			return out[i].Before < out[j].Before
		}
		return out[i].After < out[j].After
	})
	return out
}

// WorkingPlan is the in-progress plan graph.
//
// WorkingPlan is not safe for concurrent use; the planner owns it.
type WorkingPlan struct {
	dom Domain
	cat Catalog

	goal  domain.Goal
	insts map[domain.TaskInstID]*instance
	next  domain.TaskInstID
	links map[domain.CausalLink]struct{}
	open  map[domain.OpenCond]struct{}
	edges [2]*edgeSet
}

// New creates an empty working plan.
func New(dom Domain, cat Catalog) *WorkingPlan {
	wp := &WorkingPlan{dom: dom, cat: cat}
	wp.Reset(domain.NewGoal("", "", nil))
	return wp
}

// Reset drops all plan state and seeds the goal's conditions as open
// conditions of the goal pseudo instance.
func (wp *WorkingPlan) Reset(goal domain.Goal) {
	wp.goal = goal.Clone()
	wp.insts = make(map[domain.TaskInstID]*instance)
	wp.next = 1
	wp.links = make(map[domain.CausalLink]struct{})
	wp.open = make(map[domain.OpenCond]struct{})
	wp.edges = [2]*edgeSet{newEdgeSet(), newEdgeSet()}
	for c := range goal.Conditions {
		wp.open[domain.OpenCond{Cond: c, Inst: domain.GoalInstID}] = struct{}{}
	}
}

// Goal returns the goal the plan was reset with.
func (wp *WorkingPlan) Goal() domain.Goal { return wp.goal.Clone() }

// InstCount returns the number of task instances.
func (wp *WorkingPlan) InstCount() int { return len(wp.insts) }

// AllInsts returns all task instances in id order.
func (wp *WorkingPlan) AllInsts() []domain.TaskInstID {
	out := make([]domain.TaskInstID, 0, len(wp.insts))
	for id := range wp.insts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether inst is a task instance of the plan.
func (wp *WorkingPlan) Has(inst domain.TaskInstID) bool {
	_, ok := wp.insts[inst]
	return ok
}

// TaskFromInst returns the task of inst, the special task ids for the
// pseudo instances, or NullTaskID for unknown instances.
func (wp *WorkingPlan) TaskFromInst(inst domain.TaskInstID) domain.TaskID {
	switch inst {
	case domain.InitInstID:
		return domain.InitTaskID
	case domain.GoalInstID:
		return domain.GoalTaskID
	}
	if in, ok := wp.insts[inst]; ok {
		return in.task
	}
	return domain.NullTaskID
}

// ImplID returns the implementation bound to inst, or NullTaskImplID.
func (wp *WorkingPlan) ImplID(inst domain.TaskInstID) domain.TaskImplID {
	if in, ok := wp.insts[inst]; ok {
		return in.impl
	}
	return domain.NullTaskImplID
}

// TaskImplFromInst is ImplID under the name the planner surface uses.
func (wp *WorkingPlan) TaskImplFromInst(inst domain.TaskInstID) domain.TaskImplID {
	return wp.ImplID(inst)
}

// Duration returns the duration of inst's implementation; unbound and
// unknown instances take no time.
func (wp *WorkingPlan) Duration(inst domain.TaskInstID) domain.TimeValue {
	impl := wp.ImplID(inst)
	if impl == domain.NullTaskImplID || wp.cat == nil {
		return 0
	}
	return wp.cat.Duration(impl)
}

// Capacity returns the capacity of a resource.
func (wp *WorkingPlan) Capacity(res domain.ResourceID) domain.ResourceValue {
	if wp.cat == nil {
		return 0
	}
	return wp.cat.Capacity(res)
}

// Windows returns both windows of inst and whether any were set.
func (wp *WorkingPlan) Windows(inst domain.TaskInstID) (Windows, bool) {
	in, ok := wp.insts[inst]
	if !ok || !in.hasWin {
		return NullWindows, false
	}
	return in.windows, true
}

// StartWindow returns the start window of inst, or NullWindow.
func (wp *WorkingPlan) StartWindow(inst domain.TaskInstID) domain.TimeWindow {
	w, _ := wp.Windows(inst)
	return w.Start
}

// EndWindow returns the end window of inst, or NullWindow.
func (wp *WorkingPlan) EndWindow(inst domain.TaskInstID) domain.TimeWindow {
	w, _ := wp.Windows(inst)
	return w.End
}

// Reusable returns the instances of task in id order. Any of them may
// support a new causal link: effects depend on the task alone, and the
// implementation is chosen later by the scheduler.
func (wp *WorkingPlan) Reusable(task domain.TaskID) []domain.TaskInstID {
	var out []domain.TaskInstID
	for _, id := range wp.AllInsts() {
		if wp.insts[id].task == task {
			out = append(out, id)
		}
	}
	return out
}

// InstExists returns the lowest-id instance of task bound to impl, if any.
// NullTaskImplID matches unbound instances.
func (wp *WorkingPlan) InstExists(task domain.TaskID, impl domain.TaskImplID) (domain.TaskInstID, bool) {
	for _, id := range wp.Reusable(task) {
		if wp.insts[id].impl == impl {
			return id, true
		}
	}
	return domain.NullTaskInstID, false
}

// CausalLinks returns all causal links in deterministic order.
func (wp *WorkingPlan) CausalLinks() []domain.CausalLink {
	out := make([]domain.CausalLink, 0, len(wp.links))
	for l := range wp.links {
		out = append(out, l)
	}
	domain.SortLinks(out)
	return out
}

// LinksInto returns the causal links consumed by inst.
func (wp *WorkingPlan) LinksInto(inst domain.TaskInstID) []domain.CausalLink {
	var out []domain.CausalLink
	for _, l := range wp.CausalLinks() {
		if l.Second == inst {
			out = append(out, l)
		}
	}
	return out
}

// OpenConds returns the unsupported preconditions, most recent instance first.
func (wp *WorkingPlan) OpenConds() []domain.OpenCond {
	out := make([]domain.OpenCond, 0, len(wp.open))
	for oc := range wp.open {
		out = append(out, oc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Inst != out[j].Inst {
			return out[i].Inst > out[j].Inst
		}
		return out[i].Cond.Less(out[j].Cond)
	})
	return out
}

// IsOpen reports whether oc is currently open.
func (wp *WorkingPlan) IsOpen(oc domain.OpenCond) bool {
	_, ok := wp.open[oc]
	return ok
}

// Orderings returns the precedence edges of one origin.
func (wp *WorkingPlan) Orderings(origin domain.OrderingOrigin) []domain.Ordering {
	return wp.edges[origin].sorted()
}

// PrecInsts returns the instances reachable from inst over edges of the
// relation's origin, in the relation's direction.
func (wp *WorkingPlan) PrecInsts(inst domain.TaskInstID, rel domain.PrecedenceRelation) domain.TaskInstSet {
	e := wp.edges[rel.Origin()]
	if rel.IsBefore() {
		return closure(inst, e.pred)
	}
	return closure(inst, e.succ)
}

// BeforeOrderings returns every instance that must precede inst.
func (wp *WorkingPlan) BeforeOrderings(inst domain.TaskInstID) domain.TaskInstSet {
	return closure(inst, wp.edges[domain.OriginCausal].pred, wp.edges[domain.OriginSched].pred)
}

// AfterOrderings returns every instance that must follow inst.
func (wp *WorkingPlan) AfterOrderings(inst domain.TaskInstID) domain.TaskInstSet {
	return closure(inst, wp.edges[domain.OriginCausal].succ, wp.edges[domain.OriginSched].succ)
}

// Precedes reports whether a is ordered before b.
func (wp *WorkingPlan) Precedes(a, b domain.TaskInstID) bool {
	return wp.AfterOrderings(a).Has(b)
}

// Predecessors returns the direct predecessors of inst over both origins.
func (wp *WorkingPlan) Predecessors(inst domain.TaskInstID) []domain.TaskInstID {
	return direct(inst, wp.edges[domain.OriginCausal].pred, wp.edges[domain.OriginSched].pred)
}

// Successors returns the direct successors of inst over both origins.
func (wp *WorkingPlan) Successors(inst domain.TaskInstID) []domain.TaskInstID {
	return direct(inst, wp.edges[domain.OriginCausal].succ, wp.edges[domain.OriginSched].succ)
}

func closure(from domain.TaskInstID, adj ...map[domain.TaskInstID]map[domain.TaskInstID]int) domain.TaskInstSet {
	seen := domain.NewTaskInstSet()
	stack := []domain.TaskInstID{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, a := range adj {
			for n := range a[cur] {
				if !seen.Has(n) {
					seen[n] = struct{}{}
					stack = append(stack, n)
				}
			}
		}
	}
	delete(seen, from)
	return seen
}

func direct(from domain.TaskInstID, adj ...map[domain.TaskInstID]map[domain.TaskInstID]int) []domain.TaskInstID {
	set := domain.NewTaskInstSet()
	for _, a := range adj {
		for n := range a[from] {
			set[n] = struct{}{}
		}
	}
	return set.Sorted()
}
