package domain

import (
	"fmt"
	"sort"
)

// CausalLink records that First's effect establishes Cond for Second's precondition.
type CausalLink struct {
	First  TaskInstID `json:"first" yaml:"first"`
	Cond   Condition  `json:"cond" yaml:"cond"`
	Second TaskInstID `json:"second" yaml:"second"`
}

// String returns the string representation
func (l CausalLink) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", l.First, l.Cond, l.Second)
}

// Less orders links by consumer, condition, producer.
func (l CausalLink) Less(o CausalLink) bool {
	if l.Second != o.Second {
		return l.Second < o.Second
	}
	if l.Cond != o.Cond {
		return l.Cond.Less(o.Cond)
	}
	return l.First < o.First
}

// Threat is a task instance that may clobber the condition protected by Link.
type Threat struct {
	Threat TaskInstID `json:"threat" yaml:"threat"`
	Link   CausalLink `json:"link" yaml:"link"`
}

// String returns the string representation
func (t Threat) String() string {
	return fmt.Sprintf("%s threatens %s", t.Threat, t.Link)
}

// OpenCond is a precondition of Inst that no causal link supports yet.
type OpenCond struct {
	Cond Condition  `json:"cond" yaml:"cond"`
	Inst TaskInstID `json:"inst" yaml:"inst"`
}

// String returns the string representation
func (o OpenCond) String() string {
	return fmt.Sprintf("%s@%s", o.Cond, o.Inst)
}

// Ordering states that Before must finish before After starts.
type Ordering struct {
	Before TaskInstID `json:"before" yaml:"before"`
	After  TaskInstID `json:"after" yaml:"after"`
}

// String returns the string representation
func (o Ordering) String() string {
	return fmt.Sprintf("%s < %s", o.Before, o.After)
}

// OrderingOrigin tells why an ordering exists.
type OrderingOrigin int

const (
	// OriginCausal orderings come from causal links and threat resolution.
	OriginCausal OrderingOrigin = iota
	// OriginSched orderings come from temporal/resource reasoning.
	OriginSched
)

// String returns the string representation
func (o OrderingOrigin) String() string {
	if o == OriginSched {
		return "sched"
	}
	return "causal"
}

// PrecedenceRelation selects one direction of one ordering origin.
type PrecedenceRelation int

const (
	// CausalBefore are instances causally ordered before the instance.
	CausalBefore PrecedenceRelation = iota
	// CausalAfter are instances causally ordered after the instance.
	CausalAfter
	// SchedBefore are instances ordered before the instance by scheduling.
	SchedBefore
	// SchedAfter are instances ordered after the instance by scheduling.
	SchedAfter
)

// Origin returns the ordering origin the relation ranges over.
func (r PrecedenceRelation) Origin() OrderingOrigin {
	if r == SchedBefore || r == SchedAfter {
		return OriginSched
	}
	return OriginCausal
}

// IsBefore reports whether the relation looks at predecessors.
func (r PrecedenceRelation) IsBefore() bool {
	return r == CausalBefore || r == SchedBefore
}

// TaskInstSet is a set of task instances.
type TaskInstSet map[TaskInstID]struct{}

// NewTaskInstSet builds a set from ids.
func NewTaskInstSet(ids ...TaskInstID) TaskInstSet {
	s := make(TaskInstSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s TaskInstSet) Has(id TaskInstID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s TaskInstSet) Sorted() []TaskInstID {
	out := make([]TaskInstID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TaskEUMap maps tasks to expected utility.
type TaskEUMap map[TaskID]Utility

// SortConditions sorts conditions in place.
func SortConditions(cs []Condition) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
}

// SortLinks sorts causal links in place.
func SortLinks(ls []CausalLink) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Less(ls[j]) })
}

// ProducerKind tells how an open condition would be supported.
type ProducerKind int

const (
	// FromInit supports the condition from the current state.
	FromInit ProducerKind = iota
	// Reuse links an instance already in the plan.
	Reuse
	// NewInst adds a fresh instance of a task.
	NewInst
)

// String returns the string representation
func (k ProducerKind) String() string {
	switch k {
	case FromInit:
		return "init"
	case Reuse:
		return "reuse"
	case NewInst:
		return "new"
	default:
		return "unknown"
	}
}

// Producer is a candidate supplier for an open condition.
type Producer struct {
	Kind ProducerKind
	Inst TaskInstID // set for Reuse
	Task TaskID     // set for Reuse and NewInst
	EU   Utility    // heuristic value of Task, used for ordering
}

// String returns the string representation
func (p Producer) String() string {
	switch p.Kind {
	case FromInit:
		return "init"
	case Reuse:
		return fmt.Sprintf("reuse %s (%s)", p.Inst, p.Task)
	default:
		return fmt.Sprintf("new %s", p.Task)
	}
}

// MarshalText implements encoding.TextMarshaler
func (o OrderingOrigin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *OrderingOrigin) UnmarshalText(b []byte) error {
	switch string(b) {
	case "causal", "":
		*o = OriginCausal
	case "sched":
		*o = OriginSched
	default:
		return fmt.Errorf("invalid ordering origin %q", string(b))
	}
	return nil
}
