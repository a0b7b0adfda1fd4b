// Package command implements reversible planning decisions and the LIFO
// command stack the planner and scheduler search with.
//
// A Command is one decision point. It carries an ordered list of
// alternatives; at most one alternative is applied at any time, and every
// applied alternative can be undone exactly. Search proceeds by trying the
// next alternative of the top command and undoing commands on dead ends,
// never by copying plans.
package command

import (
	"fmt"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// Kind tags the decision a command represents.
type Kind int

const (
	// AddInstance satisfies an open condition by the initial state, an
	// existing instance or a new instance.
	AddInstance Kind = iota
	// AddOrdering adds a precedence constraint (threat resolution or
	// resource-conflict resolution).
	AddOrdering
	// AddCausalLink links an existing producer to an open condition.
	AddCausalLink
	// BindResource binds an instance to an implementation and thereby to
	// its resource usage and duration.
	BindResource
	// TightenWindow narrows instance time windows after propagation.
	TightenWindow
)

// String returns the string representation
func (k Kind) String() string {
	switch k {
	case AddInstance:
		return "add_instance"
	case AddOrdering:
		return "add_ordering"
	case AddCausalLink:
		return "add_causal_link"
	case BindResource:
		return "bind_resource"
	case TightenWindow:
		return "tighten_window"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a command.
type State int

const (
	// Pending commands are registered but have never applied an alternative.
	Pending State = iota
	// Executed commands have one alternative applied.
	Executed
	// Undone commands have no alternative applied, either because they were
	// undone or because every alternative has been tried.
	Undone
)

// String returns the string representation
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Executed:
		return "executed"
	case Undone:
		return "undone"
	default:
		return "unknown"
	}
}

// Alternative is one way of carrying out a decision.
type Alternative struct {
	// Label names the alternative in logs and diagnostics.
	Label string

	// Apply performs the alternative. It returns the function that reverts
	// it, or ok=false when the alternative is infeasible; an infeasible
	// alternative must leave no trace.
	Apply func() (undo func(), ok bool)
}

// Command is a reversible decision with ordered alternatives.
type Command struct {
	id    domain.CommandID
	kind  Kind
	label string
	alts  []Alternative

	next    int
	current int
	undo    func()
	state   State
}

// New creates a pending command.
func New(kind Kind, label string, alts ...Alternative) *Command {
	return &Command{
		kind:    kind,
		label:   label,
		alts:    alts,
		current: -1,
		state:   Pending,
	}
}

// ID returns the id assigned when the command was added to a stack.
func (c *Command) ID() domain.CommandID { return c.id }

// Kind returns the decision kind.
func (c *Command) Kind() Kind { return c.kind }

// Label returns the decision label.
func (c *Command) Label() string { return c.label }

// State returns the lifecycle state.
func (c *Command) State() State { return c.state }

// Alternatives returns the number of alternatives.
func (c *Command) Alternatives() int { return len(c.alts) }

// Remaining returns the number of alternatives not yet tried.
func (c *Command) Remaining() int { return len(c.alts) - c.next }

// Applied returns the label of the applied alternative, if any.
func (c *Command) Applied() (string, bool) {
	if c.current < 0 {
		return "", false
	}
	return c.alts[c.current].Label, true
}

// String returns the string representation
func (c *Command) String() string {
	applied, ok := c.Applied()
	if !ok {
		applied = "-"
	}
	return fmt.Sprintf("#%d %s(%s) %s [%d/%d] %s", c.id, c.kind, c.label, c.state, c.next, len(c.alts), applied)
}

// revert undoes the applied alternative, if any.
func (c *Command) revert() {
	if c.undo != nil {
		c.undo()
	}
	c.undo = nil
	c.current = -1
}

// advance reverts the current alternative and applies the next feasible
// one. allow is consulted before each attempt; a false answer stops the
// command as if it were exhausted.
func (c *Command) advance(allow func(c *Command) bool, tried func(c *Command, ok bool)) bool {
	c.revert()
	for c.next < len(c.alts) {
		if !allow(c) {
			break
		}
		i := c.next
		c.next++
		undo, ok := c.alts[i].Apply()
		tried(c, ok)
		if ok {
			c.undo = undo
			c.current = i
			c.state = Executed
			return true
		}
	}
	c.state = Undone
	return false
}
