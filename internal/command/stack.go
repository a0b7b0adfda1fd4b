package command

import (
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/log"
)

// Observer is notified about command activity (metrics, tracing).
type Observer interface {
	CommandTried(kind Kind, ok bool)
	CommandUndone(kind Kind)
}

// Option configures a Stack.
type Option func(*Stack)

// WithBudget bounds the number of alternatives the stack will try in
// total. Zero means unbounded.
func WithBudget(n int) Option {
	return func(s *Stack) { s.budget = n }
}

// WithLogger sets the logger used for decision tracing.
func WithLogger(l *log.Logger) Option {
	return func(s *Stack) { s.log = l.WithComponent("command") }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *Stack) { s.observer = o }
}

// Stack is the LIFO stack of commands of one search.
//
// Stack is not safe for concurrent use.
type Stack struct {
	cmds      []*Command
	lastID    domain.CommandID
	backtrack domain.CommandID

	budget int
	tried  int

	log      *log.Logger
	observer Observer
}

// NewStack creates an empty stack.
func NewStack(opts ...Option) *Stack {
	s := &Stack{log: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers c on top of the stack without executing it and returns its id.
func (s *Stack) Add(c *Command) domain.CommandID {
	s.lastID++
	c.id = s.lastID
	s.cmds = append(s.cmds, c)
	s.log.Debug("command added", "id", int(c.id), "kind", c.kind.String(), "label", c.label, "alternatives", len(c.alts))
	return c.id
}

// Execute adds c and applies its first feasible alternative. When no
// alternative applies, c stays on the stack in the Undone state and must
// be removed with Undo.
func (s *Stack) Execute(c *Command) bool {
	id := s.Add(c)
	ok, _ := s.TryNext(id)
	return ok
}

// TryNext undoes the current alternative of the top command and applies
// its next feasible one. It returns false once the alternatives (or the
// stack budget) are exhausted; further calls keep returning false.
// id must be the top command, otherwise an InvalidCommand error is
// returned and nothing changes.
func (s *Stack) TryNext(id domain.CommandID) (bool, error) {
	top := s.Top()
	if top == nil || top.id != id {
		return false, errors.NewInvalidCommandError(int(id), int(s.Current()))
	}
	if top.state == Undone && top.Remaining() == 0 {
		return false, nil
	}
	ok := top.advance(s.allow, s.noteTried)
	if !ok {
		s.log.Debug("command exhausted", "id", int(id), "kind", top.kind.String(), "label", top.label)
		return false, nil
	}
	s.log.Trace("alternative applied", "id", int(id), "kind", top.kind.String(), "remaining", top.Remaining(), "tried", s.Tried())
	return true, nil
}

// Undo reverts and removes the top command. id must be the top command.
func (s *Stack) Undo(id domain.CommandID) error {
	top := s.Top()
	if top == nil || top.id != id {
		return errors.NewInvalidCommandError(int(id), int(s.Current()))
	}
	s.pop()
	return nil
}

// UndoThrough reverts and removes every command down to and including id.
// If id is not on the stack an InvalidCommand error is returned and
// nothing changes.
func (s *Stack) UndoThrough(id domain.CommandID) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return errors.NewCommandNotFoundError(int(id))
	}
	for len(s.cmds) > idx {
		s.pop()
	}
	return nil
}

// UndoAll reverts and removes every command.
func (s *Stack) UndoAll() {
	for len(s.cmds) > 0 {
		s.pop()
	}
	s.backtrack = domain.NullCommandID
}

// Current returns the id of the top command, or NullCommandID.
func (s *Stack) Current() domain.CommandID {
	if top := s.Top(); top != nil {
		return top.id
	}
	return domain.NullCommandID
}

// Top returns the top command, or nil.
func (s *Stack) Top() *Command {
	if len(s.cmds) == 0 {
		return nil
	}
	return s.cmds[len(s.cmds)-1]
}

// Len returns the number of commands on the stack.
func (s *Stack) Len() int { return len(s.cmds) }

// Commands returns the commands from bottom to top.
func (s *Stack) Commands() []*Command {
	out := make([]*Command, len(s.cmds))
	copy(out, s.cmds)
	return out
}

// SetBacktrack marks the command search should unwind to before trying
// further alternatives.
func (s *Stack) SetBacktrack(id domain.CommandID) { s.backtrack = id }

// Backtrack returns the pending backtrack point, or NullCommandID.
func (s *Stack) Backtrack() domain.CommandID { return s.backtrack }

// Tried returns how many alternatives have been attempted.
func (s *Stack) Tried() int { return s.tried }

// BudgetExhausted reports whether the stack refuses to try more alternatives.
func (s *Stack) BudgetExhausted() bool {
	return s.budget > 0 && s.tried >= s.budget
}

// ResetBudget restarts the alternative count with a new bound.
func (s *Stack) ResetBudget(n int) {
	s.budget = n
	s.tried = 0
}

// Search runs a depth-first trial of c's alternatives. After each applied
// alternative descend is called; Search returns true at the first success
// and leaves c applied. On exhaustion c is undone and removed, leaving the
// stack as it was before the call.
//
// When a descendant set a backtrack point below c, c is abandoned without
// trying its remaining alternatives.
func (s *Stack) Search(c *Command, descend func() bool) bool {
	id := s.Add(c)
	for {
		ok, err := s.TryNext(id)
		if err != nil || !ok {
			_ = s.UndoThrough(id)
			return false
		}
		if descend() {
			return true
		}
		s.unwindAbove(id)

		if bt := s.backtrack; bt != domain.NullCommandID {
			if bt < id {
				s.log.Debug("backjumping", "from", int(id), "to", int(bt))
				_ = s.UndoThrough(id)
				return false
			}
			s.backtrack = domain.NullCommandID
		}
	}
}

func (s *Stack) allow(_ *Command) bool {
	return !s.BudgetExhausted()
}

func (s *Stack) noteTried(c *Command, ok bool) {
	s.tried++
	if s.observer != nil {
		s.observer.CommandTried(c.kind, ok)
	}
}

func (s *Stack) pop() {
	top := s.cmds[len(s.cmds)-1]
	top.revert()
	top.state = Undone
	s.cmds = s.cmds[:len(s.cmds)-1]
	if s.observer != nil {
		s.observer.CommandUndone(top.kind)
	}
}

func (s *Stack) unwindAbove(id domain.CommandID) {
	for len(s.cmds) > 0 && s.Top().id != id {
		s.pop()
	}
}

func (s *Stack) indexOf(id domain.CommandID) int {
	for i := len(s.cmds) - 1; i >= 0; i-- {
		if s.cmds[i].id == id {
			return i
		}
	}
	return -1
}
