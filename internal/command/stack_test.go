package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/plansched/internal/domain"
	perrors "github.com/felixgeelhaar/plansched/internal/errors"
)

// ledger is a tiny mutable state commands can apply to and revert.
type ledger struct {
	entries []string
}

func (l *ledger) push(v string) func() (func(), bool) {
	return func() (func(), bool) {
		l.entries = append(l.entries, v)
		return func() { l.entries = l.entries[:len(l.entries)-1] }, true
	}
}

func infeasible() (func(), bool) { return nil, false }

func (l *ledger) cmd(label string, values ...string) *Command {
	alts := make([]Alternative, 0, len(values))
	for _, v := range values {
		if v == "" {
			alts = append(alts, Alternative{Label: "infeasible", Apply: infeasible})
			continue
		}
		alts = append(alts, Alternative{Label: v, Apply: l.push(v)})
	}
	return New(AddInstance, label, alts...)
}

func TestExecuteAppliesFirstFeasibleAlternative(t *testing.T) {
	l := &ledger{}
	s := NewStack()

	c := l.cmd("c", "", "b", "c")
	require.True(t, s.Execute(c))

	assert.Equal(t, []string{"b"}, l.entries)
	assert.Equal(t, Executed, c.State())
	assert.Equal(t, c.ID(), s.Current())
	applied, ok := c.Applied()
	assert.True(t, ok)
	assert.Equal(t, "b", applied)
}

func TestAddDoesNotExecute(t *testing.T) {
	l := &ledger{}
	s := NewStack()

	id := s.Add(l.cmd("c", "a"))
	assert.Empty(t, l.entries)
	assert.Equal(t, id, s.Current())
	assert.Equal(t, Pending, s.Top().State())
}

func TestTryNextCyclesAndExhaustsIdempotently(t *testing.T) {
	l := &ledger{entries: []string{"base"}}
	s := NewStack()
	c := l.cmd("c", "a", "", "b")
	id := s.Add(c)

	var seen []string
	for {
		ok, err := s.TryNext(id)
		require.NoError(t, err)
		if !ok {
			break
		}
		seen = append(seen, l.entries[len(l.entries)-1])
	}

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []string{"base"}, l.entries, "exhaustion restores the state before the command")
	assert.Equal(t, Undone, c.State())

	ok, err := s.TryNext(id)
	require.NoError(t, err)
	assert.False(t, ok, "exhausted command stays exhausted")
	assert.Equal(t, []string{"base"}, l.entries)
}

func TestTryNextRejectsNonTopCommand(t *testing.T) {
	l := &ledger{}
	s := NewStack()
	first := s.Add(l.cmd("first", "a", "b"))
	_, _ = s.TryNext(first)
	second := s.Add(l.cmd("second", "c"))
	_, _ = s.TryNext(second)

	before := append([]string(nil), l.entries...)
	ok, err := s.TryNext(first)
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrInvalidCommand))
	assert.Equal(t, before, l.entries)
	assert.Equal(t, second, s.Current())
}

func TestUndoRequiresTop(t *testing.T) {
	l := &ledger{}
	s := NewStack()
	first := l.cmd("first", "a")
	second := l.cmd("second", "b")
	require.True(t, s.Execute(first))
	require.True(t, s.Execute(second))

	err := s.Undo(first.ID())
	require.Error(t, err)
	assert.True(t, perrors.HasCode(err, perrors.ErrCodeInvalidCommand))
	assert.Equal(t, []string{"a", "b"}, l.entries)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Undo(second.ID()))
	require.NoError(t, s.Undo(first.ID()))
	assert.Empty(t, l.entries)
	assert.Equal(t, domain.NullCommandID, s.Current())
}

func TestUndoThrough(t *testing.T) {
	l := &ledger{}
	s := NewStack()
	var ids []domain.CommandID
	for i := 0; i < 4; i++ {
		c := l.cmd(fmt.Sprintf("c%d", i), fmt.Sprintf("v%d", i))
		require.True(t, s.Execute(c))
		ids = append(ids, c.ID())
	}

	t.Run("unknown id leaves stack unchanged", func(t *testing.T) {
		err := s.UndoThrough(domain.CommandID(99))
		require.Error(t, err)
		assert.True(t, errors.Is(err, perrors.ErrInvalidCommand))
		assert.Equal(t, 4, s.Len())
		assert.Len(t, l.entries, 4)
	})

	t.Run("pops through the requested command", func(t *testing.T) {
		require.NoError(t, s.UndoThrough(ids[1]))
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, []string{"v0"}, l.entries)
		assert.Equal(t, ids[0], s.Current())
	})
}

func TestSearchBacktracksDepthFirst(t *testing.T) {
	l := &ledger{}
	s := NewStack()

	// Accept only the combination a2/b1.
	var descend func(depth int) bool
	descend = func(depth int) bool {
		switch depth {
		case 0:
			return s.Search(l.cmd("a", "a1", "a2"), func() bool { return descend(1) })
		case 1:
			return s.Search(l.cmd("b", "b1", "b2"), func() bool { return descend(2) })
		default:
			return l.entries[0] == "a2" && l.entries[1] == "b1"
		}
	}

	require.True(t, descend(0))
	assert.Equal(t, []string{"a2", "b1"}, l.entries)
	assert.Equal(t, 2, s.Len())
}

func TestSearchFailureRestoresStack(t *testing.T) {
	l := &ledger{entries: []string{"keep"}}
	s := NewStack()

	ok := s.Search(l.cmd("a", "a1", "a2"), func() bool {
		return s.Search(l.cmd("b", "b1"), func() bool { return false })
	})

	assert.False(t, ok)
	assert.Equal(t, []string{"keep"}, l.entries)
	assert.Equal(t, 0, s.Len())
}

func TestSearchBackjumpsToMarkedCommand(t *testing.T) {
	l := &ledger{}
	s := NewStack()
	var midTries int

	ok := s.Search(l.cmd("outer", "o1", "o2"), func() bool {
		outer := s.Top().ID()
		return s.Search(l.cmd("mid", "m1", "m2", "m3"), func() bool {
			midTries++
			if l.entries[0] == "o2" {
				return true
			}
			s.SetBacktrack(outer)
			return false
		})
	})

	require.True(t, ok)
	assert.Equal(t, 2, midTries, "backjump skips remaining mid alternatives under o1")
	assert.Equal(t, []string{"o2", "m1"}, l.entries)
	assert.Equal(t, domain.NullCommandID, s.Backtrack())
}

func TestBudgetStopsSearch(t *testing.T) {
	l := &ledger{}
	s := NewStack(WithBudget(3))

	ok := s.Search(l.cmd("a", "a1", "a2", "a3", "a4"), func() bool { return false })
	assert.False(t, ok)
	assert.Equal(t, 3, s.Tried())
	assert.True(t, s.BudgetExhausted())
	assert.Empty(t, l.entries)

	s.ResetBudget(0)
	assert.False(t, s.BudgetExhausted())
}

type countingObserver struct {
	tried, failed, undone int
}

func (o *countingObserver) CommandTried(_ Kind, ok bool) {
	o.tried++
	if !ok {
		o.failed++
	}
}

func (o *countingObserver) CommandUndone(Kind) { o.undone++ }

func TestObserverAndUndoAll(t *testing.T) {
	l := &ledger{}
	obs := &countingObserver{}
	s := NewStack(WithObserver(obs))

	require.True(t, s.Execute(l.cmd("a", "", "a")))
	require.True(t, s.Execute(l.cmd("b", "b")))
	s.SetBacktrack(domain.CommandID(1))
	s.UndoAll()

	assert.Equal(t, 3, obs.tried)
	assert.Equal(t, 1, obs.failed)
	assert.Equal(t, 2, obs.undone)
	assert.Empty(t, l.entries)
	assert.Equal(t, domain.NullCommandID, s.Backtrack())
}

func TestKindAndStateStrings(t *testing.T) {
	assert.Equal(t, "add_instance", AddInstance.String())
	assert.Equal(t, "add_ordering", AddOrdering.String())
	assert.Equal(t, "add_causal_link", AddCausalLink.String())
	assert.Equal(t, "bind_resource", BindResource.String())
	assert.Equal(t, "tighten_window", TightenWindow.String())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "pending", Pending.String())
	assert.Contains(t, New(AddOrdering, "x").String(), "add_ordering(x)")
}
