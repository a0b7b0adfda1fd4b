package schedule

import (
	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

// DefaultHorizon is the latest finish time when none is configured.
const DefaultHorizon domain.TimeValue = 1000

// Catalog is the implementation catalog the scheduler binds from.
type Catalog interface {
	Resources
	AllImpls(task domain.TaskID) []domain.TaskImplID
	Duration(impl domain.TaskImplID) domain.TimeValue
	Cost(impl domain.TaskImplID) domain.Utility
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHorizon sets the latest finish time of any instance.
func WithHorizon(h domain.TimeValue) Option {
	return func(s *Scheduler) { s.horizon = h }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.log = l.WithComponent("schedule") }
}

// WithConflictObserver registers f to be called for every resource
// conflict the scheduler starts resolving.
func WithConflictObserver(f func(domain.Conflict)) Option {
	return func(s *Scheduler) { s.onConflict = f }
}

// Scheduler runs the scheduling part of the search on a working plan.
type Scheduler struct {
	plan     *workplan.WorkingPlan
	stack    *command.Stack
	cat      Catalog
	strategy strategy.SchedStrategy
	horizon  domain.TimeValue
	log      *log.Logger

	onConflict func(domain.Conflict)
}

// New creates a scheduler sharing stack with the planner.
func New(plan *workplan.WorkingPlan, stack *command.Stack, cat Catalog, strat strategy.SchedStrategy, opts ...Option) *Scheduler {
	s := &Scheduler{
		plan:     plan,
		stack:    stack,
		cat:      cat,
		strategy: strat,
		horizon:  DefaultHorizon,
		log:      log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Horizon returns the latest finish time.
func (s *Scheduler) Horizon() domain.TimeValue { return s.horizon }

// Recurse schedules after inst was added or linked: it binds inst if
// needed, tightens windows, resolves resource conflicts and then calls
// next. A nil next ends the search successfully once the schedule is
// feasible. It returns false, with every command it pushed undone, when
// no combination of its decisions lets next succeed.
func (s *Scheduler) Recurse(inst domain.TaskInstID, next func() bool) bool {
	if inst.Valid() && s.needsBinding(inst) {
		return s.stack.Search(s.bindCommand(inst), func() bool { return s.settle(next) })
	}
	return s.settle(next)
}

// Full schedules a plan whose causal structure is fixed. It binds every
// unbound instance and resolves all conflicts without calling back into
// planning.
func (s *Scheduler) Full() bool {
	var unbound []domain.TaskInstID
	for _, id := range s.plan.AllInsts() {
		if s.needsBinding(id) {
			unbound = append(unbound, id)
		}
	}
	return s.bindAll(unbound, func() bool { return s.settle(nil) })
}

func (s *Scheduler) bindAll(insts []domain.TaskInstID, next func() bool) bool {
	if len(insts) == 0 {
		return next()
	}
	return s.stack.Search(s.bindCommand(insts[0]), func() bool { return s.bindAll(insts[1:], next) })
}

// needsBinding reports whether inst is unbound and has something to bind to.
// Tasks without implementations stay unbound and take no time.
func (s *Scheduler) needsBinding(inst domain.TaskInstID) bool {
	if s.plan.ImplID(inst) != domain.NullTaskImplID {
		return false
	}
	return len(s.cat.AllImpls(s.plan.TaskFromInst(inst))) > 0
}

func (s *Scheduler) bindCommand(inst domain.TaskInstID) *command.Command {
	ids := s.cat.AllImpls(s.plan.TaskFromInst(inst))
	opts := make([]strategy.ImplOption, 0, len(ids))
	for _, id := range ids {
		opts = append(opts, strategy.ImplOption{ID: id, Duration: s.cat.Duration(id), Cost: s.cat.Cost(id)})
	}
	return s.plan.BindResourceCommand(inst, s.strategy.OrderImpls(inst, opts))
}

// settle tightens windows and resolves resource conflicts one at a time.
func (s *Scheduler) settle(next func() bool) bool {
	target := Propagate(s.plan, s.horizon)
	return s.stack.Search(s.plan.TightenWindowCommand(target), func() bool {
		c, found := s.strategy.ChooseConflict(Conflicts(s.plan, s.cat))
		if !found {
			if next == nil {
				return true
			}
			return next()
		}
		s.log.Debug("resource conflict", "resource", string(c.Resource), "at", c.At, "usage", c.Usage, "capacity", c.Capacity)
		if s.onConflict != nil {
			s.onConflict(c)
		}
		alts := s.strategy.OrderConflictResolutions(c, Resolutions(c))
		return s.stack.Search(s.plan.AddOrderingCommand(domain.OriginSched, c.String(), alts), func() bool {
			return s.settle(next)
		})
	})
}
