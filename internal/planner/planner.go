// Package planner integrates causal-link planning with resource and time
// scheduling.
//
// A Planner owns the working plan, the command stack and the threat set of
// one search. Every decision (adding an instance, ordering two instances,
// binding an implementation, tightening windows) is a command on the stack,
// so planning and scheduling backtrack together. A successful search is
// committed as an immutable plan.Plan and broadcast to the registered output
// adapters.
//
// A Planner is not safe for concurrent use; callers serialize all calls.
package planner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/plansched/internal/catalog"
	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/metrics"
	"github.com/felixgeelhaar/plansched/internal/plan"
	"github.com/felixgeelhaar/plansched/internal/schedule"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/utility"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

// Defaults used when no option overrides them.
const (
	DefaultThreshold    domain.Probability = 0.9
	DefaultMaxDecisions                    = 20000
	DefaultMaxInstances                    = 64
)

// Network is the spreading-activation task network the planner consults.
type Network interface {
	SetGoals(goals domain.GoalMap)
	Step(k int)
	Query(task domain.TaskID) domain.Utility
	TaskEUs() domain.TaskEUMap

	TaskName(task domain.TaskID) string
	CondName(cond domain.CondID) string
	CondKind(cond domain.CondID) domain.CondKind
	CondVal(cond domain.CondID) domain.Probability
	SetCondVal(cond domain.CondID, prob domain.Probability)

	Preconds(task domain.TaskID) []domain.Condition
	Effects(task domain.TaskID) domain.CondSet
	EffectProb(task domain.TaskID, cond domain.CondID) domain.LinkWeight
	SatisfyingTasks(cond domain.Condition) []domain.TaskID
	ClinkPorts(producer domain.TaskID, cond domain.CondID, consumer domain.TaskID) domain.LinkPorts
	UpdateEffect(task domain.TaskID, cond domain.CondID, weight domain.LinkWeight)

	Print(w io.Writer, verbose bool) error
	Graphviz(w io.Writer, graphmap map[string]string) error
}

// TaskMap is the task implementation and resource catalog.
type TaskMap interface {
	schedule.Catalog
	Impl(id domain.TaskImplID) (catalog.Impl, error)
	ResourceUsage(impl domain.TaskImplID, res domain.ResourceID) domain.ResourceValue
}

// OutAdapter is notified once per successful plan or replan.
type OutAdapter interface {
	PlanChanged(ctx context.Context, p plan.Plan) error
}

// Option configures a Planner.
type Option func(*Planner)

// WithThreshold sets the probability a condition must reach to be relied on.
func WithThreshold(p domain.Probability) Option {
	return func(pl *Planner) { pl.thresh = p }
}

// WithMaxDecisions bounds the command alternatives tried per search.
// Zero means unbounded.
func WithMaxDecisions(n int) Option {
	return func(pl *Planner) { pl.maxDecisions = n }
}

// WithMaxInstances bounds the number of task instances in a plan.
func WithMaxInstances(n int) Option {
	return func(pl *Planner) { pl.maxInstances = n }
}

// WithHorizon sets the latest finish time of any instance.
func WithHorizon(h domain.TimeValue) Option {
	return func(pl *Planner) { pl.horizon = h }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(pl *Planner) { pl.log = l.WithComponent("planner") }
}

// WithMetrics records search activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(pl *Planner) { pl.metrics = m }
}

// WithClock sets the clock used to stamp committed plans.
func WithClock(now func() time.Time) Option {
	return func(pl *Planner) { pl.now = now }
}

// Planner runs plan/replan searches.
type Planner struct {
	net        Network
	planStrat  strategy.PlanStrategy
	schedStrat strategy.SchedStrategy
	wp         *workplan.WorkingPlan
	tasks      TaskMap

	stack   *command.Stack
	sched   *schedule.Scheduler
	eval    *utility.Evaluator
	threats []domain.Threat

	goal      domain.Goal
	committed *plan.Plan
	adapters  []OutAdapter

	// live is set while the working plan is the committed plan.
	live bool

	thresh       domain.Probability
	maxDecisions int
	maxInstances int
	horizon      domain.TimeValue

	log     *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a planner. SetObjects must be called before planning.
func New(opts ...Option) *Planner {
	p := &Planner{
		thresh:       DefaultThreshold,
		maxDecisions: DefaultMaxDecisions,
		maxInstances: DefaultMaxInstances,
		horizon:      schedule.DefaultHorizon,
		log:          log.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetObjects wires the planner to its collaborators. The working plan
// becomes exclusively owned by the planner; the others are borrowed.
func (p *Planner) SetObjects(net Network, ps strategy.PlanStrategy, ss strategy.SchedStrategy, wp *workplan.WorkingPlan, tasks TaskMap) {
	p.net = net
	p.planStrat = ps
	p.schedStrat = ss
	p.wp = wp
	p.tasks = tasks

	stackOpts := []command.Option{
		command.WithBudget(p.maxDecisions),
		command.WithLogger(p.log),
	}
	schedOpts := []schedule.Option{
		schedule.WithHorizon(p.horizon),
		schedule.WithLogger(p.log),
	}
	if p.metrics != nil {
		stackOpts = append(stackOpts, command.WithObserver(p.metrics))
		schedOpts = append(schedOpts, schedule.WithConflictObserver(p.metrics.RecordConflict))
	}
	p.stack = command.NewStack(stackOpts...)
	p.sched = schedule.New(wp, p.stack, tasks, ss, schedOpts...)
	p.eval = utility.NewEvaluator(net, tasks)
	p.threats = nil
	p.live = false
}

func (p *Planner) wired() bool {
	return p.net != nil && p.planStrat != nil && p.schedStrat != nil && p.wp != nil && p.tasks != nil
}

// Threshold returns the probability a condition must reach to be relied on.
func (p *Planner) Threshold() domain.Probability { return p.thresh }

// AddOutAdapter registers a. Registering the same adapter twice has no
// effect.
func (p *Planner) AddOutAdapter(a OutAdapter) {
	for _, cur := range p.adapters {
		if cur == a {
			return
		}
	}
	p.adapters = append(p.adapters, a)
}

// RemoveOutAdapter unregisters a. Unknown adapters are ignored.
func (p *Planner) RemoveOutAdapter(a OutAdapter) {
	for i, cur := range p.adapters {
		if cur == a {
			p.adapters = append(p.adapters[:i], p.adapters[i+1:]...)
			return
		}
	}
}

// OutAdapters returns the registered adapters in registration order.
func (p *Planner) OutAdapters() []OutAdapter {
	return append([]OutAdapter(nil), p.adapters...)
}

// adapterName labels a for logs and metrics.
func adapterName(a OutAdapter) string {
	if n, ok := a.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", a)
}
