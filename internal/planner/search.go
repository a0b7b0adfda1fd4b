package planner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/plan"
	"github.com/felixgeelhaar/plansched/internal/telemetry"
	"github.com/felixgeelhaar/plansched/internal/threat"
)

// Plan searches for a plan achieving goal after running saSteps steps of
// spreading activation. On success the plan is committed and the output
// adapters are notified. Exhausting the search space returns false with a
// nil error and leaves the previously committed plan in place; the only
// error is a planner used before SetObjects.
func (p *Planner) Plan(ctx context.Context, saSteps int, goal domain.Goal) (bool, error) {
	return p.run(ctx, "plan", saSteps, goal.Clone())
}

// Replan plans for a new goal from scratch.
func (p *Planner) Replan(ctx context.Context, saSteps int, goal domain.Goal) (bool, error) {
	return p.run(ctx, "replan", saSteps, goal.Clone())
}

// ReplanCurrent replans for the current goal. When the working plan still
// holds (every condition taken from the initial state still meets the
// threshold and no link is threatened under the current effects) it is
// only rescheduled; otherwise the search starts over.
func (p *Planner) ReplanCurrent(ctx context.Context, saSteps int) (bool, error) {
	if !p.wired() {
		return false, errors.NewNotWiredError()
	}
	if p.live && p.stillValid() {
		p.log.DebugContext(ctx, "working plan still valid, rescheduling")
		return p.reschedule(ctx)
	}
	return p.run(ctx, "replan", saSteps, p.goal.Clone())
}

func (p *Planner) run(ctx context.Context, op string, saSteps int, goal domain.Goal) (bool, error) {
	if !p.wired() {
		p.log.ErrorContext(ctx, "planning before SetObjects", "operation", op)
		return false, errors.NewNotWiredError()
	}

	runID := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, runID)
	ctx, span := telemetry.StartSearchSpan(ctx, op, runID)
	defer span.End()
	logger := p.log.WithContext(ctx)
	start := time.Now()

	p.goal = goal
	p.net.SetGoals(goal.Conditions)
	p.net.Step(saSteps)
	p.eval.Observe(p.net.TaskEUs())

	p.stack.UndoAll()
	p.stack.ResetBudget(p.maxDecisions)
	p.wp.Reset(goal)
	p.threats = nil
	p.live = false

	logger.Info("planning", "operation", op, "goal", goal.ID, "conditions", len(goal.Conditions), "sa_steps", saSteps)

	ok := p.RecursePlan()
	elapsed := time.Since(start)
	telemetry.RecordDuration(span, "search", elapsed)
	if p.metrics != nil {
		p.metrics.RecordSearch(op, ok, elapsed)
	}

	if !ok {
		p.refreshThreats()
		if p.stack.BudgetExhausted() {
			logger.Warn("decision budget exhausted", "tried", p.stack.Tried())
			if p.metrics != nil {
				p.metrics.RecordBudgetExhausted()
			}
		}
		logger.Info("no plan found", "operation", op, "tried", p.stack.Tried(), "duration", elapsed)
		telemetry.RecordNoPlan(span, p.stack.Tried())
		return false, nil
	}

	p.commit(ctx, runID)
	telemetry.RecordSuccess(span)
	telemetry.RecordMetrics(span, map[string]int64{
		"instances": int64(p.wp.InstCount()),
		"decisions": int64(p.stack.Tried()),
	})
	logger.Info("plan found", "operation", op, "instances", p.wp.InstCount(), "eu", p.committed.EU, "tried", p.stack.Tried(), "duration", elapsed)
	return true, nil
}

func (p *Planner) reschedule(ctx context.Context) (bool, error) {
	runID := uuid.NewString()
	ctx = log.ContextWithRunID(ctx, runID)
	ctx, span := telemetry.StartSearchSpan(ctx, "full_sched", runID)
	defer span.End()
	start := time.Now()

	p.stack.ResetBudget(p.maxDecisions)
	ok := p.FullSched()
	if p.metrics != nil {
		p.metrics.RecordSearch("full_sched", ok, time.Since(start))
	}
	if !ok {
		p.refreshThreats()
		telemetry.RecordNoPlan(span, p.stack.Tried())
		p.log.InfoContext(ctx, "rescheduling failed")
		return false, nil
	}
	p.commit(ctx, runID)
	telemetry.RecordSuccess(span)
	return true, nil
}

// stillValid reports whether the working plan survives the current
// condition values and effects.
func (p *Planner) stillValid() bool {
	for _, l := range p.wp.CausalLinks() {
		if l.First == domain.InitInstID && !p.holdsInitially(l.Cond) {
			return false
		}
		if l.First.Valid() && !p.produces(p.wp.TaskFromInst(l.First), l.Cond) {
			return false
		}
	}
	p.refreshThreats()
	return len(p.threats) == 0
}

// RecursePlan resolves the next threat or open condition and descends.
// With neither left it runs the final scheduling check.
func (p *Planner) RecursePlan() bool {
	p.refreshThreats()
	if t, ok := p.planStrat.ChooseThreat(p.threats); ok {
		p.log.Debug("resolving threat", "threat", t.String())
		alts := p.planStrat.OrderResolutions(t, threat.Resolutions(t))
		return p.stack.Search(p.wp.AddOrderingCommand(domain.OriginCausal, t.String(), alts), p.RecursePlan)
	}

	oc, ok := p.planStrat.ChooseOpenCond(p.wp.OpenConds())
	if !ok {
		return p.RecurseSched(domain.NullTaskInstID)
	}

	cands := p.planStrat.OrderProducers(oc, p.candidates(oc))
	p.log.Debug("supporting open condition", "cond", oc.String(), "candidates", len(cands))
	return p.stack.Search(p.wp.AddInstanceCommand(oc, cands), func() bool {
		return p.RecurseSched(p.wp.ProducerOf(oc))
	})
}

// RecurseSched schedules after inst was added or linked and continues
// planning. NullTaskInstID asks for the final check of a causally
// complete plan.
func (p *Planner) RecurseSched(inst domain.TaskInstID) bool {
	if inst == domain.NullTaskInstID {
		return p.sched.Recurse(inst, nil)
	}
	return p.sched.Recurse(inst, p.RecursePlan)
}

// FullSched schedules the working plan without changing its causal
// structure.
func (p *Planner) FullSched() bool {
	return p.sched.Full()
}

// candidates lists the producers that may support oc: the initial state,
// existing instances, then new instances while the instance limit allows.
func (p *Planner) candidates(oc domain.OpenCond) []domain.Producer {
	var out []domain.Producer
	if p.holdsInitially(oc.Cond) {
		out = append(out, domain.Producer{Kind: domain.FromInit, Inst: domain.InitInstID, Task: domain.InitTaskID})
	}

	tasks := p.net.SatisfyingTasks(oc.Cond)
	for _, task := range tasks {
		if !p.produces(task, oc.Cond) {
			continue
		}
		for _, inst := range p.wp.Reusable(task) {
			if inst == oc.Inst {
				continue
			}
			out = append(out, domain.Producer{Kind: domain.Reuse, Inst: inst, Task: task, EU: p.net.Query(task)})
		}
	}

	if p.wp.InstCount() >= p.maxInstances {
		return out
	}
	for _, task := range tasks {
		if p.produces(task, oc.Cond) {
			out = append(out, domain.Producer{Kind: domain.NewInst, Inst: domain.NullTaskInstID, Task: task, EU: p.net.Query(task)})
		}
	}
	return out
}

func (p *Planner) holdsInitially(c domain.Condition) bool {
	return domain.ProbOf(p.net.CondVal(c.ID), c.Value) >= p.thresh
}

func (p *Planner) produces(task domain.TaskID, c domain.Condition) bool {
	return domain.WeightProb(p.net.EffectProb(task, c.ID), c.Value) >= p.thresh
}

func (p *Planner) refreshThreats() {
	p.threats = threat.Generate(p.wp, p.net, p.thresh)
	if p.metrics != nil && len(p.threats) > 0 {
		p.metrics.RecordThreats(len(p.threats))
	}
}

// commit snapshots the working plan and notifies the adapters.
func (p *Planner) commit(ctx context.Context, runID string) {
	snap := p.snapshot(runID)
	p.committed = snap
	p.live = true
	if p.metrics != nil {
		p.metrics.RecordPlan(len(snap.Tasks), snap.EU)
	}
	p.notify(ctx, snap)
}

// notify hands every adapter its own copy of snap.
func (p *Planner) notify(ctx context.Context, snap *plan.Plan) {
	for _, a := range p.adapters {
		name := adapterName(a)
		actx, span := telemetry.StartAdapterSpan(ctx, name)
		err := a.PlanChanged(actx, snap.Clone())
		if err != nil {
			telemetry.RecordError(span, err)
			p.log.WithContext(ctx).WithError(err).Warn("output adapter failed", "adapter", name)
		}
		span.End()
		if p.metrics != nil {
			p.metrics.RecordNotification(name, err)
		}
	}
}
