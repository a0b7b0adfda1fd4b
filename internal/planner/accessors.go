package planner

import (
	"io"

	"github.com/felixgeelhaar/plansched/internal/catalog"
	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/plan"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

// Queries made before SetObjects return the same sentinels as queries on
// unknown ids; mutators return false or ErrCodeNotWired.

// GetPlan returns a copy of the last committed plan. It is empty until a
// search succeeds and is left untouched by failed searches.
func (p *Planner) GetPlan() plan.Plan {
	if p.committed == nil {
		return plan.Plan{}
	}
	return p.committed.Clone()
}

// CalcPlanEU returns the expected utility of pl under the current
// condition values.
func (p *Planner) CalcPlanEU(pl *plan.Plan) domain.Utility {
	if !p.wired() {
		return 0
	}
	return p.eval.PlanEU(pl)
}

// GetEUChanges returns the task utilities that changed since the previous
// call.
func (p *Planner) GetEUChanges() domain.TaskEUMap {
	if !p.wired() {
		return domain.TaskEUMap{}
	}
	p.eval.Observe(p.net.TaskEUs())
	return p.eval.Changes()
}

// TaskSAEU returns the spreading-activation utility estimate of task.
func (p *Planner) TaskSAEU(task domain.TaskID) domain.Utility {
	if !p.wired() {
		return 0
	}
	return p.net.Query(task)
}

// Goals returns the current goal conditions.
func (p *Planner) Goals() domain.GoalMap {
	return p.goal.Clone().Conditions
}

// Goal returns the current goal.
func (p *Planner) Goal() domain.Goal {
	return p.goal.Clone()
}

// UpdateCondVal sets the probability that cond currently holds. Links the
// working plan takes from the initial state are rechecked on the next
// ReplanCurrent. It does nothing before SetObjects.
func (p *Planner) UpdateCondVal(cond domain.CondID, prob domain.Probability) {
	if !p.wired() {
		return
	}
	p.net.SetCondVal(cond, prob)
	p.eval.Invalidate()
	p.refreshThreats()
	p.log.Debug("condition updated", "cond", int(cond), "prob", prob)
}

// UpdateEffect changes the weight of task's effect on cond. It does
// nothing before SetObjects.
func (p *Planner) UpdateEffect(task domain.TaskID, cond domain.CondID, weight domain.LinkWeight) {
	if !p.wired() {
		return
	}
	p.net.UpdateEffect(task, cond, weight)
	p.eval.Invalidate()
	p.refreshThreats()
	p.log.Debug("effect updated", "task", int(task), "cond", int(cond), "weight", weight)
}

// AllThreats returns the threats of the working plan as of the last
// structural change.
func (p *Planner) AllThreats() []domain.Threat {
	return append([]domain.Threat(nil), p.threats...)
}

// WorkingPlan returns the working plan, for building commands. It is nil
// before SetObjects.
func (p *Planner) WorkingPlan() *workplan.WorkingPlan { return p.wp }

// Network projections.

// TaskName returns the name of task, or "".
func (p *Planner) TaskName(task domain.TaskID) string {
	if !p.wired() {
		return ""
	}
	return p.net.TaskName(task)
}

// CondName returns the name of cond, or "".
func (p *Planner) CondName(cond domain.CondID) string {
	if !p.wired() {
		return ""
	}
	return p.net.CondName(cond)
}

// CondKind returns the kind of cond, or CondUnknown.
func (p *Planner) CondKind(cond domain.CondID) domain.CondKind {
	if !p.wired() {
		return domain.CondUnknown
	}
	return p.net.CondKind(cond)
}

// CondVal returns the probability that cond currently holds.
func (p *Planner) CondVal(cond domain.CondID) domain.Probability {
	if !p.wired() {
		return 0
	}
	return p.net.CondVal(cond)
}

// Preconds returns the preconditions of task.
func (p *Planner) Preconds(task domain.TaskID) []domain.Condition {
	if !p.wired() {
		return nil
	}
	return p.net.Preconds(task)
}

// Effects returns the conditions task has an effect on.
func (p *Planner) Effects(task domain.TaskID) domain.CondSet {
	if !p.wired() {
		return domain.CondSet{}
	}
	return p.net.Effects(task)
}

// EffectProb returns the signed weight of task's effect on cond.
func (p *Planner) EffectProb(task domain.TaskID, cond domain.CondID) domain.LinkWeight {
	if !p.wired() {
		return 0
	}
	return p.net.EffectProb(task, cond)
}

// SatisfyingTasks returns the tasks with an effect towards cond.
func (p *Planner) SatisfyingTasks(cond domain.Condition) []domain.TaskID {
	if !p.wired() {
		return nil
	}
	return p.net.SatisfyingTasks(cond)
}

// ClinkPorts returns the ports a causal link from producer to consumer
// over cond connects.
func (p *Planner) ClinkPorts(producer domain.TaskID, cond domain.CondID, consumer domain.TaskID) domain.LinkPorts {
	if !p.wired() {
		return domain.LinkPorts{}
	}
	return p.net.ClinkPorts(producer, cond, consumer)
}

// UnsatisfiedPreconds returns the preconditions of inst no causal link
// supports yet.
func (p *Planner) UnsatisfiedPreconds(inst domain.TaskInstID) []domain.Condition {
	if !p.wired() {
		return nil
	}
	var out []domain.Condition
	for _, oc := range p.wp.OpenConds() {
		if oc.Inst == inst {
			out = append(out, oc.Cond)
		}
	}
	domain.SortConditions(out)
	return out
}

// Working plan projections.

// AllInsts returns every task instance in id order.
func (p *Planner) AllInsts() []domain.TaskInstID {
	if !p.wired() {
		return nil
	}
	return p.wp.AllInsts()
}

// InstExists returns the lowest-id instance of task bound to impl.
func (p *Planner) InstExists(task domain.TaskID, impl domain.TaskImplID) (domain.TaskInstID, bool) {
	if !p.wired() {
		return domain.NullTaskInstID, false
	}
	return p.wp.InstExists(task, impl)
}

// TaskFromInst returns the task inst is an occurrence of.
func (p *Planner) TaskFromInst(inst domain.TaskInstID) domain.TaskID {
	if !p.wired() {
		return domain.NullTaskID
	}
	return p.wp.TaskFromInst(inst)
}

// ImplID returns the implementation bound to inst, or NullTaskImplID.
func (p *Planner) ImplID(inst domain.TaskInstID) domain.TaskImplID {
	if !p.wired() {
		return domain.NullTaskImplID
	}
	return p.wp.ImplID(inst)
}

// TaskImplFromInst is ImplID.
func (p *Planner) TaskImplFromInst(inst domain.TaskInstID) domain.TaskImplID {
	return p.ImplID(inst)
}

// PrecInsts returns the instances related to inst by rel.
func (p *Planner) PrecInsts(inst domain.TaskInstID, rel domain.PrecedenceRelation) domain.TaskInstSet {
	if !p.wired() {
		return domain.TaskInstSet{}
	}
	return p.wp.PrecInsts(inst, rel)
}

// BeforeOrderings returns every instance ordered before inst.
func (p *Planner) BeforeOrderings(inst domain.TaskInstID) domain.TaskInstSet {
	if !p.wired() {
		return domain.TaskInstSet{}
	}
	return p.wp.BeforeOrderings(inst)
}

// AfterOrderings returns every instance ordered after inst.
func (p *Planner) AfterOrderings(inst domain.TaskInstID) domain.TaskInstSet {
	if !p.wired() {
		return domain.TaskInstSet{}
	}
	return p.wp.AfterOrderings(inst)
}

// StartWindow returns the start window of inst, or NullWindow.
func (p *Planner) StartWindow(inst domain.TaskInstID) domain.TimeWindow {
	if !p.wired() {
		return domain.NullWindow
	}
	return p.wp.StartWindow(inst)
}

// EndWindow returns the end window of inst, or NullWindow.
func (p *Planner) EndWindow(inst domain.TaskInstID) domain.TimeWindow {
	if !p.wired() {
		return domain.NullWindow
	}
	return p.wp.EndWindow(inst)
}

// Duration returns the duration of inst; unbound instances take no time.
func (p *Planner) Duration(inst domain.TaskInstID) domain.TimeValue {
	if !p.wired() {
		return 0
	}
	return p.wp.Duration(inst)
}

// Resources returns the resource usage of inst's implementation, empty
// while inst is unbound.
func (p *Planner) Resources(inst domain.TaskInstID) domain.ResourceMap {
	impl := p.ImplID(inst)
	if impl == domain.NullTaskImplID {
		return domain.ResourceMap{}
	}
	return p.tasks.AllResources(impl)
}

// Catalog projections.

// Capacity returns the capacity of res; zero when unknown.
func (p *Planner) Capacity(res domain.ResourceID) domain.ResourceValue {
	if !p.wired() {
		return 0
	}
	return p.tasks.Capacity(res)
}

// AllImpls returns the implementations of task in id order.
func (p *Planner) AllImpls(task domain.TaskID) []domain.TaskImplID {
	if !p.wired() {
		return nil
	}
	return p.tasks.AllImpls(task)
}

// Impl looks up an implementation.
func (p *Planner) Impl(id domain.TaskImplID) (catalog.Impl, error) {
	if !p.wired() {
		return catalog.Impl{}, errors.NewNotWiredError()
	}
	return p.tasks.Impl(id)
}

// ResourceUsage returns how much of res impl consumes; zero when unknown.
func (p *Planner) ResourceUsage(impl domain.TaskImplID, res domain.ResourceID) domain.ResourceValue {
	if !p.wired() {
		return 0
	}
	return p.tasks.ResourceUsage(impl, res)
}

// AllResources returns the resource usage of impl.
func (p *Planner) AllResources(impl domain.TaskImplID) domain.ResourceMap {
	if !p.wired() {
		return domain.ResourceMap{}
	}
	return p.tasks.AllResources(impl)
}

// Command surface. Every successful mutation refreshes the threat set;
// rejected calls leave plan, stack and threats untouched.

// ExecuteCommand pushes c and applies its first feasible alternative.
func (p *Planner) ExecuteCommand(c *command.Command) bool {
	if !p.wired() {
		return false
	}
	ok := p.stack.Execute(c)
	p.touched()
	return ok
}

// AddCommand pushes c without executing it.
func (p *Planner) AddCommand(c *command.Command) domain.CommandID {
	if !p.wired() {
		return domain.NullCommandID
	}
	return p.stack.Add(c)
}

// UndoCommand undoes the top command id.
func (p *Planner) UndoCommand(id domain.CommandID) error {
	if !p.wired() {
		return errors.NewNotWiredError()
	}
	if err := p.stack.Undo(id); err != nil {
		return err
	}
	p.touched()
	return nil
}

// TryNext replaces the applied alternative of the top command id with its
// next feasible one.
func (p *Planner) TryNext(id domain.CommandID) (bool, error) {
	if !p.wired() {
		return false, errors.NewNotWiredError()
	}
	ok, err := p.stack.TryNext(id)
	if err != nil {
		return false, err
	}
	p.touched()
	return ok, nil
}

// UndoThrough undoes every command down to and including id.
func (p *Planner) UndoThrough(id domain.CommandID) error {
	if !p.wired() {
		return errors.NewNotWiredError()
	}
	if err := p.stack.UndoThrough(id); err != nil {
		return err
	}
	p.touched()
	return nil
}

// CurCommandID returns the top command id, or NullCommandID.
func (p *Planner) CurCommandID() domain.CommandID {
	if !p.wired() {
		return domain.NullCommandID
	}
	return p.stack.Current()
}

// SetBacktrackCmdID makes the running search unwind to id without trying
// the remaining alternatives of the commands above it.
func (p *Planner) SetBacktrackCmdID(id domain.CommandID) {
	if p.wired() {
		p.stack.SetBacktrack(id)
	}
}

// Commands returns the stacked commands, bottom first.
func (p *Planner) Commands() []*command.Command {
	if !p.wired() {
		return nil
	}
	return p.stack.Commands()
}

func (p *Planner) touched() {
	p.live = false
	p.refreshThreats()
}

// PrintNetwork writes a text dump of the task network.
func (p *Planner) PrintNetwork(w io.Writer, verbose bool) error {
	if !p.wired() {
		return errors.NewNotWiredError()
	}
	return p.net.Print(w, verbose)
}

// PrintNetworkGraphviz writes the task network as a Graphviz digraph and
// fills graphmap with the label of every node and edge.
func (p *Planner) PrintNetworkGraphviz(w io.Writer, graphmap map[string]string) error {
	if !p.wired() {
		return errors.NewNotWiredError()
	}
	return p.net.Graphviz(w, graphmap)
}
