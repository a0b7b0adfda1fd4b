package planner

import (
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// snapshot copies the working plan into a committed plan.
func (p *Planner) snapshot(id string) *plan.Plan {
	goal := p.wp.Goal()
	out := &plan.Plan{
		ID:        id,
		CreatedAt: p.now().UTC(),
		Goal: plan.Goal{
			ID:          goal.ID,
			Name:        goal.Name,
			StartWindow: goal.StartWindow,
			Deadline:    goal.Deadline,
		},
		Links: p.wp.CausalLinks(),
	}
	for _, c := range goal.Conditions.Sorted() {
		out.Goal.Conditions = append(out.Goal.Conditions, plan.GoalCondition{Cond: c, Utility: goal.Conditions[c]})
	}

	for _, inst := range p.wp.AllInsts() {
		task := p.wp.TaskFromInst(inst)
		impl := p.wp.ImplID(inst)
		t := plan.Task{
			Inst:     inst,
			Task:     task,
			Name:     p.net.TaskName(task),
			Impl:     impl,
			Start:    p.wp.StartWindow(inst),
			End:      p.wp.EndWindow(inst),
			Duration: p.wp.Duration(inst),
		}
		if impl != domain.NullTaskImplID {
			t.Resources = p.tasks.AllResources(impl)
		}
		out.Tasks = append(out.Tasks, t)
	}

	for _, origin := range []domain.OrderingOrigin{domain.OriginCausal, domain.OriginSched} {
		for _, o := range p.wp.Orderings(origin) {
			out.Orderings = append(out.Orderings, plan.Ordering{Before: o.Before, After: o.After, Origin: origin})
		}
	}

	out.EU = p.eval.PlanEU(out)
	return out
}
