// Package adapter provides output adapters that react to committed plans.
//
// Every adapter implements planner.OutAdapter and a Name used in logs and
// metrics labels.
package adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// Summary renders p as stable plain text, one fact per line. Identity
// and timestamps are left out so that equal plans render identically.
func Summary(p *plan.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "goal %s\n", p.Goal.ID)
	conds := append([]plan.GoalCondition(nil), p.Goal.Conditions...)
	sort.Slice(conds, func(i, j int) bool { return conds[i].Cond.Less(conds[j].Cond) })
	for _, gc := range conds {
		fmt.Fprintf(&b, "  want %s utility=%g\n", gc.Cond, gc.Utility)
	}

	tasks := append([]plan.Task(nil), p.Tasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Inst < tasks[j].Inst })
	for _, t := range tasks {
		fmt.Fprintf(&b, "task %s %s", t.Inst, nameOr(t.Name, t.Task.String()))
		if t.Impl != domain.NullTaskImplID {
			fmt.Fprintf(&b, " impl=%s", t.Impl)
		}
		fmt.Fprintf(&b, " start=%s end=%s\n", t.Start, t.End)
	}

	links := append([]domain.CausalLink(nil), p.Links...)
	domain.SortLinks(links)
	for _, l := range links {
		fmt.Fprintf(&b, "link %s\n", l)
	}

	orderings := append([]plan.Ordering(nil), p.Orderings...)
	sort.Slice(orderings, func(i, j int) bool {
		a, o := orderings[i], orderings[j]
		if a.Before != o.Before {
			return a.Before < o.Before
		}
		if a.After != o.After {
			return a.After < o.After
		}
		return a.Origin < o.Origin
	})
	for _, o := range orderings {
		fmt.Fprintf(&b, "order %s < %s (%s)\n", o.Before, o.After, o.Origin)
	}

	fmt.Fprintf(&b, "eu %.4f\n", p.EU)
	return b.String()
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
