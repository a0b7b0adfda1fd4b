package problem

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Validate checks that every id is unique and every reference resolves.
// All problems found are reported in one PROBLEM-002 error.
func (p *Problem) Validate() error {
	var issues []string
	fail := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(p.Name) == "" {
		fail("problem name cannot be empty")
	}
	if p.Discount < 0 || p.Discount > 1 {
		fail("discount %v must be within [0, 1]", p.Discount)
	}

	conds := make(map[domain.CondID]bool, len(p.Conditions))
	for i, c := range p.Conditions {
		if c.ID < 0 {
			fail("condition at index %d has negative id %d", i, c.ID)
		}
		if conds[c.ID] {
			fail("duplicate condition id %d", c.ID)
		}
		conds[c.ID] = true
		if c.Kind == domain.CondUnknown {
			fail("condition %d has no kind", c.ID)
		}
		if c.Prob < 0 || c.Prob > 1 {
			fail("condition %d probability %v must be within [0, 1]", c.ID, c.Prob)
		}
	}

	tasks := make(map[domain.TaskID]bool, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.ID < 0 {
			fail("task at index %d has negative id %d", i, t.ID)
		}
		if tasks[t.ID] {
			fail("duplicate task id %d", t.ID)
		}
		tasks[t.ID] = true
		for _, pc := range t.Preconds {
			if !conds[pc.Cond] {
				fail("task %d precondition references unknown condition %d", t.ID, pc.Cond)
			}
		}
		seen := make(map[domain.CondID]bool, len(t.Effects))
		for _, e := range t.Effects {
			if !conds[e.Cond] {
				fail("task %d effect references unknown condition %d", t.ID, e.Cond)
			}
			if seen[e.Cond] {
				fail("task %d has two effects on condition %d", t.ID, e.Cond)
			}
			seen[e.Cond] = true
			if e.Weight == 0 || e.Weight < -1 || e.Weight > 1 {
				fail("task %d effect on condition %d has weight %v, want non-zero within [-1, 1]", t.ID, e.Cond, e.Weight)
			}
		}
	}

	resources := make(map[domain.ResourceID]bool, len(p.Resources))
	for _, r := range p.Resources {
		if err := r.ID.Validate(); err != nil {
			fail("%v", err)
		}
		if resources[r.ID] {
			fail("duplicate resource %q", r.ID)
		}
		resources[r.ID] = true
		if r.Capacity <= 0 {
			fail("resource %q capacity must be positive", r.ID)
		}
	}

	impls := make(map[domain.TaskImplID]bool, len(p.Impls))
	for _, im := range p.Impls {
		if err := im.ID.Validate(); err != nil {
			fail("%v", err)
		}
		if impls[im.ID] {
			fail("duplicate implementation %q", im.ID)
		}
		impls[im.ID] = true
		if !tasks[im.Task] {
			fail("implementation %q references unknown task %d", im.ID, im.Task)
		}
		if im.Duration < 0 {
			fail("implementation %q duration cannot be negative", im.ID)
		}
		for _, res := range im.Resources.Sorted() {
			if !resources[res] {
				fail("implementation %q uses undeclared resource %q", im.ID, res)
			}
			if im.Resources[res] <= 0 {
				fail("implementation %q usage of %q must be positive", im.ID, res)
			}
		}
	}

	p.Goal.validate(conds, fail)

	if len(issues) > 0 {
		return errors.NewProblemInvalidError(strings.Join(issues, "; "))
	}
	return nil
}

func (g *Goal) validate(conds map[domain.CondID]bool, fail func(string, ...any)) {
	if strings.TrimSpace(g.ID) == "" {
		fail("goal id cannot be empty")
	}
	if len(g.Conditions) == 0 {
		fail("goal must have at least one condition")
	}
	seen := make(map[domain.Condition]bool, len(g.Conditions))
	for _, gc := range g.Conditions {
		if !conds[gc.Cond] {
			fail("goal references unknown condition %d", gc.Cond)
		}
		if c := gc.Condition(); seen[c] {
			fail("goal lists condition %s twice", c)
		} else {
			seen[c] = true
		}
	}
	if w := g.StartWindow; w != nil && (w.Earliest < 0 || w.Empty()) {
		fail("goal start window %s must satisfy 0 <= earliest <= latest", *w)
	}
	if g.Deadline != nil && *g.Deadline < 0 {
		fail("goal deadline cannot be negative")
	}
}
