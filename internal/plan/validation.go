package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Validate checks a single task
func (t *Task) Validate() error {
	if !t.Inst.Valid() {
		return fmt.Errorf("invalid instance id %d", int(t.Inst))
	}
	if t.Task < 0 {
		return fmt.Errorf("invalid task id %d", int(t.Task))
	}
	if t.Impl != domain.NullTaskImplID {
		if err := t.Impl.Validate(); err != nil {
			return err
		}
	}
	if t.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %d", t.Duration)
	}
	if t.Start != domain.NullWindow && t.Start.Empty() {
		return fmt.Errorf("start window %s is empty", t.Start)
	}
	if t.End != domain.NullWindow && t.End.Empty() {
		return fmt.Errorf("end window %s is empty", t.End)
	}
	return nil
}

// Validate checks that every link and ordering references tasks of the
// plan and that the orderings are acyclic.
func (p *Plan) Validate() error {
	insts := make(map[domain.TaskInstID]bool)
	for i, task := range p.Tasks {
		if err := task.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodePlanInvalid, fmt.Sprintf("task at index %d (%s) is invalid", i, task.Inst), err)
		}
		if insts[task.Inst] {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("duplicate instance %s at index %d", task.Inst, i))
		}
		insts[task.Inst] = true
	}

	known := func(id domain.TaskInstID) bool { return id.IsSpecial() || insts[id] }
	for i, l := range p.Links {
		if !known(l.First) || !known(l.Second) {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("link at index %d (%s) references an instance that does not exist in plan", i, l))
		}
		if l.First == domain.GoalInstID || l.Second == domain.InitInstID {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("link at index %d (%s) runs against the pseudo instances", i, l))
		}
	}
	for i, o := range p.Orderings {
		if !insts[o.Before] || !insts[o.After] {
			return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("ordering at index %d (%s < %s) references an instance that does not exist in plan", i, o.Before, o.After))
		}
	}

	return p.checkCycles()
}

// checkCycles detects cycles in the ordering graph
func (p *Plan) checkCycles() error {
	graph := make(map[domain.TaskInstID][]domain.TaskInstID)
	for _, o := range p.Orderings {
		graph[o.Before] = append(graph[o.Before], o.After)
	}

	visited := make(map[domain.TaskInstID]bool)
	recStack := make(map[domain.TaskInstID]bool)

	var visit func(id domain.TaskInstID, path []string) error
	visit = func(id domain.TaskInstID, path []string) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id.String())

		for _, next := range graph[id] {
			if !visited[next] {
				if err := visit(next, path); err != nil {
					return err
				}
			} else if recStack[next] {
				cycle := append(path, next.String())
				return errors.NewPlanCycleError(strings.Join(cycle, " -> "))
			}
		}

		recStack[id] = false
		return nil
	}

	for _, t := range p.Tasks {
		if !visited[t.Inst] {
			if err := visit(t.Inst, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
