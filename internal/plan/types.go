// Package plan holds the committed plan: an immutable snapshot of the task
// instances, causal links, orderings and schedule the planner settled on.
package plan

import (
	"time"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

// Plan is a committed plan as a DAG of task instances.
type Plan struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Goal      Goal                `json:"goal" yaml:"goal"`
	Tasks     []Task              `json:"tasks" yaml:"tasks"`
	Links     []domain.CausalLink `json:"links" yaml:"links"`
	Orderings []Ordering          `json:"orderings" yaml:"orderings"`
	EU        domain.Utility      `json:"eu" yaml:"eu"`
}

// Goal is the goal a plan was made for.
type Goal struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Conditions  []GoalCondition   `json:"conditions" yaml:"conditions"`
	StartWindow domain.TimeWindow `json:"start_window" yaml:"start_window"`
	Deadline    domain.TimeValue  `json:"deadline" yaml:"deadline"`
}

// GoalCondition is one goal condition with its utility.
type GoalCondition struct {
	Cond    domain.Condition `json:"cond" yaml:"cond"`
	Utility domain.Utility   `json:"utility" yaml:"utility"`
}

// Task is one task instance of the plan.
type Task struct {
	Inst      domain.TaskInstID  `json:"inst" yaml:"inst"`
	Task      domain.TaskID      `json:"task" yaml:"task"`
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	Impl      domain.TaskImplID  `json:"impl,omitempty" yaml:"impl,omitempty"`
	Start     domain.TimeWindow  `json:"start" yaml:"start"`
	End       domain.TimeWindow  `json:"end" yaml:"end"`
	Duration  domain.TimeValue   `json:"duration" yaml:"duration"`
	Resources domain.ResourceMap `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// Ordering is a precedence edge with its origin.
type Ordering struct {
	Before domain.TaskInstID     `json:"before" yaml:"before"`
	After  domain.TaskInstID     `json:"after" yaml:"after"`
	Origin domain.OrderingOrigin `json:"origin" yaml:"origin"`
}

// GoalMap returns the goal conditions as a map.
func (g Goal) GoalMap() domain.GoalMap {
	out := make(domain.GoalMap, len(g.Conditions))
	for _, gc := range g.Conditions {
		out[gc.Cond] = gc.Utility
	}
	return out
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() Plan {
	out := *p
	out.Goal.Conditions = append([]GoalCondition(nil), p.Goal.Conditions...)
	out.Links = append([]domain.CausalLink(nil), p.Links...)
	out.Orderings = append([]Ordering(nil), p.Orderings...)
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			if t.Resources != nil {
				res := make(domain.ResourceMap, len(t.Resources))
				for id, q := range t.Resources {
					res[id] = q
				}
				t.Resources = res
			}
			out.Tasks[i] = t
		}
	}
	return out
}

// Task returns the task with instance id inst.
func (p *Plan) Task(inst domain.TaskInstID) (Task, bool) {
	for _, t := range p.Tasks {
		if t.Inst == inst {
			return t, true
		}
	}
	return Task{}, false
}

// Empty reports whether the plan has no task instances.
func (p *Plan) Empty() bool {
	return len(p.Tasks) == 0
}

// LinksInto returns the causal links consumed by inst.
func (p *Plan) LinksInto(inst domain.TaskInstID) []domain.CausalLink {
	var out []domain.CausalLink
	for _, l := range p.Links {
		if l.Second == inst {
			out = append(out, l)
		}
	}
	return out
}

// Makespan returns the latest earliest-finish time over all tasks.
func (p *Plan) Makespan() domain.TimeValue {
	var out domain.TimeValue
	for _, t := range p.Tasks {
		if t.End.Earliest > out {
			out = t.End.Earliest
		}
	}
	return out
}
