// Package problem reads planning problems: a task network, the
// implementations and resources that execute it, and a goal.
package problem

import "github.com/felixgeelhaar/plansched/internal/domain"

// Problem is the on-disk description of a planning problem.
type Problem struct {
	Name       string      `yaml:"name" json:"name"`
	Discount   float64     `yaml:"discount,omitempty" json:"discount,omitempty"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
	Tasks      []Task      `yaml:"tasks" json:"tasks"`
	Resources  []Resource  `yaml:"resources,omitempty" json:"resources,omitempty"`
	Impls      []Impl      `yaml:"impls,omitempty" json:"impls,omitempty"`
	Goal       Goal        `yaml:"goal" json:"goal"`
}

// Condition declares a proposition and the probability it currently holds.
type Condition struct {
	ID   domain.CondID      `yaml:"id" json:"id"`
	Name string             `yaml:"name,omitempty" json:"name,omitempty"`
	Kind domain.CondKind    `yaml:"kind" json:"kind"`
	Prob domain.Probability `yaml:"prob" json:"prob"`
}

// Task declares a task with its preconditions and effects.
type Task struct {
	ID       domain.TaskID `yaml:"id" json:"id"`
	Name     string        `yaml:"name,omitempty" json:"name,omitempty"`
	Preconds []Precond     `yaml:"preconds,omitempty" json:"preconds,omitempty"`
	Effects  []Effect      `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// Precond is a condition value a task needs.
type Precond struct {
	Cond  domain.CondID `yaml:"cond" json:"cond"`
	Value *bool         `yaml:"value,omitempty" json:"value,omitempty"`
	Port  domain.Port   `yaml:"port,omitempty" json:"port,omitempty"`
}

// Condition returns the required condition. Value defaults to true.
func (p Precond) Condition() domain.Condition {
	return domain.Condition{ID: p.Cond, Value: p.Value == nil || *p.Value}
}

// Effect is a signed effect of a task: positive weights make the condition
// true with that probability, negative weights make it false.
type Effect struct {
	Cond   domain.CondID     `yaml:"cond" json:"cond"`
	Weight domain.LinkWeight `yaml:"weight" json:"weight"`
	Port   domain.Port       `yaml:"port,omitempty" json:"port,omitempty"`
}

// Resource declares a resource capacity.
type Resource struct {
	ID       domain.ResourceID    `yaml:"id" json:"id"`
	Capacity domain.ResourceValue `yaml:"capacity" json:"capacity"`
}

// Impl declares one way to execute a task.
type Impl struct {
	ID        domain.TaskImplID  `yaml:"id" json:"id"`
	Task      domain.TaskID      `yaml:"task" json:"task"`
	Duration  domain.TimeValue   `yaml:"duration" json:"duration"`
	Cost      domain.Utility     `yaml:"cost,omitempty" json:"cost,omitempty"`
	Resources domain.ResourceMap `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// Goal declares what to achieve and when.
type Goal struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name,omitempty" json:"name,omitempty"`
	Conditions  []GoalCondition    `yaml:"conditions" json:"conditions"`
	StartWindow *domain.TimeWindow `yaml:"start_window,omitempty" json:"start_window,omitempty"`
	Deadline    *domain.TimeValue  `yaml:"deadline,omitempty" json:"deadline,omitempty"`
}

// GoalCondition is a goal condition with its utility.
type GoalCondition struct {
	Cond    domain.CondID  `yaml:"cond" json:"cond"`
	Value   *bool          `yaml:"value,omitempty" json:"value,omitempty"`
	Utility domain.Utility `yaml:"utility" json:"utility"`
}

// Condition returns the goal condition. Value defaults to true.
func (g GoalCondition) Condition() domain.Condition {
	return domain.Condition{ID: g.Cond, Value: g.Value == nil || *g.Value}
}

// DomainGoal converts the goal, filling unset timing with the null values.
func (g Goal) DomainGoal() domain.Goal {
	conds := make(domain.GoalMap, len(g.Conditions))
	for _, gc := range g.Conditions {
		conds[gc.Condition()] = gc.Utility
	}
	out := domain.NewGoal(g.ID, g.Name, conds)
	if g.StartWindow != nil {
		out.StartWindow = *g.StartWindow
	}
	if g.Deadline != nil {
		out.Deadline = *g.Deadline
	}
	return out
}
