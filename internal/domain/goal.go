package domain

// GoalMap maps goal conditions to their utility.
type GoalMap map[Condition]Utility

// Sorted returns the goal conditions in deterministic order.
func (g GoalMap) Sorted() []Condition {
	out := make([]Condition, 0, len(g))
	for c := range g {
		out = append(out, c)
	}
	SortConditions(out)
	return out
}

// Goal is what the planner is asked to achieve.
type Goal struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Conditions GoalMap `json:"-" yaml:"-"`

	// StartWindow bounds when the plan may begin; NullWindow means unconstrained.
	StartWindow TimeWindow `json:"start_window" yaml:"start_window"`
	// Deadline is the latest end time of any instance, or NullTime.
	Deadline TimeValue `json:"deadline" yaml:"deadline"`
}

// NewGoal creates a goal without timing constraints.
func NewGoal(id, name string, conds GoalMap) Goal {
	return Goal{
		ID:          id,
		Name:        name,
		Conditions:  conds,
		StartWindow: NullWindow,
		Deadline:    NullTime,
	}
}

// Clone returns a copy that shares no maps with g.
func (g Goal) Clone() Goal {
	out := g
	out.Conditions = make(GoalMap, len(g.Conditions))
	for c, u := range g.Conditions {
		out.Conditions[c] = u
	}
	return out
}

// Empty reports whether the goal has no conditions.
func (g Goal) Empty() bool {
	return len(g.Conditions) == 0
}
