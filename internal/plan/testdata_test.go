package plan

import (
	"time"

	"github.com/felixgeelhaar/plansched/internal/domain"
)

var (
	fetched  = domain.Condition{ID: 1, Value: true}
	rendered = domain.Condition{ID: 2, Value: true}
)

// samplePlan is fetch (inst 1) -> render (inst 2) -> goal.
func samplePlan() *Plan {
	return &Plan{
		ID:        "run-1",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Goal: Goal{
			ID:          "publish",
			Conditions:  []GoalCondition{{Cond: rendered, Utility: 10}},
			StartWindow: domain.NullWindow,
			Deadline:    domain.NullTime,
		},
		Tasks: []Task{
			{Inst: 1, Task: 1, Name: "fetch", Impl: "curl", Duration: 2,
				Start: domain.TimeWindow{Earliest: 0, Latest: 5}, End: domain.TimeWindow{Earliest: 2, Latest: 7}},
			{Inst: 2, Task: 2, Name: "render", Impl: "gpu", Duration: 3,
				Start: domain.TimeWindow{Earliest: 2, Latest: 7}, End: domain.TimeWindow{Earliest: 5, Latest: 10},
				Resources: domain.ResourceMap{"gpu": 1}},
		},
		Links: []domain.CausalLink{
			{First: 2, Cond: rendered, Second: domain.GoalInstID},
			{First: 1, Cond: fetched, Second: 2},
		},
		Orderings: []Ordering{{Before: 1, After: 2, Origin: domain.OriginCausal}},
		EU:        9,
	}
}
