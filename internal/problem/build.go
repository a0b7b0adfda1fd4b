package problem

import (
	"fmt"

	"github.com/felixgeelhaar/plansched/internal/catalog"
	"github.com/felixgeelhaar/plansched/internal/sanet"
)

// Build creates the task network and the implementation catalog of a
// validated problem.
func (p *Problem) Build() (*sanet.Network, *catalog.TaskMap, error) {
	net := sanet.New()
	if p.Discount > 0 {
		net.SetDiscount(p.Discount)
	}

	for _, c := range p.Conditions {
		if err := net.AddCond(c.ID, c.Name, c.Kind, c.Prob); err != nil {
			return nil, nil, fmt.Errorf("condition %d: %w", c.ID, err)
		}
	}
	for _, t := range p.Tasks {
		if err := net.AddTask(t.ID, t.Name); err != nil {
			return nil, nil, fmt.Errorf("task %d: %w", t.ID, err)
		}
		for _, pc := range t.Preconds {
			if err := net.AddPrecondLink(t.ID, pc.Condition(), pc.Port); err != nil {
				return nil, nil, fmt.Errorf("task %d: %w", t.ID, err)
			}
		}
		for _, e := range t.Effects {
			if err := net.AddEffectLink(t.ID, e.Cond, e.Weight, e.Port); err != nil {
				return nil, nil, fmt.Errorf("task %d: %w", t.ID, err)
			}
		}
	}

	cat := catalog.New()
	for _, r := range p.Resources {
		if err := cat.AddResource(r.ID, r.Capacity); err != nil {
			return nil, nil, err
		}
	}
	for _, im := range p.Impls {
		err := cat.AddImpl(catalog.Impl{
			ID:        im.ID,
			Task:      im.Task,
			Duration:  im.Duration,
			Cost:      im.Cost,
			Resources: im.Resources,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return net, cat, nil
}
