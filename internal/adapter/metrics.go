package adapter

import (
	"context"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/metrics"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// MetricsAdapter exports the schedule of every committed plan: its
// makespan and the usage-time demand per resource.
type MetricsAdapter struct {
	m *metrics.Metrics
}

// NewMetricsAdapter creates a MetricsAdapter recording on m.
func NewMetricsAdapter(m *metrics.Metrics) *MetricsAdapter {
	return &MetricsAdapter{m: m}
}

// Name implements the adapter label.
func (a *MetricsAdapter) Name() string { return "metrics" }

// PlanChanged records p.
func (a *MetricsAdapter) PlanChanged(_ context.Context, p plan.Plan) error {
	a.m.RecordSchedule(p.Makespan(), Demand(&p))
	return nil
}

// Demand sums usage times duration per resource over p.
func Demand(p *plan.Plan) map[domain.ResourceID]int64 {
	out := make(map[domain.ResourceID]int64)
	for _, t := range p.Tasks {
		for res, use := range t.Resources {
			out[res] += use * t.Duration
		}
	}
	return out
}
