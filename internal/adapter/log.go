package adapter

import (
	"context"

	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// LogAdapter logs every committed plan: a summary at info and one line per
// task at debug.
type LogAdapter struct {
	log *log.Logger
}

// NewLogAdapter creates a LogAdapter writing to l.
func NewLogAdapter(l *log.Logger) *LogAdapter {
	return &LogAdapter{log: l.WithComponent("adapter.log")}
}

// Name implements the adapter label.
func (a *LogAdapter) Name() string { return "log" }

// PlanChanged logs p.
func (a *LogAdapter) PlanChanged(ctx context.Context, p plan.Plan) error {
	logger := a.log.WithContext(ctx)
	logger.Info("plan changed",
		"plan_id", p.ID,
		"goal", p.Goal.ID,
		"tasks", len(p.Tasks),
		"links", len(p.Links),
		"makespan", p.Makespan(),
		"eu", p.EU,
	)
	for _, t := range p.Tasks {
		logger.Debug("plan task",
			"inst", t.Inst.String(),
			"task", nameOr(t.Name, t.Task.String()),
			"impl", string(t.Impl),
			"start", t.Start.String(),
			"end", t.End.String(),
		)
	}
	return nil
}
