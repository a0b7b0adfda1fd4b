package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/plansched/internal/command"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
)

// Metrics holds all Prometheus metrics for plansched
type Metrics struct {
	// CLI command metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Search metrics
	SearchRuns      *prometheus.CounterVec
	SearchDuration  *prometheus.HistogramVec
	PlanInstances   prometheus.Histogram
	PlanEU          prometheus.Gauge
	Decisions       *prometheus.CounterVec
	Undos           *prometheus.CounterVec
	Threats         prometheus.Counter
	Conflicts       *prometheus.CounterVec
	BudgetExhausted prometheus.Counter

	// Schedule metrics, fed by the metrics output adapter
	PlanMakespan   prometheus.Gauge
	ResourceDemand *prometheus.GaugeVec

	// Output adapter metrics
	AdapterNotifications *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_command_executions_total",
				Help: "Total number of CLI command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plansched_command_duration_seconds",
				Help:    "CLI command duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		SearchRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_search_runs_total",
				Help: "Total number of plan, replan and full schedule runs",
			},
			[]string{"operation", "success"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plansched_search_duration_seconds",
				Help:    "Search duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"operation"},
		),
		PlanInstances: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plansched_plan_instances",
				Help:    "Number of task instances in committed plans",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),
		PlanEU: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "plansched_plan_expected_utility",
				Help: "Expected utility of the committed plan",
			},
		),
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_decisions_total",
				Help: "Total number of command alternatives tried",
			},
			[]string{"kind", "feasible"},
		),
		Undos: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_undos_total",
				Help: "Total number of commands undone",
			},
			[]string{"kind"},
		),
		Threats: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plansched_threats_total",
				Help: "Total number of causal-link threats found",
			},
		),
		Conflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_resource_conflicts_total",
				Help: "Total number of resource conflicts found",
			},
			[]string{"resource"},
		),
		BudgetExhausted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plansched_budget_exhausted_total",
				Help: "Total number of searches stopped by the decision budget",
			},
		),

		PlanMakespan: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "plansched_plan_makespan",
				Help: "Earliest finish time of the committed plan",
			},
		),
		ResourceDemand: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plansched_plan_resource_demand",
				Help: "Resource usage times duration summed over the committed plan",
			},
			[]string{"resource"},
		),

		AdapterNotifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_adapter_notifications_total",
				Help: "Total number of output adapter notifications",
			},
			[]string{"adapter", "success"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plansched_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// CommandTried implements command.Observer.
func (m *Metrics) CommandTried(kind command.Kind, ok bool) {
	m.Decisions.WithLabelValues(kind.String(), boolLabel(ok)).Inc()
}

// CommandUndone implements command.Observer.
func (m *Metrics) CommandUndone(kind command.Kind) {
	m.Undos.WithLabelValues(kind.String()).Inc()
}

// RecordSearch records one plan, replan or full schedule run.
func (m *Metrics) RecordSearch(operation string, success bool, d time.Duration) {
	m.SearchRuns.WithLabelValues(operation, boolLabel(success)).Inc()
	m.SearchDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordPlan records the shape of a committed plan.
func (m *Metrics) RecordPlan(instances int, eu float64) {
	m.PlanInstances.Observe(float64(instances))
	m.PlanEU.Set(eu)
}

// RecordSchedule records the makespan and per-resource demand of a
// committed plan. Resources missing from demand are reset to zero.
func (m *Metrics) RecordSchedule(makespan int64, demand map[domain.ResourceID]int64) {
	m.PlanMakespan.Set(float64(makespan))
	m.ResourceDemand.Reset()
	for res, d := range demand {
		m.ResourceDemand.WithLabelValues(string(res)).Set(float64(d))
	}
}

// RecordThreats counts threats found by one threat scan.
func (m *Metrics) RecordThreats(n int) {
	m.Threats.Add(float64(n))
}

// RecordConflict counts one resource conflict.
func (m *Metrics) RecordConflict(c domain.Conflict) {
	m.Conflicts.WithLabelValues(string(c.Resource)).Inc()
}

// RecordBudgetExhausted counts a search stopped by the decision budget.
func (m *Metrics) RecordBudgetExhausted() {
	m.BudgetExhausted.Inc()
}

// RecordNotification records one output adapter notification.
func (m *Metrics) RecordNotification(adapter string, err error) {
	m.AdapterNotifications.WithLabelValues(adapter, boolLabel(err == nil)).Inc()
	if err != nil {
		m.RecordError(err)
	}
}

// RecordCommand records one CLI command execution.
func (m *Metrics) RecordCommand(name string, err error, d time.Duration) {
	m.CommandExecutions.WithLabelValues(name, boolLabel(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.RecordError(err)
	}
}

// RecordError counts err under its error code.
func (m *Metrics) RecordError(err error) {
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
