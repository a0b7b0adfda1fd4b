package adapter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/metrics"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

var (
	fetched  = domain.Condition{ID: 1, Value: true}
	rendered = domain.Condition{ID: 2, Value: true}
)

// samplePlan is fetch (inst 1) -> render (inst 2) -> goal.
func samplePlan(id string) plan.Plan {
	return plan.Plan{
		ID:        id,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Goal: plan.Goal{
			ID:          "publish",
			Conditions:  []plan.GoalCondition{{Cond: rendered, Utility: 10}},
			StartWindow: domain.NullWindow,
			Deadline:    domain.NullTime,
		},
		Tasks: []plan.Task{
			{Inst: 1, Task: 1, Name: "fetch", Impl: "curl", Duration: 2,
				Start: domain.TimeWindow{Earliest: 0, Latest: 5}, End: domain.TimeWindow{Earliest: 2, Latest: 7}},
			{Inst: 2, Task: 2, Name: "render", Impl: "gpu", Duration: 3,
				Start: domain.TimeWindow{Earliest: 2, Latest: 7}, End: domain.TimeWindow{Earliest: 5, Latest: 10},
				Resources: domain.ResourceMap{"gpu": 2}},
		},
		Links: []domain.CausalLink{
			{First: 2, Cond: rendered, Second: domain.GoalInstID},
			{First: 1, Cond: fetched, Second: 2},
		},
		Orderings: []plan.Ordering{{Before: 1, After: 2, Origin: domain.OriginCausal}},
		EU:        9,
	}
}

func TestSummaryIsStable(t *testing.T) {
	a := samplePlan("run-1")
	b := samplePlan("run-2")
	b.Tasks[0], b.Tasks[1] = b.Tasks[1], b.Tasks[0]
	b.Links[0], b.Links[1] = b.Links[1], b.Links[0]
	b.CreatedAt = time.Time{}

	assert.Equal(t, Summary(&a), Summary(&b))

	s := Summary(&a)
	assert.Contains(t, s, "task inst-1 fetch impl=curl start=[0, 5] end=[2, 7]\n")
	assert.Contains(t, s, "order inst-1 < inst-2")
	assert.True(t, strings.HasSuffix(s, "eu 9.0000\n"))
}

func TestLogAdapter(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Level = log.LevelDebug
	cfg.Output = &buf
	a := NewLogAdapter(log.New(cfg))

	require.NoError(t, a.PlanChanged(context.Background(), samplePlan("run-1")))

	out := buf.String()
	assert.Contains(t, out, `"msg":"plan changed"`)
	assert.Contains(t, out, `"plan_id":"run-1"`)
	assert.Contains(t, out, `"makespan":5`)
	assert.Equal(t, 3, strings.Count(out, "\n"), "one summary line and one line per task")
	assert.Equal(t, "log", a.Name())
}

func TestFileAdapterWritesEveryPlan(t *testing.T) {
	dir := t.TempDir()
	a := NewFileAdapter(filepath.Join(dir, "out", "plan.yaml"))

	require.NoError(t, a.PlanChanged(context.Background(), samplePlan("run-1")))
	got, err := plan.LoadPlan(a.Path())
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	first := a.LastDigest()
	assert.Len(t, first, 64)

	next := samplePlan("run-2")
	next.Tasks[1].Impl = "cpu"
	require.NoError(t, a.PlanChanged(context.Background(), next))
	got, err = plan.LoadPlan(a.Path())
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.ID)
	assert.NotEqual(t, first, a.LastDigest())

	_, err = os.Stat(filepath.Join(dir, "out", "history"))
	assert.True(t, os.IsNotExist(err), "history is off by default")
}

func TestFileAdapterHistoryKeepsDistinctPlans(t *testing.T) {
	dir := t.TempDir()
	a := NewFileAdapter(filepath.Join(dir, "plan.json"), WithHistory())

	ctx := context.Background()
	require.NoError(t, a.PlanChanged(ctx, samplePlan("run-1")))
	require.NoError(t, a.PlanChanged(ctx, samplePlan("run-2")))
	changed := samplePlan("run-3")
	changed.EU = 3
	changed.Tasks = changed.Tasks[:1]
	changed.Links = nil
	changed.Orderings = nil
	require.NoError(t, a.PlanChanged(ctx, changed))

	entries, err := os.ReadDir(filepath.Join(dir, "history"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "run-1 and run-2 share a digest")
	for _, e := range entries {
		assert.Equal(t, ".json", filepath.Ext(e.Name()))
	}
}

func TestDiffAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := NewDiffAdapter(&buf)
	ctx := context.Background()

	require.NoError(t, a.PlanChanged(ctx, samplePlan("run-1")))
	first := a.Last()
	assert.Equal(t, 0, first.Deletions)
	assert.Equal(t, strings.Count(Summary(ptr(samplePlan("x"))), "\n"), first.Insertions)
	assert.True(t, strings.HasPrefix(buf.String(), "--- plan/none\n+++ plan/run-1\n@@ -1,0 +1,"))

	buf.Reset()
	require.NoError(t, a.PlanChanged(ctx, samplePlan("run-2")))
	assert.True(t, a.Last().Empty())
	assert.Empty(t, buf.String(), "identical plans write nothing")

	next := samplePlan("run-3")
	next.Tasks[1].Impl = "cpu"
	require.NoError(t, a.PlanChanged(ctx, next))
	d := a.Last()
	assert.Equal(t, 1, d.Insertions)
	assert.Equal(t, 1, d.Deletions)
	assert.Equal(t, "run-2", d.FromID)
	assert.Contains(t, buf.String(), "-task inst-2 render impl=gpu")
	assert.Contains(t, buf.String(), "+task inst-2 render impl=cpu")
}

func TestMetricsAdapter(t *testing.T) {
	_, m := metrics.NewRegistry()
	a := NewMetricsAdapter(m)

	require.NoError(t, a.PlanChanged(context.Background(), samplePlan("run-1")))

	assert.Equal(t, 5.0, testutil.ToFloat64(m.PlanMakespan))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ResourceDemand.WithLabelValues("gpu")))
	assert.Equal(t, map[domain.ResourceID]int64{"gpu": 6}, Demand(ptr(samplePlan("x"))))
}

func ptr(p plan.Plan) *plan.Plan { return &p }
