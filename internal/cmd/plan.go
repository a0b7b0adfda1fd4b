package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/plansched/internal/adapter"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/exitcode"
	"github.com/felixgeelhaar/plansched/internal/planner"
	"github.com/felixgeelhaar/plansched/internal/problem"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/ux"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

type planOptions struct {
	out      string
	history  bool
	diff     bool
	webhook  string
	setConds []string
	setEffs  []string
}

func newPlanCmd() *cobra.Command {
	var opts planOptions
	cmd := &cobra.Command{
		Use:   "plan PROBLEM",
		Short: "Find and schedule a plan for a problem file",
		Long: `Load a problem file, run spreading activation toward its goal and search
for a plan whose task instances fit the resource capacities and time windows.

--set-cond and --set-effect change the network after the first plan and
replan: the plan is only rescheduled when it still holds, otherwise the
search starts over.

Examples:
  # Plan and print a report
  plansched plan examples/problem.yaml

  # Save the plan and show how it changes when condition 0 becomes unlikely
  plansched plan examples/problem.yaml --out plan.json --diff --set-cond 0=0.2`,
		Args: cobra.ExactArgs(1),
		RunE: runWith(func(cmd *cobra.Command, cc *CommandContext, args []string) error {
			return runPlan(cmd, cc, args[0], opts)
		}),
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "", "write each committed plan to this file (.json, .yaml)")
	f.BoolVar(&opts.history, "history", false, "with --out, keep every distinct plan under history/")
	f.BoolVar(&opts.diff, "diff", false, "print a diff to stderr whenever the plan changes")
	f.StringVar(&opts.webhook, "webhook", "", "POST each committed plan as JSON to this URL")
	f.StringArrayVar(&opts.setConds, "set-cond", nil, "after planning set COND=PROB and replan (repeatable)")
	f.StringArrayVar(&opts.setEffs, "set-effect", nil, "after planning set TASK:COND=WEIGHT and replan (repeatable)")
	f.Float64("threshold", 0, "probability a condition must reach to be relied on")
	f.Int("sa-steps", 0, "spreading activation steps before searching")
	f.Int("max-decisions", 0, "decision budget per search, 0 for unbounded")
	f.Int("max-instances", 0, "maximum task instances per plan")
	f.Int64("horizon", 0, "latest finish time of any instance")
	f.String("open-cond-order", "", "open condition order: newest or goal")
	return cmd
}

func runPlan(cmd *cobra.Command, cc *CommandContext, path string, opts planOptions) error {
	if err := applyPlannerFlags(cmd, cc); err != nil {
		return err
	}
	condUpdates, err := parseCondUpdates(opts.setConds)
	if err != nil {
		return err
	}
	effUpdates, err := parseEffectUpdates(opts.setEffs)
	if err != nil {
		return err
	}

	prob, err := problem.Load(path)
	if err != nil {
		return err
	}
	net, cat, err := prob.Build()
	if err != nil {
		return errors.Wrap(errors.ErrCodeProblemInvalid, "failed to build task network", err)
	}

	pc := cc.Config.Planner
	pl := planner.New(
		planner.WithThreshold(pc.Threshold),
		planner.WithMaxDecisions(pc.MaxDecisions),
		planner.WithMaxInstances(pc.MaxInstances),
		planner.WithHorizon(pc.Horizon),
		planner.WithLogger(cc.Logger),
		planner.WithMetrics(cc.Metrics),
	)
	pl.SetObjects(net, cc.Config.PlanStrategy(), strategy.DefaultSched{}, workplan.New(net, cat), cat)

	pl.AddOutAdapter(adapter.NewLogAdapter(cc.Logger))
	pl.AddOutAdapter(adapter.NewMetricsAdapter(cc.Metrics))
	if opts.out != "" {
		var fopts []adapter.FileOption
		if opts.history {
			fopts = append(fopts, adapter.WithHistory())
		}
		pl.AddOutAdapter(adapter.NewFileAdapter(opts.out, fopts...))
	}
	if opts.diff {
		pl.AddOutAdapter(adapter.NewDiffAdapter(cmd.ErrOrStderr()))
	}
	if opts.webhook != "" {
		pl.AddOutAdapter(adapter.NewWebhookAdapter(opts.webhook))
	}

	ctx := cmd.Context()
	goal := prob.Goal.DomainGoal()
	ok, err := pl.Plan(ctx, pc.SASteps, goal)
	if err != nil {
		return err
	}
	if !ok {
		return noPlan(cc, goal)
	}

	if len(condUpdates) > 0 || len(effUpdates) > 0 {
		for _, u := range condUpdates {
			pl.UpdateCondVal(u.cond, u.prob)
		}
		for _, u := range effUpdates {
			pl.UpdateEffect(u.task, u.cond, u.weight)
		}
		ok, err = pl.ReplanCurrent(ctx, pc.SASteps)
		if err != nil {
			return err
		}
		if !ok {
			return noPlan(cc, goal)
		}
	}

	if cc.Quiet {
		return nil
	}
	f, err := cc.Formatter()
	if err != nil {
		return err
	}
	result := pl.GetPlan()
	return f.Format(&result)
}

func noPlan(cc *CommandContext, goal domain.Goal) error {
	if cc.Text() {
		cc.Printf("%s", ux.RenderNoPlan(goal, cc.Styles()))
	}
	return errors.NewNoPlanError(goal.ID)
}

// applyPlannerFlags overrides planner configuration with explicitly set flags.
func applyPlannerFlags(cmd *cobra.Command, cc *CommandContext) error {
	f := cmd.Flags()
	pc := &cc.Config.Planner
	var err error
	if f.Changed("threshold") {
		if pc.Threshold, err = f.GetFloat64("threshold"); err != nil {
			return err
		}
	}
	if f.Changed("sa-steps") {
		if pc.SASteps, err = f.GetInt("sa-steps"); err != nil {
			return err
		}
	}
	if f.Changed("max-decisions") {
		if pc.MaxDecisions, err = f.GetInt("max-decisions"); err != nil {
			return err
		}
	}
	if f.Changed("max-instances") {
		if pc.MaxInstances, err = f.GetInt("max-instances"); err != nil {
			return err
		}
	}
	if f.Changed("horizon") {
		if pc.Horizon, err = f.GetInt64("horizon"); err != nil {
			return err
		}
	}
	if f.Changed("open-cond-order") {
		if pc.OpenCondOrder, err = f.GetString("open-cond-order"); err != nil {
			return err
		}
	}
	return cc.Config.Validate()
}

type condUpdate struct {
	cond domain.CondID
	prob domain.Probability
}

type effectUpdate struct {
	task   domain.TaskID
	cond   domain.CondID
	weight domain.LinkWeight
}

// parseCondUpdates parses COND=PROB pairs.
func parseCondUpdates(specs []string) ([]condUpdate, error) {
	out := make([]condUpdate, 0, len(specs))
	for _, s := range specs {
		lhs, rhs, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%w: --set-cond %q must be COND=PROB", exitcode.ErrUsage, s)
		}
		cond, err := strconv.Atoi(strings.TrimSpace(lhs))
		if err != nil {
			return nil, fmt.Errorf("%w: --set-cond %q: bad condition id", exitcode.ErrUsage, s)
		}
		prob, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
		if err != nil || prob < 0 || prob > 1 {
			return nil, fmt.Errorf("%w: --set-cond %q: probability must be within [0, 1]", exitcode.ErrUsage, s)
		}
		out = append(out, condUpdate{cond: domain.CondID(cond), prob: prob})
	}
	return out, nil
}

// parseEffectUpdates parses TASK:COND=WEIGHT triples.
func parseEffectUpdates(specs []string) ([]effectUpdate, error) {
	out := make([]effectUpdate, 0, len(specs))
	for _, s := range specs {
		lhs, rhs, ok := strings.Cut(s, "=")
		task, cond, ok2 := strings.Cut(lhs, ":")
		if !ok || !ok2 {
			return nil, fmt.Errorf("%w: --set-effect %q must be TASK:COND=WEIGHT", exitcode.ErrUsage, s)
		}
		t, err := strconv.Atoi(strings.TrimSpace(task))
		if err != nil {
			return nil, fmt.Errorf("%w: --set-effect %q: bad task id", exitcode.ErrUsage, s)
		}
		c, err := strconv.Atoi(strings.TrimSpace(cond))
		if err != nil {
			return nil, fmt.Errorf("%w: --set-effect %q: bad condition id", exitcode.ErrUsage, s)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
		if err != nil || w < -1 || w > 1 {
			return nil, fmt.Errorf("%w: --set-effect %q: weight must be within [-1, 1]", exitcode.ErrUsage, s)
		}
		out = append(out, effectUpdate{task: domain.TaskID(t), cond: domain.CondID(c), weight: w})
	}
	return out, nil
}
