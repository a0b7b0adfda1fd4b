package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/plansched/internal/catalog"
	"github.com/felixgeelhaar/plansched/internal/domain"
	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/plan"
	"github.com/felixgeelhaar/plansched/internal/problem"
	"github.com/felixgeelhaar/plansched/internal/sanet"
)

// problemSummary is the structured result of validate.
type problemSummary struct {
	Name       string       `json:"name" yaml:"name"`
	Valid      bool         `json:"valid" yaml:"valid"`
	Conditions int          `json:"conditions" yaml:"conditions"`
	Tasks      int          `json:"tasks" yaml:"tasks"`
	Impls      int          `json:"impls" yaml:"impls"`
	Resources  int          `json:"resources" yaml:"resources"`
	Goal       string       `json:"goal" yaml:"goal"`
	Plan       *planSummary `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// planSummary describes a saved plan checked against the problem.
type planSummary struct {
	ID       string           `json:"id" yaml:"id"`
	Tasks    int              `json:"tasks" yaml:"tasks"`
	Makespan domain.TimeValue `json:"makespan" yaml:"makespan"`
}

func newValidateCmd() *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "validate PROBLEM",
		Short: "Check a problem file without planning",
		Long: `Check that a problem file parses, that every id is unique and every
reference resolves, and that the task network and catalog can be built.

With --plan, also load a saved plan and check that its orderings are
acyclic and that its tasks and implementations exist in the problem.`,
		Example: `  plansched validate examples/problem.yaml
  plansched validate examples/problem.yaml --plan plan.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runWith(func(cmd *cobra.Command, cc *CommandContext, args []string) error {
			prob, err := problem.Load(args[0])
			if err != nil {
				return err
			}
			net, cat, err := prob.Build()
			if err != nil {
				return errors.Wrap(errors.ErrCodeProblemInvalid, "failed to build task network", err)
			}

			sum := problemSummary{
				Name:       prob.Name,
				Valid:      true,
				Conditions: len(prob.Conditions),
				Tasks:      len(prob.Tasks),
				Impls:      len(prob.Impls),
				Resources:  len(prob.Resources),
				Goal:       prob.Goal.ID,
			}
			if planFile != "" {
				saved, err := plan.LoadPlan(planFile)
				if err != nil {
					return err
				}
				if err := checkPlanAgainst(saved, net, cat); err != nil {
					return err
				}
				sum.Plan = &planSummary{ID: saved.ID, Tasks: len(saved.Tasks), Makespan: saved.Makespan()}
				cc.Logger.Debug("saved plan checked", "plan", saved.ID, "tasks", len(saved.Tasks))
			}

			if cc.Text() {
				st := cc.Styles()
				cc.Printf("%s %s: %d conditions, %d tasks, %d implementations, %d resources, goal %s\n",
					st.Success.Render("valid"), sum.Name, sum.Conditions, sum.Tasks, sum.Impls, sum.Resources, sum.Goal)
				if sum.Plan != nil {
					cc.Printf("%s plan %s: %d tasks, makespan %d\n",
						st.Success.Render("valid"), sum.Plan.ID, sum.Plan.Tasks, sum.Plan.Makespan)
				}
				return nil
			}
			f, err := cc.Formatter()
			if err != nil {
				return err
			}
			return f.Format(sum)
		}),
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "also check a saved plan file against the problem")
	return cmd
}

// checkPlanAgainst reports the first task or implementation of p that the
// problem does not declare.
func checkPlanAgainst(p *plan.Plan, net *sanet.Network, cat *catalog.TaskMap) error {
	known := make(map[domain.TaskID]bool)
	for _, task := range net.Tasks() {
		known[task] = true
	}
	for _, t := range p.Tasks {
		if !known[t.Task] {
			return errors.NewPlanMismatchError(fmt.Sprintf("%s runs unknown task %d", t.Inst, t.Task))
		}
		if t.Impl == domain.NullTaskImplID {
			continue
		}
		impl, err := cat.Impl(t.Impl)
		if err != nil {
			return errors.NewPlanMismatchError(fmt.Sprintf("%s is bound to unknown implementation %s", t.Inst, t.Impl))
		}
		if impl.Task != t.Task {
			return errors.NewPlanMismatchError(fmt.Sprintf("%s binds %s, an implementation of task %d", t.Inst, t.Impl, impl.Task))
		}
	}
	return nil
}
