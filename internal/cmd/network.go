package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/planner"
	"github.com/felixgeelhaar/plansched/internal/problem"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/workplan"
)

func newNetworkCmd() *cobra.Command {
	var (
		graphviz bool
		verbose  bool
		labels   bool
		steps    int
	)
	cmd := &cobra.Command{
		Use:   "network PROBLEM",
		Short: "Print the task network of a problem",
		Long: `Print the conditions, tasks and links of a problem's task network, with
the expected utilities spreading activation assigns toward its goal.

Examples:
  plansched network examples/problem.yaml --verbose
  plansched network examples/problem.yaml --graphviz | dot -Tsvg > net.svg`,
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

			if !cmd.Flags().Changed("sa-steps") {
				steps = cc.Config.Planner.SASteps
			}
			net.SetGoals(prob.Goal.DomainGoal().Conditions)
			net.Step(steps)

			pl := planner.New(planner.WithLogger(cc.Logger))
			pl.SetObjects(net, strategy.DefaultPlan{}, strategy.DefaultSched{}, workplan.New(net, cat), cat)

			if !graphviz {
				return pl.PrintNetwork(cc.Out, verbose)
			}
			graphmap := make(map[string]string)
			if err := pl.PrintNetworkGraphviz(cc.Out, graphmap); err != nil {
				return err
			}
			if labels {
				keys := make([]string, 0, len(graphmap))
				for k := range graphmap {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\t%q\n", k, graphmap[k])
				}
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&graphviz, "graphviz", false, "print the network as a Graphviz digraph")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include probabilities and link weights")
	cmd.Flags().BoolVar(&labels, "labels", false, "with --graphviz, list node and edge labels on stderr")
	cmd.Flags().IntVar(&steps, "sa-steps", 0, "spreading activation steps before printing")
	return cmd
}
