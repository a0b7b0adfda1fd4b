// Package cmd implements the plansched command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Every call returns a fresh tree so
// flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plansched",
		Short: "Integrated causal-link planner and resource scheduler",
		Long: `plansched searches for partial-order plans that achieve a goal in a
probabilistic task network, and schedules their task instances against
resource capacities and time windows. Planning and scheduling decisions
backtrack together, so a plan is only returned once it is also feasible.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.plansched/config.yaml)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.StringP("format", "f", "", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("quiet", "q", false, "only print errors")
	flags.Bool("debug-search", false, "log every search decision as text with source locations")
	flags.Bool("trace", false, "record tracing spans and log them at debug level")
	flags.String("metrics-file", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(
		newPlanCmd(),
		newNetworkCmd(),
		newValidateCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
