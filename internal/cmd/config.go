package cmd

import (
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, PLANSCHED_*
environment variables and command line flags are applied. Text output is
YAML that can be saved as ~/.plansched/config.yaml.`,
		Args: cobra.NoArgs,
		RunE: runWith(func(cmd *cobra.Command, cc *CommandContext, args []string) error {
			f, err := cc.Formatter()
			if err != nil {
				return err
			}
			return f.Format(cc.Config)
		}),
	}
}
