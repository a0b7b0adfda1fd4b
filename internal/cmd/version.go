package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/plansched/internal/version"
)

func newVersionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: cobra.NoArgs,
		RunE: runWith(func(cmd *cobra.Command, cc *CommandContext, args []string) error {
			info := version.GetInfo()
			if !cc.Text() {
				f, err := cc.Formatter()
				if err != nil {
					return err
				}
				return f.Format(info)
			}
			if verbose {
				cc.Printf("%s\n", info.String())
				return nil
			}
			cc.Printf("plansched %s\n", info.Short())
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	return cmd
}
