package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/plansched/internal/config"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/metrics"
	"github.com/felixgeelhaar/plansched/internal/ux"
)

// CommandContext holds the configuration and observability handles of one
// command run, built from the persistent flags.
type CommandContext struct {
	Config  *config.Config
	Logger  *log.Logger
	Metrics *metrics.Metrics

	Out     io.Writer
	Quiet   bool
	NoColor bool

	registry    *prometheus.Registry
	metricsFile string
	started     time.Time
	name        string
	shutdown    func()
}

// NewCommandContext loads configuration, applies flag overrides and sets up
// logging, metrics and tracing. Callers must Close the context.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	for flag, dst := range map[string]*string{
		"log-level":  &cfg.Log.Level,
		"log-format": &cfg.Log.Format,
		"format":     &cfg.Output.Format,
	} {
		if flags.Changed(flag) {
			if *dst, err = flags.GetString(flag); err != nil {
				return nil, err
			}
		}
	}
	if flags.Changed("trace") {
		if cfg.Telemetry.Enabled, err = flags.GetBool("trace"); err != nil {
			return nil, err
		}
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return nil, err
	}
	metricsFile, err := flags.GetString("metrics-file")
	if err != nil {
		return nil, err
	}
	debugSearch, err := flags.GetBool("debug-search")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := setupLogging(cfg, cmd.ErrOrStderr(), debugSearch)
	registry, m := metrics.NewRegistry()
	shutdown := setupTelemetry(cmd.Context(), cfg, logger)

	return &CommandContext{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Out:         cmd.OutOrStdout(),
		Quiet:       quiet,
		NoColor:     noColor || !cfg.Output.Color,
		registry:    registry,
		metricsFile: metricsFile,
		started:     time.Now(),
		name:        cmd.Name(),
		shutdown:    shutdown,
	}, nil
}

// Formatter returns the output formatter selected by configuration.
func (c *CommandContext) Formatter() (ux.Formatter, error) {
	return ux.NewFormatter(c.Config.Output.Format, &ux.FormatterOptions{
		Writer:  c.Out,
		NoColor: c.NoColor,
	})
}

// Text reports whether output is human-readable text.
func (c *CommandContext) Text() bool {
	f, _ := ux.ParseFormat(c.Config.Output.Format)
	return f == ux.FormatText
}

// Styles returns the lipgloss styles for text output.
func (c *CommandContext) Styles() ux.Styles {
	if c.NoColor {
		return ux.PlainStyles()
	}
	return ux.DefaultStyles()
}

// Printf writes human-readable output unless quiet.
func (c *CommandContext) Printf(format string, args ...any) {
	if !c.Quiet {
		fmt.Fprintf(c.Out, format, args...)
	}
}

// Close records the command outcome, flushes tracing and writes the
// metrics file. It returns err unchanged unless writing metrics fails.
func (c *CommandContext) Close(err error) error {
	c.Metrics.RecordCommand(c.name, err, time.Since(c.started))
	c.shutdown()
	if c.metricsFile != "" {
		if werr := metrics.WriteTextfile(c.metricsFile, c.registry); werr != nil && err == nil {
			return fmt.Errorf("write metrics file: %w", werr)
		}
	}
	if err != nil {
		c.Logger.WithError(err).Debug("command failed", "command", c.name)
	}
	return err
}

// runWith wraps a command body with context setup and teardown.
func runWith(body func(cmd *cobra.Command, cc *CommandContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc, err := NewCommandContext(cmd)
		if err != nil {
			return err
		}
		return cc.Close(body(cmd, cc, args))
	}
}
