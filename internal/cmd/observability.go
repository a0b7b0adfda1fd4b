package cmd

import (
	"context"
	"io"
	"time"

	"github.com/felixgeelhaar/plansched/internal/config"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/telemetry"
	"github.com/felixgeelhaar/plansched/internal/version"
)

// setupLogging builds the logger for one run and installs it as the default.
// debugSearch overrides the configured level and format.
func setupLogging(cfg *config.Config, w io.Writer, debugSearch bool) *log.Logger {
	lc := cfg.LoggerConfig(version.GetInfo().Version)
	if debugSearch {
		lc = log.SearchDebugConfig()
		lc.ServiceVersion = version.GetInfo().Version
	}
	lc.Output = w
	logger := log.New(lc)
	log.SetDefaultLogger(logger)
	return logger
}

// setupTelemetry installs the tracer provider. Spans go to the log at
// debug level. The returned function flushes and shuts the provider down.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *log.Logger) func() {
	if ctx == nil {
		ctx = context.Background()
	}
	tc := cfg.TracerConfig(version.GetInfo().Version)
	provider, err := telemetry.InitProvider(ctx, tc, telemetry.NewLogExporter(logger))
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
		return func() {}
	}
	if provider.Enabled() {
		logger.Debug("telemetry enabled", "sample_rate", tc.SampleRate)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush telemetry", "error", err)
		}
	}
}
