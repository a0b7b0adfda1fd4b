package telemetry

import "time"

// Config holds configuration for the tracer.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// Environment is reported as deployment.environment.
	Environment string

	// Enabled selects the SDK provider; otherwise spans are noops.
	Enabled bool

	// SampleRate is the fraction of searches recorded, within [0, 1].
	SampleRate float64

	// BatchTimeout batches exports when positive. Zero exports each span
	// as it ends, which suits one-shot CLI runs.
	BatchTimeout time.Duration
}

// DefaultConfig returns the CLI default: tracing disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "plansched",
		ServiceVersion: "dev",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// DevelopmentConfig enables tracing with every search sampled.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	return cfg
}
