// Package config handles plansched configuration using Viper.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// config file, and PLANSCHED_* environment variables (PLANSCHED_PLANNER_THRESHOLD
// sets planner.threshold).
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/log"
	"github.com/felixgeelhaar/plansched/internal/strategy"
	"github.com/felixgeelhaar/plansched/internal/telemetry"
	"github.com/felixgeelhaar/plansched/internal/ux"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "PLANSCHED"

// Config holds the application configuration.
type Config struct {
	Planner   PlannerConfig   `mapstructure:"planner" yaml:"planner" json:"planner"`
	Log       LogConfig       `mapstructure:"log" yaml:"log" json:"log"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`
}

// PlannerConfig bounds the search.
type PlannerConfig struct {
	Threshold    float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	SASteps      int     `mapstructure:"sa_steps" yaml:"sa_steps" json:"sa_steps"`
	MaxDecisions int     `mapstructure:"max_decisions" yaml:"max_decisions" json:"max_decisions"`
	MaxInstances int     `mapstructure:"max_instances" yaml:"max_instances" json:"max_instances"`
	Horizon      int64   `mapstructure:"horizon" yaml:"horizon" json:"horizon"`

	// OpenCondOrder is "newest" (depth first) or "goal" (goal conditions first).
	OpenCondOrder string `mapstructure:"open_cond_order" yaml:"open_cond_order" json:"open_cond_order"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// OutputConfig controls how plans are written.
type OutputConfig struct {
	// Format is text, json or yaml.
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	// Color enables lipgloss styling of text output.
	Color bool `mapstructure:"color" yaml:"color" json:"color"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate"`
	Environment string  `mapstructure:"environment" yaml:"environment" json:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("planner.threshold", 0.9)
	v.SetDefault("planner.sa_steps", 10)
	v.SetDefault("planner.max_decisions", 20000)
	v.SetDefault("planner.max_instances", 64)
	v.SetDefault("planner.horizon", 1000)
	v.SetDefault("planner.open_cond_order", "newest")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.environment", "development")
}

// Load reads configuration from path, or from $HOME/.plansched/config.yaml
// when path is empty, then applies environment overrides. A missing default
// config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".plansched"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config file", err).
				WithSuggestion("Check the file exists and is valid YAML")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	var issues []string
	if c.Planner.Threshold <= 0 || c.Planner.Threshold > 1 {
		issues = append(issues, fmt.Sprintf("planner.threshold %v must be within (0, 1]", c.Planner.Threshold))
	}
	if c.Planner.SASteps < 0 {
		issues = append(issues, "planner.sa_steps cannot be negative")
	}
	if c.Planner.MaxDecisions < 0 {
		issues = append(issues, "planner.max_decisions cannot be negative")
	}
	if c.Planner.MaxInstances <= 0 {
		issues = append(issues, "planner.max_instances must be positive")
	}
	if c.Planner.Horizon <= 0 {
		issues = append(issues, "planner.horizon must be positive")
	}
	if _, ok := strategy.ParseOpenCondOrder(c.Planner.OpenCondOrder); !ok {
		issues = append(issues, fmt.Sprintf("planner.open_cond_order %q must be newest or goal", c.Planner.OpenCondOrder))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		issues = append(issues, "log.level: "+err.Error())
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		issues = append(issues, "log.format: "+err.Error())
	}
	if _, err := ux.ParseFormat(c.Output.Format); err != nil {
		issues = append(issues, "output.format: "+err.Error())
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("telemetry.sample_rate %v must be within [0, 1]", c.Telemetry.SampleRate))
	}

	if len(issues) > 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid configuration: "+strings.Join(issues, "; ")).
			WithSuggestion("Run 'plansched config' to see the effective configuration")
	}
	return nil
}

// LoggerConfig converts the log section for log.New. Validate reports
// unknown level and format names; here they fall back to info and json.
func (c *Config) LoggerConfig(serviceVersion string) log.Config {
	cfg := log.DefaultConfig()
	cfg.Level, _ = log.ParseLevel(c.Log.Level)
	cfg.Format, _ = log.ParseFormat(c.Log.Format)
	cfg.ServiceVersion = serviceVersion
	return cfg
}

// PlanStrategy returns the default plan strategy with the configured open
// condition order.
func (c *Config) PlanStrategy() strategy.DefaultPlan {
	order, _ := strategy.ParseOpenCondOrder(c.Planner.OpenCondOrder)
	return strategy.DefaultPlan{Order: order}
}

// TracerConfig converts the telemetry section for telemetry.InitProvider.
func (c *Config) TracerConfig(serviceVersion string) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = c.Telemetry.Enabled
	cfg.SampleRate = c.Telemetry.SampleRate
	cfg.Environment = c.Telemetry.Environment
	cfg.ServiceVersion = serviceVersion
	return cfg
}
