package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is the log encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// FormatNames lists the accepted format names.
func FormatNames() []string { return []string{"json", "text"} }

// ParseFormat parses a format name, ignoring case. "console" is accepted
// for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text", "console":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q, want one of %s", s, strings.Join(FormatNames(), ", "))
	}
}

// Config holds configuration for the logger.
type Config struct {
	Level  Level
	Format Format

	// Output receives log entries. Nil discards them.
	Output io.Writer

	// AddSource includes source file and line number in logs.
	AddSource bool

	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs at info level as JSON to stderr, which leaves stdout
// to plan reports.
func DefaultConfig() Config {
	return Config{
		Level:          LevelInfo,
		Format:         FormatJSON,
		Output:         os.Stderr,
		ServiceName:    "plansched",
		ServiceVersion: "dev",
	}
}

// SearchDebugConfig logs every search decision as text with source
// locations.
func SearchDebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = LevelTrace
	cfg.Format = FormatText
	cfg.AddSource = true
	return cfg
}
