package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log severity. LevelTrace sits below LevelDebug and records
// every alternative the search applies, which is too noisy for debug.
type Level int

const (
	LevelTrace Level = iota - 1
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// slogTrace is the slog level behind LevelTrace.
const slogTrace = slog.LevelDebug - 4

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// LevelNames lists the accepted level names, most verbose first.
func LevelNames() []string {
	out := make([]string, len(levelNames))
	for i, n := range levelNames {
		out[i] = n.name
	}
	return out
}

func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return strings.ToUpper(n.name)
		}
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ToSlogLevel maps l onto slog. Unknown levels map to info.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slogTrace
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a level name, ignoring case. "warning" is accepted
// for warn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for _, n := range levelNames {
		if n.name == name {
			return n.level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q, want one of %s", s, strings.Join(LevelNames(), ", "))
}

// replaceLevel prints slogTrace as TRACE rather than DEBUG-4.
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == slogTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
