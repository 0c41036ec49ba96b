package logging

import "log/slog"

// Custom levels on top of the slog defaults.
const (
	// LevelTrace is more verbose than Debug.
	LevelTrace = slog.LevelDebug - 4

	// LevelCritical marks failures that affect the whole run rather than a single rule.
	LevelCritical = slog.LevelError + 4
)

// LevelFromVerbosity maps a -v count to a minimum log level.
//
//	0 -> Warn, 1 -> Info, 2 -> Debug, 3+ -> Trace
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns the display name for a level, including the custom ones.
func LevelName(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelCritical:
		return "CRITICAL"
	default:
		return l.String()
	}
}

// ReplaceLevel is a slog.HandlerOptions.ReplaceAttr func that renders the
// custom levels by name in the built-in text and JSON handlers.
func ReplaceLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}
