package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Counter wraps a handler and counts the records it sees at error level or
// above. Loggers derived via With/WithGroup share the same counts.
type Counter struct {
	next     slog.Handler
	errors   *atomic.Int64
	critical *atomic.Int64
}

// NewCounter returns a Counter forwarding to next.
func NewCounter(next slog.Handler) *Counter {
	return &Counter{
		next:     next,
		errors:   &atomic.Int64{},
		critical: &atomic.Int64{},
	}
}

// Enabled reports whether the wrapped handler is enabled. Error records are
// always counted, even when the wrapped handler would drop them.
func (c *Counter) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelError || c.next.Enabled(ctx, level)
}

// Handle counts r and forwards it if the wrapped handler is enabled for it.
func (c *Counter) Handle(ctx context.Context, r slog.Record) error {
	switch {
	case r.Level >= LevelCritical:
		c.critical.Add(1)
	case r.Level >= slog.LevelError:
		c.errors.Add(1)
	}
	if !c.next.Enabled(ctx, r.Level) {
		return nil
	}
	return c.next.Handle(ctx, r)
}

// WithAttrs returns a Counter sharing this one's counts.
func (c *Counter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Counter{next: c.next.WithAttrs(attrs), errors: c.errors, critical: c.critical}
}

// WithGroup returns a Counter sharing this one's counts.
func (c *Counter) WithGroup(name string) slog.Handler {
	return &Counter{next: c.next.WithGroup(name), errors: c.errors, critical: c.critical}
}

// Errors returns the number of error records seen. Critical records are not included.
func (c *Counter) Errors() int {
	return int(c.errors.Load())
}

// Critical returns the number of critical records seen.
func (c *Counter) Critical() int {
	return int(c.critical.Load())
}
