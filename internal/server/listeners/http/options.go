package http

import (
	"log/slog"
	"time"
)

// Default HTTP timeout values
const (
	DefaultReadTimeout  = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	DefaultIdleTimeout  = 120 * time.Second
	DefaultDrainTimeout = 5 * time.Second
)

// Timeouts holds the per-listener HTTP timeouts. Zero values fall back to the defaults.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
	Drain time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Read <= 0 {
		t.Read = DefaultReadTimeout
	}
	if t.Write <= 0 {
		t.Write = DefaultWriteTimeout
	}
	if t.Idle <= 0 {
		t.Idle = DefaultIdleTimeout
	}
	if t.Drain <= 0 {
		t.Drain = DefaultDrainTimeout
	}
	return t
}

// Option configures a Listener.
type Option func(*Listener)

// WithTimeouts overrides the HTTP timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(l *Listener) {
		l.timeouts = t.withDefaults()
	}
}

// WithLogHandler sets a custom slog handler for the Listener.
func WithLogHandler(handler slog.Handler) Option {
	return func(l *Listener) {
		if handler != nil {
			l.logger = slog.New(handler).WithGroup("http.Listener").With("id", l.id)
		}
	}
}

// WithLogger sets the logger for the Listener.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}
