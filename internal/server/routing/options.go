package routing

import "log/slog"

// Option configures a Router.
type Option func(*Router)

// WithLogHandler sets a custom slog handler for the Router.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Router) {
		if handler != nil {
			r.logger = slog.New(handler).WithGroup("routing.Router")
		}
	}
}

// WithLogger sets the logger for the Router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRerouteLimit caps the number of nested reroutes per request. Values below 1 are ignored.
func WithRerouteLimit(limit int) Option {
	return func(r *Router) {
		if limit > 0 {
			r.rerouteLimit = limit
		}
	}
}
