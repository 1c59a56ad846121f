package core

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*Server)

// WithLogHandler sets a custom slog handler for the Server and the listeners it creates.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *Server) {
		if handler != nil {
			s.logHandler = handler
			s.logger = slog.New(handler).WithGroup("core.Server")
		}
	}
}

// WithShutdownGrace bounds how long shutdown waits for in-flight requests across all listeners.
func WithShutdownGrace(grace time.Duration) Option {
	return func(s *Server) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// WithMessages sets lines printed to out once every listener is up and once the server has
// stopped. Empty messages are skipped.
func WithMessages(out io.Writer, started, stopped string) Option {
	return func(s *Server) {
		if out != nil {
			s.out = out
		}
		s.startedMessage = started
		s.stoppedMessage = stopped
	}
}
