package apps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const DefaultShutdownBody = "Bye!"

// Shutdown answers the request and then fires the shutdown signal. The response is flushed
// before the signal fires, and listener draining lets it finish before the process exits.
type Shutdown struct {
	id      string
	body    []byte
	trigger ShutdownTrigger
	logger  *slog.Logger
}

// NewShutdown creates a Shutdown app. An empty body means DefaultShutdownBody.
func NewShutdown(id, body string, trigger ShutdownTrigger, logger *slog.Logger) (*Shutdown, error) {
	if trigger == nil {
		return nil, fmt.Errorf("%w: %s: no shutdown trigger", ErrInvalidConfig, id)
	}
	if body == "" {
		body = DefaultShutdownBody
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Shutdown{id: id, body: []byte(body), trigger: trigger, logger: logger}, nil
}

func (a *Shutdown) String() string { return a.id }

// HandleHTTP writes the body, flushes it, and triggers shutdown.
func (a *Shutdown) HandleHTTP(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", DefaultTextContentType)
	w.Header().Set("Connection", "close")
	if _, err := w.Write(a.body); err != nil {
		a.logger.Warn("Failed to write shutdown response", "error", err)
	}
	err := http.NewResponseController(w).Flush()
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		a.logger.Warn("Failed to flush shutdown response", "error", err)
	}

	if a.trigger.Trigger() {
		a.logger.Info("Shutdown requested", "route", a.id, "remote", r.RemoteAddr)
	}
	return nil
}
