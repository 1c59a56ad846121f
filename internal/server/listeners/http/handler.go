package http

import (
	"fmt"
	"net/http"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

// NewHandler wraps h in a go-supervisor middleware chain. Middlewares run in the order given,
// the first one outermost. Every path on the listener passes through the chain; path matching
// is left to h.
func NewHandler(
	id string,
	h http.Handler,
	middlewares ...httpserver.HandlerFunc,
) (http.Handler, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty ID", ErrInvalidListener)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %s has no handler", ErrInvalidListener, id)
	}

	route, err := httpserver.NewRouteFromHandlerFunc(id, "/", h.ServeHTTP, middlewares...)
	if err != nil {
		return nil, fmt.Errorf("failed to build handler chain for %s: %w", id, err)
	}
	return route, nil
}
