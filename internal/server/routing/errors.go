package routing

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRoute  = errors.New("duplicate route")
	ErrInvalidPattern  = errors.New("invalid route pattern")
	ErrInvalidMethod   = errors.New("invalid route method")
	ErrNilHandler      = errors.New("handler cannot be nil")
	ErrHandlerPanic    = errors.New("handler panicked")
	ErrNotFound        = errors.New("not found")
	ErrRerouteLimit    = errors.New("reroute limit exceeded")
	ErrNoRouter        = errors.New("request is not being dispatched by a router")
	ErrResponseWritten = errors.New("response already completed")
)

// DuplicateRouteError is returned when an exact (method, path) pair is registered twice.
type DuplicateRouteError struct {
	Method string
	Path   string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrDuplicateRoute, e.Method, e.Path)
}

func (e *DuplicateRouteError) Unwrap() error {
	return ErrDuplicateRoute
}
