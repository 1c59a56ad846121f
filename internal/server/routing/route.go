// Package routing maps (method, path pattern) pairs to handlers and dispatches requests to them.
package routing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// MethodAny matches every HTTP method.
const MethodAny = "*"

// Handler is anything that can accept a request and produce a response. A returned error is
// reported to the client as a 500, unless the handler already started writing its response.
type Handler interface {
	HandleHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// HandleHTTP calls f(ctx, w, r).
func (f HandlerFunc) HandleHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return f(ctx, w, r)
}

// Route is a single immutable binding of a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler Handler

	// prefix is the literal part of a wildcard pattern, or the full path of an exact one
	prefix   string
	wildcard bool
}

// NewRoute parses the pattern and builds a Route. Patterns must start with "/". A trailing "*"
// turns the pattern into a prefix match on everything before it; "*" anywhere else is rejected.
func NewRoute(method, pattern string, handler Handler) (Route, error) {
	if handler == nil {
		return Route{}, fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern)
	}

	m, err := normalizeMethod(method)
	if err != nil {
		return Route{}, err
	}

	if !strings.HasPrefix(pattern, "/") {
		return Route{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}

	wildcard := strings.HasSuffix(pattern, "*")
	prefix := strings.TrimSuffix(pattern, "*")
	if strings.Contains(prefix, "*") {
		return Route{}, fmt.Errorf(
			"%w: %q may only contain * as the final character",
			ErrInvalidPattern,
			pattern,
		)
	}

	return Route{
		Method:   m,
		Pattern:  pattern,
		Handler:  handler,
		prefix:   prefix,
		wildcard: wildcard,
	}, nil
}

// IsWildcard reports whether the route matches by prefix.
func (r Route) IsWildcard() bool {
	return r.wildcard
}

// Prefix returns the literal portion of the pattern.
func (r Route) Prefix() string {
	return r.prefix
}

// String returns a short description of the route.
func (r Route) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Pattern)
}

func (r Route) matchesMethod(method string) bool {
	return r.Method == MethodAny || r.Method == method
}

// matchesExact is true for exact routes whose path equals the request path.
func (r Route) matchesExact(method, path string) bool {
	return !r.wildcard && r.prefix == path && r.matchesMethod(method)
}

// matchesPrefix is true for wildcard routes whose literal prefix starts the request path. A
// prefix ending in "/" also matches the bare path without it, so "/static/*" serves "/static".
func (r Route) matchesPrefix(method, path string) bool {
	if !r.wildcard || !r.matchesMethod(method) {
		return false
	}
	if strings.HasPrefix(path, r.prefix) {
		return true
	}
	bare := strings.TrimSuffix(r.prefix, "/")
	return bare != "" && bare != r.prefix && path == bare
}

func normalizeMethod(method string) (string, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case "":
		return http.MethodGet, nil
	case MethodAny, "ANY":
		return MethodAny, nil
	}

	// methods are RFC 7230 tokens, the same grammar as header field names
	if !httpguts.ValidHeaderFieldName(m) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	return m, nil
}
