package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// DefaultRerouteLimit bounds how many times one request may be rerouted.
const DefaultRerouteLimit = 10

// Interface guard
var _ http.Handler = (*Router)(nil)

// routeTable is an immutable snapshot of the registered routes, in registration order.
type routeTable struct {
	exact    []Route
	wildcard []Route
	all      []Route
}

// Router dispatches requests to the routes registered on it. Registration and dispatch are safe
// to run concurrently: registration swaps in a new table, so a dispatch always sees either the
// old or the new list of routes in full.
type Router struct {
	logger       *slog.Logger
	rerouteLimit int

	mu    sync.Mutex
	table atomic.Pointer[routeTable]
}

// NewRouter creates an empty Router.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		logger:       slog.Default().WithGroup("routing.Router"),
		rerouteLimit: DefaultRerouteLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.table.Store(&routeTable{})
	return r
}

// Handle registers a handler for the method and pattern. Registering the same method and exact
// path twice returns a *DuplicateRouteError. Overlapping wildcards are allowed.
func (rt *Router) Handle(method, pattern string, handler Handler) error {
	route, err := NewRoute(method, pattern, handler)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	current := rt.table.Load()
	if !route.wildcard {
		for _, existing := range current.exact {
			if existing.Method == route.Method && existing.prefix == route.prefix {
				return &DuplicateRouteError{Method: route.Method, Path: route.Pattern}
			}
		}
	}

	next := &routeTable{
		exact:    append([]Route(nil), current.exact...),
		wildcard: append([]Route(nil), current.wildcard...),
		all:      append(append([]Route(nil), current.all...), route),
	}
	if route.wildcard {
		next.wildcard = append(next.wildcard, route)
	} else {
		next.exact = append(next.exact, route)
	}
	rt.table.Store(next)

	rt.logger.Debug("Registered route", "method", route.Method, "pattern", route.Pattern)
	return nil
}

// HandleFunc registers a plain function as a handler.
func (rt *Router) HandleFunc(
	method, pattern string,
	fn func(ctx context.Context, w http.ResponseWriter, r *http.Request) error,
) error {
	if fn == nil {
		return rt.Handle(method, pattern, nil)
	}
	return rt.Handle(method, pattern, HandlerFunc(fn))
}

// Get registers a handler for GET requests.
func (rt *Router) Get(pattern string, handler Handler) error {
	return rt.Handle(http.MethodGet, pattern, handler)
}

// Routes returns the registered routes in registration order.
func (rt *Router) Routes() []Route {
	t := rt.table.Load()
	routes := make([]Route, len(t.all))
	copy(routes, t.all)
	return routes
}

// Match returns the route that would handle the method and path. Exact routes win, in
// registration order; otherwise the wildcard with the longest literal prefix wins, with ties
// going to the one registered first.
func (rt *Router) Match(method, path string) (Route, bool) {
	t := rt.table.Load()

	for _, route := range t.exact {
		if route.matchesExact(method, path) {
			return route, true
		}
	}

	var best *Route
	for i := range t.wildcard {
		route := &t.wildcard[i]
		if !route.matchesPrefix(method, path) {
			continue
		}
		if best == nil || len(route.prefix) > len(best.prefix) {
			best = route
		}
	}
	if best == nil {
		return Route{}, false
	}
	return *best, true
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.dispatch(wrapResponse(w), r)
}

// Reroute dispatches the request again as if it had been sent to path, reusing w. It must be
// called from inside a handler dispatched by this router, and that handler should return right
// after: the response is complete once Reroute returns. Once the response has started, Reroute
// refuses with ErrResponseWritten.
func (rt *Router) Reroute(w http.ResponseWriter, r *http.Request, path string) error {
	rw, ok := w.(*response)
	if !ok {
		return fmt.Errorf("%w: reroute to %s", ErrNoRouter, path)
	}

	if rw.Written() {
		return fmt.Errorf("%w: cannot reroute to %s", ErrResponseWritten, path)
	}

	state := stateFromContext(r.Context())
	if state.depth >= rt.rerouteLimit {
		return fmt.Errorf("%w: %d reroutes, last target %s", ErrRerouteLimit, state.depth, path)
	}

	target, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, path, err)
	}

	rerouted := r.Clone(r.Context())
	rerouted.URL.Path = target.Path
	rerouted.URL.RawPath = target.RawPath
	if target.RawQuery != "" {
		rerouted.URL.RawQuery = target.RawQuery
	}
	rerouted.RequestURI = rerouted.URL.RequestURI()

	rt.logger.Debug("Rerouting request", "from", r.URL.Path, "to", rerouted.URL.Path)
	rt.dispatch(rw, rerouted)
	return nil
}

// dispatch runs exactly one handler for the request, or writes a 404 when nothing matches.
func (rt *Router) dispatch(rw *response, r *http.Request) {
	parent := stateFromContext(r.Context())
	state := &dispatchState{router: rt, depth: parent.depth}
	if parent.router != nil {
		state.depth++
	}
	r = r.WithContext(context.WithValue(r.Context(), stateKey{}, state))

	route, ok := rt.Match(r.Method, r.URL.Path)
	if !ok {
		rt.logger.Debug("No matching route", "method", r.Method, "path", r.URL.Path)
		rw.fail(http.StatusNotFound, "")
		return
	}

	err := rt.invoke(route, rw, r)
	switch {
	case err == nil:
		rw.complete()
	case errors.Is(err, ErrNotFound):
		if !rw.fail(http.StatusNotFound, "") {
			rw.complete()
		}
	default:
		rt.logger.Error("Handler failed",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route.Pattern,
			"error", err)
		if !rw.fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)) {
			rw.complete()
		}
	}
}

// invoke calls the handler and converts a panic into an error. http.ErrAbortHandler is re-raised
// so the server can abort the connection as usual.
func (rt *Router) invoke(route Route, rw *response, r *http.Request) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		err = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
	}()
	return route.Handler.HandleHTTP(r.Context(), rw, r)
}

// Reroute re-dispatches the request through the router that is currently serving it.
func Reroute(w http.ResponseWriter, r *http.Request, path string) error {
	state := stateFromContext(r.Context())
	if state.router == nil {
		return fmt.Errorf("%w: reroute to %s", ErrNoRouter, path)
	}
	return state.router.Reroute(w, r, path)
}

type stateKey struct{}

type dispatchState struct {
	router *Router
	depth  int
}

func stateFromContext(ctx context.Context) dispatchState {
	if s, ok := ctx.Value(stateKey{}).(*dispatchState); ok && s != nil {
		return *s
	}
	return dispatchState{}
}
