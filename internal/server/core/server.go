// Package core is the façade that owns the listeners, their routers and the shutdown signal.
// Listeners are declared up front with AddListener, routes are registered with Handle, and Run
// keeps everything serving until the shutdown signal fires.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/atlanticdynamic/lynxlet/internal/server/lifecycle"
	httplistener "github.com/atlanticdynamic/lynxlet/internal/server/listeners/http"
	"github.com/atlanticdynamic/lynxlet/internal/server/routing"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
)

// DefaultShutdownGrace bounds the whole shutdown when no grace is configured.
const DefaultShutdownGrace = 5 * time.Second

var _ supervisor.Runnable = (*Server)(nil)

// ListenerSpec describes a listener to add.
type ListenerSpec struct {
	ID          string
	Address     string
	Port        int
	Timeouts    httplistener.Timeouts
	Middlewares []httpserver.HandlerFunc
}

type binding struct {
	listener *httplistener.Listener
	router   *routing.Router
}

// Server owns every listener in the process. Shutdown is process-wide: firing the signal stops
// all listeners at once.
type Server struct {
	logger     *slog.Logger
	logHandler slog.Handler
	grace      time.Duration

	out            io.Writer
	startedMessage string
	stoppedMessage string

	signal  *lifecycle.Shutdown
	stopped chan struct{}

	// startMu is held while listeners bind, so stop never races a listener coming up
	startMu sync.Mutex

	mu       sync.Mutex
	bindings []binding
	closers  []io.Closer
	started  bool
}

// New creates a Server with no listeners.
func New(opts ...Option) *Server {
	s := &Server{
		logger:     slog.Default().WithGroup("core.Server"),
		logHandler: slog.Default().Handler(),
		grace:      DefaultShutdownGrace,
		out:        os.Stdout,
		signal:     lifecycle.NewShutdown(),
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.signal.OnTrigger(func() { go s.stop() })
	return s
}

// String returns the name of this runnable component.
func (s *Server) String() string {
	return "core.Server"
}

// Signal returns the shutdown signal, for handlers that need to trigger it.
func (s *Server) Signal() *lifecycle.Shutdown {
	return s.signal
}

// AddListener declares a listener and returns the router serving it. The socket is not bound
// until Start.
func (s *Server) AddListener(spec ListenerSpec) (*routing.Router, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, fmt.Errorf("%w: cannot add listener %s", ErrAlreadyStarted, spec.ID)
	}
	for _, b := range s.bindings {
		if b.listener.ID() == spec.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateListener, spec.ID)
		}
	}

	router := routing.NewRouter(routing.WithLogHandler(s.logHandler))
	handler, err := httplistener.NewHandler(spec.ID, router, spec.Middlewares...)
	if err != nil {
		return nil, err
	}
	listener, err := httplistener.NewListener(spec.ID, spec.Address, spec.Port, handler,
		httplistener.WithLogHandler(s.logHandler),
		httplistener.WithTimeouts(spec.Timeouts),
	)
	if err != nil {
		return nil, err
	}

	s.bindings = append(s.bindings, binding{listener: listener, router: router})
	return router, nil
}

// Handle registers a route on the listener with the given ID. Routes may be added while the
// listener is serving.
func (s *Server) Handle(listenerID, method, pattern string, handler routing.Handler) error {
	router, ok := s.Router(listenerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownListener, listenerID)
	}
	return router.Handle(method, pattern, handler)
}

// Router returns the router of the listener with the given ID.
func (s *Server) Router(listenerID string) (*routing.Router, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bindings {
		if b.listener.ID() == listenerID {
			return b.router, true
		}
	}
	return nil, false
}

// Listener returns the listener with the given ID.
func (s *Server) Listener(id string) (*httplistener.Listener, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bindings {
		if b.listener.ID() == id {
			return b.listener, true
		}
	}
	return nil, false
}

// Listeners returns every listener in the order they were added.
func (s *Server) Listeners() []*httplistener.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*httplistener.Listener, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b.listener)
	}
	return out
}

// AddCloser registers a resource released after every listener has stopped.
func (s *Server) AddCloser(c io.Closer) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, c)
}

// Start binds every listener. A listener that fails to bind is logged and left in the Failed
// state while the others keep serving; only when all of them fail does Start return an error,
// joining every bind failure. With no listeners at all, the server starts and shuts down at once.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	if s.signal.Triggered() {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	s.started = true
	bindings := append([]binding(nil), s.bindings...)
	s.mu.Unlock()

	var errs []error
	s.startMu.Lock()
	for _, b := range bindings {
		if err := b.listener.Start(ctx); err != nil {
			s.logger.Error("Failed to start listener", "id", b.listener.ID(), "error", err)
			errs = append(errs, err)
		}
	}
	s.startMu.Unlock()

	if len(bindings) > 0 && len(errs) == len(bindings) {
		s.signal.Trigger()
		<-s.stopped
		return fmt.Errorf("%w: %w", ErrNoListeners, errors.Join(errs...))
	}

	s.logger.Info("Server started", "listeners", len(bindings)-len(errs), "failed", len(errs))
	s.print(s.startedMessage)

	if len(bindings) == 0 {
		s.logger.Info("No listeners configured, shutting down")
		s.signal.Trigger()
	}
	return nil
}

// Shutdown fires the shutdown signal. It is idempotent and returns immediately; use Done to wait
// for the listeners to stop.
func (s *Server) Shutdown() {
	if s.signal.Trigger() {
		s.logger.Info("Shutdown triggered")
	}
}

// Done returns a channel closed once shutdown has completed.
func (s *Server) Done() <-chan struct{} {
	return s.stopped
}

// Run starts the server if needed and blocks until it has shut down. Canceling ctx triggers
// shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		s.Shutdown()
	case <-s.signal.Done():
	}
	<-s.stopped
	return nil
}

// Stop triggers shutdown without waiting for it.
func (s *Server) Stop() {
	s.Shutdown()
}

// stop drains every listener in parallel, bounded by the grace period, then releases closers.
// It runs once, from the shutdown signal.
func (s *Server) stop() {
	defer close(s.stopped)

	// wait for a Start in progress to finish binding
	s.startMu.Lock()
	s.startMu.Unlock()

	s.mu.Lock()
	bindings := append([]binding(nil), s.bindings...)
	closers := append([]io.Closer(nil), s.closers...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()

	var wg sync.WaitGroup
	for _, b := range bindings {
		wg.Add(1)
		go func(l *httplistener.Listener) {
			defer wg.Done()
			if err := l.Shutdown(ctx); err != nil {
				s.logger.Warn("Listener did not stop cleanly", "id", l.ID(), "error", err)
			}
		}(b.listener)
	}
	wg.Wait()

	for _, c := range closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("Failed to release resource", "error", err)
		}
	}

	s.logger.Info("Server stopped")
	s.print(s.stoppedMessage)
}

func (s *Server) print(msg string) {
	if msg == "" {
		return
	}
	if _, err := fmt.Fprintln(s.out, msg); err != nil {
		s.logger.Warn("Failed to write message", "error", err)
	}
}
