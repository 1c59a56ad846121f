// Package http provides the HTTP listener: one bound socket, one http.Server, and a lifecycle
// state machine tracking it from creation to shutdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/atlanticdynamic/lynxlet/internal/server/finitestate"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Runnable = (*Listener)(nil)

// Listener serves one handler on one address.
type Listener struct {
	id       string
	address  string
	port     int
	handler  http.Handler
	timeouts Timeouts
	logger   *slog.Logger
	fsm      finitestate.Machine

	mu       sync.Mutex
	server   *http.Server
	served   chan struct{}
	bound    atomic.Value // net.Addr
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewListener creates a Listener in the Created state. Nothing is bound until Start.
func NewListener(
	id, address string,
	port int,
	handler http.Handler,
	opts ...Option,
) (*Listener, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty ID", ErrInvalidListener)
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %s: port %d out of range", ErrInvalidListener, id, port)
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: %s has no handler", ErrInvalidListener, id)
	}

	l := &Listener{
		id:       id,
		address:  address,
		port:     port,
		handler:  handler,
		timeouts: Timeouts{}.withDefaults(),
		logger:   slog.Default().WithGroup("http.Listener").With("id", id),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	machine, err := finitestate.New(l.logger.Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine for %s: %w", id, err)
	}
	l.fsm = machine
	return l, nil
}

// String returns a human-readable name for the listener.
func (l *Listener) String() string {
	return fmt.Sprintf("http.Listener[%s]", l.id)
}

// ID returns the listener identifier.
func (l *Listener) ID() string {
	return l.id
}

// ListenAddr returns the configured host:port.
func (l *Listener) ListenAddr() string {
	return net.JoinHostPort(l.address, strconv.Itoa(l.port))
}

// Addr returns the bound address, or nil before a successful Start. With port 0 this is where
// the kernel-chosen port can be read.
func (l *Listener) Addr() net.Addr {
	addr, _ := l.bound.Load().(net.Addr)
	return addr
}

// Start binds the socket and begins serving in the background. A bind failure leaves the
// listener in the Failed state and returns a *BindError.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyStarted, l.id, finitestate.Describe(l.fsm.GetState()))
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", l.ListenAddr())
	if err != nil {
		l.setState(finitestate.StatusError)
		return &BindError{ListenerID: l.id, Address: l.ListenAddr(), Err: err}
	}
	l.bound.Store(ln.Addr())

	l.server = &http.Server{
		Handler:      l.handler,
		ReadTimeout:  l.timeouts.Read,
		WriteTimeout: l.timeouts.Write,
		IdleTimeout:  l.timeouts.Idle,
		ErrorLog:     slog.NewLogLogger(l.logger.Handler(), slog.LevelWarn),
	}
	l.served = make(chan struct{})
	go l.serve(l.server, ln, l.served)

	l.setState(finitestate.StatusRunning)
	l.logger.Info("HTTP listener started", "address", ln.Addr().String())
	return nil
}

func (l *Listener) serve(server *http.Server, ln net.Listener, done chan<- struct{}) {
	defer close(done)
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.logger.Error("HTTP listener stopped serving", "error", err)
	}
}

// Shutdown stops accepting connections and waits for in-flight requests, bounded by the drain
// timeout and by ctx. When the bound is hit the remaining connections are closed and the error
// wraps ErrDrainTimeout. Listeners that are not running are left alone.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm.GetState() != finitestate.StatusRunning {
		return nil
	}
	l.setState(finitestate.StatusStopping)

	drainCtx, cancel := context.WithTimeout(ctx, l.timeouts.Drain)
	defer cancel()

	var result error
	if err := l.server.Shutdown(drainCtx); err != nil {
		l.logger.Warn("Closing connections that did not drain in time", "error", err)
		if closeErr := l.server.Close(); closeErr != nil {
			l.logger.Error("Failed to close HTTP server", "error", closeErr)
		}
		result = fmt.Errorf("%w: %s: %w", ErrDrainTimeout, l.id, err)
	}
	<-l.served

	l.setState(finitestate.StatusStopped)
	l.logger.Info("HTTP listener stopped")
	return result
}

// Run starts the listener and serves until ctx is canceled or Stop is called.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-l.stopCh:
	}
	return l.Shutdown(context.Background())
}

// Stop signals Run to shut the listener down.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
