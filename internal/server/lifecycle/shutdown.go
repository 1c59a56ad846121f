// Package lifecycle provides the process-wide shutdown signal.
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Shutdown is a one-shot broadcast. The first Trigger closes the Done channel and runs the
// registered callbacks; every later Trigger is a no-op. It is safe to trigger from any number of
// goroutines at once.
type Shutdown struct {
	once      sync.Once
	done      chan struct{}
	triggered atomic.Bool

	mu        sync.Mutex
	callbacks []func()
}

// NewShutdown returns an untriggered signal.
func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Trigger fires the signal. It reports whether this call was the one that fired it.
func (s *Shutdown) Trigger() bool {
	fired := false
	s.once.Do(func() {
		fired = true
		s.triggered.Store(true)
		close(s.done)

		s.mu.Lock()
		callbacks := s.callbacks
		s.callbacks = nil
		s.mu.Unlock()

		for _, fn := range callbacks {
			fn()
		}
	})
	return fired
}

// Done returns a channel that is closed once the signal fires.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

// Triggered reports whether the signal has fired.
func (s *Shutdown) Triggered() bool {
	return s.triggered.Load()
}

// OnTrigger registers fn to run when the signal fires. If it already fired, fn runs right away.
func (s *Shutdown) OnTrigger(fn func()) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	if !s.triggered.Load() {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}
