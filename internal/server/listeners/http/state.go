package http

import (
	"context"

	"github.com/atlanticdynamic/lynxlet/internal/server/finitestate"
	"github.com/robbyt/go-supervisor/supervisor"
)

var _ supervisor.Stateable = (*Listener)(nil)

// GetState returns the current lifecycle state.
func (l *Listener) GetState() string {
	return l.fsm.GetState()
}

// GetStateChan returns a channel that emits lifecycle state changes.
func (l *Listener) GetStateChan(ctx context.Context) <-chan string {
	return l.fsm.GetStateChan(ctx)
}

// IsRunning reports whether the listener is accepting connections.
func (l *Listener) IsRunning() bool {
	return l.fsm.GetState() == finitestate.StatusRunning
}

// setState records a transition, forcing it when the FSM rejects the move.
func (l *Listener) setState(state string) {
	if err := l.fsm.Transition(state); err != nil {
		l.logger.Debug("Forcing listener state", "state", state, "error", err)
		if err := l.fsm.SetState(state); err != nil {
			l.logger.Error("Failed to set listener state", "state", state, "error", err)
		}
	}
	l.logger.Debug("Listener state changed", "state", finitestate.Describe(state))
}
