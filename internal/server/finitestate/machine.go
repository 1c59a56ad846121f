// Package finitestate holds the state machine that tracks a listener's lifecycle.
//
// A listener moves through New → Booting → Running → Stopping → Stopped. A failure to bind
// moves it from Booting to Error, and it never reaches Running. The states map onto the go-fsm
// typical transitions, so the library enforces the allowed moves.
package finitestate

import (
	"context"
	"log/slog"
	"time"

	"github.com/robbyt/go-fsm"
)

const (
	StatusNew      = fsm.StatusNew
	StatusBooting  = fsm.StatusBooting
	StatusRunning  = fsm.StatusRunning
	StatusStopping = fsm.StatusStopping
	StatusStopped  = fsm.StatusStopped
	StatusError    = fsm.StatusError
	StatusUnknown  = fsm.StatusUnknown
)

// broadcastTimeout bounds how long a state change waits on a slow subscriber.
const broadcastTimeout = 5 * time.Second

// Machine is the subset of the FSM used by listeners.
type Machine interface {
	Transition(state string) error
	TransitionBool(state string) bool
	SetState(state string) error
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
}

// ListenerFSM embeds fsm.Machine and delivers state changes synchronously, so subscribers see the
// Stopping and Stopped states even while the process is exiting.
type ListenerFSM struct {
	*fsm.Machine
}

// GetStateChan returns a channel of state changes that is closed when ctx is canceled.
func (m *ListenerFSM) GetStateChan(ctx context.Context) <-chan string {
	return m.GetStateChanWithOptions(ctx,
		fsm.WithSyncBroadcast(),
		fsm.WithSyncTimeout(broadcastTimeout),
	)
}

// New creates a machine in StatusNew.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusNew, fsm.TypicalTransitions)
	if err != nil {
		return nil, err
	}
	return &ListenerFSM{Machine: machine}, nil
}

// Describe returns the lifecycle name used in logs for a machine state.
func Describe(state string) string {
	switch state {
	case StatusNew:
		return "Created"
	case StatusBooting:
		return "Starting"
	case StatusRunning:
		return "Running"
	case StatusStopping:
		return "Stopping"
	case StatusStopped:
		return "Stopped"
	case StatusError:
		return "Failed"
	default:
		return "Unknown"
	}
}
