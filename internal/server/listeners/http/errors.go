package http

import (
	"errors"
	"fmt"
)

var (
	ErrBind            = errors.New("failed to bind listener")
	ErrInvalidListener = errors.New("invalid listener")
	ErrAlreadyStarted  = errors.New("listener already started")
	ErrDrainTimeout    = errors.New("drain timed out")
)

// BindError is returned by Start when the listening socket cannot be opened, for example
// because the port is in use or the address does not parse.
type BindError struct {
	ListenerID string
	Address    string
	Err        error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%s %s on %s: %v", ErrBind, e.ListenerID, e.Address, e.Err)
}

// Unwrap exposes both ErrBind and the underlying network error.
func (e *BindError) Unwrap() []error {
	return []error{ErrBind, e.Err}
}
