package core

import "errors"

var (
	ErrDuplicateListener = errors.New("duplicate listener")
	ErrUnknownListener   = errors.New("unknown listener")
	ErrNoListeners       = errors.New("no listener could be started")
	ErrAlreadyStarted    = errors.New("server already started")
	ErrShuttingDown      = errors.New("server is shutting down")
)
