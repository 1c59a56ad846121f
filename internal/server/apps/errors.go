package apps

import "errors"

var (
	ErrUnknownType   = errors.New("unknown app type")
	ErrInvalidConfig = errors.New("invalid app config")
)
