// Package errz holds the sentinel errors shared by the config package and its callers.
package errz

import "errors"

// Loading
var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")
	ErrUnsupportedFormat      = errors.New("unsupported config format")
	ErrUnknownSample          = errors.New("unknown sample config")
)

// Validation
var (
	ErrDuplicateID          = errors.New("duplicate ID")
	ErrEmptyID              = errors.New("empty ID")
	ErrInvalidValue         = errors.New("invalid value")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrRouteConflict        = errors.New("route conflict")
	ErrAddressConflict      = errors.New("address conflict")
	ErrInvalidRouteType     = errors.New("invalid route type")
	ErrInvalidHeader        = errors.New("invalid header")
)
