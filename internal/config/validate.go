package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/atlanticdynamic/lynxlet/internal/config/errz"
	"github.com/atlanticdynamic/lynxlet/internal/logging"
	"golang.org/x/net/http/httpguts"
)

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: logging level: %w", errz.ErrInvalidValue, err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: logging format %q", errz.ErrInvalidValue, c.Logging.Format))
	}
	if c.ShutdownGrace < 0 {
		errs = append(errs,
			fmt.Errorf("%w: shutdown_grace %s is negative", errz.ErrInvalidValue, c.ShutdownGrace))
	}

	ids := make(map[string]bool, len(c.Listeners))
	addrs := make(map[string]string, len(c.Listeners))
	for i, l := range c.Listeners {
		if l.ID == "" {
			errs = append(errs, fmt.Errorf("%w: listener %d", errz.ErrEmptyID, i))
		} else if ids[l.ID] {
			errs = append(errs, fmt.Errorf("%w: listener %q", errz.ErrDuplicateID, l.ID))
		}
		ids[l.ID] = true

		if l.Port > 0 {
			addr := net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
			if other, taken := addrs[addr]; taken {
				errs = append(errs, fmt.Errorf(
					"%w: listeners %q and %q both use %s", errz.ErrAddressConflict, other, l.ID, addr))
			}
			addrs[addr] = l.ID
		}

		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("listener %q: %w", l.ID, err))
		}
	}

	return errors.Join(errs...)
}

// Validate checks one listener and its routes.
func (l Listener) Validate() error {
	var errs []error

	if l.Port < 0 || l.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: port %d out of range 0-65535", errz.ErrInvalidValue, l.Port))
	}
	for name, d := range map[string]Duration{
		"read_timeout":  l.ReadTimeout,
		"write_timeout": l.WriteTimeout,
		"idle_timeout":  l.IdleTimeout,
		"drain_timeout": l.DrainTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%w: %s %s is negative", errz.ErrInvalidValue, name, d))
		}
	}
	if err := l.Headers.Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool, len(l.Routes))
	for _, r := range l.Routes {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("route %s: %w", r.Key(), err))
			continue
		}
		if r.IsWildcard() {
			continue
		}
		if seen[r.Key()] {
			errs = append(errs, fmt.Errorf("%w: %s registered twice", errz.ErrRouteConflict, r.Key()))
		}
		seen[r.Key()] = true
	}

	return errors.Join(errs...)
}

// Validate checks the header names and values against RFC 7230.
func (h Headers) Validate() error {
	var errs []error
	for _, m := range []map[string]string{h.Set, h.Add, h.RequestSet} {
		for name, value := range m {
			if !httpguts.ValidHeaderFieldName(name) {
				errs = append(errs, fmt.Errorf("%w: name %q", errz.ErrInvalidHeader, name))
			}
			if !httpguts.ValidHeaderFieldValue(value) {
				errs = append(errs, fmt.Errorf("%w: value of %q", errz.ErrInvalidHeader, name))
			}
		}
	}
	for _, name := range slices.Concat(h.Remove, h.RequestRemove) {
		if !httpguts.ValidHeaderFieldName(name) {
			errs = append(errs, fmt.Errorf("%w: name %q", errz.ErrInvalidHeader, name))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the route pattern, method, and the fields its type requires.
func (r Route) Validate() error {
	var errs []error

	if !strings.HasPrefix(r.Path, "/") {
		errs = append(errs, fmt.Errorf("%w: path %q must start with /", errz.ErrInvalidValue, r.Path))
	} else if strings.Contains(strings.TrimSuffix(r.Path, "*"), "*") {
		errs = append(errs, fmt.Errorf("%w: path %q may only end in *", errz.ErrInvalidValue, r.Path))
	}
	if !validMethod(r.Method) {
		errs = append(errs, fmt.Errorf("%w: method %q", errz.ErrInvalidValue, r.Method))
	}

	switch r.Type {
	case RouteText, RouteJSON, RouteTime, RouteShutdown:
	case RouteStatic:
		if r.Root == "" {
			errs = append(errs, fmt.Errorf("%w: static route needs a root", errz.ErrMissingRequiredField))
		}
		if !r.IsWildcard() {
			errs = append(errs, fmt.Errorf("%w: static path %q must end in *", errz.ErrInvalidValue, r.Path))
		}
	case RouteReroute:
		if !strings.HasPrefix(r.Target, "/") {
			errs = append(errs, fmt.Errorf(
				"%w: reroute needs a target starting with /", errz.ErrMissingRequiredField))
		}
	case "":
		errs = append(errs, fmt.Errorf("%w: type", errz.ErrMissingRequiredField))
	default:
		errs = append(errs, fmt.Errorf("%w: %q, expected one of %s",
			errz.ErrInvalidRouteType, r.Type, strings.Join(RouteTypes, ", ")))
	}

	return errors.Join(errs...)
}

func validMethod(m string) bool {
	if m == "*" || m == "ANY" {
		return true
	}
	if m == "" {
		return false
	}
	for _, c := range m {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
