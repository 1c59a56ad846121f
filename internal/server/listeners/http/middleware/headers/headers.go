// Package headers rewrites request and response headers for every request on a listener.
//
// Operations are applied in the order remove, set, add. Response headers are applied before the
// handler runs, so a handler may still override them.
package headers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	supervisorHeaders "github.com/robbyt/go-supervisor/runnables/httpserver/middleware/headers"
	"golang.org/x/net/http/httpguts"
)

var ErrInvalidHeader = errors.New("invalid header")

// Rules lists the header operations for one listener.
type Rules struct {
	Set           map[string]string
	Add           map[string]string
	Remove        []string
	RequestSet    map[string]string
	RequestRemove []string
}

// Empty reports whether the rules contain no operations.
func (r Rules) Empty() bool {
	return len(r.Set) == 0 && len(r.Add) == 0 && len(r.Remove) == 0 &&
		len(r.RequestSet) == 0 && len(r.RequestRemove) == 0
}

// Validate checks every header name and value against RFC 7230.
func (r Rules) Validate() error {
	var errs []error
	for _, m := range []map[string]string{r.Set, r.Add, r.RequestSet} {
		for name, value := range m {
			if !httpguts.ValidHeaderFieldName(name) {
				errs = append(errs, fmt.Errorf("%w: name %q", ErrInvalidHeader, name))
			}
			if !httpguts.ValidHeaderFieldValue(value) {
				errs = append(errs, fmt.Errorf("%w: value for %q", ErrInvalidHeader, name))
			}
		}
	}
	for _, names := range [][]string{r.Remove, r.RequestRemove} {
		for _, name := range names {
			if !httpguts.ValidHeaderFieldName(name) {
				errs = append(errs, fmt.Errorf("%w: name %q", ErrInvalidHeader, name))
			}
		}
	}
	return errors.Join(errs...)
}

// New returns a middleware applying the rules.
func New(rules Rules) (httpserver.HandlerFunc, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	var ops []supervisorHeaders.HeaderOperation
	if len(rules.RequestRemove) > 0 {
		ops = append(ops, supervisorHeaders.WithRemoveRequest(rules.RequestRemove...))
	}
	if len(rules.RequestSet) > 0 {
		ops = append(ops, supervisorHeaders.WithSetRequest(toHeader(rules.RequestSet)))
	}
	if len(rules.Remove) > 0 {
		ops = append(ops, supervisorHeaders.WithRemove(rules.Remove...))
	}
	if len(rules.Set) > 0 {
		ops = append(ops, supervisorHeaders.WithSet(toHeader(rules.Set)))
	}
	if len(rules.Add) > 0 {
		ops = append(ops, supervisorHeaders.WithAdd(toHeader(rules.Add)))
	}
	return supervisorHeaders.NewWithOperations(ops...), nil
}

func toHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
