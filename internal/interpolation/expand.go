// Package interpolation expands environment variable references in configuration strings.
//
// A reference is written ${NAME} or ${NAME:default}. A reference to an unset variable without a
// default is an error; ${NAME:} expands to the empty string.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

var ErrUndefinedVariable = errors.New("environment variable not defined")

var reference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:([^}]*))?\}`)

// Expand replaces every reference in s. Undefined references are left in place and reported
// together in the returned error.
func Expand(s string) (string, error) {
	return expand(s, os.LookupEnv)
}

func expand(s string, lookup func(string) (string, bool)) (string, error) {
	var errs []error
	out := reference.ReplaceAllStringFunc(s, func(match string) string {
		m := reference.FindStringSubmatch(match)
		name, hasDefault, def := m[1], m[2] != "", m[3]

		if value, ok := lookup(name); ok {
			return value
		}
		if hasDefault {
			return def
		}
		errs = append(errs, fmt.Errorf("%w: %s", ErrUndefinedVariable, name))
		return match
	})
	return out, errors.Join(errs...)
}
