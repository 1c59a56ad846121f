// Package apps holds the built-in request handlers that routes are bound to.
package apps

import (
	"net/http"

	"github.com/atlanticdynamic/lynxlet/internal/server/routing"
)

// App is a named handler that can be bound to a route.
type App interface {
	routing.Handler

	// String returns the identifier of the app, used in logs.
	String() string
}

// ShutdownTrigger fires the process-wide shutdown signal.
type ShutdownTrigger interface {
	Trigger() bool
}

var (
	_ App = (*Text)(nil)
	_ App = (*JSON)(nil)
	_ App = (*Clock)(nil)
	_ App = (*Static)(nil)
	_ App = (*Reroute)(nil)
	_ App = (*Shutdown)(nil)
)

// write sends body with the given content type, unless the request is a HEAD.
func write(w http.ResponseWriter, r *http.Request, contentType string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	if r.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(body)
	return err
}
