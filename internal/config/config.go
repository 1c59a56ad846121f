// Package config loads and validates the TOML file describing listeners and their routes.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied to settings left out of the file.
const (
	DefaultAddress       = "0.0.0.0"
	DefaultShutdownGrace = 5 * time.Second
	DefaultMethod        = "GET"
)

// Route types.
const (
	RouteText     = "text"
	RouteJSON     = "json"
	RouteTime     = "time"
	RouteStatic   = "static"
	RouteReroute  = "reroute"
	RouteShutdown = "shutdown"
)

// RouteTypes lists every known route type.
var RouteTypes = []string{RouteText, RouteJSON, RouteTime, RouteStatic, RouteReroute, RouteShutdown}

// Config is the root of the configuration file.
type Config struct {
	Logging        Logging    `toml:"logging"`
	ShutdownGrace  Duration   `toml:"shutdown_grace"`
	StartedMessage string     `toml:"started_message" env_interpolation:"yes"`
	StoppedMessage string     `toml:"stopped_message" env_interpolation:"yes"`
	Listeners      []Listener `toml:"listeners"`
}

// Logging selects the log level, format and destination.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output" env_interpolation:"yes"`
}

// Listener is one bound address and the routes served on it.
type Listener struct {
	ID                string   `toml:"id"`
	Address           string   `toml:"address" env_interpolation:"yes"`
	Port              int      `toml:"port"`
	ReadTimeout       Duration `toml:"read_timeout"`
	WriteTimeout      Duration `toml:"write_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout"`
	DrainTimeout      Duration `toml:"drain_timeout"`
	DisableRequestLog bool     `toml:"disable_request_log"`
	Headers           Headers  `toml:"headers"`
	Routes            []Route  `toml:"routes"`
}

// Headers are rewritten on every request and response of a listener.
type Headers struct {
	Set           map[string]string `toml:"set" env_interpolation:"yes"`
	Add           map[string]string `toml:"add" env_interpolation:"yes"`
	Remove        []string          `toml:"remove"`
	RequestSet    map[string]string `toml:"request_set" env_interpolation:"yes"`
	RequestRemove []string          `toml:"request_remove"`
}

// Route binds a method and path pattern to a built-in handler type. Only the fields of the
// chosen type are read.
type Route struct {
	Method string `toml:"method"`
	Path   string `toml:"path"`
	Type   string `toml:"type"`

	// text, shutdown
	Body        string `toml:"body" env_interpolation:"yes"`
	ContentType string `toml:"content_type"`

	// json
	Fields map[string]any `toml:"fields"`
	Pretty bool           `toml:"pretty"`

	// time
	What string `toml:"what"`

	// static
	Root    string `toml:"root" env_interpolation:"yes"`
	Caching bool   `toml:"caching"`

	// reroute
	Target string `toml:"target"`
}

// Key identifies the route within its listener, e.g. "GET /plop".
func (r Route) Key() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

// IsWildcard reports whether the path is a prefix pattern.
func (r Route) IsWildcard() bool {
	return strings.HasSuffix(r.Path, "*")
}

// Listener returns the listener with the given ID.
func (c *Config) Listener(id string) (Listener, bool) {
	for _, l := range c.Listeners {
		if l.ID == id {
			return l, true
		}
	}
	return Listener{}, false
}

// applyDefaults fills settings left empty in the file.
func (c *Config) applyDefaults() {
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = Duration(DefaultShutdownGrace)
	}
	for i := range c.Listeners {
		l := &c.Listeners[i]
		if l.Address == "" {
			l.Address = DefaultAddress
		}
		for j := range l.Routes {
			r := &l.Routes[j]
			r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
			if r.Method == "" {
				r.Method = DefaultMethod
			}
			r.Type = strings.ToLower(strings.TrimSpace(r.Type))
		}
	}
}
