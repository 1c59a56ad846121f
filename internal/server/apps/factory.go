package apps

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// App type names, as written in route configuration.
const (
	TypeText     = "text"
	TypeJSON     = "json"
	TypeTime     = "time"
	TypeStatic   = "static"
	TypeReroute  = "reroute"
	TypeShutdown = "shutdown"
)

// Definition carries what a route needs to build its app. It mirrors the route config without
// importing it; each app type reads only its own fields.
type Definition struct {
	ID      string
	Type    string
	Pattern string

	Body        string
	ContentType string
	Fields      map[string]any
	Pretty      bool
	What        string
	Root        string
	Caching     bool
	Target      string
}

// Dependencies are the runtime collaborators shared by all apps.
type Dependencies struct {
	Shutdown ShutdownTrigger
	Now      func() time.Time
	Logger   *slog.Logger
}

// Instantiator builds one app type.
type Instantiator func(def Definition, deps Dependencies) (App, error)

// Factory creates apps by type name.
type Factory struct {
	creators map[string]Instantiator
}

// NewFactory returns a factory knowing every built-in app type.
func NewFactory() *Factory {
	return &Factory{
		creators: map[string]Instantiator{
			TypeText:     createText,
			TypeJSON:     createJSON,
			TypeTime:     createClock,
			TypeStatic:   createStatic,
			TypeReroute:  createReroute,
			TypeShutdown: createShutdown,
		},
	}
}

// Types returns the known type names, sorted.
func (f *Factory) Types() []string {
	return slices.Sorted(maps.Keys(f.creators))
}

// Create builds the app for def.
func (f *Factory) Create(def Definition, deps Dependencies) (App, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("%w: app ID cannot be empty", ErrInvalidConfig)
	}
	creator, ok := f.creators[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q for %s", ErrUnknownType, def.Type, def.ID)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return creator(def, deps)
}

func createText(def Definition, _ Dependencies) (App, error) {
	return NewText(def.ID, def.Body, def.ContentType), nil
}

func createJSON(def Definition, _ Dependencies) (App, error) {
	return NewJSON(def.ID, def.Fields, def.Pretty)
}

func createClock(def Definition, deps Dependencies) (App, error) {
	return NewClock(def.ID, def.What, deps.Now), nil
}

func createStatic(def Definition, deps Dependencies) (App, error) {
	return NewStatic(def.ID, def.Pattern, def.Root, def.Caching, deps.Logger.With("app", def.ID))
}

func createReroute(def Definition, _ Dependencies) (App, error) {
	if def.Target == "" {
		return nil, fmt.Errorf("%w: %s: reroute target is empty", ErrInvalidConfig, def.ID)
	}
	return NewReroute(def.ID, def.Target), nil
}

func createShutdown(def Definition, deps Dependencies) (App, error) {
	return NewShutdown(def.ID, def.Body, deps.Shutdown, deps.Logger.With("app", def.ID))
}
