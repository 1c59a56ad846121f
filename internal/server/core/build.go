package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/atlanticdynamic/lynxlet/internal/config"
	"github.com/atlanticdynamic/lynxlet/internal/server/apps"
	httplistener "github.com/atlanticdynamic/lynxlet/internal/server/listeners/http"
	"github.com/atlanticdynamic/lynxlet/internal/server/listeners/http/middleware/headers"
	"github.com/atlanticdynamic/lynxlet/internal/server/listeners/http/middleware/logger"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
)

// FromConfig builds a Server with every listener and route in cfg. Nothing is bound until
// Start. out receives the started and stopped messages.
func FromConfig(cfg *config.Config, out io.Writer, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	opts = append([]Option{
		WithShutdownGrace(cfg.ShutdownGrace.AsDuration()),
		WithMessages(out, cfg.StartedMessage, cfg.StoppedMessage),
	}, opts...)
	s := New(opts...)

	factory := apps.NewFactory()
	deps := apps.Dependencies{
		Shutdown: s.Signal(),
		Logger:   slog.New(s.logHandler).WithGroup("apps"),
	}

	var errs []error
	for _, lc := range cfg.Listeners {
		if err := s.addConfiguredListener(lc, factory, deps); err != nil {
			errs = append(errs, fmt.Errorf("listener %s: %w", lc.ID, err))
		}
	}
	if len(errs) > 0 {
		s.releaseClosers()
		return nil, errors.Join(errs...)
	}
	return s, nil
}

func (s *Server) addConfiguredListener(
	lc config.Listener,
	factory *apps.Factory,
	deps apps.Dependencies,
) error {
	middlewares, err := s.middlewares(lc)
	if err != nil {
		return err
	}

	router, err := s.AddListener(ListenerSpec{
		ID:      lc.ID,
		Address: lc.Address,
		Port:    lc.Port,
		Timeouts: httplistener.Timeouts{
			Read:  lc.ReadTimeout.AsDuration(),
			Write: lc.WriteTimeout.AsDuration(),
			Idle:  lc.IdleTimeout.AsDuration(),
			Drain: lc.DrainTimeout.AsDuration(),
		},
		Middlewares: middlewares,
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, rc := range lc.Routes {
		app, err := factory.Create(definition(lc.ID, rc), deps)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if c, ok := app.(io.Closer); ok {
			s.AddCloser(c)
		}
		if err := router.Handle(rc.Method, rc.Path, app); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// middlewares builds the chain for a listener. The request logger runs outermost so it sees
// the final status.
func (s *Server) middlewares(lc config.Listener) ([]httpserver.HandlerFunc, error) {
	var chain []httpserver.HandlerFunc
	if !lc.DisableRequestLog {
		rl := logger.New(slog.New(s.logHandler).With("listener", lc.ID))
		chain = append(chain, rl.Middleware())
	}

	rules := headers.Rules{
		Set:           lc.Headers.Set,
		Add:           lc.Headers.Add,
		Remove:        lc.Headers.Remove,
		RequestSet:    lc.Headers.RequestSet,
		RequestRemove: lc.Headers.RequestRemove,
	}
	if !rules.Empty() {
		mw, err := headers.New(rules)
		if err != nil {
			return nil, err
		}
		chain = append(chain, mw)
	}
	return chain, nil
}

func definition(listenerID string, rc config.Route) apps.Definition {
	return apps.Definition{
		ID:          fmt.Sprintf("%s:%s", listenerID, rc.Key()),
		Type:        rc.Type,
		Pattern:     rc.Path,
		Body:        rc.Body,
		ContentType: rc.ContentType,
		Fields:      rc.Fields,
		Pretty:      rc.Pretty,
		What:        rc.What,
		Root:        rc.Root,
		Caching:     rc.Caching,
		Target:      rc.Target,
	}
}

func (s *Server) releaseClosers() {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()
	for _, c := range closers {
		_ = c.Close()
	}
}
