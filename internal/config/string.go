package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/atlanticdynamic/lynxlet/internal/fancy"
	"github.com/charmbracelet/lipgloss/tree"
)

// String renders the config as a tree.
func (c *Config) String() string {
	t := fancy.Tree().Root(fancy.RootStyle.Render("lynxlet config"))

	logging := fancy.Branch("Logging", "")
	logging.Child(fmt.Sprintf("Level: %s", orDefault(c.Logging.Level, "info")))
	logging.Child(fmt.Sprintf("Format: %s", orDefault(c.Logging.Format, "text")))
	logging.Child(fmt.Sprintf("Output: %s", orDefault(c.Logging.Output, "stdout")))
	t.Child(logging)
	t.Child(fmt.Sprintf("Shutdown grace: %s", c.ShutdownGrace))

	listeners := fancy.Branch("Listeners", fmt.Sprintf("(%d)", len(c.Listeners)))
	for _, l := range c.Listeners {
		listeners.Child(l.ToTree())
	}
	t.Child(listeners)

	return t.String()
}

// ToTree renders a listener and its routes.
func (l Listener) ToTree() *tree.Tree {
	addr := net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
	t := fancy.Tree().Root(fmt.Sprintf("%s %s", fancy.ListenerText(l.ID), fancy.PathText(addr)))
	if l.DisableRequestLog {
		t.Child("request log: off")
	}
	for _, r := range l.Routes {
		t.Child(fmt.Sprintf("%s → %s", fancy.RouteText(r.Key()), fancy.AppText(r.describe())))
	}
	return t
}

// describe summarizes what the route does.
func (r Route) describe() string {
	switch r.Type {
	case RouteText:
		return fmt.Sprintf("text %q", fancy.Truncate(r.Body, 32))
	case RouteJSON:
		return fmt.Sprintf("json (%d fields)", len(r.Fields))
	case RouteStatic:
		caching := "off"
		if r.Caching {
			caching = "on"
		}
		return fmt.Sprintf("static %s (caching %s)", r.Root, caching)
	case RouteReroute:
		return "reroute " + r.Target
	default:
		return r.Type
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
