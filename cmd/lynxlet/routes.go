package main

import (
	"context"
	"fmt"
	"io"

	"github.com/atlanticdynamic/lynxlet/internal/fancy"
	"github.com/atlanticdynamic/lynxlet/internal/server/core"
	"github.com/urfave/cli/v3"
)

func newRoutesCmd() *cli.Command {
	return &cli.Command{
		Name:   "routes",
		Usage:  "Print the routes each listener would dispatch, in match order",
		Flags:  sourceFlags(),
		Action: routesAction,
	}
}

func routesAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// nothing is bound until Start, so building the server only wires the routers
	srv, err := core.FromConfig(cfg, io.Discard)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to build server: %w", err), 1)
	}
	defer func() {
		srv.Shutdown()
		<-srv.Done()
	}()

	t := fancy.Tree().Root(fancy.RootStyle.Render("Routes"))
	for _, l := range srv.Listeners() {
		router, _ := srv.Router(l.ID())
		routes := router.Routes()

		types := make(map[string]string)
		if lc, ok := cfg.Listener(l.ID()); ok {
			for _, rc := range lc.Routes {
				types[rc.Key()] = rc.Type
			}
		}

		note := fmt.Sprintf("%s (%d)", l.ListenAddr(), len(routes))
		branch := fancy.Branch(fancy.ListenerText(l.ID()), note)
		for _, r := range routes {
			app, ok := types[r.String()]
			if !ok {
				app = fmt.Sprint(r.Handler)
			}
			branch.Child(fmt.Sprintf("%s → %s", fancy.RouteText(r.String()), fancy.AppText(app)))
		}
		t.Child(branch)
	}
	fmt.Fprintln(cmd.Root().Writer, t)
	return nil
}
