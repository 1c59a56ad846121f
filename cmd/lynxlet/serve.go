package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/lynxlet/internal/server/core"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"
)

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start every listener in the config and serve until shutdown",
		Flags: append(sourceFlags(),
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (trace, debug, info, warn, error), overrides the config",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (text, json), overrides the config",
			},
		),
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, format := cmd.String("log-level"), cmd.String("log-format")
	handler, logOut, err := setupLogging(cfg.Logging, level, format)
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to set up logging: %w", err), 1)
	}
	defer func() { _ = logOut.Close() }()
	logger := slog.New(handler)

	srv, err := core.FromConfig(cfg, cmd.Root().Writer, core.WithLogHandler(handler))
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to build server: %w", err), 1)
	}

	// bind before handing over to the supervisor, so a bind failure is reported as an error
	if err := srv.Start(ctx); err != nil {
		return cli.Exit(fmt.Errorf("failed to start server: %w", err), 1)
	}

	superCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-srv.Done():
			cancel()
		case <-superCtx.Done():
		}
	}()

	super, err := supervisor.New(
		supervisor.WithContext(superCtx),
		supervisor.WithLogHandler(handler),
		supervisor.WithRunnables(srv),
	)
	if err != nil {
		srv.Shutdown()
		<-srv.Done()
		return cli.Exit(fmt.Errorf("failed to create supervisor: %w", err), 1)
	}
	if err := super.Run(); err != nil {
		return cli.Exit(fmt.Errorf("failed to run server: %w", err), 1)
	}

	srv.Shutdown()
	<-srv.Done()
	logger.Info("Server shutdown complete")
	return nil
}
