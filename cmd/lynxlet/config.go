package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/atlanticdynamic/lynxlet/internal/config"
	"github.com/atlanticdynamic/lynxlet/internal/logging"
	"github.com/atlanticdynamic/lynxlet/internal/logging/writers"
	"github.com/urfave/cli/v3"
)

// sourceFlags selects where a command reads its config from.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to TOML configuration file",
		},
		&cli.StringFlag{
			Name:    "sample",
			Aliases: []string{"s"},
			Usage:   fmt.Sprintf("Built-in sample config, one of %v", config.SampleNames()),
		},
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	sample := cmd.String("sample")

	switch {
	case path != "" && sample != "":
		return nil, cli.Exit("--config and --sample cannot be used together", 1)
	case path != "":
		cfg, err := config.NewConfig(path)
		if err != nil {
			return nil, cli.Exit(fmt.Errorf("failed to load config: %w", err), 1)
		}
		return cfg, nil
	case sample != "":
		cfg, err := config.Sample(sample)
		if err != nil {
			return nil, cli.Exit(fmt.Errorf("failed to load sample: %w", err), 1)
		}
		return cfg, nil
	default:
		return nil, cli.Exit("either --config or --sample flag is required", 1)
	}
}

// setupLogging builds the log handler from the config, letting non-empty flag values win, and
// installs it as the default logger. The returned writer must be closed on exit.
func setupLogging(cfg config.Logging, level, format string) (slog.Handler, io.Closer, error) {
	if level == "" {
		level = cfg.Level
	}
	if format == "" {
		format = cfg.Format
	}

	out, err := writers.Open(cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	handler, err := logging.NewHandler(format, level, out)
	if err != nil {
		_ = out.Close()
		return nil, nil, err
	}
	slog.SetDefault(slog.New(handler))
	return handler, out, nil
}
