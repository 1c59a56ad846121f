package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/lynxlet/internal/config"
	"github.com/atlanticdynamic/lynxlet/internal/fancy"
	"github.com/urfave/cli/v3"
)

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"lint"},
		Usage:     "Validate a configuration file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "tree",
				Aliases: []string{"t"},
				Usage:   "Show detailed tree view of the validated configuration",
			},
		},
		Action: validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return cli.Exit("config file path required", 1)
	}
	path := cmd.Args().First()

	// NewConfig validates as part of loading
	cfg, err := config.NewConfig(path)
	if err != nil {
		return cli.Exit(fmt.Errorf("validation failed: %w", err), 1)
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Configuration file %s is %s\n", path, fancy.ValidText("valid"))
	if cmd.Bool("tree") {
		fmt.Fprintln(out, cfg)
		return nil
	}
	fmt.Fprintln(out, renderConfigSummary(path, cfg))
	return nil
}

func renderConfigSummary(path string, cfg *config.Config) string {
	routes := 0
	for _, l := range cfg.Listeners {
		routes += len(l.Routes)
	}

	var summary strings.Builder
	summary.WriteString("\nConfig Summary:\n")
	fmt.Fprintf(&summary, "- Path: %s\n", path)
	fmt.Fprintf(&summary, "- Listeners: %d\n", len(cfg.Listeners))
	fmt.Fprintf(&summary, "- Routes: %d\n", routes)
	summary.WriteString("\nUse --tree for a more detailed view of the config.")
	return summary.String()
}
