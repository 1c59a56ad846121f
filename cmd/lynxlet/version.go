package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func newVersionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "lynxlet %s\n", cmd.Root().Version)
			return nil
		},
	}
}
