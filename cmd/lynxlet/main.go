package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atlanticdynamic/lynxlet/internal/server/core"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "lynxlet",
		Version:   core.Version(),
		Usage:     "Serve small HTTP samples from a TOML config",
		Writer:    stdout,
		ErrWriter: stderr,

		// main reports errors, so exit codes are not handled inside Run
		ExitErrHandler: func(context.Context, *cli.Command, error) {},

		Commands: []*cli.Command{
			newServeCmd(),
			newValidateCmd(),
			newRoutesCmd(),
			newVersionCmd(),
		},
	}
}
