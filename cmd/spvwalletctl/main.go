// Command spvwalletctl is the CLI façade over the wallet engine's JSON/
// SDK boundary (spec §1 "the public façade (CLI/SDK glue)"), modeled
// directly on the teacher's own cmd/dcrlncli: github.com/urfave/cli
// commands registered on an *cli.App, each wrapped in actionDecorator so
// a returned error prints cleanly instead of dumping a Go stack, and
// table output rendered with github.com/jedib0t/go-pretty (both teacher
// dependencies).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "spvwalletctl"
	app.Usage = "command line tool for the SPV wallet engine"
	app.Commands = []cli.Command{
		balanceCommand,
		receiveCommand,
		sendCommand,
		consolidateCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[spvwalletctl] %v\n", err)
		os.Exit(1)
	}
}

// actionDecorator wraps a cli.ActionFunc so any returned error is printed
// to stderr and turned into a non-zero exit code through cli's own error
// handling, matching the teacher's actionDecorator usage in
// cmd_query_probability.go.
func actionDecorator(fn func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if err := fn(ctx); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	}
}
