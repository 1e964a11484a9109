package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pillarsite/cmd/pillarsite/commands"
	ferrors "git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
	"git.home.luguber.info/inful/pillarsite/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("pillarsite"),
		kong.Description("Build a static knowledge library from pillars of markdown notes."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	globals := &commands.Global{Context: ctx, Stdout: os.Stdout}
	if err := parser.Run(globals, cli); err != nil {
		cancel()
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
