package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"viewgen/cmd/viewgen/commands"
	vgerrors "viewgen/internal/errors"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli,
		kong.Name("viewgen"),
		kong.Description("Generate HTML pages from a directory of view templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&commands.Globals{Debug: cli.Debug, Version: version}, &cli)
	os.Exit(vgerrors.NewCLIAdapter(cli.Debug, log.Logger).Handle(err))
}
