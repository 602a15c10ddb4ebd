package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/assetforge/cmd/assetforge/internal/commands"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"github.com/wolfeidau/assetforge/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool   `help:"Enable debug mode."`
		Tracing bool   `help:"Export traces and metrics over OTLP." env:"ASSETFORGE_TRACING"`
		Project string `help:"Path to the project file." default:"${project_file}" env:"ASSETFORGE_PROJECT" type:"path"`
		Env     string `help:"Build environment, 'development' selects development mode." env:"NODE_ENV" default:""`
		Version kong.VersionFlag

		Build  commands.BuildCmd  `cmd:"" default:"1" help:"Build assets into the output directory"`
		Serve  commands.ServeCmd  `cmd:"" help:"Build and serve assets"`
		Config commands.ConfigCmd `cmd:"" help:"Print the resolved build configuration"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli, options(ctx)...)
	err := cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Tracing: cli.Tracing,
		Project: cli.Project,
		Mode:    buildconfig.ParseMode(cli.Env),
		Version: version,
	})
	cmd.FatalIfErrorf(err)
}

func options(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Vars{
			"version":      version,
			"project_file": config.DefaultPath,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}
