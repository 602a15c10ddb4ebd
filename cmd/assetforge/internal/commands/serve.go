package commands

import (
	"context"

	"github.com/wolfeidau/assetforge/internal/assets"
)

// ServeCmd builds the assets and serves them, rebuilding on change in
// development mode.
type ServeCmd struct {
	SassBinary string `help:"dart-sass executable used for .scss and .sass sources" default:"sass" env:"ASSETFORGE_SASS"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log, flush := globals.setup(ctx)
	defer flush()

	cfg, err := globals.compose()
	if err != nil {
		return err
	}

	if !cfg.DevServer.Hot {
		log.Warn().Msg("Hot reload is disabled outside development mode (set NODE_ENV=development)")
	}

	pipeline, err := assets.New(cfg, assets.WithSassBinary(c.SassBinary))
	if err != nil {
		return wrap("failed to load assets pipeline", err)
	}
	defer pipeline.Close()

	return wrap("failed to serve assets", pipeline.Serve(ctx))
}
