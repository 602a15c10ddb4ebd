package commands

import (
	"context"

	"github.com/wolfeidau/assetforge/internal/assets"
)

// BuildCmd runs a single build.
type BuildCmd struct {
	SassBinary string `help:"dart-sass executable used for .scss and .sass sources" default:"sass" env:"ASSETFORGE_SASS"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	_, flush := globals.setup(ctx)
	defer flush()

	cfg, err := globals.compose()
	if err != nil {
		return err
	}

	pipeline, err := assets.New(cfg, assets.WithSassBinary(c.SassBinary))
	if err != nil {
		return wrap("failed to load assets pipeline", err)
	}
	defer pipeline.Close()

	return wrap("failed to build assets", pipeline.Build(ctx))
}
