package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"github.com/wolfeidau/assetforge/internal/config"
	"github.com/wolfeidau/assetforge/internal/logger"
	"github.com/wolfeidau/assetforge/internal/telemetry"
)

// Globals is shared by every command. Mode is parsed once in main.
type Globals struct {
	Debug   bool
	Tracing bool
	Project string
	Mode    buildconfig.Mode
	Version string
}

// compose loads the project file and resolves the configuration for the
// global mode.
func (g *Globals) compose() (buildconfig.ComposedConfig, error) {
	project, err := config.Load(g.Project)
	if err != nil {
		return buildconfig.ComposedConfig{}, err
	}
	return buildconfig.Compose(g.Mode, project.Options()), nil
}

// setup configures logging and, when enabled, telemetry. The returned
// function flushes telemetry and must always be called.
func (g *Globals) setup(ctx context.Context) (zerolog.Logger, func()) {
	log := logger.Setup(g.Debug)

	log.Info().Str("version", g.Version).Str("mode", g.Mode.String()).Bool("debug", g.Debug).Msg("Starting assetforge")

	if !g.Tracing {
		return log, func() {}
	}

	log.Info().Msg("Tracing is enabled")
	shutdown, err := telemetry.Init(ctx, "assetforge", g.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return log, func() {}
	}

	return log, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

func wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
