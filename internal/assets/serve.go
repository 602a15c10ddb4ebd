package assets

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const serveAttempts = 5

// Serve builds the configured assets and serves the output directory with
// esbuild's development server until ctx is done. When the dev server is
// hot, sources are watched, rebuilds trigger a browser reload and static
// copy sources are re-copied on change. Otherwise a single full build runs
// and the finished files are served from disk.
func (p *Pipeline) Serve(ctx context.Context) error {
	dev := p.config.DevServer

	logger := log.With().Str("mode", p.config.Mode.String()).Int("port", dev.Port).Bool("hot", dev.Hot).Logger()
	ctx = logger.WithContext(ctx)

	bctx, err := p.serveContext(ctx)
	if err != nil {
		return err
	}
	defer bctx.Dispose()

	serveOpts := api.ServeOptions{Servedir: p.outdir, Port: dev.Port}

	_, err = backoff.Retry(ctx, func() (api.ServeResult, error) {
		result, err := bctx.Serve(serveOpts)
		if err != nil {
			logger.Warn().Err(err).Msg("Dev server failed to start, retrying")
		}
		return result, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(serveAttempts))
	if err != nil {
		return fmt.Errorf("failed to start dev server: %w", err)
	}

	logger.Info().Str("servedir", p.outdir).Msg("Dev server listening")

	g, gctx := errgroup.WithContext(ctx)
	if dev.Hot {
		g.Go(func() error {
			return p.watchCopies(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Dev server stopping")
		return nil
	})

	return g.Wait()
}

// serveContext returns the esbuild context backing the dev server. Hot
// contexts bundle in watch mode; otherwise the output directory is built
// once and served by a context without entry points, so requests see the
// minimized files on disk.
func (p *Pipeline) serveContext(ctx context.Context) (api.BuildContext, error) {
	logger := zerolog.Ctx(ctx)

	if !p.config.DevServer.Hot {
		if err := p.Build(ctx); err != nil {
			return nil, err
		}

		bctx, cerr := api.Context(api.BuildOptions{
			AbsWorkingDir: p.workdir,
			Outdir:        p.outdir,
			LogLevel:      api.LogLevelSilent,
		})
		if cerr != nil {
			return nil, contextError(logger, cerr)
		}
		return bctx, nil
	}

	if err := p.clean(); err != nil {
		return nil, err
	}

	opts, err := p.buildOptions(p.onEndPlugin(ctx))
	if err != nil {
		return nil, err
	}

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		return nil, contextError(logger, cerr)
	}

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		bctx.Dispose()
		return nil, fmt.Errorf("failed to start watch mode: %w", err)
	}
	return bctx, nil
}

func contextError(logger *zerolog.Logger, cerr *api.ContextError) error {
	for _, msg := range cerr.Errors {
		logger.Error().Str("error", msg.Text).Msg("Build error")
	}
	return fmt.Errorf("failed to create build context: %w", ErrBuildFailed)
}

// onEndPlugin runs the post-build steps after every build of a context.
func (p *Pipeline) onEndPlugin(ctx context.Context) api.Plugin {
	return api.Plugin{
		Name: "finish",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if err := p.finish(ctx, *result); err != nil {
					zerolog.Ctx(ctx).Error().Err(err).Msg("Rebuild failed")
					return api.OnEndResult{}, nil
				}
				zerolog.Ctx(ctx).Info().Msg("Rebuild complete")
				return api.OnEndResult{}, nil
			})
		},
	}
}
