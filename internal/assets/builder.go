package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"github.com/wolfeidau/assetforge/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const metafileName = "meta.json"

var tracer = otel.Tracer("github.com/wolfeidau/assetforge/internal/assets")

// Build cleans the output directory, runs esbuild with the configured
// settings and runs the post-build plugins.
func (p *Pipeline) Build(ctx context.Context) error {
	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	ctx, span := tracer.Start(ctx, "assets.build", trace.WithAttributes(
		attribute.String("mode", p.config.Mode.String()),
		attribute.String("outdir", p.outdir),
	))
	defer span.End()

	logger := log.With().Str("build_id", uuid.NewString()).Str("mode", p.config.Mode.String()).Logger()
	ctx = logger.WithContext(ctx)

	started := time.Now()
	err := p.build(ctx)
	telemetry.RecordBuild(ctx, p.config.Mode.String(), time.Since(started), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Info().Dur("duration", time.Since(started)).Msg("Build complete")
	return nil
}

func (p *Pipeline) build(ctx context.Context) error {
	if err := p.clean(); err != nil {
		return err
	}

	opts, err := p.buildOptions()
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("context", p.root).Str("outdir", p.outdir).Msg("Building assets")

	return p.finish(ctx, api.Build(opts))
}

// clean empties the directory named by the clean plugin.
func (p *Pipeline) clean() error {
	for _, plugin := range p.config.Plugins {
		cp, ok := plugin.(buildconfig.CleanPlugin)
		if !ok {
			continue
		}

		dir := p.abs(cp.Path)
		if dir == p.workdir || !within(p.workdir, dir) {
			return fmt.Errorf("%w: %s", ErrUnsafeClean, dir)
		}

		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clean %s: %w", dir, err)
		}
	}

	return os.MkdirAll(p.outdir, 0o755)
}

// finish turns an esbuild result into files on disk: minimizers, outputs,
// metafile, then the post-build plugins in declaration order.
func (p *Pipeline) finish(ctx context.Context, result api.BuildResult) error {
	logger := zerolog.Ctx(ctx)

	for _, msg := range result.Warnings {
		logger.Warn().Str("warning", msg.Text).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		texts := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			logger.Error().Str("error", msg.Text).Msg("Build error")
			texts = append(texts, msg.Text)
		}
		return fmt.Errorf("%w: %s", ErrBuildFailed, strings.Join(texts, "; "))
	}

	files, err := minimize(result.OutputFiles, p.config.Optimization.Minimizers)
	if err != nil {
		return err
	}

	var total int64
	current := make(map[string]struct{}, len(files))
	for _, file := range files {
		current[file.Path] = struct{}{}
		if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(file.Path, file.Contents, 0o644); err != nil { //nolint:gosec
			return fmt.Errorf("failed to write output: %w", err)
		}
		total += int64(len(file.Contents))
		logger.Info().Str("file", file.Path).Int("bytes", len(file.Contents)).Msg("Built file")
	}
	telemetry.RecordOutputs(ctx, len(files), total)

	if err := p.prune(logger, current); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(p.outdir, metafileName), []byte(result.Metafile), 0600); err != nil {
		return err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}

	p.mu.Lock()
	p.metadata = &metadata
	p.mu.Unlock()

	for _, plugin := range p.config.Plugins {
		switch pl := plugin.(type) {
		case buildconfig.HTMLPlugin:
			if err := p.renderHTML(&metadata, pl); err != nil {
				return err
			}
		case buildconfig.CopyPlugin:
			if err := p.copyPatterns(pl); err != nil {
				return err
			}
		case buildconfig.CompressPlugin:
			n, err := p.precompress(pl)
			if err != nil {
				return err
			}
			logger.Debug().Int("files", n).Msg("Precompressed outputs")
		case buildconfig.CleanPlugin, buildconfig.ExtractCSSPlugin:
			// applied before and during the esbuild run
		default:
			return fmt.Errorf("unsupported plugin %q", plugin.PluginName())
		}
	}

	return nil
}

// prune removes bundle outputs of the previous build that the current build
// no longer produces, along with their precompressed siblings.
func (p *Pipeline) prune(logger *zerolog.Logger, current map[string]struct{}) error {
	p.mu.Lock()
	previous := p.outputs
	p.outputs = current
	p.mu.Unlock()

	for path := range previous {
		if _, ok := current[path]; ok {
			continue
		}
		for _, stale := range []string{path, path + ".gz"} {
			if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove stale output: %w", err)
			}
		}
		logger.Debug().Str("file", path).Msg("Removed stale output")
	}
	return nil
}

// LoadScripts returns the ordered list of script paths needed for the given entrypoint
// and the main entrypoint file path
func (p *Pipeline) LoadScripts(entry string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, "", ErrNotBuilt
	}

	scripts, err := p.scripts(p.metadata, entry)
	if err != nil {
		return nil, "", err
	}
	return scripts, scripts[0], nil
}

// LoadStyles returns the stylesheets extracted for the given entrypoint.
func (p *Pipeline) LoadStyles(entry string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}
	return p.styles(p.metadata, entry), nil
}

func (p *Pipeline) scripts(meta *BuildMetadata, entry string) ([]string, error) {
	input := entryInput(entry)

	for outputPath, info := range meta.Outputs {
		if info.EntryPoint != input || !strings.HasSuffix(outputPath, ".js") {
			continue
		}

		scripts := []string{p.publicPath(outputPath)}
		visited := map[string]bool{outputPath: true}
		p.addDependencies(meta, info, &scripts, visited)
		return scripts, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryPointNotFound, entry)
}

func (p *Pipeline) addDependencies(meta *BuildMetadata, output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || visited[imp.Path] || !strings.HasSuffix(imp.Path, ".js") {
			continue
		}
		visited[imp.Path] = true
		*scripts = append(*scripts, p.publicPath(imp.Path))

		if chunkInfo, exists := meta.Outputs[imp.Path]; exists {
			p.addDependencies(meta, chunkInfo, scripts, visited)
		}
	}
}

func (p *Pipeline) styles(meta *BuildMetadata, entry string) []string {
	input := entryInput(entry)

	var styles []string
	for outputPath, info := range meta.Outputs {
		if info.EntryPoint != input {
			continue
		}
		switch {
		case info.CSSBundle != "":
			styles = append(styles, p.publicPath(info.CSSBundle))
		case strings.HasSuffix(outputPath, ".css"):
			styles = append(styles, p.publicPath(outputPath))
		}
	}
	slices.Sort(styles)
	return slices.Compact(styles)
}
