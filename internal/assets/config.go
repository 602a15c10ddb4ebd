package assets

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

const chunkNames = "chunks/[name].[hash]"

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"esnext": api.ESNext,
}

var engines = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// buildOptions translates the composed configuration into esbuild options.
func (p *Pipeline) buildOptions(extra ...api.Plugin) (api.BuildOptions, error) {
	cfg := p.config

	names, err := entryNames(cfg.Output.Filename, buildconfig.Script)
	if err != nil {
		return api.BuildOptions{}, err
	}

	if err := checkStyleNames(cfg); err != nil {
		return api.BuildOptions{}, err
	}

	target, err := scriptTarget(cfg)
	if err != nil {
		return api.BuildOptions{}, err
	}

	styleEngines, err := styleEngines(cfg)
	if err != nil {
		return api.BuildOptions{}, err
	}

	filePlugin, err := p.filePlugin(cfg.Rules)
	if err != nil {
		return api.BuildOptions{}, err
	}

	plugins := []api.Plugin{entryPlugin(p.root, cfg.Entry), filePlugin}
	if rule, ok := cfg.Rule(buildconfig.Sass); ok {
		if _, ok := rule.Use.Find(buildconfig.StageSass); ok {
			plugins = append(plugins, p.sassPlugin(rule))
		}
	}

	return api.BuildOptions{
		EntryPointsAdvanced: entryPoints(cfg.Entry),
		AbsWorkingDir:       p.workdir,
		Outdir:              p.outdir,
		EntryNames:          names,
		ChunkNames:          chunkNames,
		Bundle:              true,
		Splitting:           cfg.Optimization.SplitChunks == buildconfig.SplitAll,
		Format:              api.FormatESModule,
		Platform:            api.PlatformBrowser,
		Target:              target,
		Engines:             styleEngines,
		Sourcemap:           cond(cfg.SourceMaps(), api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		Write:               false,
		LogLevel:            api.LogLevelSilent,
		Plugins:             slices.Concat(plugins, extra),
	}, nil
}

func entryPoints(entries []buildconfig.EntryPoint) []api.EntryPoint {
	points := make([]api.EntryPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, api.EntryPoint{
			InputPath:  entryInput(e.Name),
			OutputPath: e.Name,
		})
	}
	return points
}

// entryNames converts "[name].[contenthash].js" into esbuild's "[name].[hash]".
// esbuild appends the extension itself.
func entryNames(pattern buildconfig.FilenamePattern, kind buildconfig.AssetKind) (string, error) {
	s := string(pattern)
	if !strings.Contains(s, buildconfig.NameToken) {
		return "", fmt.Errorf("filename pattern %q has no %s placeholder", s, buildconfig.NameToken)
	}

	s = strings.TrimSuffix(s, "."+buildconfig.ExtToken)
	if ext := kind.Ext(); ext != "" {
		s = strings.TrimSuffix(s, "."+ext)
	}

	return strings.ReplaceAll(s, buildconfig.HashToken, "[hash]"), nil
}

// checkStyleNames rejects configurations esbuild cannot honour: extracted
// stylesheets are named with the same template as their entry script.
func checkStyleNames(cfg buildconfig.ComposedConfig) error {
	for _, plugin := range cfg.Plugins {
		extract, ok := plugin.(buildconfig.ExtractCSSPlugin)
		if !ok {
			continue
		}

		styles, err := entryNames(extract.Filename, buildconfig.Stylesheet)
		if err != nil {
			return err
		}
		scripts, err := entryNames(cfg.Output.Filename, buildconfig.Script)
		if err != nil {
			return err
		}
		if styles != scripts {
			return fmt.Errorf("stylesheet pattern %q does not match script pattern %q", extract.Filename, cfg.Output.Filename)
		}
	}
	return nil
}

func scriptTarget(cfg buildconfig.ComposedConfig) (api.Target, error) {
	rule, ok := cfg.Rule(buildconfig.Script)
	if !ok {
		return api.ESNext, nil
	}

	stage, ok := rule.Use.Find(buildconfig.StageTranspile)
	if !ok || stage.String("target") == "" {
		return api.ESNext, nil
	}

	target, ok := targets[stage.String("target")]
	if !ok {
		return api.DefaultTarget, fmt.Errorf("unsupported script target %q", stage.String("target"))
	}
	return target, nil
}

func styleEngines(cfg buildconfig.ComposedConfig) ([]api.Engine, error) {
	rule, ok := cfg.Rule(buildconfig.Stylesheet)
	if !ok {
		return nil, nil
	}

	stage, ok := rule.Use.Find(buildconfig.StagePostCSS)
	if !ok {
		return nil, nil
	}

	var result []api.Engine
	for _, browser := range stage.Strings("browsers") {
		engine, err := parseEngine(browser)
		if err != nil {
			return nil, err
		}
		result = append(result, engine)
	}
	return result, nil
}

// parseEngine splits "safari13" into an engine name and version.
func parseEngine(s string) (api.Engine, error) {
	i := strings.IndexFunc(s, unicode.IsDigit)
	if i <= 0 {
		return api.Engine{}, fmt.Errorf("invalid browser %q", s)
	}

	name, ok := engines[s[:i]]
	if !ok {
		return api.Engine{}, fmt.Errorf("unsupported browser %q", s[:i])
	}
	return api.Engine{Name: name, Version: s[i:]}, nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
