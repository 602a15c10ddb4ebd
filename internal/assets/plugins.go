package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

const (
	entryNamespace = "assetforge-entry"
	fileNamespace  = "assetforge-file"
)

func entryInput(name string) string {
	return entryNamespace + ":" + name
}

// entryPlugin turns each configured entry into a virtual module importing
// its sources in declaration order, so the polyfill runs before the app.
func entryPlugin(root string, entries []buildconfig.EntryPoint) api.Plugin {
	imports := make(map[string][]string, len(entries))
	for _, e := range entries {
		imports[e.Name] = e.Imports
	}

	return api.Plugin{
		Name: "entry",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + entryNamespace + ":"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, entryNamespace+":"),
						Namespace: entryNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					list, ok := imports[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("%w: %s", ErrEntryPointNotFound, args.Path)
					}

					var b strings.Builder
					for _, imp := range list {
						fmt.Fprintf(&b, "import %s;\n", strconv.Quote(imp))
					}
					contents := b.String()

					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: root,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// filePlugin emits files matched by rules with a file stage into the
// stage's output path. Stylesheet url() references become external links to
// the emitted file; script imports receive its public path as default export.
// A trailing ?query or #fragment is ignored for matching and kept on the
// public path.
func (p *Pipeline) filePlugin(rules []buildconfig.Rule) (api.Plugin, error) {
	type fileRule struct {
		filter  string
		stage   buildconfig.Stage
		exclude *regexp.Regexp
	}

	var fileRules []fileRule
	for _, rule := range rules {
		stage, ok := rule.Use.Find(buildconfig.StageFile)
		if !ok {
			continue
		}

		filter := withSuffix(rule.Test)
		if _, err := regexp.Compile(filter); err != nil {
			return api.Plugin{}, fmt.Errorf("invalid test for %s rule: %w", rule.Kind, err)
		}

		fr := fileRule{filter: filter, stage: stage}
		if rule.Exclude != "" {
			exclude, err := regexp.Compile(rule.Exclude)
			if err != nil {
				return api.Plugin{}, fmt.Errorf("invalid exclude for %s rule: %w", rule.Kind, err)
			}
			fr.exclude = exclude
		}
		fileRules = append(fileRules, fr)
	}

	return api.Plugin{
		Name: "file",
		Setup: func(build api.PluginBuild) {
			// url(/...) addresses copied static assets in the output root
			build.OnResolve(api.OnResolveOptions{Filter: "^/"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind != api.ResolveCSSURLToken {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})

			for _, fr := range fileRules {
				build.OnResolve(api.OnResolveOptions{Filter: fr.filter},
					func(args api.OnResolveArgs) (api.OnResolveResult, error) {
						if !isRelativeOrAbs(args.Path) {
							return api.OnResolveResult{}, nil
						}

						ref, suffix := splitSuffix(args.Path)
						src := ref
						if !filepath.IsAbs(src) {
							src = filepath.Join(args.ResolveDir, filepath.FromSlash(src))
						}
						if fr.exclude != nil && fr.exclude.MatchString(filepath.ToSlash(src)) {
							return api.OnResolveResult{}, nil
						}

						publicPath, err := p.emitFile(src, fr.stage)
						if err != nil {
							return api.OnResolveResult{}, err
						}
						publicPath += suffix

						if args.Kind == api.ResolveCSSURLToken {
							return api.OnResolveResult{Path: publicPath, External: true}, nil
						}
						return api.OnResolveResult{
							Path:       src,
							Namespace:  fileNamespace,
							PluginData: publicPath,
							WatchFiles: []string{src},
						}, nil
					})
			}

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: fileNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					publicPath, _ := args.PluginData.(string)
					contents := "export default " + strconv.Quote(publicPath) + ";\n"
					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
				})
		},
	}, nil
}

// withSuffix lets an end-anchored test also match references carrying a
// query or fragment, as in "font.eot?#iefix".
func withSuffix(test string) string {
	if !strings.HasSuffix(test, "$") || strings.HasSuffix(test, `\$`) {
		return test
	}
	return strings.TrimSuffix(test, "$") + `(?:[?#].*)?$`
}

// splitSuffix separates a module reference from its ?query or #fragment.
func splitSuffix(ref string) (string, string) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

func isRelativeOrAbs(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") || path.IsAbs(p) || filepath.IsAbs(p)
}

// emitFile copies src into the output directory and returns its public path.
func (p *Pipeline) emitFile(src string, stage buildconfig.Stage) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read asset: %w", err)
	}

	pattern := buildconfig.FilenamePattern(stage.String("name"))
	if pattern == "" {
		pattern = buildconfig.FilenamePattern(buildconfig.NameToken + "." + buildconfig.ExtToken)
	}

	ext := filepath.Ext(src)
	name := pattern.Expand(strings.TrimSuffix(filepath.Base(src), ext), contentHash(data), strings.TrimPrefix(ext, "."))
	rel := path.Join(stage.String("outputPath"), name)
	dst := filepath.Join(p.outdir, filepath.FromSlash(rel))

	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	log.Debug().Str("src", src).Str("dst", dst).Msg("Emitted file")

	return "/" + rel, nil
}

// sassPlugin compiles sources matched by rule with dart-sass before esbuild
// processes them as CSS.
func (p *Pipeline) sassPlugin(rule buildconfig.Rule) api.Plugin {
	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: rule.Test, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					source, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("failed to read stylesheet: %w", err)
					}

					transpiler, err := p.sassTranspiler()
					if err != nil {
						return api.OnLoadResult{}, err
					}

					syntax := godartsass.SourceSyntaxSCSS
					if filepath.Ext(args.Path) == ".sass" {
						syntax = godartsass.SourceSyntaxSASS
					}

					dir := filepath.Dir(args.Path)
					result, err := transpiler.Execute(godartsass.Args{
						Source:       string(source),
						IncludePaths: []string{dir},
						SourceSyntax: syntax,
						OutputStyle:  godartsass.OutputStyleExpanded,
					})
					if err != nil {
						return api.OnLoadResult{}, fmt.Errorf("failed to compile %s: %w", args.Path, err)
					}

					return api.OnLoadResult{
						Contents:   &result.CSS,
						ResolveDir: dir,
						Loader:     api.LoaderCSS,
					}, nil
				})
		},
	}
}

func (p *Pipeline) sassTranspiler() (*godartsass.Transpiler, error) {
	p.sassMu.Lock()
	defer p.sassMu.Unlock()

	if p.sass != nil {
		return p.sass, nil
	}

	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: p.sassBinary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start dart-sass: %w", err)
	}

	p.sass = transpiler
	return transpiler, nil
}
