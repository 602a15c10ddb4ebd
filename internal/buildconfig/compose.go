package buildconfig

import (
	"path"
	"slices"
)

// Defaults applied to zero fields of Options.
const (
	DefaultSourceRoot = "src"
	DefaultOutputRoot = "dist"
	DefaultEntry      = "./index.js"
	DefaultTemplate   = "./index.html"
	DefaultPolyfill   = "@babel/polyfill"
	DefaultPort       = 8000
	MainEntry         = "main"
)

// SourceMapFull is the devtool value for separate, linked source maps.
const SourceMapFull = "source-map"

// Options carries the mode independent project layout and feature toggles.
type Options struct {
	SourceRoot string
	OutputRoot string
	Entry      string
	Template   string
	// TemplateDelims overrides the "{{" and "}}" action delimiters of the
	// page template, for pages that carry client side mustache markup.
	TemplateDelims [2]string
	// Polyfill is imported ahead of Entry. Set NoPolyfill to drop it.
	Polyfill   string
	NoPolyfill bool
	Port       int

	// CollapseWhitespace minifies the rendered HTML in production.
	CollapseWhitespace bool
	// CopyFonts adds the fonts directory to the static copy patterns.
	CopyFonts bool
	// Precompress writes gzip siblings of production text outputs.
	Precompress bool
}

func (o Options) withDefaults() Options {
	if o.SourceRoot == "" {
		o.SourceRoot = DefaultSourceRoot
	}
	if o.OutputRoot == "" {
		o.OutputRoot = DefaultOutputRoot
	}
	if o.Entry == "" {
		o.Entry = DefaultEntry
	}
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	if o.Polyfill == "" && !o.NoPolyfill {
		o.Polyfill = DefaultPolyfill
	}
	if o.NoPolyfill {
		o.Polyfill = ""
	}
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	return o
}

// EntryPoint is a named bundle built from Imports, in order.
type EntryPoint struct {
	Name    string   `yaml:"name"`
	Imports []string `yaml:"imports"`
}

// Output locates the bundles.
type Output struct {
	Path     string          `yaml:"path"`
	Filename FilenamePattern `yaml:"filename"`
}

// DevServer configures the development server.
type DevServer struct {
	Port int  `yaml:"port"`
	Hot  bool `yaml:"hot"`
}

// Rule applies Use to every module whose path matches Test and not Exclude.
// Both are Go regular expressions.
type Rule struct {
	Kind    AssetKind      `yaml:"kind"`
	Test    string         `yaml:"test"`
	Exclude string         `yaml:"exclude,omitempty"`
	Use     LoaderPipeline `yaml:"use"`
}

// ComposedConfig is the complete configuration handed to the assets pipeline.
type ComposedConfig struct {
	Mode         Mode               `yaml:"mode"`
	Context      string             `yaml:"context"`
	Entry        []EntryPoint       `yaml:"entry"`
	Output       Output             `yaml:"output"`
	Optimization OptimizationPolicy `yaml:"optimization"`
	DevServer    DevServer          `yaml:"dev_server"`
	Devtool      string             `yaml:"devtool"`
	Plugins      []Plugin           `yaml:"plugins"`
	Rules        []Rule             `yaml:"rules"`
}

// SourceMaps reports whether the bundler should emit source maps.
func (c ComposedConfig) SourceMaps() bool {
	return c.Devtool != ""
}

// Rule returns the first rule for kind.
func (c ComposedConfig) Rule(kind AssetKind) (Rule, bool) {
	for _, r := range c.Rules {
		if r.Kind == kind {
			return r, true
		}
	}
	return Rule{}, false
}

// Compose assembles the full configuration for mode.
func Compose(mode Mode, opts Options) ComposedConfig {
	opts = opts.withDefaults()

	return ComposedConfig{
		Mode:    mode,
		Context: opts.SourceRoot,
		Entry: []EntryPoint{{
			Name:    MainEntry,
			Imports: entryImports(opts),
		}},
		Output: Output{
			Path:     opts.OutputRoot,
			Filename: ResolveFilenamePattern(mode, Script),
		},
		Optimization: ResolveOptimizationPolicy(mode),
		DevServer: DevServer{
			Port: opts.Port,
			Hot:  mode.IsDevelopment(),
		},
		Devtool: cond(mode.IsDevelopment(), SourceMapFull, ""),
		Plugins: ResolvePlugins(mode, opts),
		Rules:   ResolveRules(mode),
	}
}

// ResolveRules returns the module rules in match order.
func ResolveRules(mode Mode) []Rule {
	return []Rule{
		{Kind: Stylesheet, Test: `\.css$`, Use: ResolveLoaderPipeline(mode, Stylesheet)},
		{Kind: Sass, Test: `\.s[ac]ss$`, Use: ResolveLoaderPipeline(mode, Sass, SassStage())},
		{Kind: Image, Test: `\.(png|jpg|svg|gif)$`, Use: ResolveLoaderPipeline(mode, Image)},
		{Kind: Font, Test: `\.(ttf|woff|woff2|eot)$`, Use: ResolveLoaderPipeline(mode, Font)},
		{Kind: Script, Test: `\.js$`, Exclude: VendorDir, Use: ResolveLoaderPipeline(mode, Script)},
	}
}

func entryImports(opts Options) []string {
	var shim []string
	if opts.Polyfill != "" {
		shim = []string{opts.Polyfill}
	}
	return slices.Concat(shim, []string{opts.Entry})
}

func join(elem ...string) string {
	return path.Join(elem...)
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
