package buildconfig

import "slices"

// Plugin names.
const (
	PluginHTML       = "html"
	PluginClean      = "clean"
	PluginCopy       = "copy"
	PluginExtractCSS = "extract-css"
	PluginCompress   = "compress"
)

// Plugin is a build step run around the bundler itself.
type Plugin interface {
	PluginName() string
}

// HTMLPlugin renders the page template with bundle references injected.
type HTMLPlugin struct {
	Filename           string `yaml:"filename"`
	Template           string `yaml:"template"`
	CollapseWhitespace bool   `yaml:"collapse_whitespace"`
	LiveReload         bool   `yaml:"live_reload"`
	LeftDelim          string `yaml:"left_delim,omitempty"`
	RightDelim         string `yaml:"right_delim,omitempty"`
}

func (HTMLPlugin) PluginName() string { return PluginHTML }

// CleanPlugin empties the output directory before a build.
type CleanPlugin struct {
	Path string `yaml:"path"`
}

func (CleanPlugin) PluginName() string { return PluginClean }

// CopyPattern copies the tree at From to To, both relative to the project.
type CopyPattern struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// CopyPlugin copies static asset trees into the output directory.
type CopyPlugin struct {
	Patterns []CopyPattern `yaml:"patterns"`
}

func (CopyPlugin) PluginName() string { return PluginCopy }

// ExtractCSSPlugin writes stylesheets imported by scripts to their own files.
type ExtractCSSPlugin struct {
	Filename FilenamePattern `yaml:"filename"`
}

func (ExtractCSSPlugin) PluginName() string { return PluginExtractCSS }

// CompressPlugin writes gzip siblings for text outputs.
type CompressPlugin struct {
	Extensions []string `yaml:"extensions"`
}

func (CompressPlugin) PluginName() string { return PluginCompress }

// ResolvePlugins returns the plugin list for mode. The four base plugins are
// always present; the compress plugin is only added for production builds
// with Precompress set.
func ResolvePlugins(mode Mode, opts Options) []Plugin {
	opts = opts.withDefaults()

	base := []Plugin{
		HTMLPlugin{
			Filename:           "index.html",
			Template:           join(opts.SourceRoot, opts.Template),
			CollapseWhitespace: opts.CollapseWhitespace && !mode.IsDevelopment(),
			LiveReload:         mode.IsDevelopment(),
			LeftDelim:          opts.TemplateDelims[0],
			RightDelim:         opts.TemplateDelims[1],
		},
		CleanPlugin{Path: opts.OutputRoot},
		CopyPlugin{Patterns: copyPatterns(opts)},
		ExtractCSSPlugin{Filename: ResolveFilenamePattern(mode, Stylesheet)},
	}

	if mode.IsDevelopment() || !opts.Precompress {
		return base
	}
	return slices.Concat(base, []Plugin{CompressPlugin{Extensions: []string{".js", ".css", ".html"}}})
}

func copyPatterns(opts Options) []CopyPattern {
	images := []CopyPattern{{
		From: join(opts.SourceRoot, ImageOutputPath),
		To:   join(opts.OutputRoot, ImageOutputPath),
	}}
	if !opts.CopyFonts {
		return images
	}
	fonts := []CopyPattern{{
		From: join(opts.SourceRoot, FontOutputPath),
		To:   join(opts.OutputRoot, FontOutputPath),
	}}
	return slices.Concat(images, fonts)
}
