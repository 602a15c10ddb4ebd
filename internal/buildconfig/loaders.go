package buildconfig

// Stage names understood by the assets pipeline.
const (
	StageExtractCSS   = "extract-css"
	StageCSS          = "css"
	StagePostCSS      = "postcss"
	StageSass         = "sass"
	StageFile         = "file"
	StageTranspile    = "transpile"
	StageCSSMinimizer = "css-minimizer"
	StageJSMinimizer  = "js-minimizer"
)

// Fixed output subdirectories for emitted binary assets.
const (
	ImageOutputPath = "assets/img"
	FontOutputPath  = "assets/fonts"
)

// FilePattern names files emitted by the file stage. It keeps the content
// hash in every mode so equal basenames from different directories never
// share an output path.
const FilePattern FilenamePattern = NameToken + "." + HashToken + "." + ExtToken

// VendorDir is excluded from script transpilation.
const VendorDir = "node_modules"

// defaultBrowsers is the engine list the postcss stage targets.
var defaultBrowsers = []string{"chrome80", "edge88", "firefox78", "safari13"}

// Stage is a single named transform applied to matched source files.
type Stage struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
}

// String returns the string option key, or "" when unset.
func (s Stage) String(key string) string {
	v, _ := s.Options[key].(string)
	return v
}

func (s Stage) Int(key string) int {
	v, _ := s.Options[key].(int)
	return v
}

func (s Stage) Bool(key string) bool {
	v, _ := s.Options[key].(bool)
	return v
}

func (s Stage) Strings(key string) []string {
	v, _ := s.Options[key].([]string)
	return v
}

// LoaderPipeline is an ordered list of stages. The bundler applies stages
// last to first, so extraction comes first and the raw syntax stage last.
type LoaderPipeline []Stage

// Names returns the stage names in declaration order.
func (lp LoaderPipeline) Names() []string {
	names := make([]string, 0, len(lp))
	for _, s := range lp {
		names = append(names, s.Name)
	}
	return names
}

// Find returns the first stage called name.
func (lp LoaderPipeline) Find(name string) (Stage, bool) {
	for _, s := range lp {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// SassStage compiles Sass and SCSS sources to CSS.
func SassStage() Stage {
	return Stage{Name: StageSass}
}

// ResolveLoaderPipeline returns the transform stages for kind. Stylesheet
// kinds get the three stage base pipeline with extra appended last; the
// other kinds ignore extra.
func ResolveLoaderPipeline(mode Mode, kind AssetKind, extra ...Stage) LoaderPipeline {
	switch kind {
	case Stylesheet, Sass:
		return append(cssBase(mode), extra...)
	case Image:
		return LoaderPipeline{fileStage(ImageOutputPath)}
	case Font:
		return LoaderPipeline{fileStage(FontOutputPath)}
	case Script:
		return LoaderPipeline{{
			Name: StageTranspile,
			Options: map[string]any{
				"presets": []string{"preset-env"},
				"target":  "es2015",
				"exclude": VendorDir,
			},
		}}
	default:
		return LoaderPipeline{}
	}
}

func cssBase(mode Mode) LoaderPipeline {
	return LoaderPipeline{
		{
			Name: StageExtractCSS,
			Options: map[string]any{
				"hmr":       mode.IsDevelopment(),
				"reloadAll": true,
			},
		},
		{
			Name: StageCSS,
			// downstream preprocessor output is resolved too
			Options: map[string]any{"importLoaders": 1},
		},
		{
			Name: StagePostCSS,
			Options: map[string]any{
				"browsers": append([]string(nil), defaultBrowsers...),
			},
		},
	}
}

func fileStage(outputPath string) Stage {
	return Stage{
		Name: StageFile,
		Options: map[string]any{
			"outputPath": outputPath,
			"name":       string(FilePattern),
		},
	}
}
