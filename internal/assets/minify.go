package assets

import (
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

// minimize runs each minimizer stage, in order, over the outputs it owns.
func minimize(files []api.OutputFile, stages []buildconfig.Stage) ([]api.OutputFile, error) {
	out := make([]api.OutputFile, len(files))
	copy(out, files)

	for _, stage := range stages {
		var (
			ext  string
			opts api.TransformOptions
		)

		switch stage.Name {
		case buildconfig.StageCSSMinimizer:
			ext = ".css"
			opts = api.TransformOptions{
				Loader:           api.LoaderCSS,
				MinifyWhitespace: true,
				MinifySyntax:     true,
			}
		case buildconfig.StageJSMinimizer:
			ext = ".js"
			opts = api.TransformOptions{
				Loader:            api.LoaderJS,
				MinifyWhitespace:  true,
				MinifySyntax:      true,
				MinifyIdentifiers: stage.Bool("mangle"),
			}
		default:
			return nil, fmt.Errorf("unknown minimizer %q", stage.Name)
		}

		for i := range out {
			if filepath.Ext(out[i].Path) != ext {
				continue
			}

			opts.Sourcefile = filepath.Base(out[i].Path)
			result := api.Transform(string(out[i].Contents), opts)
			if len(result.Errors) > 0 {
				return nil, fmt.Errorf("%w: %s %s: %s", ErrBuildFailed, stage.Name, opts.Sourcefile, result.Errors[0].Text)
			}
			out[i].Contents = result.Code
		}
	}

	return out, nil
}
