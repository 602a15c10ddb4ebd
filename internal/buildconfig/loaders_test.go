package buildconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLoaderPipeline_stylesheet(t *testing.T) {
	lp := ResolveLoaderPipeline(Production, Stylesheet)
	require.Len(t, lp, 3)
	require.Equal(t, []string{StageExtractCSS, StageCSS, StagePostCSS}, lp.Names())

	css, ok := lp.Find(StageCSS)
	require.True(t, ok)
	require.Equal(t, 1, css.Int("importLoaders"))
}

func TestResolveLoaderPipeline_extraStageLast(t *testing.T) {
	lp := ResolveLoaderPipeline(Development, Stylesheet, SassStage())
	require.Len(t, lp, 4)
	require.Equal(t, StageExtractCSS, lp[0].Name)
	require.Equal(t, StageSass, lp[3].Name)
}

func TestResolveLoaderPipeline_extractTracksMode(t *testing.T) {
	dev, _ := ResolveLoaderPipeline(Development, Stylesheet).Find(StageExtractCSS)
	prod, _ := ResolveLoaderPipeline(Production, Stylesheet).Find(StageExtractCSS)

	assert.True(t, dev.Bool("hmr"))
	assert.False(t, prod.Bool("hmr"))
	assert.True(t, prod.Bool("reloadAll"))
}

func TestResolveLoaderPipeline_binaryAssets(t *testing.T) {
	tests := []struct {
		kind       AssetKind
		outputPath string
	}{
		{kind: Image, outputPath: "assets/img"},
		{kind: Font, outputPath: "assets/fonts"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			for _, mode := range []Mode{Development, Production} {
				lp := ResolveLoaderPipeline(mode, tt.kind, SassStage())
				require.Len(t, lp, 1)
				require.Equal(t, StageFile, lp[0].Name)
				require.Equal(t, tt.outputPath, lp[0].String("outputPath"))
				require.Equal(t, "[name].[contenthash].[ext]", lp[0].String("name"))
			}
		})
	}
}

func TestResolveLoaderPipeline_script(t *testing.T) {
	lp := ResolveLoaderPipeline(Production, Script)
	require.Len(t, lp, 1)
	require.Equal(t, StageTranspile, lp[0].Name)
	require.Equal(t, "es2015", lp[0].String("target"))
	require.Equal(t, VendorDir, lp[0].String("exclude"))
	require.Equal(t, []string{"preset-env"}, lp[0].Strings("presets"))
}

func TestResolveLoaderPipeline_unknownKind(t *testing.T) {
	require.Empty(t, ResolveLoaderPipeline(Production, AssetKind("video")))
}

func TestResolveLoaderPipeline_freshValues(t *testing.T) {
	first := ResolveLoaderPipeline(Development, Stylesheet)
	first[2].Options["browsers"] = []string{"ie11"}
	first[0].Name = "mutated"

	second := ResolveLoaderPipeline(Development, Stylesheet)
	require.Equal(t, StageExtractCSS, second[0].Name)
	require.Equal(t, defaultBrowsers, second[2].Strings("browsers"))
}
