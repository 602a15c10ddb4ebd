package assets

import (
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

func TestMinimize(t *testing.T) {
	files := []api.OutputFile{
		{Path: "/dist/main.css", Contents: []byte("body {\n  color: red;\n}\n")},
		{Path: "/dist/main.js", Contents: []byte("const message = \"hi\";\nconsole.log(message);\n")},
		{Path: "/dist/meta.json", Contents: []byte("{ }")},
	}

	out, err := minimize(files, buildconfig.ResolveOptimizationPolicy(buildconfig.Production).Minimizers)
	require.NoError(t, err)

	assert.Equal(t, "body{color:red}\n", string(out[0].Contents))
	assert.NotContains(t, string(out[1].Contents), "\n  ")
	assert.Less(t, len(out[1].Contents), len(files[1].Contents))
	assert.Equal(t, "{ }", string(out[2].Contents))

	// inputs are left untouched
	assert.True(t, strings.HasPrefix(string(files[0].Contents), "body {"))
}

func TestMinimize_development(t *testing.T) {
	files := []api.OutputFile{{Path: "/dist/main.css", Contents: []byte("body {\n  color: red;\n}\n")}}

	out, err := minimize(files, buildconfig.ResolveOptimizationPolicy(buildconfig.Development).Minimizers)
	require.NoError(t, err)
	assert.Equal(t, files, out)
}

func TestMinimize_unknownStage(t *testing.T) {
	_, err := minimize(nil, []buildconfig.Stage{{Name: "uglify"}})
	require.Error(t, err)
}

func TestContentHash(t *testing.T) {
	a := contentHash([]byte("logo"))
	require.Len(t, a, hashLength)
	require.Equal(t, a, contentHash([]byte("logo")))
	require.NotEqual(t, a, contentHash([]byte("logo2")))
}
