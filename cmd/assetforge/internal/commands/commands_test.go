package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"gopkg.in/yaml.v3"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

func TestConfigCmd_Run(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"assetforge.yaml": "output_root: public\ncopy_fonts: true\n",
	})

	var buf bytes.Buffer
	cmd := &ConfigCmd{out: &buf}

	err := cmd.Run(&Globals{
		Project: filepath.Join(dir, "assetforge.yaml"),
		Mode:    buildconfig.Development,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "development", doc["mode"])
	assert.Equal(t, "source-map", doc["devtool"])
	assert.Equal(t, map[string]any{"port": 8000, "hot": true}, doc["dev_server"])
	assert.Equal(t, map[string]any{"path": "public", "filename": "[name].js"}, doc["output"])
	assert.Len(t, doc["plugins"], 4)
	assert.Len(t, doc["rules"], 5)
}

func TestConfigCmd_RunInvalidProject(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"assetforge.yaml": "outputs: public\n",
	})

	cmd := &ConfigCmd{out: &bytes.Buffer{}}
	err := cmd.Run(&Globals{Project: filepath.Join(dir, "assetforge.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse project file")
}

func TestBuildCmd_Run(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"assetforge.yaml":      "no_polyfill: true\n",
		"src/index.js":         "console.log(\"hello\");\n",
		"src/index.html":       "<html><head></head><body></body></html>",
		"src/assets/img/a.gif": "gif",
		"dist/leftover.txt":    "stale",
	})
	t.Chdir(dir)

	cmd := &BuildCmd{SassBinary: "sass"}
	err := cmd.Run(context.Background(), &Globals{
		Project: filepath.Join(dir, "assetforge.yaml"),
		Mode:    buildconfig.Development,
		Version: "test",
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "dist/main.js"))
	assert.FileExists(t, filepath.Join(dir, "dist/index.html"))
	assert.FileExists(t, filepath.Join(dir, "dist/assets/img/a.gif"))
	assert.NoFileExists(t, filepath.Join(dir, "dist/leftover.txt"))
}

func TestBuildCmd_RunFails(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/index.html": "<html></html>",
	})
	t.Chdir(dir)

	cmd := &BuildCmd{SassBinary: "sass"}
	err := cmd.Run(context.Background(), &Globals{
		Project: filepath.Join(dir, "assetforge.yaml"),
		Mode:    buildconfig.Production,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build assets")
}
