package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"github.com/wolfeidau/assetforge/internal/config"
)

func TestCLI_defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	parser, err := kong.New(&cli, options(context.Background())...)
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"config"})
	require.NoError(t, err)

	assert.Equal(t, "config", kctx.Command())
	assert.Equal(t, config.DefaultPath, filepath.Base(cli.Project))
	assert.Equal(t, buildconfig.Development, buildconfig.ParseMode(cli.Env))
}
