package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_json(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Debug().Msg("hidden")
	l.Info().Str("file", "main.js").Msg("Built file")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "Built file", line["message"])
	require.Equal(t, "main.js", line["file"])
	require.Equal(t, "info", line["level"])
	require.Contains(t, line, "time")
}

func TestNew_debug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	require.Equal(t, zerolog.DebugLevel, l.GetLevel())

	l.Debug().Msg("Emitted file")
	require.Contains(t, buf.String(), "Emitted file")
}
