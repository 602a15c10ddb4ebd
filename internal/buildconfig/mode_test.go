package buildconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected Mode
	}{
		{name: "development token", value: "development", expected: Development},
		{name: "absent", value: "", expected: Production},
		{name: "production token", value: "production", expected: Production},
		{name: "case differs", value: "Development", expected: Production},
		{name: "short form", value: "dev", expected: Production},
		{name: "test", value: "test", expected: Production},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseMode(tt.value))
		})
	}
}

func TestMode_String(t *testing.T) {
	require.Equal(t, "development", Development.String())
	require.Equal(t, "production", Production.String())
	require.Equal(t, "Mode(7)", Mode(7).String())

	text, err := Development.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "development", string(text))
}
