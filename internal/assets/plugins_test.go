package assets

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSuffix(t *testing.T) {
	filter := regexp.MustCompile(withSuffix(`\.(ttf|woff|woff2|eot)$`))

	for _, ref := range []string{"./f.woff2", "./f.woff2?v=1", "./f.eot?#iefix", "./f.ttf#body"} {
		assert.True(t, filter.MatchString(ref), ref)
	}
	for _, ref := range []string{"./f.woff2.map", "./f.otf?v=1"} {
		assert.False(t, filter.MatchString(ref), ref)
	}

	require.Equal(t, `\.js`, withSuffix(`\.js`))
	require.Equal(t, `price\$`, withSuffix(`price\$`))
}

func TestSplitSuffix(t *testing.T) {
	tests := []struct {
		ref    string
		path   string
		suffix string
	}{
		{ref: "./logo.png", path: "./logo.png"},
		{ref: "./f.woff2?v=1", path: "./f.woff2", suffix: "?v=1"},
		{ref: "./f.eot?#iefix", path: "./f.eot", suffix: "?#iefix"},
		{ref: "./icons.svg#home", path: "./icons.svg", suffix: "#home"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			path, suffix := splitSuffix(tt.ref)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.suffix, suffix)
		})
	}
}
