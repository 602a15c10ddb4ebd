// Package config loads the optional assetforge.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/assetforge/internal/buildconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the project file looked up when none is given.
const DefaultPath = "assetforge.yaml"

// Project mirrors the project file. Zero fields fall back to the
// buildconfig defaults.
type Project struct {
	SourceRoot string `yaml:"source_root"`
	OutputRoot string `yaml:"output_root"`
	Entry      string `yaml:"entry"`
	Template   string `yaml:"template"`
	// TemplateDelims is a [left, right] pair replacing "{{" and "}}".
	TemplateDelims []string `yaml:"template_delims"`
	Polyfill       string   `yaml:"polyfill"`
	NoPolyfill     bool     `yaml:"no_polyfill"`
	Port           int      `yaml:"port"`

	CollapseWhitespace bool `yaml:"collapse_whitespace"`
	CopyFonts          bool `yaml:"copy_fonts"`
	Precompress        bool `yaml:"precompress"`
}

// Options converts the project file into resolver options.
func (p Project) Options() buildconfig.Options {
	var delims [2]string
	if len(p.TemplateDelims) == 2 {
		delims = [2]string{p.TemplateDelims[0], p.TemplateDelims[1]}
	}

	return buildconfig.Options{
		SourceRoot:         p.SourceRoot,
		OutputRoot:         p.OutputRoot,
		Entry:              p.Entry,
		Template:           p.Template,
		TemplateDelims:     delims,
		Polyfill:           p.Polyfill,
		NoPolyfill:         p.NoPolyfill,
		Port:               p.Port,
		CollapseWhitespace: p.CollapseWhitespace,
		CopyFonts:          p.CopyFonts,
		Precompress:        p.Precompress,
	}
}

// Validate checks the values the resolver cannot default.
func (p Project) Validate() error {
	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("port %d out of range", p.Port)
	}
	if n := len(p.TemplateDelims); n != 0 && (n != 2 || p.TemplateDelims[0] == "" || p.TemplateDelims[1] == "") {
		return errors.New("template_delims needs a non-empty left and right delimiter")
	}
	if p.NoPolyfill && p.Polyfill != "" {
		return errors.New("polyfill and no_polyfill are mutually exclusive")
	}
	return nil
}

// Load reads the project file at path. A missing file yields the zero
// Project so every default applies.
func Load(path string) (Project, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Project{}, nil
	}
	if err != nil {
		return Project{}, fmt.Errorf("failed to open project file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a project file, rejecting unknown fields.
func Decode(r io.Reader) (Project, error) {
	var p Project

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Project{}, fmt.Errorf("invalid project file: %w", err)
	}

	return p, nil
}
