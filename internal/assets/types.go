package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

var (
	ErrBuildFailed        = errors.New("esbuild failed with errors")
	ErrNotBuilt           = errors.New("assets not built yet, call Build() first")
	ErrEntryPointNotFound = errors.New("entrypoint not found in metadata")
	ErrUnsafeClean        = errors.New("refusing to clean directory outside the project")
)

// BuildMetadata is the subset of the esbuild metafile the pipeline reads.
type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
	Bytes      int          `json:"bytes"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// Pipeline executes a composed configuration with esbuild.
type Pipeline struct {
	config  buildconfig.ComposedConfig
	workdir string
	root    string
	outdir  string

	sassBinary string
	sassMu     sync.Mutex
	sass       *godartsass.Transpiler

	emitMu  sync.Mutex
	buildMu sync.Mutex

	metadata *BuildMetadata
	outputs  map[string]struct{}
	mu       sync.RWMutex
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithWorkDir resolves every configured path against dir instead of the
// process working directory.
func WithWorkDir(dir string) Option {
	return func(p *Pipeline) {
		p.workdir = dir
	}
}

// WithSassBinary sets the dart-sass executable used for the sass stage.
func WithSassBinary(path string) Option {
	return func(p *Pipeline) {
		p.sassBinary = path
	}
}

// New creates a new asset pipeline for the given configuration
func New(config buildconfig.ComposedConfig, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		config:     config,
		sassBinary: "sass",
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		p.workdir = wd
	}

	workdir, err := filepath.Abs(p.workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	p.workdir = workdir
	p.root = p.abs(config.Context)
	p.outdir = p.abs(config.Output.Path)

	return p, nil
}

// OutputDir returns the absolute output directory.
func (p *Pipeline) OutputDir() string {
	return p.outdir
}

// Close stops the sass compiler if one was started.
func (p *Pipeline) Close() error {
	p.sassMu.Lock()
	defer p.sassMu.Unlock()

	if p.sass == nil {
		return nil
	}
	err := p.sass.Close()
	p.sass = nil
	return err
}

func (p *Pipeline) abs(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.workdir, path)
}

// publicPath maps a metafile output key to its URL under the output directory.
func (p *Pipeline) publicPath(key string) string {
	rel, err := filepath.Rel(p.outdir, p.abs(key))
	if err != nil {
		return "/" + key
	}
	return "/" + filepath.ToSlash(rel)
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"marshal": marshal,
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
	}
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
