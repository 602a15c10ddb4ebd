package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

// copyPatterns runs every pattern of plugin. Missing sources are skipped.
func (p *Pipeline) copyPatterns(plugin buildconfig.CopyPlugin) error {
	for _, pattern := range plugin.Patterns {
		src, dst := p.abs(pattern.From), p.abs(pattern.To)

		n, err := copyTree(src, dst)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn().Str("from", pattern.From).Msg("Copy source not found, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", pattern.From, err)
		}

		log.Debug().Str("from", pattern.From).Str("to", pattern.To).Int("files", n).Msg("Copied assets")
	}
	return nil
}

// copyTree mirrors the regular files below src into dst and returns the
// number of files copied.
func copyTree(src, dst string) (int, error) {
	if _, err := os.Stat(src); err != nil {
		return 0, err
	}

	n := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if err := copyFile(path, target); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// watchCopies re-runs copy patterns whenever their source trees change.
// It returns when ctx is done.
func (p *Pipeline) watchCopies(ctx context.Context) error {
	var patterns []buildconfig.CopyPattern
	for _, plugin := range p.config.Plugins {
		if cp, ok := plugin.(buildconfig.CopyPlugin); ok {
			patterns = append(patterns, cp.Patterns...)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, pattern := range patterns {
		if err := watchTree(watcher, p.abs(pattern.From)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						log.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch directory")
					}
				}
			}

			for _, pattern := range patterns {
				src := p.abs(pattern.From)
				if !within(src, event.Name) {
					continue
				}
				if _, err := copyTree(src, p.abs(pattern.To)); err != nil {
					log.Error().Err(err).Str("from", pattern.From).Msg("Failed to copy assets")
					continue
				}
				log.Info().Str("file", event.Name).Msg("Static asset changed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
