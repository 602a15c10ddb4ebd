package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/gzip"
	"github.com/wolfeidau/assetforge/internal/buildconfig"
)

// precompress writes a .gz sibling next to every output with a listed extension.
func (p *Pipeline) precompress(plugin buildconfig.CompressPlugin) (int, error) {
	n := 0
	err := filepath.WalkDir(p.outdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(plugin.Extensions, filepath.Ext(path)) {
			return nil
		}

		if err := gzipFile(path); err != nil {
			return fmt.Errorf("failed to compress %s: %w", path, err)
		}
		n++
		return nil
	})
	return n, err
}

func gzipFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		_ = out.Close()
		return err
	}

	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
