//go:build windows

package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// writeJPEG encodes img into a temp file in the target directory and
// renames it over path. Windows has no fsync+rename guarantee, so this is
// best-effort atomic.
func writeJPEG(path string, img image.Image, quality int) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".batchconv-*.jpg.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	n, err := encodeJPEG(tmp, img, quality)
	if err != nil {
		return 0, fmt.Errorf("encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename %s: %w", path, err)
	}
	return n, nil
}
