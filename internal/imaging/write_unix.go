//go:build !windows

package imaging

import (
	"fmt"
	"image"

	"github.com/google/renameio/v2"
)

// writeJPEG encodes img into a pending file next to path and atomically
// replaces path once the data is synced, so a failed encode never leaves a
// truncated JPEG behind.
func writeJPEG(path string, img image.Image, quality int) (int64, error) {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck // no-op after CloseAtomicallyReplace

	n, err := encodeJPEG(pending, img, quality)
	if err != nil {
		return 0, fmt.Errorf("encode jpeg: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}
	return n, nil
}
