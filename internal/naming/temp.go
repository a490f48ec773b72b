package naming

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempSibling returns a unique hidden path next to target that keeps
// target's extension, e.g. "/music/.song.3f1c….part.mp3". Tools that pick
// the output format from the extension (ffmpeg) still see the right one, and
// concurrent writers never share a temp file.
func TempSibling(target string) string {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	return filepath.Join(dir, "."+Stem(target)+"."+uuid.NewString()+".part"+ext)
}

// IsTempSibling reports whether name looks like a TempSibling file name.
func IsTempSibling(name string) bool {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	return strings.HasSuffix(strings.TrimSuffix(base, ext), ".part")
}
