package naming

import (
	"path/filepath"
	"strings"
)

// OutputPath derives the target path for src by replacing a trailing
// sourceExt (matched case-insensitively) with targetExt. Only the suffix is
// touched, so dots inside the stem survive:
//
//	/photos/trip.2024.HEIC  ->  /photos/trip.2024.jpg
//
// When src does not end in sourceExt, targetExt is appended to the full name.
func OutputPath(src, sourceExt, targetExt string) string {
	dir, base := filepath.Split(src)
	stem := base
	if n := len(sourceExt); n > 0 && len(base) > n && strings.EqualFold(base[len(base)-n:], sourceExt) {
		stem = base[:len(base)-n]
	}
	return filepath.Join(dir, stem+targetExt)
}

// Stem returns the file name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
