package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/backmassage/batchconv/internal/kind"
)

// ErrInvalidInput is wrapped by every upfront rejection: empty or missing
// directory, a path that is not a directory, or no kind selected. Nothing is
// touched when it is returned.
var ErrInvalidInput = errors.New("invalid input")

// ValidateInput checks dir and k and returns dir as an absolute, cleaned path.
func ValidateInput(dir string, k kind.Kind) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: no directory selected", ErrInvalidInput)
	}
	if !k.Valid() {
		return "", fmt.Errorf("%w: no conversion kind selected", ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, abs)
	}
	return abs, nil
}

// Discover lists the regular files directly inside dir whose extension
// matches k's source extension, ignoring case. Symlinks count when they
// resolve to a regular file. Paths are sorted by their NFC-normalised base
// name, raw name breaking ties, so order is stable across filesystems that
// store names in different normal forms.
func Discover(dir string, k kind.Kind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type match struct{ key, name string }
	var matches []match
	for _, e := range entries {
		name := e.Name()
		if !k.Matches(name) || !isRegular(dir, e) {
			continue
		}
		matches = append(matches, match{key: norm.NFC.String(name), name: name})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].key != matches[j].key {
			return matches[i].key < matches[j].key
		}
		return matches[i].name < matches[j].name
	})

	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(dir, m.name)
	}
	return files, nil
}

func isRegular(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}
