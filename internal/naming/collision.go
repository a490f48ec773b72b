package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks target paths claimed by source files within one
// batch and resolves duplicates by appending " - dupN" to the stem. Keys are
// compared case-insensitively because the common desktop filesystems
// (APFS, NTFS) are. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // folded target path → source path that owns it
	counters map[string]int    // folded base target path → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final target path for source. If requested is
// unclaimed (or already owned by source) it is returned as-is; otherwise a
// " - dupN" variant is generated.
func (cr *CollisionResolver) Resolve(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := fold(requested)
	owner, exists := cr.owners[key]
	if !exists || owner == source {
		cr.owners[key] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, counter, ext))
		cOwner, cExists := cr.owners[fold(candidate)]
		if !cExists || cOwner == source {
			cr.counters[key] = counter + 1
			cr.owners[fold(candidate)] = source
			return candidate
		}
		counter++
	}
}

func fold(p string) string { return strings.ToLower(filepath.Clean(p)) }
