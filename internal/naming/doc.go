// Package naming derives target paths from source paths, keeps targets
// unique within a batch, and names the temporary files converters write
// before committing a result.
package naming
