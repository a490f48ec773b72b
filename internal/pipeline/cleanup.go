package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/backmassage/batchconv/internal/kind"
	"github.com/backmassage/batchconv/internal/logging"
)

// DeleteMatching removes every file Discover finds for k in dir. A file
// that is already gone counts as Missing; any other removal error is
// recorded and the remaining files are still attempted. Confirmation is the
// caller's job. Like Run, the only error returned wraps [ErrInvalidInput].
func (r *Runner) DeleteMatching(ctx context.Context, dir string, k kind.Kind) (*DeletionResult, error) {
	dir, err := ValidateInput(dir, k)
	if err != nil {
		return nil, err
	}
	files, err := Discover(dir, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return r.deleteFiles(ctx, dir, k, files), nil
}

// Purge removes the sources of the items res converted successfully.
// Files that appeared after the batch discovered its inputs are left alone.
func (r *Runner) Purge(ctx context.Context, res *BatchResult) *DeletionResult {
	var files []string
	for _, o := range res.Outcomes {
		if o.Success() {
			files = append(files, o.Item.Source)
		}
	}
	return r.deleteFiles(ctx, res.Directory, res.Kind, files)
}

func (r *Runner) deleteFiles(ctx context.Context, dir string, k kind.Kind, files []string) *DeletionResult {
	remove := r.Remove
	if remove == nil {
		remove = os.Remove
	}

	log := r.logger().With(logging.FieldKind, k.String())
	res := &DeletionResult{Kind: k, Directory: dir, Matched: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, DeletionFailure{Path: path, Err: fmt.Errorf("not attempted: %w", err)})
			continue
		}
		switch err := remove(path); {
		case err == nil:
			res.Deleted++
			log.Debug(r.Verbose, "Deleted %s", filepath.Base(path))
		case errors.Is(err, fs.ErrNotExist):
			res.Missing++
			log.Debug(r.Verbose, "Already gone: %s", filepath.Base(path))
		default:
			res.Failures = append(res.Failures, DeletionFailure{Path: path, Err: err})
			log.With(logging.FieldPath, path).Error("Cannot delete %s: %v", filepath.Base(path), err)
		}
	}

	r.Metrics.ObserveDeletion(k, res.Deleted, res.Missing, len(res.Failures))
	if len(res.Failures) > 0 {
		log.Warn("%s", res.Summary())
	} else {
		log.Success("%s", res.Summary())
	}
	return res
}
