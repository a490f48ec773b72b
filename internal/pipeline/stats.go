package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/batchconv/internal/convert"
	"github.com/backmassage/batchconv/internal/display"
	"github.com/backmassage/batchconv/internal/kind"
)

// Status is the overall verdict of a batch.
type Status string

const (
	StatusSuccess Status = "success" // no failures (including zero items)
	StatusPartial Status = "partial" // some items failed, some succeeded
	StatusFailed  Status = "failed"  // every item failed
)

// BatchResult aggregates one batch. Outcomes are in enumeration order and
// Successes + Failures == len(Outcomes).
type BatchResult struct {
	ID        string
	Kind      kind.Kind
	Directory string
	Outcomes  []convert.Outcome
	Successes int
	Failures  int
	Started   time.Time
	Elapsed   time.Duration
}

func newBatchResult(dir string, k kind.Kind, n int) *BatchResult {
	return &BatchResult{
		ID:        uuid.NewString(),
		Kind:      k,
		Directory: dir,
		Outcomes:  make([]convert.Outcome, n),
		Started:   time.Now(),
	}
}

// Total returns the number of files discovered.
func (b *BatchResult) Total() int { return len(b.Outcomes) }

// Status derives the overall verdict from the counts.
func (b *BatchResult) Status() Status {
	switch {
	case b.Failures == 0:
		return StatusSuccess
	case b.Successes == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Failed returns the failing outcomes in enumeration order.
func (b *BatchResult) Failed() []convert.Outcome {
	var out []convert.Outcome
	for _, o := range b.Outcomes {
		if !o.Success() {
			out = append(out, o)
		}
	}
	return out
}

// OutputBytes sums the size of every written target.
func (b *BatchResult) OutputBytes() int64 {
	var n int64
	for _, o := range b.Outcomes {
		n += o.OutputBytes
	}
	return n
}

// Summary renders the human-readable report: the counts on one line, then
// one line per failure with its path and reason.
func (b *BatchResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d converted, %d failed of %d in %s",
		b.Kind.Label(), b.Successes, b.Failures, b.Total(), display.FormatDuration(b.Elapsed))
	if b.Successes > 0 {
		fmt.Fprintf(&sb, " (%s written)", display.FormatBytes(b.OutputBytes()))
	}
	for _, o := range b.Failed() {
		fmt.Fprintf(&sb, "\n  %s: %s", o.Item.Source, o.Reason())
	}
	return sb.String()
}

func (b *BatchResult) tally() {
	b.Successes, b.Failures = 0, 0
	for _, o := range b.Outcomes {
		if o.Success() {
			b.Successes++
		} else {
			b.Failures++
		}
	}
}

// DeletionFailure is one source file that could not be removed.
type DeletionFailure struct {
	Path string
	Err  error
}

// DeletionResult reports a cleanup run.
// Deleted + Missing + len(Failures) == Matched.
type DeletionResult struct {
	Kind      kind.Kind
	Directory string
	Matched   int
	Deleted   int
	Missing   int // vanished between discovery and removal
	Failures  []DeletionFailure
}

// Summary renders the cleanup report.
func (d *DeletionResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deleted %d of %d %s file(s)", d.Deleted, d.Matched, strings.TrimPrefix(d.Kind.SourceExt(), "."))
	if d.Missing > 0 {
		fmt.Fprintf(&sb, ", %d already gone", d.Missing)
	}
	if len(d.Failures) > 0 {
		fmt.Fprintf(&sb, ", %d failed", len(d.Failures))
		for _, f := range d.Failures {
			fmt.Fprintf(&sb, "\n  %s: %v", f.Path, f.Err)
		}
	}
	return sb.String()
}
