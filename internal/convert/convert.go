// Package convert defines the contract shared by every conversion strategy:
// a WorkItem goes in, an immutable Outcome comes out, and failures are
// typed so the orchestrator can tell per-file problems from environment ones.
package convert

import (
	"context"
	"time"
)

// WorkItem is one input file slated for conversion.
type WorkItem struct {
	Index  int    // Position in enumeration order.
	Source string // Absolute source path.
	Target string // Absolute target path (same directory, target extension).
}

// Outcome is the result of converting one WorkItem. A nil Err means success.
type Outcome struct {
	Item        WorkItem
	Err         error
	Duration    time.Duration
	OutputBytes int64 // Size of the written target; 0 on failure.
}

// Success reports whether the item converted cleanly.
func (o Outcome) Success() bool { return o.Err == nil }

// Reason renders the failure as "<Tag>: <message>", or "" on success.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return KindOf(o.Err).String() + ": " + o.Err.Error()
}

// Converter turns one WorkItem into an Outcome. Implementations must never
// panic on bad input and must report every problem through Outcome.Err.
// Convert is called concurrently from multiple goroutines.
type Converter interface {
	Convert(ctx context.Context, item WorkItem) Outcome
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc func(ctx context.Context, item WorkItem) Outcome

// Convert calls f(ctx, item).
func (f ConverterFunc) Convert(ctx context.Context, item WorkItem) Outcome { return f(ctx, item) }

// Succeeded builds a success outcome, recording the target's size.
func Succeeded(item WorkItem, started time.Time, outputBytes int64) Outcome {
	return Outcome{Item: item, Duration: time.Since(started), OutputBytes: outputBytes}
}

// Failed builds a failure outcome.
func Failed(item WorkItem, started time.Time, err error) Outcome {
	var d time.Duration
	if !started.IsZero() {
		d = time.Since(started)
	}
	return Outcome{Item: item, Err: err, Duration: d}
}
