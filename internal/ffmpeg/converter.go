package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/batchconv/internal/convert"
	"github.com/backmassage/batchconv/internal/logging"
	"github.com/backmassage/batchconv/internal/naming"
)

// Converter extracts the audio track of an MP4 into an MP3 via the
// transcoder binary Bin.
type Converter struct {
	Bin     string
	Options AudioOptions
	Log     *logging.Logger // optional; receives the argument vector at debug level
	Verbose bool
}

// NewConverter returns a Converter for bin with opts.
func NewConverter(bin string, opts AudioOptions, log *logging.Logger, verbose bool) *Converter {
	return &Converter{Bin: bin, Options: opts, Log: log, Verbose: verbose}
}

// Convert implements [convert.Converter]. Exit 0 publishes the output at
// item.Target; any other result leaves item.Target as it was.
func (c *Converter) Convert(ctx context.Context, item convert.WorkItem) convert.Outcome {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return convert.Failed(item, time.Time{}, convert.Errorf(convert.FailureCanceled, item.Source, "%v", err))
	}

	tmp := naming.TempSibling(item.Target)
	args := Build(c.Bin, c.Options, item.Source, tmp)
	if c.Log != nil {
		c.Log.Debug(c.Verbose, "exec: %s", strings.Join(args, " "))
	}

	res := Execute(ctx, args, nil)
	if res.Err != nil {
		os.Remove(tmp)
		return convert.Failed(item, started, c.classify(ctx, item, res))
	}

	if err := os.Rename(tmp, item.Target); err != nil {
		os.Remove(tmp)
		return convert.Failed(item, started, &convert.Error{Kind: convert.FailureWrite, Path: item.Target, Err: err})
	}

	var size int64
	if fi, err := os.Stat(item.Target); err == nil {
		size = fi.Size()
	}
	return convert.Succeeded(item, started, size)
}

func (c *Converter) classify(ctx context.Context, item convert.WorkItem, res ExecResult) error {
	switch {
	case ctx.Err() != nil && !isNotFound(res.Err):
		return convert.Errorf(convert.FailureCanceled, item.Source, "transcoder interrupted: %v", ctx.Err())
	case !res.Started():
		// Missing, not executable or not a program: none of these can succeed on retry.
		return &convert.Error{Kind: convert.FailureBinaryNotFound, Path: c.Bin, Err: res.Err}
	default:
		return &convert.Error{
			Kind:     convert.FailureSubprocessExit,
			Path:     item.Source,
			Err:      fmt.Errorf("%s failed on %s", filepath.Base(c.Bin), filepath.Base(item.Source)),
			ExitCode: res.ExitCode,
			Hint:     Hint(res.Stderr),
			Stderr:   res.Stderr,
		}
	}
}
