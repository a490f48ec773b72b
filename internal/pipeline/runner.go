package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/convert"
	"github.com/backmassage/batchconv/internal/display"
	"github.com/backmassage/batchconv/internal/ffmpeg"
	"github.com/backmassage/batchconv/internal/imaging"
	"github.com/backmassage/batchconv/internal/kind"
	"github.com/backmassage/batchconv/internal/logging"
	"github.com/backmassage/batchconv/internal/metrics"
	"github.com/backmassage/batchconv/internal/naming"
)

// Runner executes batches. The zero value is not usable; build one with
// [NewRunner] or fill Converters by hand in tests.
type Runner struct {
	Converters map[kind.Kind]convert.Converter
	Workers    func(kind.Kind) int // nil means runtime.NumCPU
	Log        *logging.Logger     // nil silences the runner
	Metrics    *metrics.Recorder   // nil records nothing
	Remove     func(string) error  // nil means os.Remove
	Verbose    bool
}

// NewRunner wires the image and subprocess converters from cfg.
func NewRunner(cfg *config.Config, log *logging.Logger, rec *metrics.Recorder) *Runner {
	audio := ffmpeg.AudioOptions{Bitrate: cfg.AudioBitrate, SampleRate: cfg.AudioSampleRate}
	return &Runner{
		Converters: map[kind.Kind]convert.Converter{
			kind.HeicToJpg: imaging.New(cfg.JPEGQuality),
			kind.Mp4ToMp3:  ffmpeg.NewConverter(cfg.FFmpegBin, audio, log, cfg.Verbose),
		},
		Workers: cfg.Workers,
		Log:     log,
		Metrics: rec,
		Verbose: cfg.Verbose,
	}
}

// Run converts every file of kind k directly inside dir. The only error it
// returns wraps [ErrInvalidInput]; per-file problems are reported through
// the outcomes of the returned BatchResult.
func (r *Runner) Run(ctx context.Context, dir string, k kind.Kind) (*BatchResult, error) {
	dir, err := ValidateInput(dir, k)
	if err != nil {
		return nil, err
	}
	conv, ok := r.Converters[k]
	if !ok || conv == nil {
		return nil, fmt.Errorf("%w: no converter for %s", ErrInvalidInput, k)
	}
	files, err := Discover(dir, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res := newBatchResult(dir, k, len(files))
	log := r.logger().With(logging.FieldBatchID, res.ID).With(logging.FieldKind, k.String())
	items := buildItems(files, k)
	workers := r.workers(k)
	logBatchHeader(log, res, workers)

	var (
		binaryMissing atomic.Bool
		finished      atomic.Int64
		dispatched    = make([]bool, len(items))
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, item := range items {
		// Go blocks while the pool is full, so these checks run between dispatches.
		if ctx.Err() != nil || binaryMissing.Load() {
			break
		}
		dispatched[i] = true
		g.Go(func() error {
			out := safeConvert(ctx, conv, item)
			if convert.KindOf(out.Err) == convert.FailureBinaryNotFound {
				binaryMissing.Store(true)
			}
			res.Outcomes[i] = out
			r.Metrics.ObserveItem(k, out.Success(), out.Duration)
			logOutcome(log, int(finished.Add(1)), len(items), out)
			return nil
		})
	}
	_ = g.Wait()

	for i, item := range items {
		if dispatched[i] {
			continue
		}
		res.Outcomes[i] = notAttempted(ctx, item)
	}
	if n := len(items) - int(finished.Load()); n > 0 {
		log.Warn("%d file(s) not attempted", n)
	}

	res.tally()
	res.Elapsed = time.Since(res.Started)
	r.Metrics.ObserveBatch(k, string(res.Status()), time.Now())
	logSummary(log, res)
	return res, nil
}

func buildItems(files []string, k kind.Kind) []convert.WorkItem {
	resolver := naming.NewCollisionResolver()
	items := make([]convert.WorkItem, len(files))
	for i, src := range files {
		target := naming.OutputPath(src, k.SourceExt(), k.TargetExt())
		items[i] = convert.WorkItem{
			Index:  i,
			Source: src,
			Target: resolver.Resolve(src, target),
		}
	}
	return items
}

// safeConvert turns a converter panic into a failed outcome so one bad
// file cannot take down the batch.
func safeConvert(ctx context.Context, conv convert.Converter, item convert.WorkItem) (out convert.Outcome) {
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			out = convert.Failed(item, started, convert.Errorf(convert.FailureUnknown, item.Source, "converter panic: %v", p))
		}
	}()
	out = conv.Convert(ctx, item)
	out.Item = item
	return out
}

func notAttempted(ctx context.Context, item convert.WorkItem) convert.Outcome {
	if err := ctx.Err(); err != nil {
		return convert.Failed(item, time.Time{}, convert.Errorf(convert.FailureCanceled, item.Source, "not attempted: %v", err))
	}
	return convert.Failed(item, time.Time{}, &convert.Error{
		Kind: convert.FailureBinaryNotFound,
		Path: item.Source,
		Err:  errors.New("not attempted: transcoder binary not found"),
	})
}

func (r *Runner) workers(k kind.Kind) int {
	n := runtime.NumCPU()
	if r.Workers != nil {
		n = r.Workers(k)
	}
	return max(n, 1)
}

func (r *Runner) logger() *logging.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logging.Nop()
}

// --- Logging helpers ---

// nameWidth caps file names in per-file progress lines.
const nameWidth = 48

func logBatchHeader(log *logging.Logger, res *BatchResult, workers int) {
	log.Info("%s in %s", res.Kind.Label(), res.Directory)
	if res.Total() == 0 {
		log.Info("No %s files found", res.Kind.SourceExt())
		return
	}
	log.Info("Found %d file(s), %d worker(s)", res.Total(), workers)
}

func logOutcome(log *logging.Logger, n, total int, out convert.Outcome) {
	src := display.Truncate(filepath.Base(out.Item.Source), nameWidth)
	if out.Success() {
		log.With(logging.FieldPath, out.Item.Source).
			With(logging.FieldTarget, out.Item.Target).
			With(logging.FieldDuration, out.Duration.String()).
			Success("[%d/%d] %s -> %s (%s, %s)", n, total, src, display.Truncate(filepath.Base(out.Item.Target), nameWidth),
				display.FormatBytes(out.OutputBytes), display.FormatDuration(out.Duration))
		return
	}
	log.With(logging.FieldPath, out.Item.Source).
		With(logging.FieldReason, out.Reason()).
		Error("[%d/%d] %s failed: %s", n, total, src, out.Reason())
}

func logSummary(log *logging.Logger, res *BatchResult) {
	line := log.With(logging.FieldResult, string(res.Status()))
	switch res.Status() {
	case StatusSuccess:
		line.Info("Done: %d converted, 0 failed in %s", res.Successes, display.FormatDuration(res.Elapsed))
	default:
		line.Warn("Done: %d converted, %d failed in %s", res.Successes, res.Failures, display.FormatDuration(res.Elapsed))
	}
}
