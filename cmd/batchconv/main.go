// Command batchconv converts every HEIC photo to JPEG, or every MP4 video to
// an MP3 of its audio, directly inside one directory.
//
// It parses flags, validates configuration, and then either runs system
// diagnostics (--check), lists or deletes matching sources, or runs a
// conversion batch, optionally staying resident in watch mode.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/backmassage/batchconv/internal/check"
	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/display"
	"github.com/backmassage/batchconv/internal/logging"
	"github.com/backmassage/batchconv/internal/metrics"
	"github.com/backmassage/batchconv/internal/pipeline"
	"github.com/backmassage/batchconv/internal/term"
	"github.com/backmassage/batchconv/internal/watch"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// stdin is where delete confirmations are read from.
var stdin = os.Stdin

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1 // invalid input or at least one failed item
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	config.Version = version
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "batchconv: %v\n", err)
		return exitUsage
	}
	if cfg.ShowVersion {
		fmt.Printf("batchconv %s (%s)\n", version, commit)
		return exitOK
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "batchconv: %v\n", err)
		return exitUsage
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "batchconv: %v\n", err)
		return exitFailure
	}
	defer log.Close()

	// Phase 2: Signal handling. Cancel the context on SIGINT/SIGTERM so
	// in-flight transcoders are stopped and no further files are dispatched.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping…")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 3: Logger available. All output goes through log from here on,
	// except --list, whose stdout is meant for pipes.
	if !cfg.ListOnly {
		display.PrintBanner(os.Stdout)
	}

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, &cfg, log) {
			return exitFailure
		}
		return exitOK
	}

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
	}
	app := &app{
		cfg:    &cfg,
		log:    log,
		runner: pipeline.NewRunner(&cfg, log, rec),
		rec:    rec,
		stdin:  stdin,
		stdout: os.Stdout,
	}

	code := app.dispatch(ctx)
	if ctx.Err() != nil {
		return exitInterrupted
	}
	return code
}

// app bundles what the CLI actions share.
type app struct {
	cfg    *config.Config
	log    *logging.Logger
	runner *pipeline.Runner
	rec    *metrics.Recorder
	stdin  *os.File
	stdout io.Writer
}

func (a *app) dispatch(ctx context.Context) int {
	switch {
	case a.cfg.ListOnly:
		return a.list()
	case a.cfg.Delete:
		return a.delete(ctx)
	case a.cfg.Watch:
		return a.watch(ctx)
	default:
		return a.convert(ctx)
	}
}

// list prints the matching source paths, one per line.
func (a *app) list() int {
	dir, err := pipeline.ValidateInput(a.cfg.Directory, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	files, err := pipeline.Discover(dir, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	for _, f := range files {
		fmt.Fprintln(a.stdout, f)
	}
	a.log.Info("%d %s file(s) in %s", len(files), a.cfg.Kind.SourceExt(), dir)
	return exitOK
}

// delete asks for confirmation, then removes every matching source.
func (a *app) delete(ctx context.Context) int {
	dir, err := pipeline.ValidateInput(a.cfg.Directory, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	files, err := pipeline.Discover(dir, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	if len(files) == 0 {
		a.log.Info("No %s files in %s", a.cfg.Kind.SourceExt(), dir)
		return exitOK
	}
	if !a.confirm(fmt.Sprintf("Delete %d %s file(s) in %s?", len(files), a.cfg.Kind.SourceExt(), dir)) {
		return exitFailure
	}

	res, err := a.runner.DeleteMatching(ctx, dir, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	a.writeMetrics()
	if len(res.Failures) > 0 {
		return exitFailure
	}
	return exitOK
}

// convert runs one batch and, with --purge, removes the sources when every
// item succeeded.
func (a *app) convert(ctx context.Context) int {
	if err := check.CheckDeps(a.cfg); err != nil {
		a.log.Warn("%v; MP4 files will fail with BinaryNotFound", err)
	}
	if a.cfg.PurgeAfter && !a.confirm(fmt.Sprintf("Delete the %s sources after a fully successful batch?", a.cfg.Kind.SourceExt())) {
		return exitFailure
	}
	return a.batch(ctx)
}

// watch runs batches until interrupted.
func (a *app) watch(ctx context.Context) int {
	if err := check.CheckDeps(a.cfg); err != nil {
		a.log.Warn("%v; MP4 files will fail with BinaryNotFound", err)
	}
	dir, err := pipeline.ValidateInput(a.cfg.Directory, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	w := &watch.Watcher{
		Dir:      dir,
		Kind:     a.cfg.Kind,
		Debounce: a.cfg.WatchDebounce,
		Batch:    func(ctx context.Context) { _ = a.batch(ctx) },
		Log:      a.log,
		Verbose:  a.cfg.Verbose,
	}
	if err := w.Run(ctx); err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	return exitOK
}

// batch runs one conversion batch, reports it, purges if requested and
// writes metrics. It returns the exit code for the batch.
func (a *app) batch(ctx context.Context) int {
	res, err := a.runner.Run(ctx, a.cfg.Directory, a.cfg.Kind)
	if err != nil {
		a.log.Error("%v", err)
		return exitFailure
	}
	defer a.writeMetrics()

	if res.Failures > 0 {
		lines := strings.Split(res.Summary(), "\n")
		a.log.Warn("%s", lines[0])
		for _, l := range lines[1:] {
			a.log.Error("%s", l)
		}
	}

	if res.Failures > 0 {
		return exitFailure
	}
	if a.cfg.PurgeAfter && res.Total() > 0 && ctx.Err() == nil {
		if del := a.runner.Purge(ctx, res); len(del.Failures) > 0 {
			return exitFailure
		}
	}
	return exitOK
}

// confirm asks a y/N question on a terminal. Without a terminal it only
// proceeds when --yes was given.
func (a *app) confirm(question string) bool {
	if a.cfg.AssumeYes {
		return true
	}
	if !term.IsTerminal(a.stdin) {
		a.log.Error("Refusing to delete without --yes when stdin is not a terminal")
		return false
	}
	fmt.Fprintf(a.stdout, "%s%s [y/N] %s", term.Yellow, question, term.NC)
	answer, _ := bufio.NewReader(a.stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		a.log.Warn("Aborted")
		return false
	}
}

func (a *app) writeMetrics() {
	if err := a.rec.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.log.Warn("%v", err)
	}
}
