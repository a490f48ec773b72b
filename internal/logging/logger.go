// Package logging provides the leveled console logger used across batchconv.
//
// Console output is human-oriented (zerolog ConsoleWriter, colored when
// [term] colors are on, errors on stderr); the optional log file receives the
// same events as JSON lines so batches can be audited later.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/term"
)

// Canonical structured field names.
const (
	FieldBatchID  = "batch_id"
	FieldKind     = "kind"
	FieldPath     = "path"
	FieldTarget   = "target"
	FieldReason   = "reason"
	FieldDuration = "duration"
	FieldResult   = "result"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with an optional file
// sink. Children created by With share the parent's sinks.
type Logger struct {
	zl   zerolog.Logger
	sink *fileSink
}

type fileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger configures colors from cfg and optionally opens cfg.LogFile.
// Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	return New(os.Stdout, os.Stderr, cfg)
}

// New builds a logger writing info-and-below to stdout and errors to stderr.
// Exposed so tests can capture console output.
func New(stdout, stderr io.Writer, cfg *config.Config) (*Logger, error) {
	noColor := !term.Enabled()
	console := levelSplitWriter{
		out: consoleWriter(stdout, noColor),
		err: consoleWriter(stderr, noColor),
	}

	l := &Logger{sink: &fileSink{}}
	var w zerolog.LevelWriter = console
	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.sink.file = f
		w = zerolog.MultiLevelWriter(console, l.sink)
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	l.zl = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), sink: &fileSink{}}
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: timeFormat,
	}
}

// levelSplitWriter routes error-and-above to the err writer, mirroring the
// convention that diagnostics belong on stderr.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w levelSplitWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l >= zerolog.ErrorLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return len(p), nil
	}
	return s.file.Write(p)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		return err
	}
	return nil
}

// With returns a child logger that adds key=value to every event.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger(), sink: l.sink}
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs at INFO level tagged result=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str(FieldResult, "ok").Msgf(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}
