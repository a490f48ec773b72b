package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/kind"
)

// recordingLogger captures log lines by level.
type recordingLogger struct {
	lines map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{lines: make(map[string][]string)}
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.lines[level] = append(l.lines[level], fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Info(f string, a ...interface{})    { l.add("info", f, a...) }
func (l *recordingLogger) Success(f string, a ...interface{}) { l.add("success", f, a...) }
func (l *recordingLogger) Warn(f string, a ...interface{})    { l.add("warn", f, a...) }
func (l *recordingLogger) Error(f string, a ...interface{})   { l.add("error", f, a...) }
func (l *recordingLogger) Debug(_ bool, f string, a ...interface{}) {
	l.add("debug", f, a...)
}

func (l *recordingLogger) joined(level string) string { return strings.Join(l.lines[level], "\n") }

func fakeFFmpeg(t *testing.T, withLame bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script transcoder stubs need a POSIX shell")
	}
	encoders := `echo " A..... aac  AAC"`
	if withLame {
		encoders += `; echo " A..... libmp3lame  libmp3lame MP3"`
	}
	script := "#!/bin/sh\ncase \"$1\" in\n-version) echo 'ffmpeg version 7.1';;\n*) " + encoders + ";;\nesac\n"
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunCheck_AllGood(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = fakeFFmpeg(t, true)
	log := newRecordingLogger()

	assert.True(t, RunCheck(context.Background(), &cfg, log))
	assert.Contains(t, log.joined("success"), "Transcoder: ffmpeg version 7.1")
	assert.Contains(t, log.joined("success"), "MP3 encoder: libmp3lame (192 kbps, 44100 Hz)")
	assert.Contains(t, log.joined("success"), "HEIC decoder: built-in")
	assert.Empty(t, log.lines["error"])
}

func TestRunCheck_MissingEncoder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = fakeFFmpeg(t, false)
	log := newRecordingLogger()

	assert.True(t, RunCheck(context.Background(), &cfg, log))
	assert.Contains(t, log.joined("error"), "libmp3lame missing")
}

func TestRunCheck_MissingTranscoder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = filepath.Join(t.TempDir(), "ffmpeg")
	log := newRecordingLogger()

	assert.False(t, RunCheck(context.Background(), &cfg, log))
	assert.Contains(t, log.joined("error"), "not found")
	assert.Contains(t, log.joined("success"), "HEIC decoder")
}

func TestCheckDeps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = filepath.Join(t.TempDir(), "ffmpeg")

	cfg.Kind = kind.HeicToJpg
	assert.NoError(t, CheckDeps(&cfg), "image path needs no transcoder")

	cfg.Kind = kind.Mp4ToMp3
	assert.ErrorIs(t, CheckDeps(&cfg), ErrTranscoderNotFound)

	cfg.FFmpegBin = fakeFFmpeg(t, true)
	assert.NoError(t, CheckDeps(&cfg))
}
