package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/convert"
	"github.com/backmassage/batchconv/internal/kind"
	"github.com/backmassage/batchconv/internal/logging"
	"github.com/backmassage/batchconv/internal/pipeline"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not really media"), 0o644))
}

func TestRun_ExitCodes(t *testing.T) {
	empty := t.TempDir()

	corrupt := t.TempDir()
	touch(t, corrupt, "broken.heic")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"--version"}, exitOK},
		{"help", []string{"-h"}, exitOK},
		{"unknown flag", []string{"--frobnicate", empty}, exitUsage},
		{"no directory", []string{"-k", "heic"}, exitUsage},
		{"missing directory", []string{"--no-color", filepath.Join(empty, "missing")}, exitFailure},
		{"empty directory converts nothing", []string{"--no-color", empty}, exitOK},
		{"list", []string{"--no-color", "--list", corrupt}, exitOK},
		{"corrupt heic fails", []string{"--no-color", corrupt}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
	assert.NoFileExists(t, filepath.Join(corrupt, "broken.jpg"))
}

func TestRun_DeleteNeedsYesWithoutTerminal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.MP4")

	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer f.Close()
	orig := stdin
	stdin = f
	defer func() { stdin = orig }()

	// Not a terminal, so without --yes nothing is removed.
	assert.Equal(t, exitFailure, run([]string{"--no-color", "-k", "mp4", "--delete", dir}))
	assert.FileExists(t, filepath.Join(dir, "a.mp4"))

	assert.Equal(t, exitOK, run([]string{"--no-color", "-k", "mp4", "--delete", "--yes", dir}))
	assert.NoFileExists(t, filepath.Join(dir, "a.mp4"))
	assert.NoFileExists(t, filepath.Join(dir, "b.MP4"))
}

func TestRun_MissingTranscoderWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "x.mp4")
	prom := filepath.Join(t.TempDir(), "batchconv.prom")

	code := run([]string{"--no-color", "-k", "mp4", "--ffmpeg", filepath.Join(dir, "no-ffmpeg"), "--metrics-file", prom, dir})
	assert.Equal(t, exitFailure, code)
	assert.NoFileExists(t, filepath.Join(dir, "x.mp3"))

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `batchconv_items_total{kind="mp4-mp3",result="failed"} 1`)
}

// fakeFFmpeg writes a transcoder stub that fails on inputs named bad.mp4 and
// otherwise writes a few bytes to its output argument.
func fakeFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script transcoder stubs need a POSIX shell")
	}
	script := `#!/bin/sh
case "$4" in
*bad.mp4) echo "Invalid data found when processing input" >&2; exit 1;;
esac
for last; do :; done
printf 'ID3fake' > "$last"
`
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRun_PurgeAfterFullSuccess(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "b.mp4")

	code := run([]string{"--no-color", "-k", "mp4", "--ffmpeg", fakeFFmpeg(t), "--purge", "--yes", dir})
	assert.Equal(t, exitOK, code)
	assert.FileExists(t, filepath.Join(dir, "a.mp3"))
	assert.FileExists(t, filepath.Join(dir, "b.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "a.mp4"))
	assert.NoFileExists(t, filepath.Join(dir, "b.mp4"))
}

func TestRun_PartialFailureKeepsSources(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4")
	touch(t, dir, "bad.mp4")

	code := run([]string{"--no-color", "-k", "mp4", "--ffmpeg", fakeFFmpeg(t), "--purge", "--yes", dir})
	assert.Equal(t, exitFailure, code)
	assert.FileExists(t, filepath.Join(dir, "a.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.mp3"))
	assert.FileExists(t, filepath.Join(dir, "a.mp4"), "no purge after a partial batch")
	assert.FileExists(t, filepath.Join(dir, "bad.mp4"))
}

func TestBatch_PurgeFailureExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.heic")
	touch(t, dir, "b.heic")

	cfg := config.DefaultConfig()
	cfg.Directory = dir
	cfg.PurgeAfter = true
	cfg.AssumeYes = true

	runner := &pipeline.Runner{
		Converters: map[kind.Kind]convert.Converter{
			kind.HeicToJpg: convert.ConverterFunc(func(_ context.Context, item convert.WorkItem) convert.Outcome {
				started := time.Now()
				if err := os.WriteFile(item.Target, []byte("jpeg"), 0o644); err != nil {
					return convert.Failed(item, started, &convert.Error{Kind: convert.FailureWrite, Path: item.Target, Err: err})
				}
				return convert.Succeeded(item, started, 4)
			}),
		},
		Workers: func(kind.Kind) int { return 1 },
		Remove: func(path string) error {
			if filepath.Base(path) == "b.heic" {
				return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
			}
			return os.Remove(path)
		},
	}
	a := &app{cfg: &cfg, log: logging.Nop(), runner: runner, stdout: io.Discard}

	assert.Equal(t, exitFailure, a.convert(context.Background()))
	assert.NoFileExists(t, filepath.Join(dir, "a.heic"))
	assert.FileExists(t, filepath.Join(dir, "b.heic"))
	assert.FileExists(t, filepath.Join(dir, "b.jpg"))
}
