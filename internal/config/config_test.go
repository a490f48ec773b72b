package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/batchconv/internal/kind"
)

func TestMain(m *testing.M) {
	usageOut = io.Discard
	os.Exit(m.Run())
}

func TestNormalizeDirArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no trailing slash", "/media/photos", "/media/photos"},
		{"single trailing slash", "/media/photos/", "/media/photos"},
		{"multiple trailing slashes", "/media/photos///", "/media/photos"},
		{"root path", "/", "/"},
		{"relative path", "photos", "photos"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirArg(tt.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, kind.HeicToJpg, cfg.Kind)
	assert.Equal(t, "ffmpeg", cfg.FFmpegBin)
	assert.Equal(t, "192k", cfg.AudioBitrate)
	assert.Equal(t, 44100, cfg.AudioSampleRate)
	assert.Equal(t, ColorAuto, cfg.ColorMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with directory", func(c *Config) {}, false},
		{"missing directory", func(c *Config) { c.Directory = "  " }, true},
		{"no kind selected", func(c *Config) { c.Kind = kind.Unknown }, true},
		{"no kind is fine for check", func(c *Config) { c.Kind = kind.Unknown; c.CheckOnly = true; c.Directory = "" }, false},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, true},
		{"jpeg quality zero", func(c *Config) { c.JPEGQuality = 0 }, true},
		{"jpeg quality too high", func(c *Config) { c.JPEGQuality = 101 }, true},
		{"bad sample rate", func(c *Config) { c.AudioSampleRate = 0 }, true},
		{"bad bitrate", func(c *Config) { c.AudioBitrate = "loud" }, true},
		{"empty ffmpeg", func(c *Config) { c.FFmpegBin = "" }, true},
		{"bad color", func(c *Config) { c.ColorMode = "rainbow" }, true},
		{"delete with purge", func(c *Config) { c.Delete = true; c.PurgeAfter = true }, true},
		{"delete with watch", func(c *Config) { c.Delete = true; c.Watch = true }, true},
		{"watch purge without yes", func(c *Config) { c.Watch = true; c.PurgeAfter = true }, true},
		{"watch purge with yes", func(c *Config) { c.Watch = true; c.PurgeAfter = true; c.AssumeYes = true }, false},
		{"watch without debounce", func(c *Config) { c.Watch = true; c.WatchDebounce = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Directory = "/photos"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeAudioBitrate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"192", "192k", false},
		{"192k", "192k", false},
		{"192K", "192k", false},
		{" 320kbps ", "320k", false},
		{"", "", true},
		{"0k", "", true},
		{"-5", "", true},
		{"fast", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeAudioBitrate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoWorkers(t *testing.T) {
	assert.Equal(t, 8, autoWorkers(kind.HeicToJpg, 8))
	assert.Equal(t, 1, autoWorkers(kind.HeicToJpg, 0))
	assert.Equal(t, 2, autoWorkers(kind.Mp4ToMp3, 1))
	assert.Equal(t, 3, autoWorkers(kind.Mp4ToMp3, 6))
	assert.Equal(t, 4, autoWorkers(kind.Mp4ToMp3, 64))

	cfg := DefaultConfig()
	cfg.Jobs = 5
	assert.Equal(t, 5, cfg.Workers(kind.Mp4ToMp3))
}

func TestParseFlags(t *testing.T) {
	cfg := DefaultConfig()
	err := ParseFlags(&cfg, []string{"-k", "mp4", "--jobs", "3", "--bitrate", "128", "--no-color", "-y", "--purge", "/videos/"})
	require.NoError(t, err)

	assert.Equal(t, kind.Mp4ToMp3, cfg.Kind)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, "128", cfg.AudioBitrate)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.True(t, cfg.AssumeYes)
	assert.True(t, cfg.PurgeAfter)
	assert.Equal(t, "/videos", cfg.Directory)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "128k", cfg.AudioBitrate)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no directory", []string{"-k", "heic"}},
		{"two directories", []string{"a", "b"}},
		{"bad kind", []string{"--kind", "gif", "a"}},
		{"unknown flag", []string{"--frobnicate", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := ParseFlags(&cfg, tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUsage), "want ErrUsage, got %v", err)
		})
	}
}

func TestParseFlags_HelpAndVersion(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, ParseFlags(&cfg, []string{"--help"}), flag.ErrHelp)

	cfg = DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--version"}))
	assert.True(t, cfg.ShowVersion)

	cfg = DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--check"}))
	assert.True(t, cfg.CheckOnly)
}

func TestParseFlags_ConfigFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batchconv.yaml")
	writeFile(t, path, `
kind: mp4-mp3
jobs: 6
ffmpeg: /opt/ffmpeg/bin/ffmpeg
bitrate: 256k
jpeg_quality: 80
watch_debounce: 5s
color: never
`)

	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"--config", path, "--jobs", "2", "/videos"}))

	assert.Equal(t, kind.Mp4ToMp3, cfg.Kind, "file value kept")
	assert.Equal(t, 2, cfg.Jobs, "flag beats file")
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegBin)
	assert.Equal(t, "256k", cfg.AudioBitrate)
	assert.Equal(t, 80, cfg.JPEGQuality)
	assert.Equal(t, 5*time.Second, cfg.WatchDebounce)
	assert.Equal(t, ColorNever, cfg.ColorMode)
	assert.Equal(t, 44100, cfg.AudioSampleRate, "default kept when absent from file")
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "/videos", cfg.Directory)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	writeFile(t, empty, "")
	cfg := DefaultConfig()
	require.NoError(t, LoadFile(empty, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)

	unknown := filepath.Join(dir, "unknown.yaml")
	writeFile(t, unknown, "kind: heic\nquality: 90\n")
	assert.Error(t, LoadFile(unknown, &cfg))

	badKind := filepath.Join(dir, "bad.yaml")
	writeFile(t, badKind, "kind: gif\n")
	assert.Error(t, LoadFile(badKind, &cfg))

	assert.Error(t, LoadFile(filepath.Join(dir, "missing.yaml"), &cfg))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
