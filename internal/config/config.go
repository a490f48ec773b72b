// Package config holds runtime configuration: defaults, an optional YAML
// file, CLI flag parsing, and validation. Precedence is
// defaults < config file < flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/batchconv/internal/kind"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Target (set from the positional arg).
	Directory string
	Kind      kind.Kind // Default: HeicToJpg, mirroring the first entry of the kind list.

	// Scheduling.
	Jobs int // 0 = automatic, see Workers.

	// Subprocess converter (MP4 -> MP3).
	FFmpegBin       string // Default: "ffmpeg", resolved via PATH.
	AudioBitrate    string // Default: "192k".
	AudioSampleRate int    // Default: 44100 Hz.

	// Image converter (HEIC -> JPG).
	JPEGQuality int // Default: 92.

	// Actions.
	ListOnly   bool // Enumerate matching files and exit.
	Delete     bool // Delete source files of Kind instead of converting.
	PurgeAfter bool // Delete sources after a batch with zero failures.
	AssumeYes  bool // Skip the delete confirmation prompt.
	Watch      bool // Keep running and convert new files as they appear.

	WatchDebounce time.Duration // Default: 2s quiet period before a watch-triggered batch.

	// Outputs.
	MetricsFile string // Prometheus textfile written after each batch.
	ConfigFile  string // YAML file loaded beneath flags.

	// Display and logging.
	Verbose     bool
	ColorMode   ColorMode // Default: "auto".
	LogFile     string    // Optional JSON log file path.
	CheckOnly   bool      // Run --check diagnostics and exit.
	ShowVersion bool
}

// DefaultConfig returns a Config with every default applied. The audio
// defaults match the classic transcoder invocation (-ab 192k -ar 44100).
func DefaultConfig() Config {
	return Config{
		Kind:            kind.HeicToJpg,
		Jobs:            0,
		FFmpegBin:       "ffmpeg",
		AudioBitrate:    "192k",
		AudioSampleRate: 44100,
		JPEGQuality:     92,
		WatchDebounce:   2 * time.Second,
		ColorMode:       ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum and range fields and canonicalizes the audio
// bitrate. Outside CheckOnly mode it also requires a directory and a kind.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0 (got %d)", c.Jobs)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100 (got %d)", c.JPEGQuality)
	}
	if c.AudioSampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive (got %d)", c.AudioSampleRate)
	}
	normalizedBitrate, err := normalizeAudioBitrate(c.AudioBitrate)
	if err != nil {
		return err
	}
	c.AudioBitrate = normalizedBitrate

	if strings.TrimSpace(c.FFmpegBin) == "" {
		return errors.New("transcoder binary must not be empty")
	}
	if c.Watch && c.WatchDebounce <= 0 {
		return errors.New("watch debounce must be positive")
	}

	if c.CheckOnly || c.ShowVersion {
		return nil
	}
	if !c.Kind.Valid() {
		return errors.New("no conversion kind selected (use 'heic-jpg' or 'mp4-mp3')")
	}
	if strings.TrimSpace(c.Directory) == "" {
		return errors.New("no directory selected")
	}
	if c.Delete && (c.PurgeAfter || c.Watch) {
		return errors.New("--delete cannot be combined with --purge or --watch")
	}
	if c.Watch && c.PurgeAfter && !c.AssumeYes {
		return errors.New("--watch with --purge needs --yes")
	}
	return nil
}

// Workers returns the worker count for k. An explicit Jobs value wins;
// otherwise the image path uses every CPU and the subprocess path uses
// half of them, clamped to 2..4, so external transcoders don't
// oversubscribe the host.
func (c *Config) Workers(k kind.Kind) int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return autoWorkers(k, runtime.NumCPU())
}

func autoWorkers(k kind.Kind, cpus int) int {
	if cpus < 1 {
		cpus = 1
	}
	if k == kind.Mp4ToMp3 {
		return min(max(cpus/2, 2), 4)
	}
	return cpus
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "192", "192k", "192K", "192kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("audio bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid audio bitrate %q (use positive Kbps value, e.g. 192k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}
