// Package check provides system diagnostics (--check mode) and pre-batch
// dependency validation (CheckDeps) for the transcoder, its MP3 encoder, and
// the built-in HEIC decoder.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/batchconv/internal/config"
	"github.com/backmassage/batchconv/internal/display"
	"github.com/backmassage/batchconv/internal/ffmpeg"
	"github.com/backmassage/batchconv/internal/kind"
)

// ErrTranscoderNotFound is returned by CheckDeps when the selected kind
// needs the transcoder and it cannot be resolved.
var ErrTranscoderNotFound = errors.New("transcoder not found")

// mp3Encoder is the ffmpeg encoder the MP4 -> MP3 path relies on.
const mp3Encoder = "libmp3lame"

const probeTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the --check flow: transcoder version, MP3 encoder, HEIC
// decoder and worker defaults. It reports false when the transcoder is
// unusable; everything else is informational.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTranscoder(ctx, cfg.FFmpegBin, log)
	if ok {
		checkMP3Encoder(ctx, cfg, log)
	}
	checkHEIC(cfg, log)
	checkWorkers(cfg, log)
	return ok
}

// checkTranscoder verifies the transcoder launches and logs its version string.
func checkTranscoder(ctx context.Context, bin string, log Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	v, err := ffmpeg.Version(ctx, bin)
	switch {
	case errors.Is(err, ffmpeg.ErrNotFound):
		log.Error("%v (MP4 -> MP3 unavailable)", err)
		return false
	case err != nil:
		log.Warn("%s found but -version failed: %v", bin, err)
		return false
	}
	log.Success("Transcoder: %s", v)
	return true
}

// checkMP3Encoder looks for libmp3lame in the encoder list and reports the
// output settings it will be driven with.
func checkMP3Encoder(ctx context.Context, cfg *config.Config, log Logger) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	has, err := ffmpeg.HasEncoder(ctx, cfg.FFmpegBin, mp3Encoder)
	switch {
	case err != nil:
		log.Warn("Could not list encoders: %v", err)
	case has:
		log.Success("MP3 encoder: %s (%s, %d Hz)", mp3Encoder, bitrateLabel(cfg.AudioBitrate), cfg.AudioSampleRate)
	default:
		log.Error("MP3 encoder %s missing; MP4 -> MP3 conversions will fail", mp3Encoder)
	}
}

// checkHEIC reports the in-process decoder. It needs no external tools.
func checkHEIC(cfg *config.Config, log Logger) {
	log.Success("HEIC decoder: built-in (%s/%s), JPEG quality %d", runtime.GOOS, runtime.GOARCH, cfg.JPEGQuality)
}

// bitrateLabel renders a normalized "<n>k" bitrate; anything else is shown as is.
func bitrateLabel(bitrate string) string {
	kbps, err := strconv.ParseInt(strings.TrimSuffix(bitrate, "k"), 10, 64)
	if err != nil {
		return bitrate
	}
	return display.FormatBitrateLabel(kbps)
}

func checkWorkers(cfg *config.Config, log Logger) {
	for _, k := range kind.All() {
		log.Info("Workers for %s: %d", k.Label(), cfg.Workers(k))
	}
}

// CheckDeps is the pre-batch validation: when the selected kind shells out,
// the transcoder must resolve on PATH (or as a path).
func CheckDeps(cfg *config.Config) error {
	if cfg.Kind != kind.Mp4ToMp3 {
		return nil
	}
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return fmt.Errorf("%w: %s", ErrTranscoderNotFound, cfg.FFmpegBin)
	}
	return nil
}
