package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/batchconv/internal/kind"
)

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from zero so only keys present in the file override defaults.
type fileConfig struct {
	Kind          *kind.Kind     `yaml:"kind"`
	Jobs          *int           `yaml:"jobs"`
	FFmpeg        *string        `yaml:"ffmpeg"`
	Bitrate       *string        `yaml:"bitrate"`
	SampleRate    *int           `yaml:"sample_rate"`
	JPEGQuality   *int           `yaml:"jpeg_quality"`
	WatchDebounce *time.Duration `yaml:"watch_debounce"`
	MetricsFile   *string        `yaml:"metrics_file"`
	LogFile       *string        `yaml:"log_file"`
	Verbose       *bool          `yaml:"verbose"`
	Color         *ColorMode     `yaml:"color"`
}

// LoadFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected so typos surface instead of being silently ignored. An empty
// file is valid and changes nothing.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.Kind != nil {
		cfg.Kind = *fc.Kind
	}
	if fc.Jobs != nil {
		cfg.Jobs = *fc.Jobs
	}
	if fc.FFmpeg != nil {
		cfg.FFmpegBin = *fc.FFmpeg
	}
	if fc.Bitrate != nil {
		cfg.AudioBitrate = *fc.Bitrate
	}
	if fc.SampleRate != nil {
		cfg.AudioSampleRate = *fc.SampleRate
	}
	if fc.JPEGQuality != nil {
		cfg.JPEGQuality = *fc.JPEGQuality
	}
	if fc.WatchDebounce != nil {
		cfg.WatchDebounce = *fc.WatchDebounce
	}
	if fc.MetricsFile != nil {
		cfg.MetricsFile = *fc.MetricsFile
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Color != nil {
		cfg.ColorMode = *fc.Color
	}
}
