package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, actions, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/backmassage/batchconv/internal/kind"
)

// Version is shown in --version and help; main overrides it from -ldflags.
var Version = "1.0.0-dev"

// usageOut receives help text. Tests swap it to keep output quiet.
var usageOut io.Writer = os.Stderr

// ErrUsage wraps errors caused by malformed command lines, so callers can
// tell them apart from validation failures.
var ErrUsage = errors.New("usage")

// ParseFlags parses args (without the program name) into cfg. When
// --config is given the file is loaded first and the flags are re-applied on
// top, giving defaults < file < flags. On -h/--help it prints usage and
// returns flag.ErrHelp.
func ParseFlags(cfg *Config, args []string) error {
	var negated negatedFlags
	fs := newFlagSet(cfg, &negated)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if cfg.ConfigFile != "" {
		base := DefaultConfig()
		if err := LoadFile(cfg.ConfigFile, &base); err != nil {
			return err
		}
		base.ConfigFile = cfg.ConfigFile
		negated = negatedFlags{}
		fs = newFlagSet(&base, &negated)
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		*cfg = base
	}

	applyNegatedFlags(cfg, &negated)

	if cfg.ShowVersion {
		return nil
	}
	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor bool
	noColor    bool
}

func newFlagSet(cfg *Config, n *negatedFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("batchconv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(usageOut) }

	defineConversionFlags(fs, cfg)
	defineActionFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, n)
	defineUtilityFlags(fs, cfg)
	return fs
}

// defineConversionFlags registers -k/--kind, -j/--jobs, --ffmpeg, --bitrate, --sample-rate, --jpeg-quality.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&kindValue{&cfg.Kind}, "kind", "Conversion kind: heic-jpg | mp4-mp3")
	fs.Var(&kindValue{&cfg.Kind}, "k", "Same as --kind")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Worker count (0 = automatic)")
	fs.IntVar(&cfg.Jobs, "j", cfg.Jobs, "Same as --jobs")
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg", cfg.FFmpegBin, "Transcoder binary")
	fs.StringVar(&cfg.AudioBitrate, "bitrate", cfg.AudioBitrate, "MP3 bitrate")
	fs.IntVar(&cfg.AudioSampleRate, "sample-rate", cfg.AudioSampleRate, "MP3 sample rate in Hz")
	fs.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG quality 1-100")
}

// defineActionFlags registers --list, --delete, --purge, -y/--yes, -w/--watch, --watch-debounce.
func defineActionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.ListOnly, "list", cfg.ListOnly, "List matching source files and exit")
	fs.BoolVar(&cfg.Delete, "delete", cfg.Delete, "Delete source files of the selected kind")
	fs.BoolVar(&cfg.PurgeAfter, "purge", cfg.PurgeAfter, "Delete sources after a fully successful batch")
	fs.BoolVar(&cfg.AssumeYes, "yes", cfg.AssumeYes, "Do not ask before deleting")
	fs.BoolVar(&cfg.AssumeYes, "y", cfg.AssumeYes, "Same as --yes")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Keep running and convert new files")
	fs.BoolVar(&cfg.Watch, "w", cfg.Watch, "Same as --watch")
	fs.DurationVar(&cfg.WatchDebounce, "watch-debounce", cfg.WatchDebounce, "Quiet period before a watch batch")
}

// defineDisplayFlags registers --color, --no-color, verbose, --log, --metrics-file.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to file")
}

// defineUtilityFlags registers --config, --check and --version.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Run diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", cfg.CheckOnly, "Same as --check")
	fs.BoolVar(&cfg.ShowVersion, "version", cfg.ShowVersion, "Print version and exit")
	fs.BoolVar(&cfg.ShowVersion, "V", cfg.ShowVersion, "Same as --version")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Directory from the single positional arg when not in CheckOnly mode.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: need exactly one directory", ErrUsage)
	}
	cfg.Directory = NormalizeDirArg(args[0])
	return nil
}

// printUsage writes the help text to w. Column-aligned for readability.
func printUsage(w io.Writer) {
	const col1 = 32 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "batchconv v" + Version + " - batch HEIC->JPG and MP4->MP3 converter"},
		{"", ""},
		{"  batchconv [OPTIONS] <directory>", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -k, --kind <heic-jpg|mp4-mp3>", "Conversion kind (default: heic-jpg)"},
		{"  -j, --jobs <n>", "Worker count (default: 0 = automatic)"},
		{"  --ffmpeg <path>", "Transcoder binary (default: ffmpeg)"},
		{"  --bitrate <kbps>", "MP3 bitrate (default: 192k)"},
		{"  --sample-rate <hz>", "MP3 sample rate (default: 44100)"},
		{"  --jpeg-quality <1-100>", "JPEG quality (default: 92)"},
		{"", ""},
		{"Actions", ""},
		{"  --list", "List matching source files and exit"},
		{"  --delete", "Delete source files of the selected kind"},
		{"  --purge", "Delete sources after a fully successful batch"},
		{"  -y, --yes", "Do not ask before deleting"},
		{"  -w, --watch", "Keep running; convert new files as they appear"},
		{"  --watch-debounce <dur>", "Quiet period before a watch batch (default: 2s)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append JSON logs to file"},
		{"  --metrics-file <path>", "Write Prometheus metrics after each batch"},
		{"  --config <path>", "YAML configuration file"},
		{"  -c, --check", "Diagnostics (transcoder, MP3 encoder, HEIC decoder)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so kind.Kind can be used with flag.Var.

type kindValue struct{ p *kind.Kind }

func (k *kindValue) String() string {
	if k.p == nil {
		return ""
	}
	return k.p.String()
}

func (k *kindValue) Set(s string) error {
	parsed, err := kind.Parse(s)
	if err != nil {
		return err
	}
	*k.p = parsed
	return nil
}
