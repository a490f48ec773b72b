package ffmpeg

import "strconv"

// AudioOptions holds the MP3 encode settings.
type AudioOptions struct {
	Bitrate    string // e.g. "192k"
	SampleRate int    // Hz
}

// DefaultAudioOptions reproduces "-ab 192k -ar 44100".
func DefaultAudioOptions() AudioOptions {
	return AudioOptions{Bitrate: "192k", SampleRate: 44100}
}

// Build constructs the complete argument slice, binary first:
//
//	<bin> -hide_banner -nostdin -i <in> -vn -ab <bitrate> -ar <rate> -y <out>
//
// The output format follows from out's extension, so out must end in .mp3.
func Build(bin string, opts AudioOptions, in, out string) []string {
	def := DefaultAudioOptions()
	if opts.Bitrate == "" {
		opts.Bitrate = def.Bitrate
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}

	args := make([]string, 0, 14)
	args = append(args, bin, "-hide_banner", "-nostdin")

	// --- Input ---
	args = append(args, "-i", in)

	// --- Audio only ---
	args = append(args,
		"-vn",
		"-ab", opts.Bitrate,
		"-ar", strconv.Itoa(opts.SampleRate),
	)

	// --- Output ---
	args = append(args, "-y", out)
	return args
}
