package ffmpeg

import (
	"errors"
	"io/fs"
	"os/exec"
	"regexp"
)

// Pre-compiled regexes for classifying transcoder stderr. Checked in order
// by [Hint]; the first match wins.
var hints = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(
		`(?i)Output file #\d+ does not contain any stream|` +
			`does not contain any stream|` +
			`Stream map '.*' matches no streams`),
		"no audio stream"},
	{regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`moov atom not found|` +
			`could not find codec parameters|` +
			`End of file`),
		"invalid or truncated input"},
	{regexp.MustCompile(`(?i)Permission denied`),
		"permission denied"},
	{regexp.MustCompile(`(?i)No space left on device`),
		"disk full"},
	{regexp.MustCompile(
		`(?i)Unknown encoder|` +
			`Encoder .* not found|` +
			`Automatic encoder selection failed`),
		"mp3 encoder unavailable"},
	{regexp.MustCompile(`(?i)No such file or directory`),
		"input missing"},
}

// Hint returns a short classification of stderr, or "" if nothing matches.
func Hint(stderr string) string {
	for _, h := range hints {
		if h.re.MatchString(stderr) {
			return h.hint
		}
	}
	return ""
}

// isNotFound reports whether err means the binary does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
