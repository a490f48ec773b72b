package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by [Version] and [HasEncoder] when the binary
// cannot be located or launched.
var ErrNotFound = errors.New("transcoder not found")

// launchError maps a result that never started to ErrNotFound, keeping the
// cause. Cancellation before launch is returned as is.
func launchError(ctx context.Context, res ExecResult) error {
	if err := ctx.Err(); err != nil && !isNotFound(res.Err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNotFound, res.Err)
}

// Version returns the first line of "<bin> -version".
func Version(ctx context.Context, bin string) (string, error) {
	res := Execute(ctx, []string{bin, "-version"}, nil)
	if res.Err != nil {
		if !res.Started() {
			return "", launchError(ctx, res)
		}
		return "", res.Err
	}
	line := strings.TrimSpace(res.Stdout)
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), nil
}

// HasEncoder reports whether "<bin> -encoders" lists name.
func HasEncoder(ctx context.Context, bin, name string) (bool, error) {
	res := Execute(ctx, []string{bin, "-hide_banner", "-encoders"}, nil)
	if res.Err != nil {
		if !res.Started() {
			return false, launchError(ctx, res)
		}
		return false, res.Err
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true, nil
		}
	}
	return false, nil
}
