package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/backmassage/batchconv/internal/sysproc"
)

// ExecResult holds the outcome of a single transcoder invocation.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int   // -1 when the process never started or was killed by a signal.
	Err      error // nil on exit 0.

	launched bool
}

// Started reports whether the binary was launched at all.
func (r ExecResult) Started() bool { return r.launched }

// Execute runs args[0] with args[1:], draining stdout and stderr into
// buffers until the child exits. Canceling ctx terminates the child's whole
// process group. When tee is non-nil, stderr is also copied there live.
func Execute(ctx context.Context, args []string, tee io.Writer) ExecResult {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	sysproc.Configure(cmd, sysproc.DefaultGrace)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	return ExecResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: code,
		Err:      err,
		launched: cmd.Process != nil,
	}
}
