// Package sysproc puts transcoder child processes in their own process group
// so cancellation reaches every process they spawn.
package sysproc

import (
	"os/exec"
	"time"
)

// DefaultGrace is how long a canceled child gets between the polite signal
// and the hard kill.
const DefaultGrace = 5 * time.Second

// Configure prepares cmd (built with exec.CommandContext) so that context
// cancellation terminates its whole process group, escalating to a hard
// kill after grace.
func Configure(cmd *exec.Cmd, grace time.Duration) {
	if grace <= 0 {
		grace = DefaultGrace
	}
	setGroup(cmd)
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = grace
}
