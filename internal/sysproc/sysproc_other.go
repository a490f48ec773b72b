//go:build !unix && !windows

package sysproc

import "os/exec"

func setGroup(*exec.Cmd) {}

// terminate kills the root process only.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
