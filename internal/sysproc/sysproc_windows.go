//go:build windows

package sysproc

import (
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

// setGroup keeps the transcoder from flashing a console window.
func setGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.HideWindow = true
	cmd.SysProcAttr.CreationFlags |= createNoWindow
}

// terminate kills the child outright; Windows has no reliable SIGTERM.
func terminate(cmd *exec.Cmd) error {
	return Kill(cmd, syscall.SIGKILL)
}

// Kill maps SIGKILL to Process.Kill and ignores other signals.
func Kill(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if sig == syscall.SIGKILL {
		return cmd.Process.Kill()
	}
	return nil
}
