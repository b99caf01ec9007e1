//go:build windows

package mpv

import (
	"os/exec"
	"syscall"
)

// detach puts mpv in its own process group so Ctrl+C in the TUI does not reach it
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
