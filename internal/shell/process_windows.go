//go:build windows

package shell

import (
	"os/exec"
	"syscall"
)

// hideWindow keeps helper processes from flashing a console
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
