//go:build unix

package shell

import (
	"errors"
	"os/exec"
	"syscall"
)

func defaultShellArgv() (string, string) {
	return "sh", "-c"
}

// setProcessGroup starts the command in its own process group so that
// killing it also kills anything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return cmd.Process.Kill()
}
