//go:build !windows

package bridge

import (
	"os/exec"
	"syscall"
)

// setDetached starts the new session detached from the parent's
// controlling terminal, the pattern used to keep a long-lived daemon
// alive after its short-lived launcher exits.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
