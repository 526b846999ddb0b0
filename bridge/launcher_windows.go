//go:build windows

package bridge

import (
	"os/exec"
	"syscall"
)

// setDetached starts the child in its own process group so it keeps
// running independent of this process's console, the nearest Windows
// equivalent of a Unix session detach.
func setDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
