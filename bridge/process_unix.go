//go:build !windows

package bridge

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// processAlive reports whether pid identifies a running process, using
// signal 0 which checks existence without actually signaling it.
func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// processCommandLineMatches reports whether the process identified by pid
// has substr anywhere in its command line, read from /proc/<pid>/cmdline
// (the subsystem side is Linux-kernel-backed, so /proc is always present).
func processCommandLineMatches(pid int, substr string) bool {
	data, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/cmdline")
	if err != nil {
		return false
	}
	cmdline := strings.ReplaceAll(string(data), "\x00", " ")
	return strings.Contains(cmdline, substr)
}
