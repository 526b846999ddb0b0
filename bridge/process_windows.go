//go:build windows

package bridge

import "golang.org/x/sys/windows"

// processAlive reports whether pid identifies a running process, by
// opening it and checking its exit code rather than sending a Unix-style
// signal (Windows has no signal 0 equivalent).
func processAlive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var exitCode uint32
	if err := windows.GetExitCodeProcess(h, &exitCode); err != nil {
		return false
	}
	return exitCode == stillActive
}

const stillActive = 259

// processCommandLineMatches falls back to a liveness-only check on
// Windows: there is no /proc to read a command line from, so a live pid
// recorded in the PID file is treated as a match.
func processCommandLineMatches(pid int, substr string) bool {
	return processAlive(pid)
}
