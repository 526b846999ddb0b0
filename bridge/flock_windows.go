//go:build windows

package bridge

import (
	"os"

	"golang.org/x/sys/windows"
)

// flockExclusive takes a non-blocking exclusive lock on f's full extent,
// the Windows equivalent of a Unix flock.
func flockExclusive(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, ^uint32(0), ^uint32(0), ol,
	)
}

// flockUnlock releases a lock taken with flockExclusive.
func flockUnlock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, ^uint32(0), ^uint32(0), ol)
}
