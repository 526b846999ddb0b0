//go:build windows

package winmsgcopy

import (
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// user32 exposes the handful of window-messaging APIs not wrapped by
// golang.org/x/sys/windows, which covers kernel32/ntdll/advapi32 but not
// the GUI-oriented user32 surface this adapter needs.
var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procFindWindowW         = user32.NewProc("FindWindowW")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

const (
	smtoAbortIfHung = 0x0002
)

func findWindow(windowName *uint16) (windows.HWND, error) {
	r, _, err := procFindWindowW.Call(0, uintptr(unsafe.Pointer(windowName)))
	if r == 0 {
		return 0, err
	}
	return windows.HWND(r), nil
}

// sendMessageTimeout wraps SendMessageTimeoutW, converting the requested
// timeout to milliseconds. A failure carrying a platform error code
// (ERROR_TIMEOUT 1460, ERROR_INVALID_WINDOW_HANDLE 1400, or any other) is
// returned as a winError, so the retry policy can classify it (§4.3).
func sendMessageTimeout(hwnd windows.HWND, msg uint32, wParam, lParam uintptr, timeout time.Duration) (uintptr, error) {
	var result uintptr
	r, _, err := procSendMessageTimeoutW.Call(
		uintptr(hwnd),
		uintptr(msg),
		wParam,
		lParam,
		uintptr(smtoAbortIfHung),
		uintptr(timeout/time.Millisecond),
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return 0, &winError{errno: windows.Errno(errno)}
		}
		return 0, err
	}
	return result, nil
}

// createMapping creates an anonymous, page-readwrite memory mapping of
// size bytes governed by the given absolute security descriptor, and
// returns both the mapping handle and the mapped address.
func createMapping(size uint32, sd []byte) (windows.Handle, uintptr, error) {
	sa := &windows.SecurityAttributes{
		Length:             uint32(unsafe.Sizeof(windows.SecurityAttributes{})),
		SecurityDescriptor: uintptr(unsafe.Pointer(&sd[0])),
		InheritHandle:      0,
	}

	h, err := windows.CreateFileMapping(windows.InvalidHandle, sa, windows.PAGE_READWRITE, 0, size, nil)
	if err != nil {
		return 0, 0, err
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return 0, 0, err
	}

	return h, addr, nil
}
