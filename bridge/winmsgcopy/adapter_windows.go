//go:build windows

package winmsgcopy

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/Microsoft/go-winio/pkg/security"
	"golang.org/x/sys/windows"
)

const (
	wmCopyData = 0x004A
)

// copyDataStruct mirrors the Win32 COPYDATASTRUCT layout.
type copyDataStruct struct {
	dwData uintptr
	cbData uint32
	lpData uintptr
}

// winError adapts a windows.Errno into the rpcError interface consumed by
// adapter.go's retry policy.
type winError struct {
	errno windows.Errno
}

func (e *winError) Error() string { return e.errno.Error() }
func (e *winError) Code() int     { return int(e.errno) }

type realWindowClient struct {
	mu         sync.Mutex
	windowName string
	hwnd       windows.HWND
}

func newWindowClient(windowName string) windowClient {
	return &realWindowClient{windowName: windowName}
}

func (c *realWindowClient) ensureWindow() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hwnd != 0 {
		return nil
	}
	return c.resolveLocked()
}

func (c *realWindowClient) invalidateWindow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hwnd = 0
}

func (c *realWindowClient) resolveLocked() error {
	namePtr, err := windows.UTF16PtrFromString(c.windowName)
	if err != nil {
		return err
	}
	hwnd, err := findWindow(namePtr)
	if err != nil {
		return err
	}
	c.hwnd = hwnd
	return nil
}

// sendReceive implements the protocol in §4.3: build a security
// descriptor restricted to the current user, create an anonymous
// memory-mapped region, copy the request into it, send a copy-data
// message with a 30-second timeout, then decode the big-endian
// length-prefixed reply.
func (c *realWindowClient) sendReceive(req []byte) ([]byte, error) {
	c.mu.Lock()
	hwnd := c.hwnd
	c.mu.Unlock()

	if hwnd == 0 {
		return nil, fmt.Errorf("ssh agent window not resolved")
	}

	sddl, err := security.SddlToSecurityDescriptor(currentUserOnlySDDL)
	if err != nil {
		return nil, err
	}

	mapping, addr, err := createMapping(MaxMessageSize, sddl)
	if err != nil {
		return nil, err
	}
	defer windows.UnmapViewOfFile(addr)
	defer windows.CloseHandle(mapping)

	region := (*[MaxMessageSize]byte)(unsafe.Pointer(addr))[:]
	copy(region, req)

	cds := copyDataStruct{
		dwData: 0,
		cbData: uint32(len(req)),
		lpData: addr,
	}

	result, err := sendMessageTimeout(hwnd, wmCopyData, uintptr(0), uintptr(unsafe.Pointer(&cds)), SendTimeout)
	if err != nil {
		return nil, err
	}
	if result == 0 {
		return nil, fmt.Errorf("agent window did not accept message")
	}

	replyLen := binary.BigEndian.Uint32(region[:4])
	if int(replyLen)+4 > MaxMessageSize {
		return nil, fmt.Errorf("reply length %d exceeds mapping size", replyLen)
	}
	reply := make([]byte, replyLen+4)
	copy(reply, region[:replyLen+4])
	return reply, nil
}

// currentUserOnlySDDL restricts the mapping's security descriptor to the
// owning user, so no other session on the host can read the in-flight
// SSH agent request.
const currentUserOnlySDDL = "D:P(A;;GA;;;OW)"
