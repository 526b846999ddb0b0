// Package winmsgcopy implements the SSH-class forwarder: a request/response
// adapter between accepted TCP clients and the native agent's SSH window,
// addressed via the Windows message-copy IPC (a window + copy-data message
// + shared memory mapping). The adapter is a single serialized actor; all
// client requests funnel through one logical handle to the agent window.
package winmsgcopy

import (
	"net"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
)

// MaxMessageSize is the platform maximum message length the shared memory
// mapping is sized to.
const MaxMessageSize = 16384

// SendTimeout is the copy-data send timeout. The platform library default
// of roughly 5 seconds causes spurious failures because user PIN entry at
// the smartcard dialog routinely takes tens of seconds (§4.3).
const SendTimeout = 30 * time.Second

// MaxRetries bounds the per-message retry policy (§4.3): up to 3 retries
// on ERROR_TIMEOUT, and up to 3 retries (with the window handle
// re-resolved) on ERROR_INVALID_WINDOW_HANDLE.
const MaxRetries = 3

const (
	errorTimeout             = 1460
	errorInvalidWindowHandle = 1400
)

// windowClient is the platform-specific half of the adapter: open/reopen
// the agent's SSH window handle and exchange one message-copy request.
// adapter_windows.go provides the real implementation; adapter_other.go
// provides a stub that always reports the window as unreachable, so the
// module still builds (and its tests still run) off Windows.
type windowClient interface {
	// ensureWindow (re)resolves the agent window handle, if not already
	// held.
	ensureWindow() error

	// invalidateWindow forces the next ensureWindow call to re-resolve
	// the handle, after an ERROR_INVALID_WINDOW_HANDLE.
	invalidateWindow()

	// sendReceive copies req into a fresh mapping, sends the copy-data
	// message with SendTimeout, and returns the reply bytes decoded per
	// the big-endian length-prefix framing in §4.3 step 5.
	sendReceive(req []byte) ([]byte, error)
}

// Adapter is the SSH-class forwarder. It implements outer.SSHForwarder.
type Adapter struct {
	Logger bridge.Logger
	client windowClient
	mu     sync.Mutex // serializes exchanges on the shared window handle
}

// New constructs an Adapter bound to the agent's fixed SSH window name.
func New(logger bridge.Logger, windowName string) *Adapter {
	return &Adapter{
		Logger: logger.Fork("WinMsgCopy"),
		client: newWindowClient(windowName),
	}
}

// Forward runs the full per-client request/response loop against conn
// until conn is closed or an unrecoverable adapter error occurs. Forward
// may run concurrently for several clients; each request→response
// exchange holds the adapter's lock, so exchanges on the shared window
// handle run one at a time (Concurrency, §4.3).
func (a *Adapter) Forward(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		reply, err := a.exchange(buf[:n])
		if err != nil {
			a.Logger.ELogf("ssh message exchange failed: %s", err)
			return
		}
		if _, err := conn.Write(reply); err != nil {
			return
		}
	}
}

// exchange runs one client message through the retry policy in §4.3.
func (a *Adapter) exchange(req []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.client.ensureWindow(); err != nil {
		return nil, bridge.NewAgentRPCError(err, 0)
	}

	b := &backoff.Backoff{Min: 50 * time.Millisecond, Max: 500 * time.Millisecond, Factor: 2}

	for attempt := 0; ; attempt++ {
		reply, err := a.client.sendReceive(req)
		if err == nil {
			return reply, nil
		}

		code := rpcErrorCode(err)
		switch code {
		case errorTimeout:
			if attempt >= MaxRetries {
				return nil, bridge.NewAgentRPCError(err, code)
			}
			a.Logger.WLogf("ssh window send timed out, retrying (%d/%d)", attempt+1, MaxRetries)
		case errorInvalidWindowHandle:
			if attempt >= MaxRetries {
				return nil, bridge.NewAgentRPCError(err, code)
			}
			a.Logger.WLogf("ssh window handle stale, reopening and retrying (%d/%d)", attempt+1, MaxRetries)
			a.client.invalidateWindow()
			if err := a.client.ensureWindow(); err != nil {
				return nil, bridge.NewAgentRPCError(err, 0)
			}
		default:
			return nil, bridge.NewAgentRPCError(err, code)
		}

		time.Sleep(b.Duration())
	}
}

// rpcError is implemented by platform errors that carry a numeric code.
type rpcError interface {
	Code() int
}

func rpcErrorCode(err error) int {
	if rc, ok := err.(rpcError); ok {
		return rc.Code()
	}
	return 0
}
