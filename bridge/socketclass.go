package bridge

import "fmt"

// ForwardMode identifies how a SocketClass's connections are forwarded to
// the native agent once authenticated.
type ForwardMode int

const (
	// ForwardAssuan splices bytes directly to the agent's Assuan-style
	// loopback TCP endpoint.
	ForwardAssuan ForwardMode = iota

	// ForwardWindowsMessageCopy adapts each request through the Windows
	// message-copy IPC to the agent's SSH window.
	ForwardWindowsMessageCopy
)

// SocketClass is one of the four logical agent endpoints the bridge pair
// forwards: main, extra, browser, and SSH.
type SocketClass int

const (
	// AgentMain is the primary GPG agent socket.
	AgentMain SocketClass = iota
	// AgentExtra is the restricted "extra" GPG agent socket.
	AgentExtra
	// AgentBrowser is the browser-integration GPG agent socket.
	AgentBrowser
	// AgentSsh is the ssh-agent-compatible socket, forwarded via the
	// Windows message-copy IPC rather than Assuan splicing.
	AgentSsh
)

var socketClassNames = [...]string{"main", "extra", "browser", "ssh"}

// String returns the canonical name used to query the toolchain for this
// class's filesystem path and Windows endpoint descriptor.
func (c SocketClass) String() string {
	if c < AgentMain || c > AgentSsh {
		return fmt.Sprintf("SocketClass(%d)", int(c))
	}
	return socketClassNames[c]
}

// Index returns the 0..3 index that maps this class to base_port+index.
func (c SocketClass) Index() int {
	return int(c)
}

// Mode returns this class's forwarding mode.
func (c SocketClass) Mode() ForwardMode {
	if c == AgentSsh {
		return ForwardWindowsMessageCopy
	}
	return ForwardAssuan
}

// AllSocketClasses lists every defined SocketClass in index order.
var AllSocketClasses = []SocketClass{AgentMain, AgentExtra, AgentBrowser, AgentSsh}

// EnabledSocketClasses returns the classes active for a given config:
// AgentMain, AgentExtra, and AgentBrowser always; AgentSsh only when
// enableSSH is true.
func EnabledSocketClasses(enableSSH bool) []SocketClass {
	classes := []SocketClass{AgentMain, AgentExtra, AgentBrowser}
	if enableSSH {
		classes = append(classes, AgentSsh)
	}
	return classes
}
