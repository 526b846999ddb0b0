package bridge

import (
	"fmt"
	"sync/atomic"
)

// ConnStats is the open-connection counter each bridge role keeps per
// SocketClass, reported in the accept/splice debug lines from §4.1/§4.2
// ("open" / "close (sent ... received ...)"). Only the currently-open
// count is load-bearing here: neither bridge role reports a cumulative
// total, so that bookkeeping is not carried over.
type ConnStats struct {
	open int32
}

// Open records one more client currently being served for this class.
func (c *ConnStats) Open() { atomic.AddInt32(&c.open, 1) }

// Close records that a previously-Open client has finished.
func (c *ConnStats) Close() { atomic.AddInt32(&c.open, -1) }

// String renders the open count the way log lines embed it, e.g. "[2 open]".
func (c *ConnStats) String() string {
	return fmt.Sprintf("[%d open]", atomic.LoadInt32(&c.open))
}
