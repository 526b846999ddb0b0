package bridge

import (
	"net"
	"time"

	"github.com/jpillora/backoff"
)

// DialWithBackoff dials network/remote, retrying with exponential backoff
// after any dial error (a refused connection, a timeout, or any other
// failure). This rides out the brief
// window at inner-bridge startup where the outer bridge has been spawned
// but has not yet opened its listeners. It gives up once deadline has
// passed and returns the last error.
func DialWithBackoff(network, remote string, deadline time.Duration) (net.Conn, error) {
	b := &backoff.Backoff{
		Min:    50 * time.Millisecond,
		Max:    2 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	giveUp := time.Now().Add(deadline)
	for {
		conn, err := net.DialTimeout(network, remote, 2*time.Second)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(giveUp) {
			return nil, err
		}
		time.Sleep(b.Duration())
	}
}

// ProbeAgent performs a best-effort "ping" dial to confirm the native
// agent is reachable at network/remote before the outer bridge starts
// serving. Failure is non-fatal per §4.2: callers log it and proceed.
func ProbeAgent(network, remote string, attempts int) bool {
	b := &backoff.Backoff{
		Min:    20 * time.Millisecond,
		Max:    500 * time.Millisecond,
		Factor: 2,
	}
	for i := 0; i < attempts; i++ {
		conn, err := net.DialTimeout(network, remote, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return true
		}
		time.Sleep(b.Duration())
	}
	return false
}
