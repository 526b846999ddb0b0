package bridge

import (
	"io"
	"sync"

	"github.com/jpillora/sizestr"
)

// WriteHalfCloser is implemented by connection types (net.TCPConn, the
// socketpair test double) that can shut down their write side while
// leaving the read side open, e.g. to signal end-of-stream to a peer
// still sending on the other half of a splice.
type WriteHalfCloser interface {
	CloseWrite() error
}

// Splice concurrently copies in both directions between two socket-like
// objects, returning after all data has been copied and both src and dst
// have reached EOF or closed. The returned counts are in src->dst and
// dst->src order (sent, received).
func Splice(src io.ReadWriteCloser, dst io.ReadWriteCloser) (int64, int64) {
	var sent, received int64
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		sent, _ = io.Copy(dst, src)
		whc, _ := dst.(WriteHalfCloser)
		if whc != nil {
			whc.CloseWrite()
		}
		wg.Done()
	}()
	go func() {
		received, _ = io.Copy(src, dst)
		whc, _ := src.(WriteHalfCloser)
		if whc != nil {
			whc.CloseWrite()
		}
		wg.Done()
	}()
	wg.Wait()
	src.Close()
	dst.Close()
	return sent, received
}

// SpliceSummary formats a splice's byte counts the way completion log
// lines report them, e.g. "sent 4.2kB received 1.1kB".
func SpliceSummary(sent, received int64) string {
	return "sent " + sizestr.ToString(sent) + " received " + sizestr.ToString(received)
}
