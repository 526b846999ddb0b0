package bridge

import (
	"crypto/subtle"
	"io"
	"net"
	"time"
)

// DialAndSplice dials network/remote, writes prefix as the connection's
// first bytes (the Assuan nonce on the outer->agent leg), then splices
// src against the dialed connection until either side closes. src is
// always closed before returning. Used by the outer bridge's Assuan
// forwarder (§4.2); the inner bridge's worker (§4.1) dials with
// DialWithBackoff and writes the pairing nonce itself before calling
// Splice.
func DialAndSplice(logger Logger, connStats *ConnStats, src io.ReadWriteCloser, network, remote string, prefix []byte) {
	dst, err := net.DialTimeout(network, remote, 10*time.Second)
	if err != nil {
		logger.DLogf("dial %s failed: %s", remote, err)
		src.Close()
		return
	}

	if len(prefix) > 0 {
		if _, err := dst.Write(prefix); err != nil {
			logger.DLogf("writing pairing prefix to %s failed: %s", remote, err)
			dst.Close()
			src.Close()
			return
		}
	}

	connStats.Open()
	logger.DLogf("%s: open", connStats)
	sent, received := Splice(src, dst)
	connStats.Close()
	logger.DLogf("%s: close (%s)", connStats, SpliceSummary(sent, received))
}

// ReadExactPrefix reads exactly len(want) bytes from conn and reports
// whether they equal want. On mismatch or short read, no further bytes
// are consumed beyond what was read into the comparison buffer.
func ReadExactPrefix(conn io.Reader, want []byte) (bool, error) {
	got := make([]byte, len(want))
	if _, err := io.ReadFull(conn, got); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
