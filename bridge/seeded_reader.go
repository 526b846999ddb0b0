package bridge

// SeededNonceReader gives the nonce tests in this package a repeatable
// stand-in for crypto/rand: two readers built from the same seed must
// produce identical nonces (see nonce_test.go), while different seeds
// must not collide. It reduces a short seed to 32 bytes of state by
// repeated SHA-512 hashing, then emits pseudo-random bytes by
// continuing to hash that state forward one step per 32 output bytes.

import (
	"crypto/sha512"
	"io"
)

// seedStrengthenRounds is how many times the seed is folded through
// SHA-512 before any output byte is produced, so that two seeds
// differing by a single bit diverge completely before the stream starts.
const seedStrengthenRounds = 2048

// NewSeededNonceReader returns an io.Reader producing a pseudo-random
// byte stream that is a pure function of seed.
func NewSeededNonceReader(seed []byte) io.Reader {
	state := seed
	for i := 0; i < seedStrengthenRounds; i++ {
		state, _ = splitHash(state)
	}
	return &seededReader{state: state}
}

// seededReader carries the running hash state between Read calls.
type seededReader struct {
	state []byte
}

func (r *seededReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		next, out := splitHash(r.state)
		n += copy(b[n:], out)
		r.state = next
	}
	return n, nil
}

// splitHash hashes input with SHA-512 and splits the digest in half:
// the first half becomes the next state, the second half is emitted.
func splitHash(input []byte) (next, output []byte) {
	digest := sha512.Sum512(input)
	return digest[:sha512.Size/2], digest[sha512.Size/2:]
}
