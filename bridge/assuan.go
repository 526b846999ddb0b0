package bridge

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
)

// AssuanDescriptor is the parsed contents of an agent-written Assuan-style
// descriptor file: a loopback TCP port and the 16-byte nonce required to
// authenticate to it.
type AssuanDescriptor struct {
	Port  int
	Nonce []byte
}

// ReadAssuanDescriptor reads and parses the Assuan descriptor file at path.
// Format: ASCII decimal port, a single 0x0A byte, then exactly 16 raw nonce
// bytes. Any deviation is a DescriptorError. The file is re-read on every
// call rather than cached, since the agent may rotate ports and the
// invariant is that it writes the file atomically before the port starts
// listening.
func ReadAssuanDescriptor(path string) (*AssuanDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDescriptorError(err)
	}
	return ParseAssuanDescriptor(data)
}

// ParseAssuanDescriptor parses the raw contents of an Assuan descriptor
// file.
func ParseAssuanDescriptor(data []byte) (*AssuanDescriptor, error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, NewDescriptorError(errDescriptorMalformed("missing newline"))
	}
	portStr := string(data[:nl])
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, NewDescriptorError(errDescriptorMalformed("unparseable port %q", portStr))
	}
	nonce := data[nl+1:]
	if len(nonce) != NonceSize {
		return nil, NewDescriptorError(errDescriptorMalformed(
			"nonce must be %d bytes, got %d", NonceSize, len(nonce)))
	}
	return &AssuanDescriptor{Port: port, Nonce: append([]byte(nil), nonce...)}, nil
}

func errDescriptorMalformed(format string, args ...interface{}) error {
	return &descriptorFormatError{msg: fmt.Sprintf(format, args...)}
}

type descriptorFormatError struct {
	msg string
}

func (e *descriptorFormatError) Error() string {
	return "malformed assuan descriptor: " + e.msg
}
