package bridge

import (
	"bytes"
	"io"
	"testing"

	"github.com/prep/socketpair"
)

func TestSpliceCopiesBothDirections(t *testing.T) {
	a0, a1, err := socketpair.New("unix")
	if err != nil {
		t.Fatalf("socketpair.New: %s", err)
	}
	b0, b1, err := socketpair.New("unix")
	if err != nil {
		t.Fatalf("socketpair.New: %s", err)
	}

	clientMsg := []byte("hello from client")
	serverMsg := []byte("hello from server")

	done := make(chan struct{})
	var sent, received int64
	go func() {
		sent, received = Splice(a1, b0)
		close(done)
	}()

	if _, err := a0.Write(clientMsg); err != nil {
		t.Fatalf("write to a0: %s", err)
	}
	a0.(WriteHalfCloser).CloseWrite()

	got := make([]byte, len(clientMsg))
	if _, err := io.ReadFull(b1, got); err != nil {
		t.Fatalf("read from b1: %s", err)
	}
	if !bytes.Equal(got, clientMsg) {
		t.Errorf("b1 got %q, want %q", got, clientMsg)
	}

	if _, err := b1.Write(serverMsg); err != nil {
		t.Fatalf("write to b1: %s", err)
	}
	b1.(WriteHalfCloser).CloseWrite()

	got = make([]byte, len(serverMsg))
	if _, err := io.ReadFull(a0, got); err != nil {
		t.Fatalf("read from a0: %s", err)
	}
	if !bytes.Equal(got, serverMsg) {
		t.Errorf("a0 got %q, want %q", got, serverMsg)
	}

	<-done
	if sent != int64(len(clientMsg)) {
		t.Errorf("sent = %d, want %d", sent, len(clientMsg))
	}
	if received != int64(len(serverMsg)) {
		t.Errorf("received = %d, want %d", received, len(serverMsg))
	}

	a0.Close()
	b1.Close()
}

func TestSpliceSummary(t *testing.T) {
	s := SpliceSummary(1024, 2048)
	if s == "" {
		t.Fatal("SpliceSummary returned empty string")
	}
}
