package winmsgcopy

import (
	"errors"
	"net"
	"testing"

	"github.com/mhyllander/gpg-bridge-wsl2/bridge"
)

// fakeRPCError implements the unexported rpcError interface consumed by
// adapter.go's retry policy, so tests can simulate a specific platform
// error code without a real Windows window handle.
type fakeRPCError struct {
	code int
}

func (e *fakeRPCError) Error() string { return "fake rpc error" }
func (e *fakeRPCError) Code() int     { return e.code }

// fakeWindowClient is a windowClient double for exercising the retry
// policy in §4.3 off a real Windows host.
type fakeWindowClient struct {
	ensureErr      error
	sendErrors     []error // consumed in order; last is repeated once exhausted
	sendCalls      int
	ensureCalls    int
	invalidations  int
	successPayload []byte
}

func (c *fakeWindowClient) ensureWindow() error {
	c.ensureCalls++
	return c.ensureErr
}

func (c *fakeWindowClient) invalidateWindow() {
	c.invalidations++
}

func (c *fakeWindowClient) sendReceive(req []byte) ([]byte, error) {
	idx := c.sendCalls
	c.sendCalls++
	if idx < len(c.sendErrors) {
		if err := c.sendErrors[idx]; err != nil {
			return nil, err
		}
	}
	return c.successPayload, nil
}

func newTestAdapter(client windowClient) *Adapter {
	return &Adapter{
		Logger: bridge.NewLogger("test", bridge.LogLevelDebug),
		client: client,
	}
}

func TestExchangeSucceedsWithoutRetry(t *testing.T) {
	client := &fakeWindowClient{successPayload: []byte("reply")}
	a := newTestAdapter(client)

	reply, err := a.exchange([]byte("req"))
	if err != nil {
		t.Fatalf("exchange: %s", err)
	}
	if string(reply) != "reply" {
		t.Errorf("reply = %q, want %q", reply, "reply")
	}
	if client.sendCalls != 1 {
		t.Errorf("sendCalls = %d, want 1", client.sendCalls)
	}
}

func TestExchangeRetriesOnTimeoutThenSucceeds(t *testing.T) {
	client := &fakeWindowClient{
		sendErrors:     []error{&fakeRPCError{code: errorTimeout}, &fakeRPCError{code: errorTimeout}},
		successPayload: []byte("ok"),
	}
	a := newTestAdapter(client)

	reply, err := a.exchange([]byte("req"))
	if err != nil {
		t.Fatalf("exchange: %s", err)
	}
	if string(reply) != "ok" {
		t.Errorf("reply = %q, want %q", reply, "ok")
	}
	if client.sendCalls != 3 {
		t.Errorf("sendCalls = %d, want 3 (2 failures + 1 success)", client.sendCalls)
	}
	if client.invalidations != 0 {
		t.Errorf("invalidations = %d, want 0 for a plain timeout", client.invalidations)
	}
}

func TestExchangeGivesUpAfterMaxRetriesOnTimeout(t *testing.T) {
	errs := make([]error, MaxRetries+1)
	for i := range errs {
		errs[i] = &fakeRPCError{code: errorTimeout}
	}
	client := &fakeWindowClient{sendErrors: errs}
	a := newTestAdapter(client)

	_, err := a.exchange([]byte("req"))
	if err == nil {
		t.Fatal("expected exchange to fail after exhausting retries")
	}
	if client.sendCalls != MaxRetries+1 {
		t.Errorf("sendCalls = %d, want %d", client.sendCalls, MaxRetries+1)
	}
}

func TestExchangeReopensWindowOnInvalidHandle(t *testing.T) {
	client := &fakeWindowClient{
		sendErrors:     []error{&fakeRPCError{code: errorInvalidWindowHandle}},
		successPayload: []byte("ok"),
	}
	a := newTestAdapter(client)

	if _, err := a.exchange([]byte("req")); err != nil {
		t.Fatalf("exchange: %s", err)
	}
	if client.invalidations != 1 {
		t.Errorf("invalidations = %d, want 1", client.invalidations)
	}
	// ensureWindow is called once up front plus once per handle reopen.
	if client.ensureCalls != 2 {
		t.Errorf("ensureCalls = %d, want 2", client.ensureCalls)
	}
}

func TestExchangeReturnsNonRetryableErrorImmediately(t *testing.T) {
	client := &fakeWindowClient{sendErrors: []error{errors.New("boom")}}
	a := newTestAdapter(client)

	_, err := a.exchange([]byte("req"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if client.sendCalls != 1 {
		t.Errorf("sendCalls = %d, want 1 (no retry for an unclassified error)", client.sendCalls)
	}
}

func TestForwardRunsRequestsUntilConnCloses(t *testing.T) {
	client := &fakeWindowClient{successPayload: []byte("pong")}
	a := newTestAdapter(client)

	serverConn, clientConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		a.Forward(serverConn)
		close(done)
	}()

	if _, err := clientConn.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %s", err)
	}
	buf := make([]byte, 4)
	if _, err := clientConn.Read(buf); err != nil {
		t.Fatalf("read: %s", err)
	}
	if string(buf) != "pong" {
		t.Errorf("reply = %q, want %q", buf, "pong")
	}

	clientConn.Close()
	<-done
}
