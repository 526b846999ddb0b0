package bridge

import "fmt"

// ConfigError wraps a failure to assemble a valid Config: a missing
// required option, an unparseable value, or a pre-existing non-socket
// file at a canonical socket path.
type ConfigError struct {
	Err error
}

// NewConfigError wraps err as a ConfigError
func NewConfigError(err error) *ConfigError {
	return &ConfigError{Err: err}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SpawnError wraps a failure to launch the outer bridge: the outer
// interpreter/executable could not be found, or a filesystem path could
// not be translated to the host's native path form.
type SpawnError struct {
	Err error
}

// NewSpawnError wraps err as a SpawnError
func NewSpawnError(err error) *SpawnError {
	return &SpawnError{Err: err}
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// AuthError wraps a pairing-nonce mismatch on an incoming connection: wrong
// or short nonce. Callers log and drop the connection; there is no retry.
type AuthError struct {
	Err error
}

// NewAuthError wraps err as an AuthError
func NewAuthError(err error) *AuthError {
	return &AuthError{Err: err}
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *AuthError) Unwrap() error {
	return e.Err
}

// DescriptorError wraps a failure to read or parse the agent's Assuan-style
// descriptor file: missing file, truncated contents, or wrong nonce length.
type DescriptorError struct {
	Err error
}

// NewDescriptorError wraps err as a DescriptorError
func NewDescriptorError(err error) *DescriptorError {
	return &DescriptorError{Err: err}
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *DescriptorError) Unwrap() error {
	return e.Err
}

// IoError wraps a transport-level failure: connect timeout, connection
// reset, or a broken pipe while splicing.
type IoError struct {
	Err error
}

// NewIoError wraps err as an IoError
func NewIoError(err error) *IoError {
	return &IoError{Err: err}
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *IoError) Unwrap() error {
	return e.Err
}

// AgentRPCError wraps a failure of a Windows message-copy send/reply
// exchange with the native agent's SSH window, classified by the
// platform error code where available.
type AgentRPCError struct {
	Err  error
	Code int
}

// NewAgentRPCError wraps err as an AgentRPCError carrying an optional
// platform error code (0 if unknown)
func NewAgentRPCError(err error, code int) *AgentRPCError {
	return &AgentRPCError{Err: err, Code: code}
}

func (e *AgentRPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("agent rpc error (code %d): %s", e.Code, e.Err)
	}
	return fmt.Sprintf("agent rpc error: %s", e.Err)
}

// Unwrap returns the underlying error
func (e *AgentRPCError) Unwrap() error {
	return e.Err
}
