package transport

import "errors"

// Transport errors.
var (
	// ErrNoHost is returned when no controller host is configured.
	ErrNoHost = errors.New("transport: no host specified")

	// ErrConnectFailed is returned when a session cannot be established.
	ErrConnectFailed = errors.New("transport: connect failed")

	// ErrNotConnected is returned when I/O is attempted without an
	// active session.
	ErrNotConnected = errors.New("transport: no open connection")

	// ErrConnectionLost is returned when an established session fails
	// mid-operation. The Conn is no longer usable until reconnected.
	ErrConnectionLost = errors.New("transport: connection lost")

	// ErrReceiveTimeout is returned when no bytes arrive within the
	// receive bound. The session is assumed alive.
	ErrReceiveTimeout = errors.New("transport: receive timed out")
)
