// Package transport owns the single TCP session to a spa controller:
// connect, disconnect, health check, and the raw send/receive primitives
// the protocol layer builds on. It never reconnects on its own; loss is
// surfaced to the caller, and any retry policy stays caller-visible.
package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pion/logging"
)

const (
	// DefaultPort is the TCP port the spa controller listens on.
	DefaultPort = 65534

	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 5 * time.Second

	// readBufferSize is the receive chunk size. Frame boundaries are the
	// codec's concern; reads return whatever the socket has.
	readBufferSize = 4096
)

// DialFunc opens the underlying connection. Tests inject pipe-backed
// implementations; production uses net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures a Conn.
type Config struct {
	// Host is the controller address. Required.
	Host string

	// Port is the controller port (default: 65534).
	Port int

	// DialTimeout bounds connection establishment (default: 5s).
	DialTimeout time.Duration

	// Dial overrides the dial function. If nil, net.DialTimeout is used.
	Dial DialFunc

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Conn manages the single TCP session to the controller. One Conn owns
// one socket; a new socket is only created by an explicit Connect after
// the previous session ended.
type Conn struct {
	config Config
	log    logging.LeveledLogger

	mu   sync.Mutex
	conn net.Conn
}

// NewConn creates a connection manager. No I/O happens until Connect.
func NewConn(config Config) (*Conn, error) {
	if config.Host == "" {
		return nil, ErrNoHost
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if config.Dial == nil {
		config.Dial = net.DialTimeout
	}

	c := &Conn{config: config}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("spa-transport")
	}
	return c, nil
}

// Connect opens the socket. Idempotent: calling Connect while connected
// is a no-op. Dial failures (refusal, timeout, resolution) are reported
// as ErrConnectFailed wrapping the cause.
func (c *Conn) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	conn, err := c.config.Dial("tcp", addr, c.config.DialTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	c.conn = conn
	if c.log != nil {
		c.log.Infof("connected to %s", addr)
	}
	return nil
}

// ConnectAttempts dials with a bounded, caller-visible retry loop.
// Attempts must be at least 1; the delay between attempts grows
// exponentially from 500ms.
func (c *Conn) ConnectAttempts(attempts uint64) error {
	if attempts == 0 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 0 // bounded by the retry count, not wall time

	return backoff.Retry(c.Connect, backoff.WithMaxRetries(policy, attempts-1))
}

// Connected reports whether there is an active session.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close releases the socket. Safe to call repeatedly; the socket is
// released on every exit path and never leaked.
func (c *Conn) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	if c.log != nil {
		c.log.Info("disconnecting")
	}
	return conn.Close()
}

// Send writes raw bytes to the session. A write failure invalidates the
// session and is reported as ErrConnectionLost.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	if _, err := conn.Write(data); err != nil {
		c.dropSession(conn)
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
	return nil
}

// Receive reads whatever bytes the controller has sent, waiting up to
// maxWait. Returns ErrReceiveTimeout if nothing arrives in time (the
// session stays alive) and ErrConnectionLost if the peer closed.
func (c *Conn) Receive(maxWait time.Duration) ([]byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil, ErrNotConnected
	}

	// Ignore deadline errors: virtual test conns may not support them,
	// in which case reads simply block until data arrives.
	_ = conn.SetReadDeadline(time.Now().Add(maxWait))

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		_ = conn.SetReadDeadline(time.Time{})
		return buf[:n], nil
	}
	if err == nil {
		return nil, ErrReceiveTimeout
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return nil, ErrReceiveTimeout
	}

	c.dropSession(conn)
	return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
}

// dropSession closes and forgets the socket after a fatal I/O error.
func (c *Conn) dropSession(conn net.Conn) {
	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	if c.log != nil {
		c.log.Warn("connection lost")
	}
}
