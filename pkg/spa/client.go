// Package spa is the client for Arctic Spa hot-tub controllers. It speaks
// the controller's TCP protocol: length-prefixed protobuf messages behind
// a fixed binary header, fetched by type over a single persistent
// connection.
//
// The protocol has no per-request identifiers. A fetch sends one request
// frame per wanted type and then reads until every requested type has
// been seen; correlation is by message type alone. The controller also
// pushes unsolicited messages at any time, which are handed to the
// OnUnsolicited callback.
package spa

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/poolhouse/arcticspa/pkg/packet"
	"github.com/poolhouse/arcticspa/pkg/schema"
	"github.com/poolhouse/arcticspa/pkg/transport"
)

// DefaultFetchTimeout bounds one fetch round-trip.
const DefaultFetchTimeout = 5 * time.Second

// Config configures a Client.
type Config struct {
	// Host is the controller address. Required.
	Host string

	// Port is the controller port (default: 65534).
	Port int

	// DialTimeout bounds connection establishment (default: 5s).
	DialTimeout time.Duration

	// FetchTimeout bounds one fetch round-trip (default: 5s).
	FetchTimeout time.Duration

	// OnUnsolicited receives messages the controller pushed without
	// being asked. Called synchronously on the fetching goroutine,
	// exactly once per message. If nil, unsolicited messages are
	// dropped.
	OnUnsolicited func(*Message)

	// Dial overrides the transport dial function. If nil, TCP is used.
	Dial transport.DialFunc

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Client talks to one controller over one connection. Exchanges are
// strictly sequential: a fetch or command started while another is in
// flight fails with ErrFetchInProgress. The client never runs background
// goroutines and never reconnects on its own.
type Client struct {
	config Config
	log    logging.LeveledLogger

	conn *transport.Conn
	dec  *packet.Decoder

	opMu sync.Mutex
	busy bool
}

// New creates a client. No I/O happens until Connect.
func New(config Config) (*Client, error) {
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	conn, err := transport.NewConn(transport.Config{
		Host:          config.Host,
		Port:          config.Port,
		DialTimeout:   config.DialTimeout,
		Dial:          config.Dial,
		LoggerFactory: config.LoggerFactory,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		conn:   conn,
		dec:    packet.NewDecoder(),
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("spa")
	}
	return c, nil
}

// Connect opens the connection to the controller. Idempotent.
func (c *Client) Connect() error {
	return c.conn.Connect()
}

// ConnectAttempts connects with a bounded retry loop.
func (c *Client) ConnectAttempts(attempts uint64) error {
	return c.conn.ConnectAttempts(attempts)
}

// Connected reports whether the connection is up.
func (c *Client) Connected() bool {
	return c.conn.Connected()
}

// Disconnect closes the connection and discards any partially received
// frame. Safe to call repeatedly.
func (c *Client) Disconnect() error {
	c.dec.Reset()
	return c.conn.Close()
}

// Fetch requests the given message types and blocks until each has been
// answered or the fetch timeout expires. The result maps each requested
// type to the message received for it; when the controller answers a
// type more than once within the round-trip, the last reply wins.
//
// On timeout the partial result is returned together with ErrIncomplete;
// the connection stays usable. Unknown requested types fail with
// schema.ErrUnknownType before anything is sent. Connection loss fails
// with transport.ErrConnectionLost and discards partial progress.
func (c *Client) Fetch(types ...schema.MessageType) (map[schema.MessageType]*Message, error) {
	requested := make(map[schema.MessageType]bool, len(types))
	for _, t := range types {
		if _, err := schema.Lookup(t); err != nil {
			return nil, err
		}
		requested[t] = true
	}
	if len(requested) == 0 {
		return map[schema.MessageType]*Message{}, nil
	}

	if err := c.beginExchange(); err != nil {
		return nil, err
	}
	defer c.endExchange()

	// Deterministic request frame: sorted, deduplicated.
	wire := make([]uint16, 0, len(requested))
	for t := range requested {
		wire = append(wire, uint16(t))
	}
	sort.Slice(wire, func(i, j int) bool { return wire[i] < wire[j] })

	if err := c.conn.Send(packet.EncodeRequest(wire)); err != nil {
		c.dec.Reset()
		return nil, err
	}

	pending := make(map[schema.MessageType]bool, len(requested))
	for t := range requested {
		pending[t] = true
	}
	results := make(map[schema.MessageType]*Message, len(requested))
	deadline := time.Now().Add(c.config.FetchTimeout)

	for len(pending) > 0 {
		if err := c.drain(requested, pending, results); err != nil {
			c.dec.Reset()
			return nil, err
		}
		if len(pending) == 0 {
			break
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return results, incomplete(pending)
		}

		chunk, err := c.conn.Receive(remaining)
		if err != nil {
			if errors.Is(err, transport.ErrReceiveTimeout) {
				return results, incomplete(pending)
			}
			c.dec.Reset()
			return nil, err
		}
		c.dec.Feed(chunk)
	}

	return results, nil
}

// FetchOne requests a single message type.
func (c *Client) FetchOne(t schema.MessageType) (*Message, error) {
	results, err := c.Fetch(t)
	if err != nil {
		return nil, err
	}
	return results[t], nil
}

// drain decodes every complete buffered frame, filling results for
// requested types and dispatching the rest.
func (c *Client) drain(requested, pending map[schema.MessageType]bool, results map[schema.MessageType]*Message) error {
	for {
		entry, err := c.dec.Next()
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		t := schema.MessageType(entry.Type)
		if t == schema.TypeHeartbeat {
			continue
		}
		if !schema.CanDecode(t) {
			if c.log != nil {
				c.log.Debugf("skipping message type %d (%s)", entry.Type, t)
			}
			continue
		}

		payload, err := schema.Decode(t, entry.Payload)
		if err != nil {
			if c.log != nil {
				c.log.Warnf("dropping undecodable %s message: %v", t, err)
			}
			continue
		}

		msg := &Message{
			Type:     t,
			Counter:  entry.Counter,
			Checksum: entry.Checksum,
			payload:  payload,
		}

		if requested[t] {
			results[t] = msg
			delete(pending, t)
			continue
		}

		if c.config.OnUnsolicited != nil {
			c.config.OnUnsolicited(msg)
		} else if c.log != nil {
			c.log.Debugf("dropping unsolicited %s message", t)
		}
	}
}

// beginExchange acquires the in-flight guard.
func (c *Client) beginExchange() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.busy {
		return ErrFetchInProgress
	}
	c.busy = true
	return nil
}

func (c *Client) endExchange() {
	c.opMu.Lock()
	c.busy = false
	c.opMu.Unlock()
}

func incomplete(pending map[schema.MessageType]bool) error {
	missing := make([]string, 0, len(pending))
	for t := range pending {
		missing = append(missing, t.String())
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: no reply for %s", ErrIncomplete, strings.Join(missing, ", "))
}
