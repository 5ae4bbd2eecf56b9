package spa

import (
	"net"
	"sync"
	"time"

	"google.golang.org/protobuf/proto"

	"github.com/poolhouse/arcticspa/pkg/packet"
	"github.com/poolhouse/arcticspa/pkg/schema"
)

// Reply scripts how a TestDevice answers one requested message type.
type Reply struct {
	// Payload is the response payload. Nil sends an empty payload.
	Payload proto.Message

	// Delay is how long to wait before answering.
	Delay time.Duration

	// Copies is the number of response frames to send (default 1).
	Copies int

	// Drop suppresses the answer entirely.
	Drop bool
}

// TestDevice is a scripted fake controller for client tests. It serves
// one connection: inbound request frames are answered per script, in
// arrival order, and arbitrary frames can be pushed unsolicited. Every
// inbound frame is also exposed on Received for assertions.
type TestDevice struct {
	conn net.Conn

	mu      sync.Mutex
	replies map[schema.MessageType]Reply
	counter uint32

	received chan *packet.Entry
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewTestDevice starts a fake controller on the device side of a pipe.
func NewTestDevice(conn net.Conn) *TestDevice {
	d := &TestDevice{
		conn:     conn,
		replies:  map[schema.MessageType]Reply{},
		received: make(chan *packet.Entry, 32),
		done:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.serve()
	return d
}

// Script sets the reply for one message type.
func (d *TestDevice) Script(t schema.MessageType, r Reply) {
	d.mu.Lock()
	d.replies[t] = r
	d.mu.Unlock()
}

// Received exposes every frame the device has read, in order.
func (d *TestDevice) Received() <-chan *packet.Entry {
	return d.received
}

// Push sends a frame the client did not ask for.
func (d *TestDevice) Push(t schema.MessageType, payload proto.Message) error {
	return d.send(t, payload)
}

// PushRaw writes arbitrary bytes to the client, for feeding garbage.
func (d *TestDevice) PushRaw(raw []byte) error {
	_, err := d.conn.Write(raw)
	return err
}

// Close stops the device and closes its end of the pipe.
func (d *TestDevice) Close() error {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	err := d.conn.Close()
	d.wg.Wait()
	return err
}

func (d *TestDevice) serve() {
	defer d.wg.Done()

	dec := packet.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := d.conn.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
		}
		for {
			entry, derr := dec.Next()
			if derr != nil || entry == nil {
				break
			}
			select {
			case d.received <- entry:
			default:
			}
			d.answer(schema.MessageType(entry.Type))
		}
		if err != nil {
			return
		}
		select {
		case <-d.done:
			return
		default:
		}
	}
}

func (d *TestDevice) answer(t schema.MessageType) {
	d.mu.Lock()
	r, ok := d.replies[t]
	d.mu.Unlock()
	if !ok || r.Drop {
		return
	}

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-d.done:
			return
		}
	}

	copies := r.Copies
	if copies == 0 {
		copies = 1
	}
	for i := 0; i < copies; i++ {
		if err := d.send(t, r.Payload); err != nil {
			return
		}
	}
}

func (d *TestDevice) send(t schema.MessageType, payload proto.Message) error {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = proto.Marshal(payload)
		if err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.counter++
	pkt := packet.Packet{Type: uint16(t), Counter: d.counter, Payload: raw}
	d.mu.Unlock()

	_, err := d.conn.Write(pkt.Encode())
	return err
}
