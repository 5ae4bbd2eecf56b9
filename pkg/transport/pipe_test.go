package transport

import (
	"bytes"
	"testing"
	"time"
)

func TestPipeDataFlow(t *testing.T) {
	p := NewPipe()
	defer p.Close()

	c, err := NewConn(Config{Host: "spa.test", Dial: p.Dialer()})
	if err != nil {
		t.Fatalf("NewConn() error = %v", err)
	}
	defer c.Close()

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// Client to device.
	sent := []byte{0x01, 0x02, 0x03}
	if err := c.Send(sent); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	buf := make([]byte, 16)
	n, err := p.DeviceConn().Read(buf)
	if err != nil {
		t.Fatalf("device Read() error = %v", err)
	}
	if !bytes.Equal(buf[:n], sent) {
		t.Errorf("device read %v, want %v", buf[:n], sent)
	}

	// Device to client.
	reply := []byte{0xaa, 0xbb}
	if _, err := p.DeviceConn().Write(reply); err != nil {
		t.Fatalf("device Write() error = %v", err)
	}
	got, err := c.Receive(time.Second)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(got, reply) {
		t.Errorf("Receive() = %v, want %v", got, reply)
	}
}

func TestPipeCloseIdempotent(t *testing.T) {
	p := NewPipe()
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
