package transport

import (
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe provides bidirectional in-memory communication between the client
// and a fake controller. It wraps pion's test.Bridge and delivers queued
// data in a background goroutine, so tests need no real network I/O and
// no manual pumping.
type Pipe struct {
	bridge *test.Bridge

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipe creates a pipe with automatic delivery enabled.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// ClientConn returns the client endpoint.
func (p *Pipe) ClientConn() net.Conn {
	return p.bridge.GetConn0()
}

// DeviceConn returns the fake-controller endpoint.
func (p *Pipe) DeviceConn() net.Conn {
	return p.bridge.GetConn1()
}

// Dialer returns a DialFunc that yields the client endpoint, for
// injecting the pipe into a Conn via Config.Dial.
func (p *Pipe) Dialer() DialFunc {
	return func(network, address string, timeout time.Duration) (net.Conn, error) {
		return p.ClientConn(), nil
	}
}

// Process delivers all queued data immediately.
func (p *Pipe) Process() {
	for p.bridge.Tick() > 0 {
	}
}

// Close stops delivery and closes both endpoints.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()

	err := p.bridge.GetConn0().Close()
	if cerr := p.bridge.GetConn1().Close(); err == nil {
		err = cerr
	}
	return err
}
