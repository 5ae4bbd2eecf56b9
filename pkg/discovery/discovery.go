// Package discovery finds spa controllers on the local network. The
// controller answers a short UDP probe: a datagram "Query,BlueFalls,"
// sent to port 9131 is answered with a datagram starting
// "Response,BlueFalls,". Search fans the probe out over the local
// subnet with bounded concurrency.
package discovery

import (
	"context"
	"encoding/binary"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pion/logging"
)

const (
	// ProbePort is the UDP port the controller listens on for probes.
	ProbePort = 9131

	// DefaultProbeTimeout is how long to wait for a single reply.
	DefaultProbeTimeout = time.Second

	// DefaultMaxInFlight is the default probe concurrency bound.
	DefaultMaxInFlight = 50

	probeMessage = "Query,BlueFalls,"
	replyPrefix  = "Response,BlueFalls,"
)

// Prober sends one probe and reports whether a controller answered.
// Tests inject scripted implementations; production probes over UDP.
type Prober func(ctx context.Context, host string, timeout time.Duration) (bool, error)

// Config configures a Search.
type Config struct {
	// LocalIP is the local interface address defining the subnet to
	// scan. If nil, it is auto-detected.
	LocalIP net.IP

	// PrefixLen is the subnet prefix length (default: 24). Lengths
	// below 16 are rejected.
	PrefixLen int

	// ProbeTimeout is how long to wait for each reply (default: 1s).
	ProbeTimeout time.Duration

	// MaxInFlight bounds concurrent probes (default: 50).
	MaxInFlight int

	// Prober overrides the probe function. If nil, UDP is used.
	Prober Prober

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Search probes every host in the local subnet and returns the
// addresses that answered like a controller, sorted. Cancelling the
// context stops the scan; hosts found so far are returned together
// with the context error.
func Search(ctx context.Context, config Config) ([]string, error) {
	if config.PrefixLen == 0 {
		config.PrefixLen = 24
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}
	if config.MaxInFlight == 0 {
		config.MaxInFlight = DefaultMaxInFlight
	}
	if config.Prober == nil {
		config.Prober = probe
	}

	var log logging.LeveledLogger
	if config.LoggerFactory != nil {
		log = config.LoggerFactory.NewLogger("spa-discovery")
	}

	if config.LocalIP == nil {
		ip, err := localIP()
		if err != nil {
			return nil, err
		}
		config.LocalIP = ip
	}

	ip4 := config.LocalIP.To4()
	if ip4 == nil {
		return nil, ErrBadSubnet
	}
	if config.PrefixLen < 16 || config.PrefixLen > 30 {
		return nil, ErrBadSubnet
	}

	base := binary.BigEndian.Uint32(ip4.Mask(net.CIDRMask(config.PrefixLen, 32)))
	hosts := 1 << (32 - config.PrefixLen)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		found []string
	)
	sem := make(chan struct{}, config.MaxInFlight)

scan:
	// Skip the network and broadcast addresses and our own.
	for i := 1; i < hosts-1; i++ {
		addr := make(net.IP, net.IPv4len)
		binary.BigEndian.PutUint32(addr, base+uint32(i))
		if addr.Equal(ip4) {
			continue
		}

		select {
		case <-ctx.Done():
			break scan
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			ok, err := config.Prober(ctx, host, config.ProbeTimeout)
			if err != nil {
				if log != nil {
					log.Debugf("probe %s: %v", host, err)
				}
				return
			}
			if ok {
				if log != nil {
					log.Infof("found controller at %s", host)
				}
				mu.Lock()
				found = append(found, host)
				mu.Unlock()
			}
		}(addr.String())
	}

	wg.Wait()
	sort.Strings(found)
	return found, ctx.Err()
}

// probe sends one UDP query and waits for the controller's reply.
func probe(ctx context.Context, host string, timeout time.Duration) (bool, error) {
	return probeAt(ctx, host, ProbePort, timeout)
}

// probeAt is probe with the destination port split out for tests. The
// controller answers from a different source port than it listens on,
// so the socket stays unconnected.
func probeAt(ctx context.Context, host string, port int, timeout time.Duration) (bool, error) {
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	target := &net.UDPAddr{IP: net.ParseIP(host), Port: port}
	if _, err := conn.WriteToUDP([]byte(probeMessage), target); err != nil {
		return false, err
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, err
	}

	buf := make([]byte, 256)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			// No reply: the host is not a controller.
			return false, nil
		}
		if !from.IP.Equal(target.IP) {
			continue
		}
		return strings.HasPrefix(string(buf[:n]), replyPrefix), nil
	}
}

// localIP determines the preferred outbound interface address. No
// packets are sent; dialing UDP only selects a route.
func localIP() (net.IP, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:53")
	if err != nil {
		return nil, ErrNoLocalIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return nil, ErrNoLocalIP
	}
	return addr.IP, nil
}
