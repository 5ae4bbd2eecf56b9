package spa

import (
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/poolhouse/arcticspa/pkg/packet"
	"github.com/poolhouse/arcticspa/pkg/schema"
	"github.com/poolhouse/arcticspa/pkg/transport"
)

// newTestClient wires a connected client to a scripted fake controller
// over an in-memory pipe.
func newTestClient(t *testing.T, config Config) (*Client, *TestDevice) {
	t.Helper()

	clientConn, deviceConn := net.Pipe()
	config.Host = "spa.test"
	config.Dial = func(network, address string, timeout time.Duration) (net.Conn, error) {
		return clientConn, nil
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = time.Second
	}

	c, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	device := NewTestDevice(deviceConn)
	t.Cleanup(func() {
		c.Disconnect()
		device.Close()
	})
	return c, device
}

func livePayload(t *testing.T, temp uint32) proto.Message {
	t.Helper()
	m, err := schema.New(schema.TypeLive)
	if err != nil {
		t.Fatalf("schema.New(TypeLive) error = %v", err)
	}
	refl := m.ProtoReflect()
	refl.Set(refl.Descriptor().Fields().ByName("temperature_fahrenheit"), protoreflect.ValueOfUint32(temp))
	return m
}

func TestFetchOne(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{Payload: livePayload(t, 102)})

	msg, err := c.FetchOne(schema.TypeLive)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if msg.Type != schema.TypeLive {
		t.Errorf("type = %v, want Live", msg.Type)
	}
	if got := msg.Uint("temperature_fahrenheit"); got != 102 {
		t.Errorf("temperature_fahrenheit = %d, want 102", got)
	}
}

func TestFetchMultipleTypes(t *testing.T) {
	c, device := newTestClient(t, Config{FetchTimeout: 200 * time.Millisecond})
	device.Script(schema.TypeLive, Reply{Payload: livePayload(t, 100)})
	device.Script(schema.TypeSettings, Reply{Delay: 50 * time.Millisecond})

	start := time.Now()
	results, err := c.Fetch(schema.TypeLive, schema.TypeSettings)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[schema.TypeLive] == nil || results[schema.TypeSettings] == nil {
		t.Fatal("missing result for a requested type")
	}
	if elapsed >= 200*time.Millisecond {
		t.Errorf("fetch took %v, want under the 200ms budget", elapsed)
	}
}

func TestFetchUnknownTypeBeforeIO(t *testing.T) {
	// No Connect: validation must reject the type before any I/O, so no
	// connection error can surface first.
	c, err := New(Config{Host: "spa.test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Fetch(schema.TypeHeartbeat); !errors.Is(err, schema.ErrUnknownType) {
		t.Errorf("Fetch(TypeHeartbeat) error = %v, want ErrUnknownType", err)
	}
	if _, err := c.Fetch(schema.MessageType(999)); !errors.Is(err, schema.ErrUnknownType) {
		t.Errorf("Fetch(999) error = %v, want ErrUnknownType", err)
	}
}

func TestFetchNothing(t *testing.T) {
	c, _ := newTestClient(t, Config{})
	results, err := c.Fetch()
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestFetchIncomplete(t *testing.T) {
	c, device := newTestClient(t, Config{FetchTimeout: 100 * time.Millisecond})
	device.Script(schema.TypeLive, Reply{Payload: livePayload(t, 99)})
	device.Script(schema.TypeSettings, Reply{Drop: true})

	results, err := c.Fetch(schema.TypeLive, schema.TypeSettings)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Fetch() error = %v, want ErrIncomplete", err)
	}
	if results[schema.TypeLive] == nil {
		t.Error("partial result is missing the answered type")
	}
	if _, ok := results[schema.TypeSettings]; ok {
		t.Error("partial result contains the unanswered type")
	}

	// The connection survives a timeout; the next fetch works.
	if !c.Connected() {
		t.Fatal("Connected() = false after incomplete fetch")
	}
	if _, err := c.FetchOne(schema.TypeLive); err != nil {
		t.Errorf("follow-up FetchOne() error = %v", err)
	}
}

func TestFetchLastWriteWins(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{Drop: true})
	device.Script(schema.TypeSettings, Reply{Drop: true})

	go func() {
		// Wait for both request frames, then answer Live twice before
		// releasing the fetch with the Settings reply.
		<-device.Received()
		<-device.Received()
		device.Push(schema.TypeLive, livePayload(t, 90))
		device.Push(schema.TypeLive, livePayload(t, 95))
		device.Push(schema.TypeSettings, nil)
	}()

	results, err := c.Fetch(schema.TypeLive, schema.TypeSettings)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got := results[schema.TypeLive].Uint("temperature_fahrenheit"); got != 95 {
		t.Errorf("temperature_fahrenheit = %d, want 95 (last reply)", got)
	}
}

func TestFetchUnsolicited(t *testing.T) {
	var unsolicited []*Message
	c, device := newTestClient(t, Config{
		OnUnsolicited: func(m *Message) { unsolicited = append(unsolicited, m) },
	})
	device.Script(schema.TypeLive, Reply{Drop: true})

	go func() {
		<-device.Received()
		device.Push(schema.TypeOnzenLive, nil)
		device.Push(schema.TypeLive, livePayload(t, 101))
	}()

	results, err := c.Fetch(schema.TypeLive)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, ok := results[schema.TypeOnzenLive]; ok {
		t.Error("unsolicited message leaked into the result")
	}
	if len(unsolicited) != 1 {
		t.Fatalf("callback got %d messages, want 1", len(unsolicited))
	}
	if unsolicited[0].Type != schema.TypeOnzenLive {
		t.Errorf("unsolicited type = %v, want OnzenLive", unsolicited[0].Type)
	}
}

func TestFetchSkipsHeartbeatsAndUnknownFrames(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{Drop: true})

	go func() {
		<-device.Received()
		device.Push(schema.TypeHeartbeat, nil)
		// A valid wire identifier this client has no payload schema for.
		device.Push(schema.TypeMobileSpa, nil)
		device.Push(schema.TypeLive, livePayload(t, 98))
	}()

	msg, err := c.FetchOne(schema.TypeLive)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}
	if got := msg.Uint("temperature_fahrenheit"); got != 98 {
		t.Errorf("temperature_fahrenheit = %d, want 98", got)
	}
}

func TestFetchInProgress(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{
		Payload: livePayload(t, 97),
		Delay:   150 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() {
		_, err := c.FetchOne(schema.TypeLive)
		done <- err
	}()

	time.Sleep(30 * time.Millisecond)
	if _, err := c.FetchOne(schema.TypeLive); !errors.Is(err, ErrFetchInProgress) {
		t.Errorf("overlapping Fetch() error = %v, want ErrFetchInProgress", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	// The guard is released once the first exchange finishes.
	if _, err := c.FetchOne(schema.TypeLive); err != nil {
		t.Errorf("follow-up Fetch() error = %v", err)
	}
}

func TestFetchConnectionLost(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{Drop: true})

	go func() {
		<-device.Received()
		device.Close()
	}()

	if _, err := c.Fetch(schema.TypeLive); !errors.Is(err, transport.ErrConnectionLost) {
		t.Errorf("Fetch() error = %v, want ErrConnectionLost", err)
	}
	if c.Connected() {
		t.Error("Connected() = true after connection loss")
	}
}

func TestFetchFramingError(t *testing.T) {
	c, device := newTestClient(t, Config{})
	device.Script(schema.TypeLive, Reply{Drop: true})

	go func() {
		<-device.Received()
		device.PushRaw([]byte("this is not a frame"))
	}()

	if _, err := c.Fetch(schema.TypeLive); !errors.Is(err, packet.ErrBadPreamble) {
		t.Errorf("Fetch() error = %v, want ErrBadPreamble", err)
	}
}

func TestFetchNotConnected(t *testing.T) {
	c, err := New(Config{Host: "spa.test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.FetchOne(schema.TypeLive); !errors.Is(err, transport.ErrNotConnected) {
		t.Errorf("Fetch() error = %v, want ErrNotConnected", err)
	}
}

func TestMessageAccessors(t *testing.T) {
	c, device := newTestClient(t, Config{})

	payload, err := schema.New(schema.TypeLive)
	if err != nil {
		t.Fatalf("schema.New() error = %v", err)
	}
	refl := payload.ProtoReflect()
	fields := refl.Descriptor().Fields()
	refl.Set(fields.ByName("temperature_fahrenheit"), protoreflect.ValueOfUint32(103))
	refl.Set(fields.ByName("lights"), protoreflect.ValueOfBool(true))
	device.Script(schema.TypeLive, Reply{Payload: payload})

	msg, err := c.FetchOne(schema.TypeLive)
	if err != nil {
		t.Fatalf("FetchOne() error = %v", err)
	}

	if got := msg.Uint("temperature_fahrenheit"); got != 103 {
		t.Errorf("Uint() = %d, want 103", got)
	}
	if !msg.Bool("lights") {
		t.Error("Bool(lights) = false, want true")
	}
	if _, ok := msg.Field("no_such_field"); ok {
		t.Error("Field() found a field that does not exist")
	}
	if s := msg.String(); s == "" {
		t.Error("String() is empty")
	}
}
