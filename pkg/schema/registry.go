package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// decoders maps each fetchable message type to the name of its payload
// message in the schema. Types without an entry (heartbeats, firmware
// transfer frames, the LPC and mobile families) appear on the wire but
// carry no payload this client decodes; Lookup rejects them.
var decoders = map[MessageType]protoreflect.Name{
	TypeLive:          "Live",
	TypeCommand:       "Command",
	TypeSettings:      "Settings",
	TypeConfiguration: "Configuration",
	TypePeak:          "Peak",
	TypeClock:         "Clock",
	TypeInformation:   "Information",
	TypeError:         "Error",
	TypeRouter:        "Router",
	TypeFilters:       "Filter",
	TypePeripheral:    "Peripheral",
	TypeOnzenLive:     "OnzenLive",
	TypeOnzenSettings: "OnzenSettings",
}

var (
	messageTypes map[MessageType]protoreflect.MessageType
	commandDesc  protoreflect.MessageDescriptor
)

func init() {
	fd, err := buildFile()
	if err != nil {
		// The descriptor is a compile-time constant of this package; a
		// failure here is a programming error, not a runtime condition.
		panic(err)
	}

	messageTypes = make(map[MessageType]protoreflect.MessageType, len(decoders))
	for t, name := range decoders {
		md := fd.Messages().ByName(name)
		if md == nil {
			panic(fmt.Sprintf("schema: no descriptor for message %q", name))
		}
		messageTypes[t] = dynamicpb.NewMessageType(md)
	}

	commandDesc = fd.Messages().ByName("Command")
}

// Lookup returns the payload schema for a message type. Fails with
// ErrUnknownType for identifiers outside the fetchable set.
func Lookup(t MessageType) (protoreflect.MessageType, error) {
	mt, ok := messageTypes[t]
	if !ok {
		return nil, fmt.Errorf("%w: message type %d (%s)", ErrUnknownType, uint16(t), t)
	}
	return mt, nil
}

// CanDecode reports whether a payload schema is registered for the type.
func CanDecode(t MessageType) bool {
	_, ok := messageTypes[t]
	return ok
}

// New returns a fresh, empty payload record for the message type.
func New(t MessageType) (proto.Message, error) {
	mt, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	return mt.New().Interface(), nil
}

// Decode unmarshals a raw payload using the schema registered for the
// message type.
func Decode(t MessageType, payload []byte) (proto.Message, error) {
	m, err := New(t)
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(payload, m); err != nil {
		return nil, fmt.Errorf("schema: decode %s payload: %w", t, err)
	}
	return m, nil
}

// LookupCommand returns the Command payload field a command writes to.
// Fails with ErrUnknownType for identifiers outside the fixed set.
func LookupCommand(c CommandType) (protoreflect.FieldDescriptor, error) {
	spec, ok := commandSpecs[c]
	if !ok {
		return nil, fmt.Errorf("%w: command type %d", ErrUnknownType, uint8(c))
	}
	fd := commandDesc.Fields().ByName(protoreflect.Name(spec.field))
	if fd == nil {
		return nil, fmt.Errorf("%w: command %q has no schema field", ErrUnknownType, spec.field)
	}
	return fd, nil
}

// NewCommand returns a fresh, empty Command payload record.
func NewCommand() proto.Message {
	return dynamicpb.NewMessage(commandDesc)
}
