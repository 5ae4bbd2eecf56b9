package spa

import (
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/poolhouse/arcticspa/pkg/schema"
)

// Message is one decoded controller message: the wire identifier plus the
// decoded payload record. Payload fields are accessed generically by name;
// the field set depends on the message type, see pkg/schema.
type Message struct {
	// Type is the wire identifier of the message.
	Type schema.MessageType

	// Counter is the controller's sequence number for this frame.
	Counter uint32

	// Checksum is the checksum field as sent by the controller. Inbound
	// checksums are not enforced; see packet.VerifyChecksum.
	Checksum [4]byte

	payload proto.Message
}

// Proto returns the decoded payload record.
func (m *Message) Proto() proto.Message {
	return m.payload
}

// Field returns the value of a payload field by name. The second return
// is false when the payload has no such field.
func (m *Message) Field(name string) (protoreflect.Value, bool) {
	refl := m.payload.ProtoReflect()
	fd := refl.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		return protoreflect.Value{}, false
	}
	return refl.Get(fd), true
}

// Uint returns a numeric payload field, or 0 when absent.
func (m *Message) Uint(name string) uint64 {
	v, ok := m.Field(name)
	if !ok {
		return 0
	}
	return v.Uint()
}

// Bool returns a boolean payload field, or false when absent.
func (m *Message) Bool(name string) bool {
	v, ok := m.Field(name)
	if !ok {
		return false
	}
	return v.Bool()
}

// Str returns a string payload field, or "" when absent.
func (m *Message) Str(name string) string {
	v, ok := m.Field(name)
	if !ok {
		return ""
	}
	return v.String()
}

// String renders the message for logs and debugging.
func (m *Message) String() string {
	return m.Type.String() + " " + prototext.MarshalOptions{Multiline: false}.Format(m.payload)
}
