package packet

import "errors"

// Codec errors. Both indicate a compromised stream: the caller should
// disconnect and reconnect rather than keep decoding.
var (
	// ErrBadPreamble is returned when buffered data does not start with
	// the packet magic.
	ErrBadPreamble = errors.New("packet: data does not start with correct preamble")

	// ErrPayloadTooLarge is returned when a length field exceeds
	// MaxPayloadLen.
	ErrPayloadTooLarge = errors.New("packet: payload length exceeds maximum size")
)
