package packet

import (
	"encoding/binary"
)

// Entry is one decoded inbound frame: the raw type identifier and the
// still-encoded protobuf payload. Interpreting the payload is the
// registry's job, not the codec's.
type Entry struct {
	Type     uint16
	Counter  uint32
	Checksum [4]byte
	Payload  []byte
}

// Decoder splits an inbound byte stream into tagged entries. Framing is
// independent of the transport's read granularity: a frame may arrive
// split across any number of Feed calls, and one call may carry several
// frames. Incomplete trailing bytes are buffered until completed.
type Decoder struct {
	buf []byte
}

// NewDecoder creates an empty stream decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk of received bytes to the internal buffer.
func (d *Decoder) Feed(chunk []byte) {
	d.buf = append(d.buf, chunk...)
}

// Buffered returns the number of undecoded bytes currently held.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset discards all buffered bytes. Use after a framing error once the
// connection has been re-established.
func (d *Decoder) Reset() {
	d.buf = nil
}

// Next returns the next complete entry, or (nil, nil) when the buffer
// does not yet hold a full frame. A buffer that cannot start a valid
// frame yields ErrBadPreamble; a length field beyond MaxPayloadLen
// yields ErrPayloadTooLarge. Both leave the buffer untouched so the
// caller can inspect it before resetting.
func (d *Decoder) Next() (*Entry, error) {
	if len(d.buf) < HeaderSize {
		if len(d.buf) >= 4 && binary.BigEndian.Uint32(d.buf[0:4]) != Magic {
			return nil, ErrBadPreamble
		}
		return nil, nil
	}

	if binary.BigEndian.Uint32(d.buf[0:4]) != Magic {
		return nil, ErrBadPreamble
	}

	length := int(binary.BigEndian.Uint16(d.buf[18:20]))
	if length > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}

	total := HeaderSize + length
	if len(d.buf) < total {
		return nil, nil
	}

	e := &Entry{
		Type:    binary.BigEndian.Uint16(d.buf[16:18]),
		Counter: binary.BigEndian.Uint32(d.buf[8:12]),
	}
	copy(e.Checksum[:], d.buf[4:8])
	if length > 0 {
		e.Payload = make([]byte, length)
		copy(e.Payload, d.buf[HeaderSize:total])
	}

	d.buf = d.buf[total:]
	return e, nil
}
