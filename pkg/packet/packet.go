// Package packet implements the Arctic Spa wire codec: a fixed 20-byte
// big-endian header followed by a protobuf-encoded payload.
//
// Header layout (20 bytes, big-endian):
//
//	[0-3]   magic     uint32  0xABAD1D3A
//	[4-7]   checksum  uint32  CRC32 (IEEE) of the packet with this field zeroed
//	[8-11]  counter   uint32  sequence number (0 on requests)
//	[12-15] reserved  uint32
//	[16-17] type      uint16  message or command type
//	[18-19] length    uint16  payload byte count
//
// The package provides:
//   - Packet encoding for outbound requests and commands
//   - An incremental Decoder that tolerates frames split across reads
package packet

import (
	"encoding/binary"
	"hash/crc32"
)

const (
	// HeaderSize is the fixed header size in bytes.
	HeaderSize = 20

	// Magic is the preamble every packet starts with.
	Magic uint32 = 0xABAD1D3A

	// MaxPayloadLen bounds the payload length field. The largest payloads
	// the controller sends (settings dumps) are well under 4 KB; anything
	// bigger indicates a corrupt length field.
	MaxPayloadLen = 16 * 1024

	checksumOffset = 4
)

// Packet is one outbound request or command unit.
type Packet struct {
	Type    uint16
	Counter uint32
	Payload []byte
}

// Encode serialises the packet, computing the CRC32 checksum over the
// packet with a zeroed checksum field. Deterministic: identical input
// always yields identical bytes.
func (p *Packet) Encode() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	// checksum field left zero for the CRC pass
	binary.BigEndian.PutUint32(buf[8:12], p.Counter)
	binary.BigEndian.PutUint16(buf[16:18], p.Type)
	binary.BigEndian.PutUint16(buf[18:20], uint16(len(p.Payload)))
	copy(buf[HeaderSize:], p.Payload)

	sum := crc32.ChecksumIEEE(buf)
	binary.BigEndian.PutUint32(buf[checksumOffset:checksumOffset+4], sum)
	return buf
}

// EncodeRequest builds the outbound frame requesting the given message
// types: one empty-payload packet per type, concatenated. The controller
// replies to each with the corresponding message.
func EncodeRequest(types []uint16) []byte {
	out := make([]byte, 0, HeaderSize*len(types))
	for _, t := range types {
		p := Packet{Type: t}
		out = append(out, p.Encode()...)
	}
	return out
}

// VerifyChecksum recomputes the CRC32 of a complete raw packet and
// compares it against the embedded checksum field. The controller is not
// strict about inbound checksums, so the Decoder does not call this;
// callers can opt in.
func VerifyChecksum(raw []byte) bool {
	if len(raw) < HeaderSize {
		return false
	}
	want := binary.BigEndian.Uint32(raw[checksumOffset : checksumOffset+4])

	scratch := make([]byte, len(raw))
	copy(scratch, raw)
	for i := checksumOffset; i < checksumOffset+4; i++ {
		scratch[i] = 0
	}
	return crc32.ChecksumIEEE(scratch) == want
}
