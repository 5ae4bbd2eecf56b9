package packet

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	p := Packet{Type: 6, Counter: 42, Payload: []byte{0x08, 0x01}}
	raw := p.Encode()

	if len(raw) != HeaderSize+2 {
		t.Fatalf("encoded length = %d, want %d", len(raw), HeaderSize+2)
	}
	if got := binary.BigEndian.Uint32(raw[0:4]); got != Magic {
		t.Errorf("magic = %#x, want %#x", got, Magic)
	}
	if got := binary.BigEndian.Uint32(raw[8:12]); got != 42 {
		t.Errorf("counter = %d, want 42", got)
	}
	if got := binary.BigEndian.Uint16(raw[16:18]); got != 6 {
		t.Errorf("type = %d, want 6", got)
	}
	if got := binary.BigEndian.Uint16(raw[18:20]); got != 2 {
		t.Errorf("length = %d, want 2", got)
	}
	if !bytes.Equal(raw[HeaderSize:], p.Payload) {
		t.Error("payload mismatch")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	p := Packet{Type: 3, Payload: []byte("abc")}
	if !bytes.Equal(p.Encode(), p.Encode()) {
		t.Error("identical input produced different bytes")
	}
}

func TestChecksum(t *testing.T) {
	p := Packet{Type: 1, Payload: []byte{0x10, 0x02}}
	raw := p.Encode()

	if !VerifyChecksum(raw) {
		t.Error("VerifyChecksum() = false for freshly encoded packet")
	}

	raw[HeaderSize] ^= 0xFF
	if VerifyChecksum(raw) {
		t.Error("VerifyChecksum() = true for corrupted payload")
	}

	if VerifyChecksum(raw[:10]) {
		t.Error("VerifyChecksum() = true for truncated packet")
	}
}

func TestEncodeRequest(t *testing.T) {
	raw := EncodeRequest([]uint16{0, 3})

	if len(raw) != 2*HeaderSize {
		t.Fatalf("request length = %d, want %d", len(raw), 2*HeaderSize)
	}

	// Each sub-packet is an empty-payload packet for one type.
	if got := binary.BigEndian.Uint16(raw[16:18]); got != 0 {
		t.Errorf("first type = %d, want 0", got)
	}
	if got := binary.BigEndian.Uint16(raw[18:20]); got != 0 {
		t.Errorf("first length = %d, want 0", got)
	}
	if got := binary.BigEndian.Uint16(raw[HeaderSize+16 : HeaderSize+18]); got != 3 {
		t.Errorf("second type = %d, want 3", got)
	}
	if !VerifyChecksum(raw[:HeaderSize]) || !VerifyChecksum(raw[HeaderSize:]) {
		t.Error("request sub-packet checksum invalid")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	payload := []byte{0x08, 0xd2, 0x09}
	p := Packet{Type: 48, Counter: 7, Payload: payload}

	d := NewDecoder()
	d.Feed(p.Encode())

	e, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if e == nil {
		t.Fatal("Next() = nil, want entry")
	}
	if e.Type != 48 {
		t.Errorf("type = %d, want 48", e.Type)
	}
	if e.Counter != 7 {
		t.Errorf("counter = %d, want 7", e.Counter)
	}
	if !bytes.Equal(e.Payload, payload) {
		t.Errorf("payload = %v, want %v", e.Payload, payload)
	}

	// Stream drained.
	e, err = d.Next()
	if err != nil || e != nil {
		t.Errorf("Next() after drain = (%v, %v), want (nil, nil)", e, err)
	}
}

func TestDecodeSplitAcrossReads(t *testing.T) {
	p := Packet{Type: 2, Payload: []byte("settings blob")}
	raw := p.Encode()

	d := NewDecoder()
	for i := 0; i < len(raw); i++ {
		d.Feed(raw[i : i+1])

		e, err := d.Next()
		if err != nil {
			t.Fatalf("Next() at byte %d error = %v", i, err)
		}
		if i < len(raw)-1 {
			if e != nil {
				t.Fatalf("Next() at byte %d returned entry early", i)
			}
			continue
		}
		if e == nil {
			t.Fatal("Next() = nil after final byte")
		}
		if e.Type != 2 {
			t.Errorf("type = %d, want 2", e.Type)
		}
	}
}

func TestDecodeMultipleFramesPerChunk(t *testing.T) {
	a := Packet{Type: 0, Payload: []byte{0x01}}
	b := Packet{Type: 6, Payload: []byte{0x02, 0x03}}

	d := NewDecoder()
	d.Feed(append(a.Encode(), b.Encode()...))

	first, err := d.Next()
	if err != nil || first == nil {
		t.Fatalf("first Next() = (%v, %v)", first, err)
	}
	second, err := d.Next()
	if err != nil || second == nil {
		t.Fatalf("second Next() = (%v, %v)", second, err)
	}
	if first.Type != 0 || second.Type != 6 {
		t.Errorf("types = %d, %d; want 0, 6", first.Type, second.Type)
	}
	if d.Buffered() != 0 {
		t.Errorf("Buffered() = %d, want 0", d.Buffered())
	}
}

func TestDecodeBadPreamble(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte{0xde, 0xad, 0xbe, 0xef, 0x00})

	if _, err := d.Next(); err != ErrBadPreamble {
		t.Errorf("Next() error = %v, want %v", err, ErrBadPreamble)
	}

	d.Reset()
	if d.Buffered() != 0 {
		t.Errorf("Buffered() after Reset = %d, want 0", d.Buffered())
	}
}

func TestDecodeOversizedLength(t *testing.T) {
	raw := (&Packet{Type: 0}).Encode()
	binary.BigEndian.PutUint16(raw[18:20], uint16(MaxPayloadLen+1))

	d := NewDecoder()
	d.Feed(raw)

	if _, err := d.Next(); err != ErrPayloadTooLarge {
		t.Errorf("Next() error = %v, want %v", err, ErrPayloadTooLarge)
	}
}

func TestDecodePartialHeaderIsNotAnError(t *testing.T) {
	raw := (&Packet{Type: 5}).Encode()

	d := NewDecoder()
	d.Feed(raw[:HeaderSize-1])

	e, err := d.Next()
	if err != nil {
		t.Errorf("Next() error = %v, want nil for incomplete header", err)
	}
	if e != nil {
		t.Error("Next() returned entry from incomplete header")
	}
}
