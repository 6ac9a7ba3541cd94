package mtype

import (
	"bytes"
	"testing"
)

func TestAsciiPaddedRoundTrip(t *testing.T) {
	field := EncodeAsciiPadded("cockpit.flt", 32)
	s, err := DecodeAsciiPadded("name", 0, field)
	if err != nil {
		t.Fatalf("DecodeAsciiPadded() failed, reason: %v", err)
	}
	if s != "cockpit.flt" {
		t.Fatalf("DecodeAsciiPadded() = %q, want %q", s, "cockpit.flt")
	}
}

func TestAsciiPaddedRejectsGarbage(t *testing.T) {
	field := []byte("abc\x00junk")
	if _, err := DecodeAsciiPadded("name", 0, field); err == nil {
		t.Fatalf("DecodeAsciiPadded() on garbage padding succeeded, want error")
	}
}

func TestAsciiGarbageRoundTrip(t *testing.T) {
	field := []byte("abc\x00junk")
	g, err := DecodeAsciiGarbage("name", 0, field)
	if err != nil {
		t.Fatalf("DecodeAsciiGarbage() failed, reason: %v", err)
	}
	if g.Text != "abc" || !bytes.Equal(g.Pad, []byte("junk")) {
		t.Fatalf("DecodeAsciiGarbage() = %+v, want Text=abc Pad=junk", g)
	}
	out := EncodeAsciiGarbage(g, len(field))
	if !bytes.Equal(out, field) {
		t.Fatalf("EncodeAsciiGarbage() = %q, want %q", out, field)
	}
}

func TestAsciiNodeNameDefault(t *testing.T) {
	field := make([]byte, 36)
	copy(field, DefaultNodeName)
	s, err := DecodeAsciiNodeName("name", 0, field)
	if err != nil {
		t.Fatalf("DecodeAsciiNodeName() failed, reason: %v", err)
	}
	if s != "" {
		t.Fatalf("DecodeAsciiNodeName() = %q, want empty", s)
	}
	out := EncodeAsciiNodeName("", 36)
	if !bytes.Equal(out, field) {
		t.Fatalf("EncodeAsciiNodeName() = %q, want %q", out, field)
	}
}

func TestIndexORoundTrip(t *testing.T) {
	v, err := DecodeIndexO("idx", 0, -1, 10)
	if err != nil || v.IsSet() {
		t.Fatalf("DecodeIndexO(-1) = %v, %v, want NoIndex", v, err)
	}
	v, err = DecodeIndexO("idx", 0, 5, 10)
	if err != nil || !v.IsSet() || v != 5 {
		t.Fatalf("DecodeIndexO(5) = %v, %v, want 5", v, err)
	}
	if _, err := DecodeIndexO("idx", 0, 10, 10); err == nil {
		t.Fatalf("DecodeIndexO(10, bound=10) succeeded, want out-of-range error")
	}
}
