package mio

import (
	"bytes"
	"testing"
)

func TestCountingReaderTracksOffsets(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 0, 0, 0, 2, 0, 0, 0}))

	v, err := r.U32()
	if err != nil {
		t.Fatalf("U32() failed, reason: %v", err)
	}
	if v != 1 {
		t.Fatalf("U32() = %d, want 1", v)
	}
	if r.Prev != 0 || r.Offset != 4 {
		t.Fatalf("Prev/Offset = %d/%d, want 0/4", r.Prev, r.Offset)
	}

	v, err = r.U32()
	if err != nil {
		t.Fatalf("U32() failed, reason: %v", err)
	}
	if v != 2 {
		t.Fatalf("U32() = %d, want 2", v)
	}
	if r.Prev != 4 || r.Offset != 8 {
		t.Fatalf("Prev/Offset = %d/%d, want 4/8", r.Prev, r.Offset)
	}
}

func TestCountingReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	if _, err := r.U32(); err == nil {
		t.Fatalf("U32() on a 2-byte source succeeded, want short read error")
	}
}

func TestCountingWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.U32(0xDEADBEEF); err != nil {
		t.Fatalf("U32() failed, reason: %v", err)
	}
	if err := w.F32(1.5); err != nil {
		t.Fatalf("F32() failed, reason: %v", err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	u, err := r.U32()
	if err != nil || u != 0xDEADBEEF {
		t.Fatalf("U32() = %#x, %v, want 0xDEADBEEF, nil", u, err)
	}
	f, err := r.F32()
	if err != nil || f != 1.5 {
		t.Fatalf("F32() = %v, %v, want 1.5, nil", f, err)
	}
}

func TestAssertBitsRejectsUnknown(t *testing.T) {
	const known uint32 = 0x3
	if _, err := AssertBits("flags", 0, uint32(0x1), known); err != nil {
		t.Fatalf("AssertBits(0x1) failed, reason: %v", err)
	}
	if _, err := AssertBits("flags", 0, uint32(0x4), known); err == nil {
		t.Fatalf("AssertBits(0x4) succeeded, want bad-discriminant error")
	}
}

func TestAssertRange(t *testing.T) {
	if err := AssertRange("x", 0, 5, 0, 10); err != nil {
		t.Fatalf("AssertRange(5, 0, 10) failed, reason: %v", err)
	}
	if err := AssertRange("x", 0, 11, 0, 10); err == nil {
		t.Fatalf("AssertRange(11, 0, 10) succeeded, want error")
	}
}
