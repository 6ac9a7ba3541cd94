package mio

import (
	"encoding/binary"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// CountingWriter wraps a sink, tracking only the write cursor (spec.md
// §4.A: "A CountingWriter wraps a sink, maintaining only offset").
type CountingWriter struct {
	w      byteWriter
	Offset int64
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

// NewWriter wraps w.
func NewWriter(w byteWriter) *CountingWriter {
	return &CountingWriter{w: w}
}

// Write writes p in full, advancing Offset. A short write is a
// merr.ShortWrite error.
func (w *CountingWriter) Write(p []byte) error {
	n, err := w.w.Write(p)
	w.Offset += int64(n)
	if err != nil || n != len(p) {
		return merr.Of(merr.ShortWrite, "write", w.Offset, n, len(p))
	}
	return nil
}

// Struct writes v's byte image. v must be a fixed-size type.
func (w *CountingWriter) Struct(v any) error {
	size := binary.Size(v)
	if size < 0 {
		panic("mio: Struct called with a non-fixed-size type")
	}
	buf := make([]byte, 0, size)
	bb := &growBuf{buf: buf}
	if err := binary.Write(bb, binary.LittleEndian, v); err != nil {
		return err
	}
	return w.Write(bb.buf)
}

type growBuf struct{ buf []byte }

func (g *growBuf) Write(p []byte) (int, error) {
	g.buf = append(g.buf, p...)
	return len(p), nil
}

// U8 writes a single byte.
func (w *CountingWriter) U8(v uint8) error {
	return w.Write([]byte{v})
}

// U16 writes a little-endian uint16.
func (w *CountingWriter) U16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.Write(buf[:])
}

// U32 writes a little-endian uint32.
func (w *CountingWriter) U32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.Write(buf[:])
}

// U64 writes a little-endian uint64.
func (w *CountingWriter) U64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.Write(buf[:])
}

// I32 writes a little-endian int32.
func (w *CountingWriter) I32(v int32) error {
	return w.U32(uint32(v))
}

// F32 writes a little-endian IEEE-754 float32.
func (w *CountingWriter) F32(v float32) error {
	return w.U32(f32Bits(v))
}
