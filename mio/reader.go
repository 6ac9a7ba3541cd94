// Package mio is the byte-stream substrate (spec.md §4.A): an
// offset-tracking reader/writer pair, typed primitive and fixed-size
// record I/O, and the three assertion forms (equality/range, bitflag,
// enum) every codec package builds on. It generalizes the teacher's
// mmap-backed, whole-file `structUnpack`/`ReadUint32` family (helper.go)
// into a reader/writer pair over any io.Reader/io.Writer, since archive,
// anim, and gamez files are streamed rather than always mmap'd.
package mio

import (
	"encoding/binary"
	"io"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

func init() {
	// Only little-endian architectures are supported (spec.md §4.A). This
	// is checked once, at process start, the closest Go equivalent to a
	// build-time assertion.
	var n uint16 = 1
	b := (*[2]byte)(ptrOf(&n))
	if b[0] != 1 {
		panic("mio: this module only supports little-endian architectures")
	}
}

// CountingReader wraps a sequential byte source, tracking the current read
// cursor (Offset) and the cursor at the start of the most recent read
// (Prev) — the two fields spec.md §4.A names.
type CountingReader struct {
	r      io.Reader
	s      io.Seeker // non-nil when the underlying source supports Seek
	Offset int64
	Prev   int64
}

// NewReader wraps r. If r also implements io.Seeker, Seek is available.
func NewReader(r io.Reader) *CountingReader {
	cr := &CountingReader{r: r}
	if s, ok := r.(io.Seeker); ok {
		cr.s = s
	}
	return cr
}

// Read reads exactly len(p) bytes, advancing Prev then Offset. A short
// read is a merr.ShortRead error, never a partial, silently-accepted read.
func (r *CountingReader) Read(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.Prev = r.Offset
	r.Offset += int64(n)
	if err != nil {
		return merr.Of(merr.ShortRead, "read", r.Prev, n, len(p))
	}
	return nil
}

// Seek repositions the cursor. Only available when the wrapped source is
// an io.Seeker (spec.md §4.A: "seek (Read+Seek sources only)").
func (r *CountingReader) Seek(offset int64, whence int) (int64, error) {
	if r.s == nil {
		return 0, io.ErrClosedPipe
	}
	n, err := r.s.Seek(offset, whence)
	if err != nil {
		return n, err
	}
	r.Offset = n
	r.Prev = n
	return n, nil
}

// Struct reads a fixed-size record's byte window directly into v's memory
// image via encoding/binary, little-endian. v must be a pointer to a
// fixed-size type (no strings, slices, or maps).
func (r *CountingReader) Struct(v any) error {
	size := binary.Size(v)
	if size < 0 {
		panic("mio: Struct called with a non-fixed-size type")
	}
	buf := make([]byte, size)
	if err := r.Read(buf); err != nil {
		return err
	}
	return binary.Read(bytesReader(buf), binary.LittleEndian, v)
}

// U8 reads a single byte.
func (r *CountingReader) U8() (uint8, error) {
	var buf [1]byte
	if err := r.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// U16 reads a little-endian uint16.
func (r *CountingReader) U16() (uint16, error) {
	var buf [2]byte
	if err := r.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// U32 reads a little-endian uint32.
func (r *CountingReader) U32() (uint32, error) {
	var buf [4]byte
	if err := r.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// U64 reads a little-endian uint64.
func (r *CountingReader) U64() (uint64, error) {
	var buf [8]byte
	if err := r.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// I32 reads a little-endian int32.
func (r *CountingReader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 float32.
func (r *CountingReader) F32() (float32, error) {
	v, err := r.U32()
	return f32FromBits(v), err
}

// Bytes reads n raw bytes.
func (r *CountingReader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// AssertEnd ensures no trailing bytes remain by comparing Offset to size,
// the total known length of the stream. It performs no read.
func (r *CountingReader) AssertEnd(size int64) error {
	if r.Offset != size {
		return merr.New("end of stream", r.Offset, r.Offset, size)
	}
	return nil
}
