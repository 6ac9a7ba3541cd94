package mio

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"unsafe"
)

func ptrOf(p *uint16) unsafe.Pointer { return unsafe.Pointer(p) }

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

func f32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

func f32Bits(v float32) uint32 { return math.Float32bits(v) }

// LEUint32 and LEUint64 decode a little-endian primitive out of an
// in-memory byte window that isn't coming off a CountingReader — e.g. a
// sub-field of a larger fixed-size record already read as raw bytes
// (archive.Meta's filetime/flags inside the 76-byte garbage block).
func LEUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// LEUint64 is LEUint32's 64-bit counterpart.
func LEUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// PutLEUint32 and PutLEUint64 are LEUint32/LEUint64's write-side mirrors.
func PutLEUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// PutLEUint64 is PutLEUint32's 64-bit counterpart.
func PutLEUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
