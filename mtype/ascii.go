// Package mtype holds the cross-cutting declarative primitives spec.md
// §4.G names: bitflag/enum decoders,
// ASCII fixed-size fields, and optional/required indices. Grounded on the
// teacher's own constant-table-plus-String() style (resource.go's
// ResourceType.String()) and its explicit fixed-width, non-generic field
// handling throughout ntheader.go.
package mtype

import (
	"bytes"
	"strings"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
)

// AsciiGarbage is the result of decoding a fixed-size ASCII field whose
// padding bytes are not all zero — common in the source data, per spec.md
// §3, "due to uninitialized memory being written to disk". The garbage is
// preserved verbatim so Write can reproduce it.
type AsciiGarbage struct {
	Text string
	Pad  []byte
}

// DecodeAsciiPadded decodes field as a NUL-padded ASCII string, asserting
// every byte past the first NUL is also zero. Use when the source format
// is known to zero-initialize name buffers.
func DecodeAsciiPadded(rule string, offset int64, field []byte) (string, error) {
	n := bytes.IndexByte(field, 0)
	if n < 0 {
		return "", merr.Of(merr.BadString, rule, offset, field, "NUL-terminated")
	}
	for i := n; i < len(field); i++ {
		if field[i] != 0 {
			return "", merr.Of(merr.BadString, rule, offset, field, "zero padding")
		}
	}
	if !isASCII(field[:n]) {
		return "", merr.Of(merr.BadString, rule, offset, field, "ASCII")
	}
	return string(field[:n]), nil
}

// DecodeAsciiGarbage decodes field as a NUL-terminated ASCII string, but
// tolerates non-zero padding past the terminator, returning it as a
// sibling byte vector rather than failing.
func DecodeAsciiGarbage(rule string, offset int64, field []byte) (AsciiGarbage, error) {
	n := bytes.IndexByte(field, 0)
	if n < 0 {
		return AsciiGarbage{}, merr.Of(merr.BadString, rule, offset, field, "NUL-terminated")
	}
	if !isASCII(field[:n]) {
		return AsciiGarbage{}, merr.Of(merr.BadString, rule, offset, field, "ASCII")
	}
	pad := append([]byte(nil), field[n+1:]...)
	return AsciiGarbage{Text: string(field[:n]), Pad: pad}, nil
}

// DefaultNodeName is the literal padding pattern some formats use for
// unnamed nodes: "Default_node_name" followed by NULs.
const DefaultNodeName = "Default_node_name"

// DecodeAsciiNodeName decodes field as in DecodeAsciiPadded, except that a
// field equal to the first len(field) bytes of DefaultNodeName+NULs decodes
// as the empty name, and any other field starting with NUL is rejected,
// per spec.md §4.G's to_str_node_name.
func DecodeAsciiNodeName(rule string, offset int64, field []byte) (string, error) {
	want := defaultNodeNamePadded(len(field))
	if bytes.Equal(field, want) {
		return "", nil
	}
	n := bytes.IndexByte(field, 0)
	if n < 0 {
		return "", merr.Of(merr.BadString, rule, offset, field, "NUL-terminated")
	}
	if n > 0 {
		if !isASCII(field[:n]) {
			return "", merr.Of(merr.BadString, rule, offset, field, "ASCII")
		}
		for i := n; i < len(field); i++ {
			if field[i] != 0 {
				return "", merr.Of(merr.BadString, rule, offset, field, "zero padding")
			}
		}
		return string(field[:n]), nil
	}
	return "", merr.New(rule, offset, field, want)
}

func defaultNodeNamePadded(n int) []byte {
	buf := make([]byte, n)
	copy(buf, DefaultNodeName)
	return buf
}

// EncodeAsciiPadded is the write-side mirror of DecodeAsciiPadded: it
// writes s followed by NUL padding to fill width bytes exactly.
func EncodeAsciiPadded(s string, width int) []byte {
	buf := make([]byte, width)
	copy(buf, s)
	return buf
}

// EncodeAsciiGarbage reproduces exactly the bytes DecodeAsciiGarbage
// preserved: text, a NUL terminator, then the garbage pad, truncated or
// NUL-extended to width.
func EncodeAsciiGarbage(g AsciiGarbage, width int) []byte {
	buf := make([]byte, width)
	copy(buf, g.Text)
	copy(buf[len(g.Text)+1:], g.Pad)
	return buf
}

// EncodeAsciiNodeName mirrors DecodeAsciiNodeName: empty names re-emit the
// default-node-name padding pattern, non-empty names are NUL-padded.
func EncodeAsciiNodeName(s string, width int) []byte {
	if s == "" {
		return defaultNodeNamePadded(width)
	}
	return EncodeAsciiPadded(s, width)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}

// TrimNUL is a small helper mirroring the teacher's own
// `strings.Replace(str, "\x00", "", -1)` idiom (helper.go's
// getStringAtOffset) for callers that just want a display string.
func TrimNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
