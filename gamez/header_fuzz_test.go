package gamez

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// FuzzReadHeader is the native testing.F successor to the teacher's
// go-fuzz Fuzz(data []byte) int harness (fuzz.go): it feeds arbitrary
// corpus bytes through readHeader for every variant, and whenever a
// variant accepts the bytes, re-encodes the decoded header with
// writeHeader and asserts the result is byte-identical to what was
// consumed, since writeHeader only ever serializes the fields readHeader
// already validated.
func FuzzReadHeader(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, headerSize))
	f.Add(bytes.Repeat([]byte{0xff}, headerSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, variant := range []Variant{VariantMW, VariantPM, VariantRC, VariantCS} {
			r := mio.NewReader(bytes.NewReader(data))
			h, _, err := readHeader(r, variant)
			if err != nil {
				continue
			}

			var buf bytes.Buffer
			w := mio.NewWriter(&buf)
			if _, err := writeHeader(w, variant, h); err != nil {
				t.Fatalf("writeHeader() failed after readHeader() succeeded, reason: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), data[:headerSize]) {
				t.Fatalf("writeHeader() output = %x, want %x", buf.Bytes(), data[:headerSize])
			}
		}
	})
}
