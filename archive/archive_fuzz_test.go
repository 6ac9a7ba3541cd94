package archive

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// FuzzReadArchive is the native testing.F successor to the teacher's
// go-fuzz Fuzz(data []byte) int harness (fuzz.go): it feeds arbitrary
// corpus bytes through Read for every mode, and whenever a mode accepts
// the bytes, re-encodes the decoded entries with Write and asserts that
// reading the result back produces the same entries and payloads —
// Write(Read(x)) is stable under Read, the property the consumer
// contract in spec.md §6 actually depends on (arbitrary fuzz input need
// not be byte-identical after a round trip, since it may contain slack
// between payloads our own Write never reproduces).
func FuzzReadArchive(f *testing.F) {
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0}, 8))
	f.Add(bytes.Repeat([]byte{0}, 12))

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, mode := range []Mode{ModeOne, ModeReader, ModeReaderBypass, ModeMotion, ModeSounds} {
			type decoded struct {
				entry   Entry
				payload []byte
			}
			var first []decoded

			r := mio.NewReader(bytes.NewReader(data))
			err := Read(r, mode, func(entry Entry, payload []byte) error {
				first = append(first, decoded{entry: entry, payload: append([]byte(nil), payload...)})
				return nil
			})
			if err != nil {
				continue
			}

			entries := make([]Entry, len(first))
			for i, d := range first {
				entries[i] = d.entry
			}

			var buf bytes.Buffer
			w := mio.NewWriter(&buf)
			idx := 0
			writeErr := Write(w, entries, mode, func(name string, offset int64) ([]byte, error) {
				payload := first[idx].payload
				idx++
				return payload, nil
			})
			if writeErr != nil {
				t.Fatalf("Write() failed after Read() succeeded, reason: %v", writeErr)
			}

			var second []decoded
			r2 := mio.NewReader(bytes.NewReader(buf.Bytes()))
			err = Read(r2, mode, func(entry Entry, payload []byte) error {
				second = append(second, decoded{entry: entry, payload: append([]byte(nil), payload...)})
				return nil
			})
			if err != nil {
				t.Fatalf("Read() of rewritten archive failed, reason: %v", err)
			}

			if len(first) != len(second) {
				t.Fatalf("round trip entry count = %d, want %d", len(second), len(first))
			}
			for i := range first {
				if second[i].entry.Name != first[i].entry.Name {
					t.Fatalf("round trip entry %d name = %q, want %q", i, second[i].entry.Name, first[i].entry.Name)
				}
				if second[i].entry.Rename != first[i].entry.Rename {
					t.Fatalf("round trip entry %d rename = %q, want %q", i, second[i].entry.Rename, first[i].entry.Rename)
				}
				if !bytes.Equal(first[i].payload, second[i].payload) {
					t.Fatalf("round trip entry %d payload mismatch", i)
				}
			}
		}
	})
}
