package archive

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

func buildArchive(t *testing.T, mode Mode, payloads [][]byte, names []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	entries := make([]Entry, len(payloads))
	for i, name := range names {
		entries[i] = Entry{Name: name}
	}
	idx := 0
	err := Write(w, entries, mode, func(name string, offset int64) ([]byte, error) {
		data := payloads[idx]
		idx++
		return data, nil
	})
	if err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}
	return buf.Bytes()
}

func TestArchiveOneRoundTrip(t *testing.T) {
	payloads := [][]byte{[]byte("hello"), []byte("world!!")}
	names := []string{"a.txt", "b.txt"}
	data := buildArchive(t, ModeOne, payloads, names)

	r := mio.NewReader(bytes.NewReader(data))
	var got [][]byte
	var gotNames []string
	err := Read(r, ModeOne, func(entry Entry, payload []byte) error {
		got = append(got, append([]byte(nil), payload...))
		gotNames = append(gotNames, entry.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}
	if len(got) != 2 || string(got[0]) != "hello" || string(got[1]) != "world!!" {
		t.Fatalf("Read() payloads = %v, want [hello world!!]", got)
	}
	if gotNames[0] != "a.txt" || gotNames[1] != "b.txt" {
		t.Fatalf("Read() names = %v", gotNames)
	}
}

func TestArchiveReaderChecksumRoundTrip(t *testing.T) {
	payloads := [][]byte{[]byte("payload-one"), []byte("payload-two")}
	names := []string{"one.bin", "two.bin"}
	data := buildArchive(t, ModeReader, payloads, names)

	r := mio.NewReader(bytes.NewReader(data))
	count := 0
	err := Read(r, ModeReader, func(entry Entry, payload []byte) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}
	if count != 2 {
		t.Fatalf("Read() saved %d entries, want 2", count)
	}
}

func TestArchiveMotionLengthBackfill(t *testing.T) {
	payloads := [][]byte{[]byte("aaa"), []byte("bb"), []byte("c")}
	names := []string{"m1", "m2", "m3"}
	data := buildArchive(t, ModeMotion, payloads, names)

	r := mio.NewReader(bytes.NewReader(data))
	var lengths []int
	err := Read(r, ModeMotion, func(entry Entry, payload []byte) error {
		lengths = append(lengths, len(payload))
		return nil
	})
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}
	if len(lengths) != 3 || lengths[0] != 3 || lengths[1] != 2 || lengths[2] != 1 {
		t.Fatalf("Read() lengths = %v, want [3 2 1]", lengths)
	}
}

func TestArchiveEmpty(t *testing.T) {
	data := buildArchive(t, ModeOne, nil, nil)
	r := mio.NewReader(bytes.NewReader(data))
	called := false
	err := Read(r, ModeOne, func(entry Entry, payload []byte) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Read() on empty archive failed, reason: %v", err)
	}
	if called {
		t.Fatalf("Read() on empty archive invoked save")
	}
}

func TestRenameOnCollision(t *testing.T) {
	seen := map[string]int{}
	if got := renameOnCollision("a.txt", seen); got != "" {
		t.Fatalf("first occurrence renamed to %q, want empty", got)
	}
	if got := renameOnCollision("a.txt", seen); got != "a1.txt" {
		t.Fatalf("second occurrence renamed to %q, want a1.txt", got)
	}
	if got := renameOnCollision("a.txt", seen); got != "a2.txt" {
		t.Fatalf("third occurrence renamed to %q, want a2.txt", got)
	}
}
