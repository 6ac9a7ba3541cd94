// Package archive implements the container codec of spec.md §4.B: a flat
// payload region followed by a table of fixed-size entry descriptors and
// a short footer, with a version- and mode-dependent checksum and a
// length-inference quirk peculiar to "Motion" mode archives.
//
// Grounded on original_source/crates/mech3ax-archive/src/archive.rs —
// read_table/read_archive/write_archive's seek-from-end table discovery,
// the Motion length backfill, and the CRC accumulation are all carried
// over structurally, adapted to mio's CountingReader/CountingWriter and
// merr's structured errors in place of mech3ax_common's assert_that!.
package archive

import (
	"io"
	"strconv"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// Version is the footer's own version discriminant.
type Version uint32

const (
	versionOne Version = 1
	versionTwo Version = 2
)

// SubMode refines Version Two footers; it has no meaning for Version One.
type SubMode int

const (
	SubModeReader SubMode = iota
	SubModeReaderBypass
	SubModeMotion
	SubModeSounds
)

// Mode names one of the five archive dialects spec.md §4.B calls out:
// {One, Two{Reader, ReaderBypass, Motion, Sounds}}.
type Mode struct {
	version Version
	sub     SubMode
}

var (
	ModeOne          = Mode{version: versionOne}
	ModeReader       = Mode{version: versionTwo, sub: SubModeReader}
	ModeReaderBypass = Mode{version: versionTwo, sub: SubModeReaderBypass}
	ModeMotion       = Mode{version: versionTwo, sub: SubModeMotion}
	ModeSounds       = Mode{version: versionTwo, sub: SubModeSounds}
)

func (m Mode) isMotion() bool { return m.version == versionTwo && m.sub == SubModeMotion }

func (m Mode) enforcesChecksum() bool {
	return m.version == versionTwo && (m.sub == SubModeMotion || m.sub == SubModeSounds)
}

func (m Mode) verifiesChecksum() bool {
	return m.version == versionTwo && m.sub == SubModeReader
}

const entrySize = 148
const nameWidth = 64
const garbageWidth = 76

// entryRaw is the 148-byte on-disk table entry, unsplit.
type entryRaw struct {
	Start   uint32
	Length  uint32
	Name    [nameWidth]byte
	Garbage [garbageWidth]byte
}

// Meta is the decoded form of an entry's 76-byte trailing "garbage"
// region: {comment[64] ASCII-padded, filetime:u64, flags:u32}. When the
// comment bytes are not valid ASCII, Meta is nil and the Entry carries
// the raw bytes instead (the "Invalid" variant spec.md §4.B describes).
type Meta struct {
	Comment  string
	Filetime uint64
	Flags    uint32
}

// Entry is one archive member's Layer 2 metadata (not its payload, which
// is delivered separately via the read/write callbacks, matching the
// consumer contract in spec.md §6).
type Entry struct {
	Name   string
	Rename string // set by Read on a name collision; empty otherwise
	Meta   *Meta  // nil if garbage did not decode (Invalid variant)
	Raw    []byte // the raw 76 bytes, always populated
}

func decodeMeta(raw [garbageWidth]byte) *Meta {
	commentField := raw[:nameWidth]
	comment, err := mtype.DecodeAsciiPadded("entry comment", 0, commentField)
	if err != nil {
		return nil
	}
	filetime := mio.LEUint64(raw[nameWidth : nameWidth+8])
	flags := mio.LEUint32(raw[nameWidth+8 : nameWidth+12])
	return &Meta{Comment: comment, Filetime: filetime, Flags: flags}
}

func encodeMeta(m *Meta, raw []byte) {
	if m == nil {
		return
	}
	copy(raw[:nameWidth], mtype.EncodeAsciiPadded(m.Comment, nameWidth))
	mio.PutLEUint64(raw[nameWidth:nameWidth+8], m.Filetime)
	mio.PutLEUint32(raw[nameWidth+8:nameWidth+12], m.Flags)
}

type tableEntry struct {
	name   string
	start  uint32
	length uint32
	raw    [garbageWidth]byte
}

func readTable(r *mio.CountingReader, mode Mode) ([]tableEntry, uint32, error) {
	var footerLen int64
	var count uint32
	var footerChecksum uint32

	switch mode.version {
	case versionOne:
		pos, err := r.Seek(-8, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		version, err := r.U32()
		if err != nil {
			return nil, 0, err
		}
		if err := mio.AssertEq("archive version", pos+4, version, uint32(versionOne)); err != nil {
			return nil, 0, err
		}
		count, err = r.U32()
		if err != nil {
			return nil, 0, err
		}
		footerLen = 8
	default:
		pos, err := r.Seek(-12, io.SeekEnd)
		if err != nil {
			return nil, 0, err
		}
		version, err := r.U32()
		if err != nil {
			return nil, 0, err
		}
		if err := mio.AssertEq("archive version", pos+4, version, uint32(versionTwo)); err != nil {
			return nil, 0, err
		}
		count, err = r.U32()
		if err != nil {
			return nil, 0, err
		}
		footerChecksum, err = r.U32()
		if err != nil {
			return nil, 0, err
		}
		if mode.enforcesChecksum() {
			if err := mio.AssertEq("archive checksum", pos+8, footerChecksum, 0); err != nil {
				return nil, 0, err
			}
		}
		footerLen = 12
	}

	offset := footerLen + int64(count)*entrySize
	tableStartI, err := r.Seek(-offset, io.SeekEnd)
	if err != nil {
		return nil, 0, err
	}
	tableStart := uint32(tableStartI)

	entries := make([]tableEntry, count)
	for i := range entries {
		var raw entryRaw
		if err := r.Struct(&raw); err != nil {
			return nil, 0, err
		}
		start := raw.Start
		length := raw.Length
		end := start + length
		if start >= end {
			return nil, 0, merr.New("entry start", r.Prev, start, end)
		}
		if end > tableStart {
			return nil, 0, merr.New("entry end", r.Prev+4, end, tableStart)
		}
		if mode.isMotion() {
			if err := mio.AssertEq("entry length", r.Prev+4, length, 1); err != nil {
				return nil, 0, err
			}
		}
		name, err := mtype.DecodeAsciiPadded("entry name", r.Prev+8, raw.Name[:])
		if err != nil {
			return nil, 0, err
		}
		entries[i] = tableEntry{name: name, start: start, length: length, raw: raw.Garbage}
	}

	if mode.isMotion() {
		previous := tableStart
		for i := len(entries) - 1; i >= 0; i-- {
			length := previous - entries[i].start
			previous = entries[i].start
			entries[i].length = length
		}
	}

	return entries, footerChecksum, nil
}

// renameOnCollision appends "1", "2", ... before the extension of name
// until it is unique within seen, per spec.md §4.B's rename handling.
func renameOnCollision(name string, seen map[string]int) (rename string) {
	n, ok := seen[name]
	seen[name] = n + 1
	if !ok {
		return ""
	}
	dot := len(name)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			dot = i
			break
		}
	}
	candidate := name
	for i := n; ; i++ {
		candidate = name[:dot] + strconv.Itoa(i) + name[dot:]
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
	}
}

// SaveFunc receives one archive member's decoded metadata and payload, in
// table order, as its bytes are streamed from the source.
type SaveFunc func(entry Entry, data []byte) error

// Read decodes an archive from r under mode, invoking save for each
// member in table order. It is the Layer 2 half of spec.md §4.B's
// read_archive.
func Read(r *mio.CountingReader, mode Mode, save SaveFunc) error {
	entries, wantChecksum, err := readTable(r, mode)
	if err != nil {
		return err
	}

	sum := newChecksum()
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if _, err := r.Seek(int64(e.start), io.SeekStart); err != nil {
			return err
		}
		data, err := r.Bytes(int(e.length))
		if err != nil {
			return err
		}
		sum.Write(data)

		entry := Entry{Name: e.name, Raw: append([]byte(nil), e.raw[:]...)}
		entry.Meta = decodeMeta(e.raw)
		entry.Rename = renameOnCollision(e.name, seen)

		if err := save(entry, data); err != nil {
			return err
		}
	}

	if mode.verifiesChecksum() {
		if err := mio.AssertEq("archive checksum", r.Offset, sum.Sum32(), wantChecksum); err != nil {
			return err
		}
	}
	return nil
}

// LoadFunc supplies one archive member's payload bytes given the name it
// is looked up under (the entry's Rename when set, otherwise its Name;
// the table always records Name) and the writer's current offset,
// matching the consumer contract's per-entry write callback.
type LoadFunc func(name string, offset int64) ([]byte, error)

// Write encodes entries to w under mode, in order, using load to obtain
// each member's payload. It is the Layer 2 half of spec.md §4.B's
// write_archive.
func Write(w *mio.CountingWriter, entries []Entry, mode Mode, load LoadFunc) error {
	type transformed struct {
		raw entryRaw
	}
	out := make([]transformed, len(entries))
	sum := newChecksum()
	var offset uint32

	for i, e := range entries {
		name := e.Name
		if e.Rename != "" {
			name = e.Rename
		}
		data, err := load(name, w.Offset)
		if err != nil {
			return err
		}
		if err := w.Write(data); err != nil {
			return err
		}
		sum.Write(data)

		length := uint32(len(data))
		onDiskLength := length
		if mode.isMotion() {
			onDiskLength = 1
		}

		var raw entryRaw
		raw.Start = offset
		raw.Length = onDiskLength
		copy(raw.Name[:], mtype.EncodeAsciiPadded(e.Name, nameWidth))
		raw.Garbage = [garbageWidth]byte{}
		if e.Meta != nil {
			encodeMeta(e.Meta, raw.Garbage[:])
		} else {
			copy(raw.Garbage[:], e.Raw)
		}
		out[i] = transformed{raw: raw}
		offset += length
	}

	for _, t := range out {
		if err := w.Struct(&t.raw); err != nil {
			return err
		}
	}

	count := uint32(len(entries))
	switch {
	case mode.version == versionOne:
		if err := w.U32(uint32(versionOne)); err != nil {
			return err
		}
		return w.U32(count)
	case mode.sub == SubModeReader || mode.sub == SubModeReaderBypass:
		if err := w.U32(uint32(versionTwo)); err != nil {
			return err
		}
		if err := w.U32(count); err != nil {
			return err
		}
		return w.U32(sum.Sum32())
	default:
		if err := w.U32(uint32(versionTwo)); err != nil {
			return err
		}
		if err := w.U32(count); err != nil {
			return err
		}
		return w.U32(0)
	}
}
