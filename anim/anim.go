// Package anim implements the animation codec of spec.md §4.D: the
// signature/version/name-table header, the anim-info record, and the
// array of AnimDef root records each shipped anim file carries.
//
// Grounded on original_source/crates/mech3ax-anim/src/parse.rs's
// read_anim/write_anim (header, anim names, anim info, anim def
// sequence including the always-present zero entry). Variant support
// follows the same Variant-tag generalization gamez and mesh already
// use instead of parallel per-game packages.
package anim

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// Variant selects the anim file dialect. It selects only the header
// version (versionFor); record layouts and the event stream framing are
// the same for every variant.
type Variant int

const (
	VariantMW Variant = iota
	VariantPM
	VariantRC
	VariantCS
)

const signature uint32 = 0x08170616

func versionFor(v Variant) uint32 {
	switch v {
	case VariantRC:
		return 28
	case VariantMW:
		return 39
	case VariantPM, VariantCS:
		return 50
	default:
		return 39
	}
}

// gravity is the constant every shipped anim info record carries
// (original_source/crates/mech3ax-anim/src/parse.rs: GRAVITY).
const gravity float32 = -9.800000190734863

// AnimName is one entry of the anim header's name table: an 80-byte
// ASCII field with trailing garbage preserved, plus an opaque trailing
// u32 whose purpose was never named in the retrieved source (84 bytes
// in all).
type AnimName struct {
	Name    mtype.AsciiGarbage
	Unknown uint32
}

type animNameRaw struct {
	Name    [80]byte
	Unknown uint32
}

// Metadata is the decoded contents of one anim file: the name table,
// the anim-info globals, and the AnimDef array (the zero-sentinel
// first entry is implicit and not represented here).
type Metadata struct {
	Variant  Variant
	BasePtr  uint32
	WorldPtr uint32
	Names    []AnimName
	Defs     []*AnimDef
}

type animInfoRaw struct {
	Zero00   uint32
	Ptr04    uint32
	Zero08   uint16
	Count    uint16
	BasePtr  uint32
	LocCount uint32
	LocPtr   uint32
	WorldPtr uint32
	Gravity  float32
	Zero32   uint32
	Zero36   uint32
	Zero40   uint32
	Zero44   uint32
	Zero48   uint32
	Zero52   uint32
	Zero56   uint32
	One60    uint32
	Zero64   uint32
}

// Read decodes a complete anim file, grounded on read_anim.
func Read(r *mio.CountingReader, variant Variant) (*Metadata, error) {
	names, err := readNames(r, variant)
	if err != nil {
		return nil, err
	}
	count, basePtr, worldPtr, err := readInfo(r)
	if err != nil {
		return nil, err
	}

	if err := readAnimDefZero(r); err != nil {
		return nil, err
	}
	defs := make([]*AnimDef, 0, count-1)
	for i := uint16(1); i < count; i++ {
		def, err := readAnimDef(r, variant)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return &Metadata{Variant: variant, BasePtr: basePtr, WorldPtr: worldPtr, Names: names, Defs: defs}, nil
}

// Write mirrors Read exactly.
func Write(w *mio.CountingWriter, m *Metadata) error {
	if err := writeNames(w, m.Variant, m.Names); err != nil {
		return err
	}
	raw := animInfoRaw{
		Count:    uint16(len(m.Defs)) + 1,
		BasePtr:  m.BasePtr,
		WorldPtr: m.WorldPtr,
		Gravity:  gravity,
		One60:    1,
	}
	if err := w.Struct(&raw); err != nil {
		return err
	}

	if err := writeAnimDefZero(w); err != nil {
		return err
	}
	for _, def := range m.Defs {
		if err := writeAnimDef(w, m.Variant, def); err != nil {
			return err
		}
	}
	return nil
}

func readNames(r *mio.CountingReader, variant Variant) ([]AnimName, error) {
	sig, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := mio.AssertEq("anim signature", r.Prev, sig, signature); err != nil {
		return nil, err
	}
	ver, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := mio.AssertEq("anim version", r.Prev, ver, versionFor(variant)); err != nil {
		return nil, err
	}
	count, err := r.U32()
	if err != nil {
		return nil, err
	}

	names := make([]AnimName, count)
	for i := range names {
		var raw animNameRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("anim header name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		names[i] = AnimName{Name: name, Unknown: raw.Unknown}
	}
	return names, nil
}

func writeNames(w *mio.CountingWriter, variant Variant, names []AnimName) error {
	if err := w.U32(signature); err != nil {
		return err
	}
	if err := w.U32(versionFor(variant)); err != nil {
		return err
	}
	if err := w.U32(uint32(len(names))); err != nil {
		return err
	}
	for _, n := range names {
		var raw animNameRaw
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(n.Name, 80))
		raw.Unknown = n.Unknown
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readInfo(r *mio.CountingReader) (uint16, uint32, uint32, error) {
	var raw animInfoRaw
	if err := r.Struct(&raw); err != nil {
		return 0, 0, 0, err
	}
	if raw.Count == 0 {
		return 0, 0, 0, merr.New("anim count", r.Prev+10, raw.Count, "> 0")
	}
	if raw.BasePtr == 0 {
		return 0, 0, 0, merr.New("anim base pointer", r.Prev+12, raw.BasePtr, "nonzero")
	}
	if raw.LocCount != 0 || raw.LocPtr != 0 {
		return 0, 0, 0, merr.New("anim localisation", r.Prev+16, raw, "unused")
	}
	if raw.WorldPtr == 0 {
		return 0, 0, 0, merr.New("anim world pointer", r.Prev+24, raw.WorldPtr, "nonzero")
	}
	if raw.Gravity != gravity {
		return 0, 0, 0, merr.New("anim gravity", r.Prev+28, raw.Gravity, gravity)
	}
	return raw.Count, raw.BasePtr, raw.WorldPtr, nil
}
