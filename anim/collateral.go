package anim

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// AffineMatrix is the 3x4 transform matrix carried by ObjectRefC,
// preserved as an opaque 12-float block (no source for its row/column
// convention was retrieved).
type AffineMatrix [12]float32

// ObjectRef names one object collateral entry an AnimDef references.
// Grounded on mw/activation_prereq.rs's sibling object_ref module and
// support/write.rs's ObjectRefC field order.
type ObjectRef struct {
	Name        mtype.AsciiGarbage
	Pointer     uint32
	Flags       uint32
	FlagsMerged uint32
	Affine      AffineMatrix
}

type objectRefRaw struct {
	Name        [32]byte
	Zero32      uint32
	Pointer     uint32
	Flags       uint32
	FlagsMerged uint32
	Affine      [12]float32
}

// NodeRef names one node collateral entry.
type NodeRef struct {
	Name    mtype.AsciiGarbage
	Pointer uint32
}

type nodeRefRaw struct {
	Name    [32]byte
	Zero32  uint32
	Pointer uint32
}

// LightRef, PufferRef and SoundRef (dynamic sound) share the same
// 44-byte shape: name, flags, pointer, in_world.
type LightRef struct {
	Name    mtype.AsciiGarbage
	Flags   uint32
	Pointer uint32
	InWorld uint32
}

// PufferRef is LightRef's shape with the puffer flags shifted into the
// top byte, per support/write.rs's puffer.flags << 24.
type PufferRef struct {
	Name    mtype.AsciiGarbage
	Flags   uint8
	Pointer uint32
	InWorld uint32
}

// SoundRef is a dynamic sound collateral entry.
type SoundRef struct {
	Name    mtype.AsciiGarbage
	Flags   uint32
	Pointer uint32
	InWorld uint32
}

type flagRefRaw struct {
	Name    [32]byte
	Flags   uint32
	Pointer uint32
	InWorld uint32
}

// StaticSoundRef is a 36-byte name-only collateral entry.
type StaticSoundRef struct {
	Name mtype.AsciiGarbage
}

type staticSoundRefRaw struct {
	Name   [32]byte
	Zero32 uint32
}

// AnimRef is not zero-sentinel-prefixed: it names an animation this
// AnimDef can call, not a node list.
type AnimRef struct {
	Name    mtype.AsciiGarbage
	RefType uint32
	Pointer uint32
}

type animRefRaw struct {
	Name    [32]byte
	RefType uint32
	Pointer uint32
}

func readZeroSentinelObject(r *mio.CountingReader) error {
	var raw objectRefRaw
	if err := r.Struct(&raw); err != nil {
		return err
	}
	if raw != (objectRefRaw{}) {
		return merr.New("object ref zero", r.Prev, raw, "zero")
	}
	return nil
}

func readObjects(r *mio.CountingReader, n int) ([]ObjectRef, error) {
	if err := readZeroSentinelObject(r); err != nil {
		return nil, err
	}
	out := make([]ObjectRef, n)
	for i := range out {
		var raw objectRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("object ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = ObjectRef{
			Name: name, Pointer: raw.Pointer, Flags: raw.Flags,
			FlagsMerged: raw.FlagsMerged, Affine: AffineMatrix(raw.Affine),
		}
	}
	return out, nil
}

func writeObjects(w *mio.CountingWriter, refs []ObjectRef) error {
	if err := w.Struct(&objectRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		raw := objectRefRaw{
			Pointer: ref.Pointer, Flags: ref.Flags, FlagsMerged: ref.FlagsMerged,
			Affine: [12]float32(ref.Affine),
		}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readNodes(r *mio.CountingReader, n int) ([]NodeRef, error) {
	var zero nodeRefRaw
	if err := r.Struct(&zero); err != nil {
		return nil, err
	}
	if zero != (nodeRefRaw{}) {
		return nil, merr.New("node ref zero", r.Prev, zero, "zero")
	}
	out := make([]NodeRef, n)
	for i := range out {
		var raw nodeRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("node ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = NodeRef{Name: name, Pointer: raw.Pointer}
	}
	return out, nil
}

func writeNodes(w *mio.CountingWriter, refs []NodeRef) error {
	if err := w.Struct(&nodeRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		raw := nodeRefRaw{Pointer: ref.Pointer}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readLights(r *mio.CountingReader, n int) ([]LightRef, error) {
	var zero flagRefRaw
	if err := r.Struct(&zero); err != nil {
		return nil, err
	}
	if zero != (flagRefRaw{}) {
		return nil, merr.New("light ref zero", r.Prev, zero, "zero")
	}
	out := make([]LightRef, n)
	for i := range out {
		var raw flagRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("light ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = LightRef{Name: name, Flags: raw.Flags, Pointer: raw.Pointer, InWorld: raw.InWorld}
	}
	return out, nil
}

func writeLights(w *mio.CountingWriter, refs []LightRef) error {
	if err := w.Struct(&flagRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		raw := flagRefRaw{Flags: ref.Flags, Pointer: ref.Pointer, InWorld: ref.InWorld}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readPuffers(r *mio.CountingReader, n int) ([]PufferRef, error) {
	var zero flagRefRaw
	if err := r.Struct(&zero); err != nil {
		return nil, err
	}
	if zero != (flagRefRaw{}) {
		return nil, merr.New("puffer ref zero", r.Prev, zero, "zero")
	}
	out := make([]PufferRef, n)
	for i := range out {
		var raw flagRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		if raw.Flags&0x00FFFFFF != 0 {
			return nil, merr.New("puffer ref flags", r.Prev+32, raw.Flags, "low 24 bits zero")
		}
		name, err := mtype.DecodeAsciiGarbage("puffer ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = PufferRef{Name: name, Flags: uint8(raw.Flags >> 24), Pointer: raw.Pointer, InWorld: raw.InWorld}
	}
	return out, nil
}

func writePuffers(w *mio.CountingWriter, refs []PufferRef) error {
	if err := w.Struct(&flagRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		raw := flagRefRaw{Flags: uint32(ref.Flags) << 24, Pointer: ref.Pointer, InWorld: ref.InWorld}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readSounds(r *mio.CountingReader, n int) ([]SoundRef, error) {
	var zero flagRefRaw
	if err := r.Struct(&zero); err != nil {
		return nil, err
	}
	if zero != (flagRefRaw{}) {
		return nil, merr.New("dynamic sound ref zero", r.Prev, zero, "zero")
	}
	out := make([]SoundRef, n)
	for i := range out {
		var raw flagRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("dynamic sound ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = SoundRef{Name: name, Flags: raw.Flags, Pointer: raw.Pointer, InWorld: raw.InWorld}
	}
	return out, nil
}

func writeSounds(w *mio.CountingWriter, refs []SoundRef) error {
	if err := w.Struct(&flagRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		raw := flagRefRaw{Flags: ref.Flags, Pointer: ref.Pointer, InWorld: ref.InWorld}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

func readStaticSounds(r *mio.CountingReader, n int) ([]StaticSoundRef, error) {
	var zero staticSoundRefRaw
	if err := r.Struct(&zero); err != nil {
		return nil, err
	}
	if zero != (staticSoundRefRaw{}) {
		return nil, merr.New("static sound ref zero", r.Prev, zero, "zero")
	}
	out := make([]StaticSoundRef, n)
	for i := range out {
		var raw staticSoundRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("static sound ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = StaticSoundRef{Name: name}
	}
	return out, nil
}

func writeStaticSounds(w *mio.CountingWriter, refs []StaticSoundRef) error {
	if err := w.Struct(&staticSoundRefRaw{}); err != nil {
		return err
	}
	for _, ref := range refs {
		var raw staticSoundRefRaw
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}

// AnimRef has no zero sentinel since it names callable animations, not
// a node list.
func readAnimRefs(r *mio.CountingReader, n uint8) ([]AnimRef, error) {
	out := make([]AnimRef, n)
	for i := range out {
		var raw animRefRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("anim ref name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		out[i] = AnimRef{Name: name, RefType: raw.RefType, Pointer: raw.Pointer}
	}
	return out, nil
}

func writeAnimRefs(w *mio.CountingWriter, refs []AnimRef) error {
	for _, ref := range refs {
		raw := animRefRaw{RefType: ref.RefType, Pointer: ref.Pointer}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(ref.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	return nil
}
