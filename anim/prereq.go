package anim

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// PrereqKind discriminates the body shape following an activation
// prerequisite's 8-byte header, grounded on mw/activation_prereq.rs's
// ActivationPrereq enum (Animation = 1, Object = 2, Parent = 3).
type PrereqKind uint32

const (
	PrereqAnimation PrereqKind = 1
	PrereqObject    PrereqKind = 2
	PrereqParent    PrereqKind = 3
)

// ActivationPrereq is one entry of an AnimDef's prerequisite stream: a
// heterogeneous list an AnimDef must satisfy (at least PrereqMinToSatisfy
// of them) before it may run.
type ActivationPrereq struct {
	Optional bool
	Kind     PrereqKind

	// Animation
	AnimName mtype.AsciiGarbage

	// Object / Parent
	Active      bool
	ObjectName  mtype.AsciiGarbage
	Pointer     uint32
}

type prereqHeaderRaw struct {
	Optional uint32
	Kind     uint32
}

type prereqAnimRaw struct {
	Name   [32]byte
	Zero32 uint32
	Zero36 uint32
}

type prereqObjRaw struct {
	Active  uint32
	Name    [32]byte
	Pointer uint32
}

func readActivPrereqs(r *mio.CountingReader, n uint8) ([]ActivationPrereq, error) {
	out := make([]ActivationPrereq, n)
	for i := range out {
		var hdr prereqHeaderRaw
		if err := r.Struct(&hdr); err != nil {
			return nil, err
		}
		if err := mio.AssertIn("activation prereq optional", r.Prev, hdr.Optional, 0, 1); err != nil {
			return nil, err
		}
		kind := PrereqKind(hdr.Kind)
		entry := ActivationPrereq{Optional: hdr.Optional != 0, Kind: kind}
		switch kind {
		case PrereqAnimation:
			var raw prereqAnimRaw
			if err := r.Struct(&raw); err != nil {
				return nil, err
			}
			if raw.Zero32 != 0 || raw.Zero36 != 0 {
				return nil, merr.New("activation prereq anim reserved", r.Prev+32, raw, "zero")
			}
			name, err := mtype.DecodeAsciiGarbage("activation prereq anim name", r.Prev, raw.Name[:])
			if err != nil {
				return nil, err
			}
			entry.AnimName = name
		case PrereqObject, PrereqParent:
			var raw prereqObjRaw
			if err := r.Struct(&raw); err != nil {
				return nil, err
			}
			if err := mio.AssertIn("activation prereq active", r.Prev, raw.Active, 0, 1); err != nil {
				return nil, err
			}
			name, err := mtype.DecodeAsciiGarbage("activation prereq object name", r.Prev+4, raw.Name[:])
			if err != nil {
				return nil, err
			}
			entry.Active = raw.Active != 0
			entry.ObjectName = name
			entry.Pointer = raw.Pointer
		default:
			return nil, merr.Of(merr.BadDiscriminant, "activation prereq kind", r.Prev+4, hdr.Kind, nil)
		}
		out[i] = entry
	}
	return out, nil
}

func writeActivPrereqs(w *mio.CountingWriter, prereqs []ActivationPrereq) error {
	for _, p := range prereqs {
		optional := uint32(0)
		if p.Optional {
			optional = 1
		}
		if err := w.Struct(&prereqHeaderRaw{Optional: optional, Kind: uint32(p.Kind)}); err != nil {
			return err
		}
		switch p.Kind {
		case PrereqAnimation:
			var raw prereqAnimRaw
			copy(raw.Name[:], mtype.EncodeAsciiGarbage(p.AnimName, 32))
			if err := w.Struct(&raw); err != nil {
				return err
			}
		case PrereqObject, PrereqParent:
			active := uint32(0)
			if p.Active {
				active = 1
			}
			raw := prereqObjRaw{Active: active, Pointer: p.Pointer}
			copy(raw.Name[:], mtype.EncodeAsciiGarbage(p.ObjectName, 32))
			if err := w.Struct(&raw); err != nil {
				return err
			}
		default:
			return merr.Of(merr.Unsupported, "activation prereq kind", w.Offset, p.Kind, nil)
		}
	}
	return nil
}
