package anim

import (
	"github.com/TerranMechworks/mech3ax-sub003/anim/event"
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// SeqDef flags, grounded on common/seq_def/read.rs's
// SEQ_ACTIVATION_INITIAL/SEQ_ACTIVATION_ON_CALL constants.
const (
	seqFlagInitial uint32 = 1 << 0
	seqFlagOnCall  uint32 = 1 << 1
)

const seqKnownFlags = seqFlagInitial | seqFlagOnCall

// resetSequenceName is the literal name every AnimDefC.reset_state
// SeqDefInfoC carries. Ungrounded exact casing/value; chosen to be
// self-descriptive since no retrieved source named it.
const resetSequenceName = "reset_state"

// SeqActivation selects whether a sequence runs automatically when its
// owning anim def starts, or only when explicitly called.
type SeqActivation int

const (
	SeqActivationInitial SeqActivation = iota
	SeqActivationOnCall
)

// SeqDef is one named event sequence an AnimDef can run.
type SeqDef struct {
	Name       mtype.AsciiGarbage
	Activation SeqActivation
	Pointer    uint32
	Events     []*event.Event
}

// ResetState is the reset_state sequence every AnimDef carries
// (embedded as the AnimDefC.reset_state SeqDefInfoC), run when the anim
// def resets its nodes to their initial values.
type ResetState struct {
	Pointer uint32
	Events  []*event.Event
}

func sizeEvents(events []*event.Event) (uint32, error) {
	var total uint32
	for _, ev := range events {
		size, err := event.Size(ev)
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func readEventStream(r *mio.CountingReader, total uint32, ctx event.Context) ([]*event.Event, error) {
	if total == 0 {
		return nil, nil
	}
	start := r.Offset
	var events []*event.Event
	for uint32(r.Offset-start) < total {
		ev, err := event.Read(r, ctx)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if got := uint32(r.Offset - start); got != total {
		return nil, merr.New("event stream size", start, got, total)
	}
	return events, nil
}

func writeEventStream(w *mio.CountingWriter, events []*event.Event) error {
	for _, ev := range events {
		if err := event.Write(w, ev); err != nil {
			return err
		}
	}
	return nil
}

func defContext(def *AnimDef) event.Context {
	return event.Context{AnimName: def.AnimName.Text, AnimDefName: def.Name}
}

func readResetState(r *mio.CountingReader, def *AnimDef, raw seqDefInfoRaw, variant Variant) (ResetState, error) {
	var want [32]byte
	copy(want[:], mtype.EncodeAsciiPadded(resetSequenceName, 32))
	if raw.Name != want {
		return ResetState{}, merr.New("reset state name", r.Offset, raw.Name, resetSequenceName)
	}
	if raw.Size == 0 {
		return ResetState{Pointer: raw.Pointer}, nil
	}
	events, err := readEventStream(r, raw.Size, defContext(def))
	if err != nil {
		return ResetState{}, err
	}
	return ResetState{Pointer: raw.Pointer, Events: events}, nil
}

func writeResetState(w *mio.CountingWriter, def *AnimDef, variant Variant) error {
	return writeEventStream(w, def.ResetState.Events)
}

func readSequenceDefs(r *mio.CountingReader, def *AnimDef, count uint8, variant Variant) ([]SeqDef, error) {
	out := make([]SeqDef, count)
	for i := range out {
		var raw seqDefInfoRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := mtype.DecodeAsciiGarbage("seq def name", r.Prev, raw.Name[:])
		if err != nil {
			return nil, err
		}
		flags, err := mio.AssertBits("seq def flags", r.Prev+32, raw.Flags, seqKnownFlags)
		if err != nil {
			return nil, err
		}
		if raw.Zero36 != ([20]byte{}) {
			return nil, merr.New("seq def reserved", r.Prev+36, raw.Zero36, "zero")
		}
		activation := SeqActivationOnCall
		if flags&seqFlagInitial != 0 {
			activation = SeqActivationInitial
		}

		events, err := readEventStream(r, raw.Size, defContext(def))
		if err != nil {
			return nil, err
		}
		out[i] = SeqDef{Name: name, Activation: activation, Pointer: raw.Pointer, Events: events}
	}
	return out, nil
}

func writeSequenceDefs(w *mio.CountingWriter, def *AnimDef, variant Variant) error {
	for _, seq := range def.Sequences {
		size, err := sizeEvents(seq.Events)
		if err != nil {
			return err
		}
		var flags uint32
		if seq.Activation == SeqActivationInitial {
			flags = seqFlagInitial
		}
		raw := seqDefInfoRaw{Flags: flags, Pointer: seq.Pointer, Size: size}
		copy(raw.Name[:], mtype.EncodeAsciiGarbage(seq.Name, 32))
		if err := w.Struct(&raw); err != nil {
			return err
		}
		if err := writeEventStream(w, seq.Events); err != nil {
			return err
		}
	}
	return nil
}
