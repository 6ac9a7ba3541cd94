package anim

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/anim/event"
	"github.com/TerranMechworks/mech3ax-sub003/mesh"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

func buildSample() *Metadata {
	def := &AnimDef{
		AnimName:     mtype.AsciiGarbage{Text: "vtol1"},
		Name:         "m6_start_animation",
		AnimRootName: mtype.AsciiGarbage{Text: "world"},
		Active:       true,
		Objects: []ObjectRef{
			{Name: mtype.AsciiGarbage{Text: "fuselage"}},
		},
		Sequences: []SeqDef{
			{
				Name:       mtype.AsciiGarbage{Text: "run"},
				Activation: SeqActivationInitial,
				Events: []*event.Event{
					{
						Type:      event.ObjectScaleStateT,
						StartTime: 0.5,
						Body:      &event.ObjectScaleState{Scale: mesh.Vec3{X: 1, Y: 1, Z: 1}, NodeIndex: 3},
					},
					{
						Type:      event.LoopT,
						StartTime: 1.0,
						Body:      &event.Loop{RepeatCount: -1},
					},
				},
			},
		},
	}
	return &Metadata{
		Variant:  VariantCS,
		BasePtr:  1,
		WorldPtr: 2,
		Names:    []AnimName{{Name: mtype.AsciiGarbage{Text: "anim01"}, Unknown: 7}},
		Defs:     []*AnimDef{def},
	}
}

func TestAnimRoundTrip(t *testing.T) {
	m := buildSample()

	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, m); err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}

	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := Read(r, VariantCS)
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}

	if len(got.Names) != 1 || got.Names[0].Name.Text != "anim01" {
		t.Fatalf("Read() names = %+v", got.Names)
	}
	if len(got.Defs) != 1 || got.Defs[0].Name != "m6_start_animation" {
		t.Fatalf("Read() defs = %+v", got.Defs)
	}
	if len(got.Defs[0].Objects) != 1 || got.Defs[0].Objects[0].Name.Text != "fuselage" {
		t.Fatalf("Read() objects = %+v", got.Defs[0].Objects)
	}
	if len(got.Defs[0].Sequences) != 1 || len(got.Defs[0].Sequences[0].Events) != 2 {
		t.Fatalf("Read() sequences = %+v", got.Defs[0].Sequences)
	}
	loop, ok := got.Defs[0].Sequences[0].Events[1].Body.(*event.Loop)
	if !ok || loop.RepeatCount != -1 {
		t.Fatalf("Read() loop event = %+v", got.Defs[0].Sequences[0].Events[1].Body)
	}

	var buf2 bytes.Buffer
	w2 := mio.NewWriter(&buf2)
	if err := Write(w2, got); err != nil {
		t.Fatalf("second Write() failed, reason: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
		t.Fatalf("round trip not byte-identical: %d vs %d bytes", buf.Len(), buf2.Len())
	}
}

func TestAnimRejectsBadSignature(t *testing.T) {
	m := buildSample()
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, m); err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}
	corrupt := append([]byte(nil), buf.Bytes()...)
	corrupt[0] ^= 0xFF

	r := mio.NewReader(bytes.NewReader(corrupt))
	if _, err := Read(r, VariantCS); err == nil {
		t.Fatalf("Read() with corrupted signature succeeded, want error")
	}
}

func TestAnimRejectsUnsupportedEventType(t *testing.T) {
	m := buildSample()
	m.Defs[0].Sequences[0].Events[0] = &event.Event{Type: event.Sound, StartTime: 0}

	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, m); err == nil {
		t.Fatalf("Write() with unimplemented event body succeeded, want error")
	}
}
