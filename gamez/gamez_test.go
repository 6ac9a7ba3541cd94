package gamez

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/mesh"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

func buildSample() *GameZ {
	m := &mesh.Model{Variant: mesh.VariantNG}
	return &GameZ{
		Variant: VariantCS,
		Unk08:   planesUnk08, // fixed light index; the sample has no Light-class node
		Textures: []Texture{
			{Name: "hull.tif", Pointer: 1, UsesPalette: true},
		},
		Materials: []Material{
			{Flags: MaterialFree},
			{Flags: 0, Alpha: 128, Color: Color3{10, 20, 30}},
		},
		Models: []ModelSlot{
			{ExpectedIndex: 7},
			{Nonzero: true, Type: 1, BBoxMid: mesh.Vec3{1, 2, 3}, BBoxDiag: mesh.Vec3{4, 5, 6}, Model: m},
		},
		Nodes: []*Node{
			{
				Header: NodeHeader{Name: "world", Class: NodeObject3d},
				Object3d: &Object3dData{
					Identity: true,
				},
			},
		},
		NodeArraySize: 4,
	}
}

func TestGamezRoundTrip(t *testing.T) {
	g := buildSample()

	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, g); err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}

	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := Read(r, VariantCS)
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}

	if len(got.Textures) != 1 || got.Textures[0].Name != "hull.tif" {
		t.Fatalf("Read() textures = %+v", got.Textures)
	}
	if len(got.Materials) != 2 || got.Materials[0].Flags&MaterialFree == 0 {
		t.Fatalf("Read() materials = %+v", got.Materials)
	}
	if len(got.Models) != 2 || got.Models[0].ExpectedIndex != 7 || !got.Models[1].Nonzero {
		t.Fatalf("Read() models = %+v", got.Models)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].Header.Name != "world" || got.Nodes[0].Object3d == nil || !got.Nodes[0].Object3d.Identity {
		t.Fatalf("Read() nodes = %+v", got.Nodes)
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

func TestGamezHeaderRejectsBadSignature(t *testing.T) {
	g := buildSample()
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, g); err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}
	corrupt := append([]byte(nil), buf.Bytes()...)
	corrupt[0] ^= 0xFF

	r := mio.NewReader(bytes.NewReader(corrupt))
	if _, err := Read(r, VariantCS); err == nil {
		t.Fatalf("Read() with corrupted signature succeeded, want error")
	}
}

func TestGamezMaterialFreeSlotRoundTrip(t *testing.T) {
	g := buildSample()
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := Write(w, g); err != nil {
		t.Fatalf("Write() failed, reason: %v", err)
	}
	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := Read(r, VariantCS)
	if err != nil {
		t.Fatalf("Read() failed, reason: %v", err)
	}
	if got.Materials[0].Flags != MaterialFree {
		t.Fatalf("free material flags = %v, want MaterialFree", got.Materials[0].Flags)
	}
}
