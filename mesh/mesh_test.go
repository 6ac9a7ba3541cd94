package mesh

import (
	"bytes"
	"testing"

	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

func TestModelBodyRoundTripNG(t *testing.T) {
	m := &Model{
		Variant:  VariantNG,
		Vertices: []Vec3{{1, 2, 3}, {4, 5, 6}},
		Normals:  []Vec3{{0, 1, 0}},
		Polygons: []Polygon{
			{
				Flags:         PolygonNormals,
				VertexIndices: []int32{0, 1},
				NormalIndices: []int32{0, 0},
				Materials:     []MaterialRef{{MaterialIndex: 3, UVCoords: []UvCoord{{U: 0.5, V: 0.5}, {U: 1, V: 0}}}},
				VertexColors:  []Color{{R: 1, G: 1, B: 1}, {R: 0, G: 0, B: 0}},
			},
		},
	}

	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := WriteBody(w, m); err != nil {
		t.Fatalf("WriteBody() failed, reason: %v", err)
	}

	if got := Size(m); got != uint32(buf.Len()) {
		t.Fatalf("Size() = %d, want %d (actual written bytes)", got, buf.Len())
	}

	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	got := &Model{Variant: VariantNG}
	err := ReadBody(r, got, 2, 1, 0, 0, 1, 0, nil)
	if err != nil {
		t.Fatalf("ReadBody() failed, reason: %v", err)
	}
	if len(got.Polygons) != 1 || got.Polygons[0].Materials[0].MaterialIndex != 3 {
		t.Fatalf("ReadBody() polygons = %+v", got.Polygons)
	}
	if len(got.Polygons[0].Materials[0].UVCoords) != 2 {
		t.Fatalf("ReadBody() uv coords = %+v", got.Polygons[0].Materials[0].UVCoords)
	}
}

func TestModelBodyRoundTripRC(t *testing.T) {
	m := &Model{
		Variant:  VariantRC,
		Vertices: []Vec3{{1, 0, 0}},
		Polygons: []Polygon{
			{
				VertexIndices: []int32{0, 0, 0},
				MaterialIndex: 7,
			},
		},
	}
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	if err := WriteBody(w, m); err != nil {
		t.Fatalf("WriteBody() failed, reason: %v", err)
	}
	if got := Size(m); got != uint32(buf.Len()) {
		t.Fatalf("Size() = %d, want %d", got, buf.Len())
	}

	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	got := &Model{Variant: VariantRC}
	if err := ReadBody(r, got, 1, 0, 0, 0, 1, 0, nil); err != nil {
		t.Fatalf("ReadBody() failed, reason: %v", err)
	}
	if got.Polygons[0].MaterialIndex != 7 {
		t.Fatalf("ReadBody() material index = %d, want 7", got.Polygons[0].MaterialIndex)
	}
}

func TestPolygonFlagsRejectUnknownBits(t *testing.T) {
	m := &Model{Variant: VariantNG}
	var buf bytes.Buffer
	w := mio.NewWriter(&buf)
	raw := polygonNgRaw{VertexInfo: uint32(0) | (0x80 << 8)}
	if err := w.Struct(&raw); err != nil {
		t.Fatalf("setup failed, reason: %v", err)
	}
	r := mio.NewReader(bytes.NewReader(buf.Bytes()))
	err := ReadBody(r, m, 0, 0, 0, 0, 1, 0, nil)
	if err == nil {
		t.Fatalf("ReadBody() with unknown polygon flag bits succeeded, want error")
	}
}
