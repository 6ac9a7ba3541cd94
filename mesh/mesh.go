// Package mesh implements the model/mesh codec of spec.md §4.E: the
// vertex/normal/morph/light/polygon arrays subordinate to a gamez model
// slot or a mechlib entry, and the size precomputation writers need
// before they can emit absolute section offsets.
//
// Grounded on original_source/crates/gamez/src/mesh/{ng,rc}/write.rs:
// write_mesh_info/write_polygons/write_mesh_data/size_mesh. The two
// source files cover the "next-gen" (MW/PM/CS) and RC mesh dialects
// respectively; this package folds both into one Variant-parameterized
// set of types, the same generalization gamez.Variant performs for the
// scene-graph codec the mesh arrays live inside.
package mesh

import (
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// Variant selects which of the two mesh record dialects a Model belongs
// to. CS, PM, and MW all share the "next-gen" dialect; only RC differs.
type Variant int

const (
	VariantNG Variant = iota // MW, PM, CS
	VariantRC
)

// Vec3 is a 12-byte little-endian float triple, used throughout for
// positions, normals, and morph targets.
type Vec3 struct {
	X, Y, Z float32
}

// UvCoord is an 8-byte texture coordinate pair.
type UvCoord struct {
	U, V float32
}

// Color is a 12-byte float RGB triple (not the packed 32-bit form used
// elsewhere in the engine — meshes store vertex colors as floats).
type Color struct {
	R, G, B float32
}

func readVec3s(r *mio.CountingReader, n int) ([]Vec3, error) {
	out := make([]Vec3, n)
	for i := range out {
		if err := r.Struct(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeVec3s(w *mio.CountingWriter, vs []Vec3) error {
	for i := range vs {
		if err := w.Struct(&vs[i]); err != nil {
			return err
		}
	}
	return nil
}

func readI32s(r *mio.CountingReader, n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeI32s(w *mio.CountingWriter, vs []int32) error {
	for _, v := range vs {
		if err := w.I32(v); err != nil {
			return err
		}
	}
	return nil
}

func readUVs(r *mio.CountingReader, n int) ([]UvCoord, error) {
	out := make([]UvCoord, n)
	for i := range out {
		if err := r.Struct(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeUVs(w *mio.CountingWriter, uvs []UvCoord) error {
	for i := range uvs {
		if err := w.Struct(&uvs[i]); err != nil {
			return err
		}
	}
	return nil
}

func readColors(r *mio.CountingReader, n int) ([]Color, error) {
	out := make([]Color, n)
	for i := range out {
		if err := r.Struct(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeColors(w *mio.CountingWriter, cs []Color) error {
	for i := range cs {
		if err := w.Struct(&cs[i]); err != nil {
			return err
		}
	}
	return nil
}

const (
	vec3Size  = 12
	uvSize    = 8
	colorSize = 12
	u32Size   = 4
)

// Light is a point/area light attached to a model, with a trailing
// variable-length Extra array of auxiliary points (e.g. a light cone's
// corner positions).
type Light struct {
	Raw   LightRaw
	Extra []Vec3
}

// LightRaw is the fixed 55-float-field light record's binary image. Its
// exact field semantics are not load-bearing for the codec (the engine
// itself treats most of them as opaque), so it is carried as a flat
// array rather than named fields — matching spec.md's Open Question
// stance on fields with no assumed semantics.
type LightRaw struct {
	Fields [55]float32
}

const lightRawSize = 55 * 4

func readLight(r *mio.CountingReader, extraCount int) (Light, error) {
	var raw LightRaw
	if err := r.Struct(&raw); err != nil {
		return Light{}, err
	}
	extra, err := readVec3s(r, extraCount)
	if err != nil {
		return Light{}, err
	}
	return Light{Raw: raw, Extra: extra}, nil
}

func writeLight(w *mio.CountingWriter, l Light) error {
	if err := w.Struct(&l.Raw); err != nil {
		return err
	}
	return writeVec3s(w, l.Extra)
}

// PolygonFlags are the bits packed into a polygon's vertex_info field
// alongside the vertex count (spec.md §4.C: "vertex_info:hex32 packing
// (count | flags<<8 ...)").
type PolygonFlags uint32

const (
	PolygonNormals      PolygonFlags = 1 << 0
	PolygonShowBackface PolygonFlags = 1 << 1
	PolygonUnk0         PolygonFlags = 1 << 2
)

const polygonKnownFlags = PolygonNormals | PolygonShowBackface | PolygonUnk0

// MaterialRef is one of an NG polygon's material/UV groups: a material
// index and that material's own UV coordinate set, one per polygon.
type MaterialRef struct {
	MaterialIndex int32
	UVCoords      []UvCoord
}

// Polygon is the per-variant-shaped polygon body. NG polygons carry
// Materials (one or more material/UV groups) and VertexColors; RC
// polygons carry a single MaterialIndex and an optional flat UVCoords.
type Polygon struct {
	Flags         PolygonFlags
	Unk04         uint32
	VertexIndices []int32
	NormalIndices []int32 // nil unless PolygonNormals is set

	// NG-only.
	Materials    []MaterialRef
	VertexColors []Color

	// RC-only.
	MaterialIndex int32
	UVCoords      []UvCoord

	// vertexCount and hasUV are read-path bookkeeping, derived from the
	// raw descriptor and consumed while decoding the variable-length
	// body; they carry no independent meaning once decode completes.
	vertexCount int
	hasUV       bool
}

func (p *Polygon) hasNormals() bool { return p.Flags&PolygonNormals != 0 }

// Model is one mesh body — the variable-length arrays subordinate to a
// gamez model slot or a mechlib entry (spec.md §4.E). The fixed-size
// 72-byte descriptor that precedes it (flags, counts, bounding boxes,
// pointers) belongs to the owning package (gamez's model slot, or
// mechlib's own header); Model carries only what spec.md §4.E's size
// precomputation and body I/O need.
type Model struct {
	Variant Variant

	Vertices []Vec3
	Normals  []Vec3
	Morphs   []Vec3
	Lights   []Light
	Polygons []Polygon

	// MaterialInfos is NG-only: a trailing array of per-material scroll
	// state, one per material slot referenced by this model's polygons.
	MaterialInfos []MaterialInfo
}

// MaterialInfo is the NG-only trailing per-material-slot record (scroll
// state etc.) described in spec.md §4.C's model body.
type MaterialInfo struct {
	Fields [4]float32
}

const materialInfoSize = 16

// Size precomputes the encoded byte length of m's body, exactly
// mirroring the arithmetic the write path performs, so a caller writing
// the enclosing section's headers first (absolute offsets) knows each
// model's length before emitting its bytes. Grounded on
// size_mesh in mesh/ng/write.rs and mesh/rc/write.rs.
func Size(m *Model) uint32 {
	size := uint32(vec3Size) * uint32(len(m.Vertices)+len(m.Normals)+len(m.Morphs))
	for _, l := range m.Lights {
		size += lightRawSize + vec3Size*uint32(len(l.Extra))
	}
	for _, p := range m.Polygons {
		normalLen := 0
		if p.NormalIndices != nil {
			normalLen = len(p.NormalIndices)
		}
		switch m.Variant {
		case VariantNG:
			size += polygonNgRecordSize + u32Size*uint32(len(p.VertexIndices)) + u32Size*uint32(normalLen) + colorSize*uint32(len(p.VertexColors))
			for _, mat := range p.Materials {
				size += u32Size + uvSize*uint32(len(mat.UVCoords))
			}
		case VariantRC:
			uvLen := 0
			if p.UVCoords != nil {
				uvLen = len(p.UVCoords)
			}
			size += polygonRcRecordSize + u32Size*uint32(len(p.VertexIndices)) + u32Size*uint32(normalLen) + uvSize*uint32(uvLen)
		}
	}
	if m.Variant == VariantNG {
		size += materialInfoSize * uint32(len(m.MaterialInfos))
	}
	return size
}

const (
	polygonNgRecordSize = 40
	polygonRcRecordSize = 28
)
