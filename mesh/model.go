package mesh

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// polygonNgRaw is the NG dialect's 40-byte on-disk polygon descriptor.
// vertex_info packs the vertex count in the low byte and PolygonFlags in
// the next byte up (spec.md §4.C).
type polygonNgRaw struct {
	VertexInfo  uint32
	Unk04       uint32
	VerticesPtr uint32
	NormalsPtr  uint32
	MatCount    uint32
	UVsPtr      uint32
	ColorsPtr   uint32
	Unk28       uint32
	Unk32       uint32
	Unk36       uint32
}

// polygonRcRaw is the RC dialect's 28-byte on-disk polygon descriptor.
type polygonRcRaw struct {
	VertexInfo    uint32
	Unk04         uint32
	VerticesPtr   uint32
	NormalsPtr    uint32
	UVsPtr        uint32
	MaterialIndex int32
	Unk24         uint32
}

func readPolygonsNG(r *mio.CountingReader, count int) ([]Polygon, error) {
	raws := make([]polygonNgRaw, count)
	polys := make([]Polygon, count)
	for i := range raws {
		if err := r.Struct(&raws[i]); err != nil {
			return nil, err
		}
		vertexCount := raws[i].VertexInfo & 0xFF
		flags, err := mio.AssertBits("polygon flags", r.Prev, PolygonFlags((raws[i].VertexInfo>>8)&0xFF), polygonKnownFlags)
		if err != nil {
			return nil, err
		}
		matCount := raws[i].MatCount
		polys[i] = Polygon{
			Flags:     flags,
			Unk04:     raws[i].Unk04,
			Materials: make([]MaterialRef, matCount),
		}
		polys[i].vertexCount = int(vertexCount)
	}

	for i := range polys {
		vi, err := readI32s(r, polys[i].vertexCount)
		if err != nil {
			return nil, err
		}
		polys[i].VertexIndices = vi

		if polys[i].hasNormals() {
			ni, err := readI32s(r, polys[i].vertexCount)
			if err != nil {
				return nil, err
			}
			polys[i].NormalIndices = ni
		}

		for j := range polys[i].Materials {
			idx, err := r.I32()
			if err != nil {
				return nil, err
			}
			polys[i].Materials[j].MaterialIndex = idx
		}
		for j := range polys[i].Materials {
			uvs, err := readUVs(r, polys[i].vertexCount)
			if err != nil {
				return nil, err
			}
			polys[i].Materials[j].UVCoords = uvs
		}

		colors, err := readColors(r, polys[i].vertexCount)
		if err != nil {
			return nil, err
		}
		polys[i].VertexColors = colors
	}
	return polys, nil
}

func writePolygonsNG(w *mio.CountingWriter, polys []Polygon) error {
	for _, p := range polys {
		raw := polygonNgRaw{
			VertexInfo: uint32(len(p.VertexIndices)) | (uint32(p.Flags) << 8),
			Unk04:      p.Unk04,
			MatCount:   uint32(len(p.Materials)),
		}
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	for _, p := range polys {
		if err := writeI32s(w, p.VertexIndices); err != nil {
			return err
		}
		if p.hasNormals() {
			if err := writeI32s(w, p.NormalIndices); err != nil {
				return err
			}
		}
		for _, m := range p.Materials {
			if err := w.I32(m.MaterialIndex); err != nil {
				return err
			}
		}
		for _, m := range p.Materials {
			if err := writeUVs(w, m.UVCoords); err != nil {
				return err
			}
		}
		if err := writeColors(w, p.VertexColors); err != nil {
			return err
		}
	}
	return nil
}

func readPolygonsRC(r *mio.CountingReader, count int) ([]Polygon, error) {
	raws := make([]polygonRcRaw, count)
	polys := make([]Polygon, count)
	for i := range raws {
		if err := r.Struct(&raws[i]); err != nil {
			return nil, err
		}
		vertexCount := raws[i].VertexInfo & 0xFF
		flags, err := mio.AssertBits("polygon flags", r.Prev, PolygonFlags((raws[i].VertexInfo>>8)&0xFF), polygonKnownFlags)
		if err != nil {
			return nil, err
		}
		polys[i] = Polygon{
			Flags:         flags,
			Unk04:         raws[i].Unk04,
			MaterialIndex: raws[i].MaterialIndex,
		}
		polys[i].vertexCount = int(vertexCount)
		polys[i].hasUV = raws[i].UVsPtr != 0
	}

	for i := range polys {
		vi, err := readI32s(r, polys[i].vertexCount)
		if err != nil {
			return nil, err
		}
		polys[i].VertexIndices = vi

		if polys[i].hasNormals() {
			ni, err := readI32s(r, polys[i].vertexCount)
			if err != nil {
				return nil, err
			}
			polys[i].NormalIndices = ni
		}

		if polys[i].hasUV {
			uvs, err := readUVs(r, polys[i].vertexCount)
			if err != nil {
				return nil, err
			}
			polys[i].UVCoords = uvs
		}
	}
	return polys, nil
}

func writePolygonsRC(w *mio.CountingWriter, polys []Polygon) error {
	for _, p := range polys {
		raw := polygonRcRaw{
			VertexInfo:    uint32(len(p.VertexIndices)) | (uint32(p.Flags) << 8),
			Unk04:         p.Unk04,
			MaterialIndex: p.MaterialIndex,
		}
		if p.UVCoords != nil {
			raw.UVsPtr = 1 // placeholder pointer; real value supplied by caller via section wiring
		}
		if err := w.Struct(&raw); err != nil {
			return err
		}
	}
	for _, p := range polys {
		if err := writeI32s(w, p.VertexIndices); err != nil {
			return err
		}
		if p.hasNormals() {
			if err := writeI32s(w, p.NormalIndices); err != nil {
				return err
			}
		}
		if p.UVCoords != nil {
			if err := writeUVs(w, p.UVCoords); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadBody reads a model's variable-length body — vertices, normals,
// morphs, lights, and polygons, in that order — given the counts already
// decoded from its fixed-size descriptor. Grounded on
// write_mesh_data's inverse in mesh/{ng,rc}/write.rs.
func ReadBody(r *mio.CountingReader, m *Model, vertexCount, normalCount, morphCount, lightCount, polygonCount, materialInfoCount int, lightExtraCounts []int) error {
	var err error
	if vertexCount > 0 {
		if m.Vertices, err = readVec3s(r, vertexCount); err != nil {
			return err
		}
	}
	if normalCount > 0 {
		if m.Normals, err = readVec3s(r, normalCount); err != nil {
			return err
		}
	}
	if morphCount > 0 {
		if m.Morphs, err = readVec3s(r, morphCount); err != nil {
			return err
		}
	}
	if lightCount > 0 {
		if len(lightExtraCounts) != lightCount {
			return merr.Of(merr.Unsupported, "light extra counts", r.Offset, len(lightExtraCounts), lightCount)
		}
		m.Lights = make([]Light, lightCount)
		for i := range m.Lights {
			l, err := readLight(r, lightExtraCounts[i])
			if err != nil {
				return err
			}
			m.Lights[i] = l
		}
	}

	switch m.Variant {
	case VariantNG:
		m.Polygons, err = readPolygonsNG(r, polygonCount)
	case VariantRC:
		m.Polygons, err = readPolygonsRC(r, polygonCount)
	}
	if err != nil {
		return err
	}

	if m.Variant == VariantNG {
		m.MaterialInfos = make([]MaterialInfo, materialInfoCount)
		for i := range m.MaterialInfos {
			if err := r.Struct(&m.MaterialInfos[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteBody is ReadBody's exact mirror.
func WriteBody(w *mio.CountingWriter, m *Model) error {
	if err := writeVec3s(w, m.Vertices); err != nil {
		return err
	}
	if err := writeVec3s(w, m.Normals); err != nil {
		return err
	}
	if err := writeVec3s(w, m.Morphs); err != nil {
		return err
	}
	for _, l := range m.Lights {
		if err := writeLight(w, l); err != nil {
			return err
		}
	}

	var err error
	switch m.Variant {
	case VariantNG:
		err = writePolygonsNG(w, m.Polygons)
	case VariantRC:
		err = writePolygonsRC(w, m.Polygons)
	}
	if err != nil {
		return err
	}

	if m.Variant == VariantNG {
		for i := range m.MaterialInfos {
			if err := w.Struct(&m.MaterialInfos[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
