package gamez

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// MaterialFlags are the material record's bitflags (spec.md §4.C).
// Grounded on original_source/crates/gamez/src/materials/read_single.rs's
// assert_material branch logic; the exact bit positions were not in the
// retrieved source (the flags type itself lives in a different crate), so
// this module assigns its own consistent numbering. Round-trip fidelity
// only needs the assignment to be consistent between read and write,
// which it is.
type MaterialFlags uint8

const (
	MaterialUnknown  MaterialFlags = 1 << 0
	MaterialTextured MaterialFlags = 1 << 1
	MaterialCycled   MaterialFlags = 1 << 2
	MaterialAlways   MaterialFlags = 1 << 3
	MaterialFree     MaterialFlags = 1 << 4
)

const materialKnownFlags = MaterialUnknown | MaterialTextured | MaterialCycled | MaterialAlways | MaterialFree

const materialSize = 40
const colorWhite = 0x7FFF

// Color3 is a packed RGB triple stored as three floats in [0, 255] for
// colored materials, or asserted-white for textured materials.
type Color3 struct {
	R, G, B float32
}

// Material is one material slot: Free slots carry no other data; Colored
// and Textured are mutually exclusive (selected by MaterialTextured);
// Cycle is non-nil only when MaterialCycled is set.
type Material struct {
	Flags        MaterialFlags
	Alpha        uint8
	Rgb          uint16
	Color        Color3
	TextureIndex int32
	Soil         uint32
	CyclePtr     uint32
	Cycle        *CycleData
}

// CycleData is the variable-length record trailing a Cycled material,
// grounded on read_cycle in read_single.rs.
type CycleData struct {
	Looping       bool
	CurrentFrame  float32
	Speed         float32
	TexMapPtr     uint32
	TextureIndices []int32
}

type materialRaw struct {
	Alpha        uint8
	Flags        uint8
	Rgb          uint16
	R, G, B      float32
	TextureIndex int32
	Field20      float32
	Field24      float32
	Field28      float32
	Soil         uint32
	CyclePtr     uint32
}

type cycleRaw struct {
	Looping      uint32
	CurrentFrame float32
	CurrentIndex float32
	Speed        float32
	TexMapCount  uint32
	TexMapIndex  uint32
	TexMapPtr    uint32
}

// readMaterials decodes materials until it hits the mesh section offset,
// the same end condition cs/mod.rs uses implicitly by reading until
// read.offset == header.meshes_offset. Grounded on assert_material,
// assert_material_zero, and read_cycle in read_single.rs.
func readMaterials(r *mio.CountingReader, textures []Texture, sectionEnd int64) ([]Material, error) {
	var out []Material
	for r.Offset < sectionEnd {
		var raw materialRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		flags, err := mio.AssertBits("material flags", r.Prev, MaterialFlags(raw.Flags), materialKnownFlags)
		if err != nil {
			return nil, err
		}

		m := Material{Flags: flags, Soil: raw.Soil, CyclePtr: raw.CyclePtr}
		switch {
		case flags&MaterialFree != 0:
			if err := assertMaterialZero(raw, r.Prev); err != nil {
				return nil, err
			}
		case flags&MaterialTextured != 0:
			if err := assertTextured(raw, r.Prev); err != nil {
				return nil, err
			}
			if int(raw.TextureIndex) < 0 || int(raw.TextureIndex) >= len(textures) {
				return nil, merr.New("material texture index", r.Prev+16, raw.TextureIndex, len(textures))
			}
			m.TextureIndex = raw.TextureIndex
			m.Alpha = raw.Alpha
			m.Rgb = raw.Rgb
			m.Color = Color3{raw.R, raw.G, raw.B}
		default:
			if err := assertColored(raw, r.Prev); err != nil {
				return nil, err
			}
			m.Alpha = raw.Alpha
			m.Color = Color3{raw.R, raw.G, raw.B}
		}

		if flags&MaterialCycled != 0 {
			cycle, err := readCycle(r)
			if err != nil {
				return nil, err
			}
			m.Cycle = cycle
		}
		out = append(out, m)
	}
	return out, nil
}

func assertTextured(raw materialRaw, offset int64) error {
	if raw.Alpha != 0xFF {
		return merr.New("material alpha", offset+0, raw.Alpha, 0xFF)
	}
	if raw.Rgb != colorWhite {
		return merr.New("material rgb", offset+2, raw.Rgb, colorWhite)
	}
	if raw.R != 255 || raw.G != 255 || raw.B != 255 {
		return merr.New("material color", offset+4, raw, "white")
	}
	return nil
}

func assertColored(raw materialRaw, offset int64) error {
	if raw.TextureIndex != 0 {
		return merr.New("colored material texture index", offset+16, raw.TextureIndex, 0)
	}
	if raw.CyclePtr != 0 {
		return merr.New("colored material cycle ptr", offset+36, raw.CyclePtr, 0)
	}
	if raw.Rgb != 0 {
		return merr.New("colored material rgb", offset+2, raw.Rgb, 0)
	}
	for i, c := range []float32{raw.R, raw.G, raw.B} {
		if c < 0 || c > 255 {
			return merr.New("colored material channel", offset+4+int64(i)*4, c, "[0, 255]")
		}
	}
	return nil
}

func assertMaterialZero(raw materialRaw, offset int64) error {
	zero := materialRaw{Flags: raw.Flags}
	if raw != zero {
		return merr.New("free material", offset, raw, "zero")
	}
	return nil
}

func readCycle(r *mio.CountingReader) (*CycleData, error) {
	var raw cycleRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.CurrentIndex != 0.0 {
		return nil, merr.New("cycle current index", r.Prev+8, raw.CurrentIndex, 0.0)
	}
	if raw.TexMapCount != raw.TexMapIndex {
		return nil, merr.New("cycle tex map index", r.Prev+20, raw.TexMapIndex, raw.TexMapCount)
	}
	if raw.TexMapPtr == 0 {
		return nil, merr.New("cycle tex map ptr", r.Prev+24, raw.TexMapPtr, "nonzero")
	}
	indices := make([]int32, raw.TexMapCount)
	for i := range indices {
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		indices[i] = v
	}
	return &CycleData{
		Looping:        raw.Looping != 0,
		CurrentFrame:   raw.CurrentFrame,
		Speed:          raw.Speed,
		TexMapPtr:      raw.TexMapPtr,
		TextureIndices: indices,
	}, nil
}

func writeMaterials(w *mio.CountingWriter, materials []Material) error {
	for _, m := range materials {
		raw := materialRaw{
			Flags:    uint8(m.Flags),
			Soil:     m.Soil,
			CyclePtr: m.CyclePtr,
			Field24:  0.5,
			Field28:  0.5,
		}
		switch {
		case m.Flags&MaterialFree != 0:
			raw.Flags = uint8(m.Flags)
			raw.Field24, raw.Field28 = 0, 0
		case m.Flags&MaterialTextured != 0:
			raw.Alpha = 0xFF
			raw.Rgb = colorWhite
			raw.R, raw.G, raw.B = 255, 255, 255
			raw.TextureIndex = m.TextureIndex
		default:
			raw.Alpha = m.Alpha
			raw.R, raw.G, raw.B = m.Color.R, m.Color.G, m.Color.B
		}
		if err := w.Struct(&raw); err != nil {
			return err
		}
		if m.Cycle != nil {
			if err := writeCycle(w, m.Cycle); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCycle(w *mio.CountingWriter, c *CycleData) error {
	count := uint32(len(c.TextureIndices))
	raw := cycleRaw{
		CurrentFrame: c.CurrentFrame,
		Speed:        c.Speed,
		TexMapCount:  count,
		TexMapIndex:  count,
		TexMapPtr:    c.TexMapPtr,
	}
	if c.Looping {
		raw.Looping = 1
	}
	if err := w.Struct(&raw); err != nil {
		return err
	}
	for _, idx := range c.TextureIndices {
		if err := w.I32(idx); err != nil {
			return err
		}
	}
	return nil
}

func sizeMaterials(materials []Material) uint32 {
	size := materialSize * uint32(len(materials))
	for _, m := range materials {
		if m.Cycle != nil {
			size += 28 + 4*uint32(len(m.Cycle.TextureIndices))
		}
	}
	return size
}
