package gamez

import (
	"github.com/TerranMechworks/mech3ax-sub003/fixup"
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mesh"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// ModelFlags are the model descriptor's bitflags (spec.md §4.C).
type ModelFlags uint32

const (
	ModelLighting          ModelFlags = 1 << 0
	ModelFog               ModelFlags = 1 << 1
	ModelTextureRegistered ModelFlags = 1 << 2
	ModelMorph             ModelFlags = 1 << 3
	ModelTextureScroll     ModelFlags = 1 << 4
	ModelFacadeTilt        ModelFlags = 1 << 5
	ModelClouds            ModelFlags = 1 << 6
)

const modelKnownFlags = ModelLighting | ModelFog | ModelTextureRegistered | ModelMorph | ModelTextureScroll | ModelFacadeTilt | ModelClouds

// modelDescSize is the fixed model-slot descriptor's byte length
// (spec.md §4.C: "a 72-byte descriptor"). The prose field list in
// spec.md names more sub-fields than 72 bytes of 4-byte values can hold
// once morph_factor and tex_scroll_frame's literal-zero constants are
// folded away and pointers[5] is collapsed to a single round-tripped
// pointer; see DESIGN.md for the exact byte assignment chosen here.
const modelDescSize = 72

type modelRaw struct {
	ModelType    uint32
	Flags        uint32
	ParentCount  uint32
	PolygonCount uint32
	VertexCount  uint32
	NormalCount  uint32
	MorphCount   uint32
	LightCount   uint32
	MorphFactor  float32
	TexScrollU   float32
	TexScrollV   float32
	Pointer      uint32
	BBoxMid      mesh.Vec3
	BBoxDiag     mesh.Vec3
}

// ModelSlot is one entry of the model array. A nonzero slot carries a
// descriptor and the mesh body it describes; a sparse (zero) slot
// carries only ExpectedIndex, the fixup-remapped "next nonzero slot"
// hint spec.md §4.C describes.
type ModelSlot struct {
	Nonzero bool

	Type         uint32
	Flags        ModelFlags
	TexScrollU   float32
	TexScrollV   float32
	Pointer      uint32
	BBoxMid      mesh.Vec3
	BBoxDiag     mesh.Vec3
	LightExtra   []int
	Model        *mesh.Model

	ExpectedIndex int32

	// model carries the counts read from the descriptor through to the
	// second pass that reads each slot's body once all data offsets are
	// known; it has no meaning once ReadBody has consumed it.
	model modelCounts
}

// readModels reads the model array: a dense run of count nonzero
// descriptors is not assumed — spec.md describes slots as individually
// sparse-or-not — so every one of arraySize slots is inspected. fx
// applies the C4/Planes index remap to sparse slots when non-nil.
func readModels(r *mio.CountingReader, variant Variant, arraySize int, fx *fixup.GamezFixup) ([]ModelSlot, error) {
	slots := make([]ModelSlot, arraySize)
	dataOffsets := make([]uint32, arraySize)

	for i := range slots {
		var raw modelRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		if raw.ParentCount == 0 {
			zero := modelRaw{}
			if raw != zero {
				return nil, merr.New("sparse model slot", r.Prev, raw, "zero")
			}
			idx, err := r.I32()
			if err != nil {
				return nil, err
			}
			if fx != nil {
				idx = fx.RemapIndexRead(idx)
			}
			slots[i] = ModelSlot{ExpectedIndex: idx}
			continue
		}
		flags, err := mio.AssertBits("model flags", r.Prev+4, ModelFlags(raw.Flags), modelKnownFlags)
		if err != nil {
			return nil, err
		}
		if raw.MorphFactor != 0 {
			return nil, merr.New("model morph factor", r.Prev+32, raw.MorphFactor, 0)
		}
		mdl := &mesh.Model{Variant: meshVariant(variant)}
		lightExtra := make([]int, raw.LightCount)

		slots[i] = ModelSlot{
			Nonzero:    true,
			Type:       raw.ModelType,
			Flags:      flags,
			TexScrollU: raw.TexScrollU,
			TexScrollV: raw.TexScrollV,
			Pointer:    raw.Pointer,
			BBoxMid:    raw.BBoxMid,
			BBoxDiag:   raw.BBoxDiag,
			LightExtra: lightExtra,
			Model:      mdl,
		}

		off, err := r.U32()
		if err != nil {
			return nil, err
		}
		dataOffsets[i] = off

		counts := modelCounts{raw.VertexCount, raw.NormalCount, raw.MorphCount, raw.LightCount, raw.PolygonCount}
		slots[i].model = counts
	}

	for i := range slots {
		if !slots[i].Nonzero {
			continue
		}
		if int64(dataOffsets[i]) != r.Offset {
			return nil, merr.New("model data offset", r.Offset, dataOffsets[i], r.Offset)
		}
		c := slots[i].model
		if err := mesh.ReadBody(r, slots[i].Model, int(c.vertex), int(c.normal), int(c.morph), int(c.light), int(c.polygon), 0, slots[i].LightExtra); err != nil {
			return nil, err
		}
	}

	return slots, nil
}

type modelCounts struct {
	vertex, normal, morph, light, polygon uint32
}

func writeModels(w *mio.CountingWriter, variant Variant, slots []ModelSlot, fx *fixup.GamezFixup) error {
	dataOffset := uint32(w.Offset) + modelDescSize*uint32(len(slots)) + 4*uint32(len(slots))
	offsets := make([]uint32, len(slots))
	for i, s := range slots {
		if !s.Nonzero {
			continue
		}
		offsets[i] = dataOffset
		dataOffset += mesh.Size(s.Model)
	}

	for i, s := range slots {
		if !s.Nonzero {
			idx := s.ExpectedIndex
			if fx != nil {
				idx = fx.RemapIndexWrite(idx)
			}
			if err := w.Struct(&modelRaw{}); err != nil {
				return err
			}
			if err := w.I32(idx); err != nil {
				return err
			}
			continue
		}
		raw := modelRaw{
			ModelType:    s.Type,
			Flags:        uint32(s.Flags),
			ParentCount:  1,
			PolygonCount: uint32(len(s.Model.Polygons)),
			VertexCount:  uint32(len(s.Model.Vertices)),
			NormalCount:  uint32(len(s.Model.Normals)),
			MorphCount:   uint32(len(s.Model.Morphs)),
			LightCount:   uint32(len(s.Model.Lights)),
			TexScrollU:   s.TexScrollU,
			TexScrollV:   s.TexScrollV,
			Pointer:      s.Pointer,
			BBoxMid:      s.BBoxMid,
			BBoxDiag:     s.BBoxDiag,
		}
		if err := w.Struct(&raw); err != nil {
			return err
		}
		if err := w.U32(offsets[i]); err != nil {
			return err
		}
	}
	for _, s := range slots {
		if !s.Nonzero {
			continue
		}
		if err := mesh.WriteBody(w, s.Model); err != nil {
			return err
		}
	}
	return nil
}

func sizeModels(variant Variant, slots []ModelSlot) uint32 {
	size := (modelDescSize + 4) * uint32(len(slots))
	for _, s := range slots {
		if s.Nonzero {
			size += mesh.Size(s.Model)
		}
	}
	return size
}

func meshVariant(v Variant) mesh.Variant {
	if v == VariantRC {
		return mesh.VariantRC
	}
	return mesh.VariantNG
}
