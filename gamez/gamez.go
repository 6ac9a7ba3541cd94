package gamez

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// GameZ is one fully decoded scene graph: the four sections in header
// order, plus the metadata needed to regenerate a byte-identical header
// (the Planes-scenario unk08 marker and the node array's padding size).
type GameZ struct {
	Variant        Variant
	Unk08          uint32
	Textures       []Texture
	Materials      []Material
	Models         []ModelSlot
	Nodes          []*Node
	NodeArraySize  int
	ModelArraySize int
}

// Read decodes a complete gamez file. Grounded on read_gamez in
// cs/mod.rs: header, then textures/materials/models/nodes in header
// order, with an offset-equality assertion at each section boundary.
func Read(r *mio.CountingReader, variant Variant) (*GameZ, error) {
	h, fx, err := readHeader(r, variant)
	if err != nil {
		return nil, err
	}

	if int64(h.TexturesOffset) != r.Offset {
		return nil, merr.New("textures offset", r.Offset, h.TexturesOffset, r.Offset)
	}
	textures, err := readTextures(r, h.TextureCount)
	if err != nil {
		return nil, err
	}
	if int64(h.MaterialsOffset) != r.Offset {
		return nil, merr.New("materials offset", r.Offset, h.MaterialsOffset, r.Offset)
	}

	materials, err := readMaterials(r, textures, int64(h.MeshesOffset))
	if err != nil {
		return nil, err
	}
	if int64(h.MeshesOffset) != r.Offset {
		return nil, merr.New("meshes offset", r.Offset, h.MeshesOffset, r.Offset)
	}

	models, err := readModels(r, variant, int(h.ModelArraySize), fx)
	if err != nil {
		return nil, err
	}
	if int64(h.NodesOffset) != r.Offset {
		return nil, merr.New("nodes offset", r.Offset, h.NodesOffset, r.Offset)
	}

	nodes, err := readNodes(r, int(h.NodeArraySize))
	if err != nil {
		return nil, err
	}

	return &GameZ{
		Variant: variant, Unk08: h.Unk08, Textures: textures, Materials: materials,
		Models: models, Nodes: nodes, NodeArraySize: int(h.NodeArraySize),
		ModelArraySize: int(h.ModelArraySize),
	}, nil
}

// Write is Read's exact mirror: it recomputes every section offset from
// the content being written rather than trusting any stored value,
// exactly as write_gamez does.
func Write(w *mio.CountingWriter, g *GameZ) error {
	textureCount := uint32(len(g.Textures))
	texturesOffset := uint32(headerSize)
	materialsOffset := texturesOffset + sizeTextures(len(g.Textures))
	meshesOffset := materialsOffset + sizeMaterials(g.Materials)
	nodesOffset := meshesOffset + sizeModels(g.Variant, g.Models)

	lightIndex, err := lightIndexFor(g)
	if err != nil {
		return err
	}

	h := header{
		Signature: signature, Version: versionFor(g.Variant), Unk08: g.Unk08,
		TextureCount: textureCount, TexturesOffset: texturesOffset, MaterialsOffset: materialsOffset,
		MeshesOffset: meshesOffset, NodeArraySize: uint32(g.NodeArraySize), LightIndex: lightIndex,
		NodesOffset: nodesOffset, ModelArraySize: uint32(len(g.Models)),
	}
	fx, err := writeHeader(w, g.Variant, h)
	if err != nil {
		return err
	}

	if err := writeTextures(w, g.Textures); err != nil {
		return err
	}
	if err := writeMaterials(w, g.Materials); err != nil {
		return err
	}
	if err := writeModels(w, g.Variant, g.Models, fx); err != nil {
		return err
	}
	return writeNodes(w, g.Nodes, g.NodeArraySize)
}

// lightIndexFor mirrors write_gamez's light_index derivation: scan for
// the Light-class node, or use the hardcoded Planes constant when this
// gamez's unk08 marks the Planes scenario. The scan takes the first node
// whose header class is NodeLight and reports its Header.Index; a gamez
// with no Light-class node outside the Planes scenario is an error.
func lightIndexFor(g *GameZ) (uint32, error) {
	if g.Unk08 == planesUnk08 {
		return 2338, nil
	}
	for _, n := range g.Nodes {
		if n.Header.Class == NodeLight {
			return n.Header.Index, nil
		}
	}
	return 0, merr.Of(merr.Unsupported, "light node", 0, nil, "a Light-class node")
}
