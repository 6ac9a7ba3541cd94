package gamez

import (
	"math"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// NodeClass discriminates a node's class-specific data record (spec.md
// §4.C). Object3d and Lod are grounded on
// original_source/crates/mech3ax-gamez/src/nodes/object3d.rs and lod.rs;
// Camera, Display, Light, and Window are grounded on
// original_source/crates/nodes/src/node_data/camera.rs and
// original_source/crates/mech3ax-nodes/src/mw/{display,light,window}.rs;
// World is grounded on
// original_source/crates/gamez/src/nodes/world/mw/write.rs (see
// node_extra.go for all five).
type NodeClass uint32

const (
	NodeEmpty NodeClass = iota
	NodeCamera
	NodeDisplay
	NodeLight
	NodeLod
	NodeObject3d
	NodeWindow
	NodeWorld
)

const nodeNameWidth = 36
const nodeHeaderSize = 208

// NodeHeader is the fixed 208-byte record preceding every node's
// class-specific data and index arrays (spec.md §4.C).
type NodeHeader struct {
	Name            string
	Flags           uint32
	ZoneID          uint32
	Class           NodeClass
	ModelIndex      int32
	AreaPartition   int32
	VirtualPartition int32
	ParentCount     uint32
	ChildCount      uint32
	ActiveBBoxMin   Vec3Bounds
	ActiveBBoxMax   Vec3Bounds
	NodeBBoxMin     Vec3Bounds
	NodeBBoxMax     Vec3Bounds
	ModelBBoxMin    Vec3Bounds
	ModelBBoxMax    Vec3Bounds
	ChildBBoxMin    Vec3Bounds
	ChildBBoxMax    Vec3Bounds
	DataPtr         uint32
	ParentArrayPtr  uint32
	ChildArrayPtr   uint32
	Index           uint32
	Unk192          uint32
	Unk196          uint32
	Unk200          uint32
	Unk204          uint32
}

// headerTailSize pads nodeHeaderRaw out to the full 208 bytes spec.md
// names for NodeC. The trailing bytes' real field layout was not in the
// retrieved source (only object3d.rs and lod.rs's assert_variants
// functions reference specific header field offsets, and both stop at
// 204); they are asserted zero on read and always written zero, the
// same zeroNNN convention used elsewhere for fields with no recoverable
// semantics.
const headerTailSize = nodeHeaderSize - 196

// Vec3Bounds is a plain float triple used for the header's six bounding
// boxes; kept distinct from mesh.Vec3 since nodes never exchange bounds
// with the mesh package directly.
type Vec3Bounds struct{ X, Y, Z float32 }

type nodeHeaderRaw struct {
	Name             [nodeNameWidth]byte
	Flags            uint32
	ZoneID           uint32
	Class            uint32
	ModelIndex       int32
	AreaPartition    int32
	VirtualPartition int32
	ParentCount      uint32
	ChildCount       uint32
	ActiveBBoxMin    Vec3Bounds
	ActiveBBoxMax    Vec3Bounds
	NodeBBoxMin      Vec3Bounds
	NodeBBoxMax      Vec3Bounds
	ModelBBoxMin     Vec3Bounds
	ModelBBoxMax     Vec3Bounds
	ChildBBoxMin     Vec3Bounds
	ChildBBoxMax     Vec3Bounds
	DataPtr          uint32
	ParentArrayPtr   uint32
	ChildArrayPtr    uint32
	Index            uint32
	Unk192           uint32
	Unk196           uint32
	Unk200           uint32
	Unk204           uint32
	Tail             [headerTailSize]byte
}

// Object3dData is the fully grounded Object3d class body (object3d.rs:
// Object3dC, 144 bytes).
type Object3dData struct {
	// Identity is true when flags==40: rotation/translation/matrix are all
	// identity and no Transformation is carried (object3d.rs's assert_object3d).
	Identity       bool
	Rotation       Vec3Bounds
	Translation    Vec3Bounds
	Matrix         [9]float32
	MatrixExplicit bool // true when the stored matrix disagrees with euler_to_matrix(rotation)
}

type object3dRaw struct {
	Flags       uint32
	Opacity     float32
	Zero008     float32
	Zero012     float32
	Zero016     float32
	Zero020     float32
	Rotation    Vec3Bounds
	Scale       Vec3Bounds
	Matrix      [9]float32
	Translation Vec3Bounds
	Zero096     [48]byte
}

const object3dSize = 144

func readObject3d(r *mio.CountingReader) (*Object3dData, error) {
	var raw object3dRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.Flags != 32 && raw.Flags != 40 {
		return nil, merr.New("object3d flags", r.Prev, raw.Flags, "32 or 40")
	}
	if raw.Opacity != 0 || raw.Zero008 != 0 || raw.Zero012 != 0 || raw.Zero016 != 0 || raw.Zero020 != 0 {
		return nil, merr.New("object3d zero fields", r.Prev+4, raw, "zero")
	}
	if raw.Scale != (Vec3Bounds{1, 1, 1}) {
		return nil, merr.New("object3d scale", r.Prev+36, raw.Scale, Vec3Bounds{1, 1, 1})
	}
	for _, b := range raw.Zero096 {
		if b != 0 {
			return nil, merr.New("object3d field 096", r.Prev+96, raw.Zero096, "zero")
		}
	}

	d := &Object3dData{Rotation: raw.Rotation, Translation: raw.Translation, Matrix: raw.Matrix}
	if raw.Flags == 40 {
		d.Identity = true
		if raw.Rotation != (Vec3Bounds{}) || raw.Translation != (Vec3Bounds{}) || raw.Matrix != eulerIdentity {
			return nil, merr.New("object3d identity", r.Prev, raw, "identity transform")
		}
		return d, nil
	}
	expected := eulerToMatrix(raw.Rotation)
	d.MatrixExplicit = raw.Matrix != expected
	return d, nil
}

var eulerIdentity = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

// eulerToMatrix derives a rotation matrix from Euler angles. readObject3d
// sets MatrixExplicit only when the stored matrix differs from it; the
// matrix itself is always carried in Object3dData and written literally,
// so matching matrices are not elided from the decoded value.
func eulerToMatrix(rotation Vec3Bounds) [9]float32 {
	sx, cx := math.Sincos(float64(rotation.X))
	sy, cy := math.Sincos(float64(rotation.Y))
	sz, cz := math.Sincos(float64(rotation.Z))
	return [9]float32{
		float32(cy * cz), float32(-cy * sz), float32(sy),
		float32(sx*sy*cz + cx*sz), float32(-sx*sy*sz + cx*cz), float32(-sx * cy),
		float32(-cx*sy*cz + sx*sz), float32(cx*sy*sz + sx*cz), float32(cx * cy),
	}
}

func writeObject3d(w *mio.CountingWriter, d *Object3dData) error {
	raw := object3dRaw{Scale: Vec3Bounds{1, 1, 1}}
	if d.Identity {
		raw.Flags = 40
		raw.Matrix = eulerIdentity
	} else {
		raw.Flags = 32
		raw.Rotation = d.Rotation
		raw.Translation = d.Translation
		raw.Matrix = d.Matrix
	}
	return w.Struct(&raw)
}

// LodData is the fully grounded Lod class body (lod.rs: LodC, 80 bytes).
type LodData struct {
	Level        bool // level field (bool, asserted 0 or 1)
	RangeNear    float32
	RangeFar     float32
	Unk60        float32
	Unk68        uint32
	Unk72        uint32
	Unk76        uint32
}

type lodRaw struct {
	Level       uint32
	RangeNearSq float32
	RangeFar    float32
	RangeFarSq  float32
	Zero16      [44]byte
	Unk60       float32
	Unk64       float32
	One68       uint32
	Unk72       uint32
	Unk76       uint32
}

const lodSize = 80

func readLodNode(r *mio.CountingReader) (*LodData, error) {
	var raw lodRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.Level != 0 && raw.Level != 1 {
		return nil, merr.New("lod level", r.Prev, raw.Level, "bool")
	}
	if raw.RangeNearSq < 0 || raw.RangeNearSq > 1000.0*1000.0 {
		return nil, merr.New("lod range near sq", r.Prev+4, raw.RangeNearSq, "[0, 1e6]")
	}
	if raw.RangeFar <= 0 {
		return nil, merr.New("lod range far", r.Prev+8, raw.RangeFar, "> 0")
	}
	if raw.RangeFarSq != raw.RangeFar*raw.RangeFar {
		return nil, merr.New("lod range far sq", r.Prev+12, raw.RangeFarSq, raw.RangeFar*raw.RangeFar)
	}
	for _, b := range raw.Zero16 {
		if b != 0 {
			return nil, merr.New("lod field 16", r.Prev+16, raw.Zero16, "zero")
		}
	}
	if raw.Unk60 < 0 {
		return nil, merr.New("lod field 60", r.Prev+60, raw.Unk60, ">= 0")
	}
	if raw.Unk64 != raw.Unk60*raw.Unk60 {
		return nil, merr.New("lod field 64", r.Prev+64, raw.Unk64, raw.Unk60*raw.Unk60)
	}
	if raw.One68 != 1 {
		return nil, merr.New("lod field 68", r.Prev+68, raw.One68, 1)
	}
	rangeNear := float32(math.Sqrt(float64(raw.RangeNearSq)))
	return &LodData{
		Level:     raw.Level != 0,
		RangeNear: rangeNear,
		RangeFar:  raw.RangeFar,
		Unk60:     raw.Unk60,
		Unk68:     raw.One68,
		Unk72:     raw.Unk72,
		Unk76:     raw.Unk76,
	}, nil
}

func writeLodNode(w *mio.CountingWriter, d *LodData) error {
	raw := lodRaw{
		RangeNearSq: d.RangeNear * d.RangeNear,
		RangeFar:    d.RangeFar,
		RangeFarSq:  d.RangeFar * d.RangeFar,
		Unk60:       d.Unk60,
		Unk64:       d.Unk60 * d.Unk60,
		One68:       1,
		Unk72:       d.Unk72,
		Unk76:       d.Unk76,
	}
	if d.Level {
		raw.Level = 1
	}
	return w.Struct(&raw)
}

// Node is one scene-graph node: its header plus class-specific data and
// parent/child index arrays.
type Node struct {
	Header   NodeHeader
	Object3d *Object3dData
	Lod      *LodData
	Camera   *CameraData
	Display  *DisplayData
	Light    *LightData
	Window   *WindowData
	World    *WorldData
	Parents  []int32
	Children []int32
	// EmptyParent is the Empty class's repurposed trailing index
	// (spec.md §4.C: "its data offset field is repurposed as a parent
	// index"); set only when Header.Class == NodeEmpty.
	EmptyParent int32
}

func readNodeHeader(r *mio.CountingReader) (NodeHeader, error) {
	var raw nodeHeaderRaw
	if err := r.Struct(&raw); err != nil {
		return NodeHeader{}, err
	}
	name, err := mtype.DecodeAsciiNodeName("node name", r.Prev, raw.Name[:])
	if err != nil {
		return NodeHeader{}, err
	}
	for _, b := range raw.Tail {
		if b != 0 {
			return NodeHeader{}, merr.New("node header tail", r.Prev, raw.Tail, "zero")
		}
	}
	return NodeHeader{
		Name: name, Flags: raw.Flags, ZoneID: raw.ZoneID, Class: NodeClass(raw.Class),
		ModelIndex: raw.ModelIndex, AreaPartition: raw.AreaPartition, VirtualPartition: raw.VirtualPartition,
		ParentCount: raw.ParentCount, ChildCount: raw.ChildCount,
		ActiveBBoxMin: raw.ActiveBBoxMin, ActiveBBoxMax: raw.ActiveBBoxMax,
		NodeBBoxMin: raw.NodeBBoxMin, NodeBBoxMax: raw.NodeBBoxMax,
		ModelBBoxMin: raw.ModelBBoxMin, ModelBBoxMax: raw.ModelBBoxMax,
		ChildBBoxMin: raw.ChildBBoxMin, ChildBBoxMax: raw.ChildBBoxMax,
		DataPtr: raw.DataPtr, ParentArrayPtr: raw.ParentArrayPtr, ChildArrayPtr: raw.ChildArrayPtr,
		Index: raw.Index, Unk192: raw.Unk192, Unk196: raw.Unk196, Unk200: raw.Unk200, Unk204: raw.Unk204,
	}, nil
}

func writeNodeHeader(w *mio.CountingWriter, h NodeHeader) error {
	raw := nodeHeaderRaw{
		Flags: h.Flags, ZoneID: h.ZoneID, Class: uint32(h.Class),
		ModelIndex: h.ModelIndex, AreaPartition: h.AreaPartition, VirtualPartition: h.VirtualPartition,
		ParentCount: h.ParentCount, ChildCount: h.ChildCount,
		ActiveBBoxMin: h.ActiveBBoxMin, ActiveBBoxMax: h.ActiveBBoxMax,
		NodeBBoxMin: h.NodeBBoxMin, NodeBBoxMax: h.NodeBBoxMax,
		ModelBBoxMin: h.ModelBBoxMin, ModelBBoxMax: h.ModelBBoxMax,
		ChildBBoxMin: h.ChildBBoxMin, ChildBBoxMax: h.ChildBBoxMax,
		DataPtr: h.DataPtr, ParentArrayPtr: h.ParentArrayPtr, ChildArrayPtr: h.ChildArrayPtr,
		Index: h.Index, Unk192: h.Unk192, Unk196: h.Unk196, Unk200: h.Unk200, Unk204: h.Unk204,
	}
	copy(raw.Name[:], mtype.EncodeAsciiNodeName(h.Name, nodeNameWidth))
	return w.Struct(&raw)
}

// readNodeData dispatches to the class-specific body reader.
func readNodeData(r *mio.CountingReader, class NodeClass) (*Node, error) {
	n := &Node{}
	switch class {
	case NodeObject3d:
		d, err := readObject3d(r)
		if err != nil {
			return nil, err
		}
		n.Object3d = d
	case NodeLod:
		d, err := readLodNode(r)
		if err != nil {
			return nil, err
		}
		n.Lod = d
	case NodeCamera:
		d, err := readCamera(r)
		if err != nil {
			return nil, err
		}
		n.Camera = d
	case NodeDisplay:
		d, err := readDisplay(r)
		if err != nil {
			return nil, err
		}
		n.Display = d
	case NodeLight:
		d, err := readLight(r)
		if err != nil {
			return nil, err
		}
		n.Light = d
	case NodeWindow:
		d, err := readWindow(r)
		if err != nil {
			return nil, err
		}
		n.Window = d
	case NodeWorld:
		d, err := readWorld(r)
		if err != nil {
			return nil, err
		}
		n.World = d
	default:
		return nil, merr.Of(merr.Unsupported, "node class", r.Offset, class, "a known node class")
	}
	return n, nil
}

// dataSize reports n's class-specific body size. World's size depends
// on its content (light/sound index counts, partition grid dimensions),
// so this takes the node rather than just its class.
func dataSize(n *Node) (uint32, bool) {
	switch n.Header.Class {
	case NodeEmpty:
		return 0, true
	case NodeObject3d:
		return object3dSize, true
	case NodeLod:
		return lodSize, true
	case NodeCamera:
		return cameraSize, true
	case NodeDisplay:
		return displaySize, true
	case NodeLight:
		return lightSize, true
	case NodeWindow:
		return windowSize, true
	case NodeWorld:
		if n.World == nil {
			return 0, false
		}
		return worldSize(n.World), true
	default:
		return 0, false
	}
}
