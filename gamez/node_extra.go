package gamez

import (
	"math"

	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
)

// Range is a float min/max pair, used by Camera's clip/fov planes,
// Light's range, and World's fog range and altitude.
type Range struct{ Min, Max float32 }

// cotangent is 1/tan(x), computed the way CameraC's stored fov_h_cot/
// fov_v_cot fields are derived (original_source/crates/nodes/src/
// node_data/camera.rs's assert_camera, which checks this identity on
// read).
func cotangent(x float32) float32 {
	s, c := math.Sincos(float64(x))
	return float32(c / s)
}

// CameraData is the grounded Camera class body (node_data/camera.rs:
// CameraC, 488 bytes). Every field not listed here is fixed by the
// engine (always the same constant or a derived value); only the three
// fields the API type actually carries are exposed.
type CameraData struct {
	FocusNodeXY int32
	Clip        Range
	Fov         Range
}

type cameraRaw struct {
	WorldIndex     int32
	WindowIndex    int32
	FocusNodeXY    int32
	FocusNodeXZ    int32
	Flags          uint32
	Translation    Vec3Bounds
	Rotation       Vec3Bounds
	WorldTranslate Vec3Bounds
	WorldRotate    Vec3Bounds
	MtwMatrix      [9]float32
	Unk104         Vec3Bounds
	ViewVector     Vec3Bounds
	Matrix         [9]float32
	AltTranslate   Vec3Bounds
	Clip           Range
	Zero184        [24]byte
	LodMultiplier  float32
	LodInvSq       float32
	FovHZoomFactor float32
	FovVZoomFactor float32
	FovHBase       float32
	FovVBase       float32
	Fov            Range
	FovHHalf       float32
	FovVHalf       float32
	One248         uint32
	Zero252        [60]byte
	One312         uint32
	Zero316        [72]byte
	One388         uint32
	Zero392        [72]byte
	Zero464        uint32
	FovHCot        float32
	FovVCot        float32
	Stride         int32
	ZoneSet        int32
	Unk484         int32
}

const cameraSize = 488

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func readCamera(r *mio.CountingReader) (*CameraData, error) {
	var raw cameraRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.WorldIndex != 0 {
		return nil, merr.New("camera world index", r.Prev, raw.WorldIndex, 0)
	}
	if raw.WindowIndex != 1 {
		return nil, merr.New("camera window index", r.Prev+4, raw.WindowIndex, 1)
	}
	if raw.FocusNodeXZ != -1 {
		return nil, merr.New("camera focus node xz", r.Prev+12, raw.FocusNodeXZ, -1)
	}
	if raw.Flags != 0 {
		return nil, merr.New("camera flags", r.Prev+16, raw.Flags, 0)
	}
	zero := Vec3Bounds{}
	if raw.Translation != zero || raw.Rotation != zero || raw.WorldTranslate != zero ||
		raw.WorldRotate != zero || raw.Unk104 != zero || raw.ViewVector != zero || raw.AltTranslate != zero {
		return nil, merr.New("camera zero vectors", r.Prev+20, raw, "zero")
	}
	if raw.MtwMatrix != [9]float32{} || raw.Matrix != [9]float32{} {
		return nil, merr.New("camera zero matrices", r.Prev+68, raw, "zero")
	}
	if raw.Clip.Min <= 0 || raw.Clip.Max <= raw.Clip.Min {
		return nil, merr.New("camera clip", r.Prev+176, raw.Clip, "0 < min < max")
	}
	if !allZero(raw.Zero184[:]) {
		return nil, merr.New("camera field 184", r.Prev+184, raw.Zero184, "zero")
	}
	if raw.LodMultiplier != 1.0 || raw.LodInvSq != 1.0 {
		return nil, merr.New("camera LOD factors", r.Prev+208, raw, "1.0")
	}
	if raw.FovHZoomFactor != 1.0 || raw.FovVZoomFactor != 1.0 {
		return nil, merr.New("camera fov zoom factors", r.Prev+216, raw, "1.0")
	}
	if raw.FovHBase != raw.Fov.Min || raw.FovVBase != raw.Fov.Max {
		return nil, merr.New("camera fov base", r.Prev+224, raw, "fov")
	}
	fovHHalf := raw.Fov.Min / 2.0
	fovVHalf := raw.Fov.Max / 2.0
	if raw.FovHHalf != fovHHalf || raw.FovVHalf != fovVHalf {
		return nil, merr.New("camera fov half", r.Prev+240, raw, "fov/2")
	}
	if raw.One248 != 1 {
		return nil, merr.New("camera field 248", r.Prev+248, raw.One248, 1)
	}
	if !allZero(raw.Zero252[:]) {
		return nil, merr.New("camera field 252", r.Prev+252, raw.Zero252, "zero")
	}
	if raw.One312 != 1 {
		return nil, merr.New("camera field 312", r.Prev+312, raw.One312, 1)
	}
	if !allZero(raw.Zero316[:]) {
		return nil, merr.New("camera field 316", r.Prev+316, raw.Zero316, "zero")
	}
	if raw.One388 != 1 {
		return nil, merr.New("camera field 388", r.Prev+388, raw.One388, 1)
	}
	if !allZero(raw.Zero392[:]) {
		return nil, merr.New("camera field 392", r.Prev+392, raw.Zero392, "zero")
	}
	if raw.Zero464 != 0 {
		return nil, merr.New("camera field 464", r.Prev+464, raw.Zero464, 0)
	}
	if raw.FovHCot != cotangent(fovHHalf) || raw.FovVCot != cotangent(fovVHalf) {
		return nil, merr.New("camera fov cotangent", r.Prev+468, raw, "cotangent(fov/2)")
	}
	if raw.Stride != 0 {
		return nil, merr.New("camera stride", r.Prev+476, raw.Stride, 0)
	}
	if raw.ZoneSet != 0 {
		return nil, merr.New("camera zone set", r.Prev+480, raw.ZoneSet, 0)
	}
	if raw.Unk484 != -256 {
		return nil, merr.New("camera field 484", r.Prev+484, raw.Unk484, -256)
	}

	return &CameraData{FocusNodeXY: raw.FocusNodeXY, Clip: raw.Clip, Fov: raw.Fov}, nil
}

func writeCamera(w *mio.CountingWriter, d *CameraData) error {
	fovHHalf := d.Fov.Min / 2.0
	fovVHalf := d.Fov.Max / 2.0
	raw := cameraRaw{
		WorldIndex:     0,
		WindowIndex:    1,
		FocusNodeXY:    d.FocusNodeXY,
		FocusNodeXZ:    -1,
		Clip:           d.Clip,
		LodMultiplier:  1.0,
		LodInvSq:       1.0,
		FovHZoomFactor: 1.0,
		FovVZoomFactor: 1.0,
		FovHBase:       d.Fov.Min,
		FovVBase:       d.Fov.Max,
		Fov:            d.Fov,
		FovHHalf:       fovHHalf,
		FovVHalf:       fovVHalf,
		One248:         1,
		One312:         1,
		One388:         1,
		FovHCot:        cotangent(fovHHalf),
		FovVCot:        cotangent(fovVHalf),
		Unk484:         -256,
	}
	return w.Struct(&raw)
}

// DisplayData is the grounded Display class body (mw/display.rs:
// DisplayMwC, 28 bytes). Resolution is always 640x400 in the retrieved
// source; the constraint is enforced the same way object3d.rs enforces
// its own fixed scale, by assertion on read.
type DisplayData struct {
	ResolutionX, ResolutionY uint32
	ClearColor               Color3
}

type displayRaw struct {
	OriginX, OriginY         uint32
	ResolutionX, ResolutionY uint32
	ClearColor               Color3
}

const displaySize = 28

var displayClearColor = Color3{R: 0.3919999897480011, G: 0.3919999897480011, B: 1.0}

func readDisplay(r *mio.CountingReader) (*DisplayData, error) {
	var raw displayRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.OriginX != 0 || raw.OriginY != 0 {
		return nil, merr.New("display origin", r.Prev, raw, "zero")
	}
	if raw.ResolutionX != 640 || raw.ResolutionY != 400 {
		return nil, merr.New("display resolution", r.Prev+8, raw, "640x400")
	}
	if raw.ClearColor != displayClearColor {
		return nil, merr.New("display clear color", r.Prev+16, raw.ClearColor, displayClearColor)
	}
	return &DisplayData{ResolutionX: raw.ResolutionX, ResolutionY: raw.ResolutionY, ClearColor: raw.ClearColor}, nil
}

func writeDisplay(w *mio.CountingWriter, d *DisplayData) error {
	raw := displayRaw{ResolutionX: d.ResolutionX, ResolutionY: d.ResolutionY, ClearColor: d.ClearColor}
	return w.Struct(&raw)
}

// lightFlagsDefault is the LightMwC flags field's expected value. The
// real bit layout of mech3ax_common::light::LightFlags wasn't retrieved
// (only its DEFAULT usage site was), so this package assigns its own
// consistent constant the same way gamez.MaterialFlags does — round
// trip only needs read and write to agree, which this does.
const lightFlagsDefault uint32 = 0

// LightData is the grounded Light class body (mw/light.rs: LightMwC,
// 208 bytes, plus the trailing always-zero "light_parent" u32 the
// parent_count field triggers a read/write of).
type LightData struct {
	Direction        Vec3Bounds
	Diffuse, Ambient float32
	Color            Color3
	Range            Range
	ParentPtr        uint32
}

type lightRaw struct {
	Direction   Vec3Bounds
	Translation Vec3Bounds
	Zero024     [112]byte
	One136      float32
	Zero140     float32
	Zero144     float32
	Zero148     float32
	Zero152     float32
	Diffuse     float32
	Ambient     float32
	Color       Color3
	Flags       uint32
	Range       Range
	RangeNearSq float32
	RangeFarSq  float32
	RangeInv    float32
	ParentCount uint32
	ParentPtr   uint32
}

const lightSize = 208 + 4

var lightColorWhite = Color3{R: 1, G: 1, B: 1}

func readLight(r *mio.CountingReader) (*LightData, error) {
	var raw lightRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.Translation != (Vec3Bounds{}) {
		return nil, merr.New("light translation", r.Prev+12, raw.Translation, "zero")
	}
	if !allZero(raw.Zero024[:]) {
		return nil, merr.New("light field 024", r.Prev+24, raw.Zero024, "zero")
	}
	if raw.One136 != 1.0 || raw.Zero140 != 0 || raw.Zero144 != 0 || raw.Zero148 != 0 || raw.Zero152 != 0 {
		return nil, merr.New("light fields 136-152", r.Prev+136, raw, "1,0,0,0,0")
	}
	if raw.Diffuse < 0 || raw.Diffuse > 1 {
		return nil, merr.New("light diffuse", r.Prev+156, raw.Diffuse, "[0, 1]")
	}
	if raw.Ambient < 0 || raw.Ambient > 1 {
		return nil, merr.New("light ambient", r.Prev+160, raw.Ambient, "[0, 1]")
	}
	if raw.Color != lightColorWhite {
		return nil, merr.New("light color", r.Prev+164, raw.Color, lightColorWhite)
	}
	if raw.Flags != lightFlagsDefault {
		return nil, merr.New("light flags", r.Prev+176, raw.Flags, lightFlagsDefault)
	}
	if raw.Range.Min <= 0 || raw.Range.Max <= raw.Range.Min {
		return nil, merr.New("light range", r.Prev+180, raw.Range, "0 < min < max")
	}
	if raw.RangeNearSq != raw.Range.Min*raw.Range.Min {
		return nil, merr.New("light range near sq", r.Prev+188, raw.RangeNearSq, raw.Range.Min*raw.Range.Min)
	}
	if raw.RangeFarSq != raw.Range.Max*raw.Range.Max {
		return nil, merr.New("light range far sq", r.Prev+192, raw.RangeFarSq, raw.Range.Max*raw.Range.Max)
	}
	expectedInv := 1.0 / (raw.Range.Max - raw.Range.Min)
	if raw.RangeInv != expectedInv {
		return nil, merr.New("light range inv", r.Prev+196, raw.RangeInv, expectedInv)
	}
	if raw.ParentCount != 1 {
		return nil, merr.New("light parent count", r.Prev+200, raw.ParentCount, 1)
	}
	if raw.ParentPtr == 0 {
		return nil, merr.New("light parent ptr", r.Prev+204, raw.ParentPtr, "nonzero")
	}
	lightParent, err := r.U32()
	if err != nil {
		return nil, err
	}
	if lightParent != 0 {
		return nil, merr.New("light parent index", r.Prev, lightParent, 0)
	}

	return &LightData{
		Direction: raw.Direction, Diffuse: raw.Diffuse, Ambient: raw.Ambient,
		Color: raw.Color, Range: raw.Range, ParentPtr: raw.ParentPtr,
	}, nil
}

func writeLight(w *mio.CountingWriter, d *LightData) error {
	raw := lightRaw{
		Direction:   d.Direction,
		One136:      1.0,
		Diffuse:     d.Diffuse,
		Ambient:     d.Ambient,
		Color:       d.Color,
		Flags:       lightFlagsDefault,
		Range:       d.Range,
		RangeNearSq: d.Range.Min * d.Range.Min,
		RangeFarSq:  d.Range.Max * d.Range.Max,
		RangeInv:    1.0 / (d.Range.Max - d.Range.Min),
		ParentCount: 1,
		ParentPtr:   d.ParentPtr,
	}
	if err := w.Struct(&raw); err != nil {
		return err
	}
	return w.U32(0)
}

// WindowData is the grounded Window class body (mw/window.rs:
// WindowMwC, 248 bytes). Resolution is always 320x200 in the retrieved
// source.
type WindowData struct {
	ResolutionX, ResolutionY uint32
}

type windowRaw struct {
	OriginX, OriginY         uint32
	ResolutionX, ResolutionY uint32
	Zero016                  [212]byte
	BufferIndex              int32
	BufferPtr                uint32
	Zero236, Zero240, Zero244 uint32
}

const windowSize = 248

func readWindow(r *mio.CountingReader) (*WindowData, error) {
	var raw windowRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.OriginX != 0 || raw.OriginY != 0 {
		return nil, merr.New("window origin", r.Prev, raw, "zero")
	}
	if raw.ResolutionX != 320 || raw.ResolutionY != 200 {
		return nil, merr.New("window resolution", r.Prev+8, raw, "320x200")
	}
	if !allZero(raw.Zero016[:]) {
		return nil, merr.New("window field 016", r.Prev+16, raw.Zero016, "zero")
	}
	if raw.BufferIndex != -1 {
		return nil, merr.New("window buffer index", r.Prev+228, raw.BufferIndex, -1)
	}
	if raw.BufferPtr != 0 || raw.Zero236 != 0 || raw.Zero240 != 0 || raw.Zero244 != 0 {
		return nil, merr.New("window trailing fields", r.Prev+232, raw, "zero")
	}
	return &WindowData{ResolutionX: raw.ResolutionX, ResolutionY: raw.ResolutionY}, nil
}

func writeWindow(w *mio.CountingWriter, d *WindowData) error {
	raw := windowRaw{ResolutionX: d.ResolutionX, ResolutionY: d.ResolutionY, BufferIndex: -1}
	return w.Struct(&raw)
}

// Partition is one cell of World's area-partition grid (write.rs's
// PartitionMwC). mid/diagonal are derived from min/max by the engine via
// a formula this build doesn't have the source for (partition_diag and
// the mid-point computation were referenced, not defined, in the
// retrieved write.rs), so they're carried through verbatim rather than
// rederived — the same conservative fallback object3d.go's
// MatrixExplicit uses when a derivation can't be confirmed.
type Partition struct {
	X, Z        float32
	Min, Max    Vec3Bounds
	Mid         Vec3Bounds
	Diagonal    float32
	NodesPtr    uint32
	NodeIndices []int32
}

// partitionRaw's field widths are grounded on write.rs's PartitionMwC
// literal; the exact byte offsets of the field56/field64/field68
// padding fields could not be independently confirmed (no struct
// definition or read.rs was retrieved for World), so their names track
// the write.rs field order rather than a verified offset.
type partitionRaw struct {
	Flags     uint32
	Field04   int32
	X         float32
	Z         float32
	Min       Vec3Bounds
	Max       Vec3Bounds
	Mid       Vec3Bounds
	Diagonal  float32
	Field56   uint32
	NodeCount uint32
	NodesPtr  uint32
	Field64   uint32
	Field68   uint32
}

const partitionRawSize = 76
const partitionFlags = 0x100

func readPartition(r *mio.CountingReader) (*Partition, error) {
	var raw partitionRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.Flags != partitionFlags {
		return nil, merr.New("partition flags", r.Prev, raw.Flags, partitionFlags)
	}
	if raw.Field04 != -1 {
		return nil, merr.New("partition field 04", r.Prev+4, raw.Field04, -1)
	}
	if raw.Field56 != 0 || raw.Field64 != 0 || raw.Field68 != 0 {
		return nil, merr.New("partition reserved fields", r.Prev+56, raw, "zero")
	}
	nodeIndices := make([]int32, raw.NodeCount)
	for i := range nodeIndices {
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		nodeIndices[i] = v
	}
	return &Partition{
		X: raw.X, Z: raw.Z, Min: raw.Min, Max: raw.Max, Mid: raw.Mid,
		Diagonal: raw.Diagonal, NodesPtr: raw.NodesPtr, NodeIndices: nodeIndices,
	}, nil
}

func writePartition(w *mio.CountingWriter, p *Partition) error {
	raw := partitionRaw{
		Flags: partitionFlags, Field04: -1,
		X: p.X, Z: p.Z, Min: p.Min, Max: p.Max, Mid: p.Mid,
		Diagonal: p.Diagonal, NodeCount: uint32(len(p.NodeIndices)), NodesPtr: p.NodesPtr,
	}
	if err := w.Struct(&raw); err != nil {
		return err
	}
	for _, idx := range p.NodeIndices {
		if err := w.I32(idx); err != nil {
			return err
		}
	}
	return nil
}

// WorldData is the grounded World class body
// (gamez/src/nodes/world/mw/write.rs: WorldMwC, 188-byte fixed header,
// followed by light/sound node-index arrays and the area-partition
// grid). The header layout below is derived from write.rs's field
// order plus the three consecutive offsets it names directly
// (field148/field152/field156, all at their stated byte offsets under
// natural 4-byte alignment) and field184 at the tail — strong enough
// agreement to trust the intervening field widths.
type WorldData struct {
	AreaPartitionUnk            uint32
	AreaPartitionPtr            uint32
	FogType                     uint32
	FogColor                    Color3
	FogRange                    Range
	FogAltitude                 Range
	FogDensity                  float32
	AreaLeft, AreaBottom        float32
	AreaRight, AreaTop          float32
	PartitionMaxDecFeatureCount uint32
	VirtualPartition            uint32
	VirtPartitionPtr            uint32
	LightNodesPtr, LightDataPtr uint32
	SoundNodesPtr, SoundDataPtr uint32
	LightIndices                []int32
	SoundIndices                []int32
	Partitions                  [][]Partition
}

type worldRawHeader struct {
	Flags                       uint32
	AreaPartitionUsed           uint32
	AreaPartitionUnk            uint32
	AreaPartitionPtr            uint32
	FogType                     uint32
	FogColor                    Color3
	FogRange                    Range
	FogAltitude                 Range
	FogDensity                  float32
	AreaLeft                    float32
	AreaBottom                  float32
	AreaWidth                   float32
	AreaHeight                  float32
	AreaRight                   float32
	AreaTop                     float32
	PartitionMaxDecFeatureCount uint32
	VirtualPartition            uint32
	VirtPartitionXMin           int32
	VirtPartitionZMin           int32
	VirtPartitionXMax           int32
	VirtPartitionZMax           int32
	VirtPartitionXSize          float32
	VirtPartitionZSize          float32
	VirtPartitionXHalf          float32
	VirtPartitionZHalf          float32
	VirtPartitionXInv           float32
	VirtPartitionZInv           float32
	VirtPartitionDiag           float32
	PartitionInclusionTolLow    float32
	PartitionInclusionTolHigh   float32
	VirtPartitionXCount         uint32
	VirtPartitionZCount         uint32
	VirtPartitionPtr            uint32
	Field148                    float32
	Field152                    float32
	Field156                    float32
	LightCount                  uint32
	LightNodesPtr               uint32
	LightDataPtr                uint32
	SoundCount                  uint32
	SoundNodesPtr               uint32
	SoundDataPtr                uint32
	Field184                    uint32
}

const worldHeaderSize = 188

func readWorld(r *mio.CountingReader) (*WorldData, error) {
	var raw worldRawHeader
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}
	if raw.Flags != 0 {
		return nil, merr.New("world flags", r.Prev, raw.Flags, 0)
	}
	if raw.AreaPartitionUsed != 0 {
		return nil, merr.New("world area partition used", r.Prev+4, raw.AreaPartitionUsed, 0)
	}
	if raw.AreaWidth != raw.AreaRight-raw.AreaLeft {
		return nil, merr.New("world area width", r.Prev+60, raw.AreaWidth, raw.AreaRight-raw.AreaLeft)
	}
	if raw.AreaHeight != raw.AreaTop-raw.AreaBottom {
		return nil, merr.New("world area height", r.Prev+64, raw.AreaHeight, raw.AreaTop-raw.AreaBottom)
	}
	if raw.VirtPartitionXMin != 1 || raw.VirtPartitionZMin != 1 {
		return nil, merr.New("world virt partition min", r.Prev+84, raw, "1, 1")
	}
	if raw.VirtPartitionXSize != 256.0 || raw.VirtPartitionZSize != -256.0 {
		return nil, merr.New("world virt partition size", r.Prev+100, raw, "256, -256")
	}
	if raw.VirtPartitionXHalf != 128.0 || raw.VirtPartitionZHalf != -128.0 {
		return nil, merr.New("world virt partition half", r.Prev+108, raw, "128, -128")
	}
	if raw.VirtPartitionXInv != 1.0/256.0 || raw.VirtPartitionZInv != 1.0/-256.0 {
		return nil, merr.New("world virt partition inv", r.Prev+116, raw, "1/256, -1/256")
	}
	if raw.VirtPartitionDiag != -192.0 {
		return nil, merr.New("world virt partition diag", r.Prev+124, raw.VirtPartitionDiag, -192.0)
	}
	if raw.PartitionInclusionTolLow != 3.0 || raw.PartitionInclusionTolHigh != 3.0 {
		return nil, merr.New("world partition inclusion tolerance", r.Prev+128, raw, "3.0, 3.0")
	}
	if raw.Field148 != 1.0 || raw.Field152 != 1.0 || raw.Field156 != 1.0 {
		return nil, merr.New("world fields 148-156", r.Prev+148, raw, "1.0")
	}
	if raw.Field184 != 0 {
		return nil, merr.New("world field 184", r.Prev+184, raw.Field184, 0)
	}

	lightIndices := make([]int32, raw.LightCount)
	for i := range lightIndices {
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		lightIndices[i] = v
	}
	soundIndices := make([]int32, raw.SoundCount)
	for i := range soundIndices {
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		soundIndices[i] = v
	}

	partitions := make([][]Partition, raw.VirtPartitionZCount)
	for zi := range partitions {
		row := make([]Partition, raw.VirtPartitionXCount)
		for xi := range row {
			p, err := readPartition(r)
			if err != nil {
				return nil, err
			}
			row[xi] = *p
		}
		partitions[zi] = row
	}

	return &WorldData{
		AreaPartitionUnk: raw.AreaPartitionUnk, AreaPartitionPtr: raw.AreaPartitionPtr,
		FogType: raw.FogType, FogColor: raw.FogColor, FogRange: raw.FogRange, FogAltitude: raw.FogAltitude,
		FogDensity: raw.FogDensity,
		AreaLeft:   raw.AreaLeft, AreaBottom: raw.AreaBottom, AreaRight: raw.AreaRight, AreaTop: raw.AreaTop,
		PartitionMaxDecFeatureCount: raw.PartitionMaxDecFeatureCount, VirtualPartition: raw.VirtualPartition,
		VirtPartitionPtr: raw.VirtPartitionPtr,
		LightNodesPtr:    raw.LightNodesPtr, LightDataPtr: raw.LightDataPtr,
		SoundNodesPtr: raw.SoundNodesPtr, SoundDataPtr: raw.SoundDataPtr,
		LightIndices: lightIndices, SoundIndices: soundIndices, Partitions: partitions,
	}, nil
}

func writeWorld(w *mio.CountingWriter, d *WorldData) error {
	areaWidth := d.AreaRight - d.AreaLeft
	areaHeight := d.AreaTop - d.AreaBottom
	zCount := uint32(len(d.Partitions))
	var xCount uint32
	if zCount > 0 {
		xCount = uint32(len(d.Partitions[0]))
	}

	raw := worldRawHeader{
		AreaPartitionUnk: d.AreaPartitionUnk, AreaPartitionPtr: d.AreaPartitionPtr,
		FogType: d.FogType, FogColor: d.FogColor, FogRange: d.FogRange, FogAltitude: d.FogAltitude,
		FogDensity: d.FogDensity,
		AreaLeft:   d.AreaLeft, AreaBottom: d.AreaBottom, AreaWidth: areaWidth, AreaHeight: areaHeight,
		AreaRight: d.AreaRight, AreaTop: d.AreaTop,
		PartitionMaxDecFeatureCount: d.PartitionMaxDecFeatureCount, VirtualPartition: d.VirtualPartition,
		VirtPartitionXMin: 1, VirtPartitionZMin: 1,
		VirtPartitionXMax:  int32(xCount) - 1,
		VirtPartitionZMax:  int32(zCount) - 1,
		VirtPartitionXSize: 256.0, VirtPartitionZSize: -256.0,
		VirtPartitionXHalf: 128.0, VirtPartitionZHalf: -128.0,
		VirtPartitionXInv: 1.0 / 256.0, VirtPartitionZInv: 1.0 / -256.0,
		VirtPartitionDiag:         -192.0,
		PartitionInclusionTolLow:  3.0,
		PartitionInclusionTolHigh: 3.0,
		VirtPartitionXCount:       xCount, VirtPartitionZCount: zCount,
		VirtPartitionPtr: d.VirtPartitionPtr,
		Field148:         1.0, Field152: 1.0, Field156: 1.0,
		LightCount: uint32(len(d.LightIndices)), LightNodesPtr: d.LightNodesPtr, LightDataPtr: d.LightDataPtr,
		SoundCount: uint32(len(d.SoundIndices)), SoundNodesPtr: d.SoundNodesPtr, SoundDataPtr: d.SoundDataPtr,
	}
	if err := w.Struct(&raw); err != nil {
		return err
	}

	for _, idx := range d.LightIndices {
		if err := w.I32(idx); err != nil {
			return err
		}
	}
	for _, idx := range d.SoundIndices {
		if err := w.I32(idx); err != nil {
			return err
		}
	}
	for _, row := range d.Partitions {
		for i := range row {
			if err := writePartition(w, &row[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func worldSize(d *WorldData) uint32 {
	size := uint32(worldHeaderSize) + 4*uint32(len(d.LightIndices)+len(d.SoundIndices))
	for _, row := range d.Partitions {
		for i := range row {
			size += partitionRawSize + 4*uint32(len(row[i].NodeIndices))
		}
	}
	return size
}
