package event

import (
	"math"

	"github.com/TerranMechworks/mech3ax-sub003/fixup"
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mesh"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mlog"
)

// Quat is a plain quaternion, used only by ObjectMotionSiScript's
// rotate keyframes.
type Quat struct {
	X, Y, Z, W float32
}

// ObjectScaleState is the event body for Type ObjectScaleStateT,
// grounded on anim-events/src/events/e08_object_scale_state.rs.
type ObjectScaleState struct {
	Scale     mesh.Vec3
	NodeIndex int32
}

type objectScaleStateRaw struct {
	Scale     mesh.Vec3
	NodeIndex int32
}

// ObjectRotateState flags, grounded on e09_object_rotate_state.rs.
const (
	RotateRelative    uint32 = 1 << 0
	RotateAtNodeXYZ   uint32 = 1 << 1
	RotateAtNodeMatrix uint32 = 1 << 2
)

const rotateInputNodeIndex int16 = -200

// ObjectRotateState is the event body for Type ObjectRotateStateT.
type ObjectRotateState struct {
	Flags       uint32
	Rotate      mesh.Vec3
	NodeIndex   int16
	AtNodeIndex int16
}

type objectRotateStateRaw struct {
	Flags       uint32
	Rotate      mesh.Vec3
	NodeIndex   int16
	AtNodeIndex int16
}

// ObjectOpacityFromTo is the event body for Type ObjectOpacityFromToT,
// grounded on e14_object_opacity_from_to.rs. The delta field is
// validated against the from/to/run_time triple but a mismatch is
// logged, not an assertion failure (spec.md's own note that this is
// deliberately untested).
type ObjectOpacityFromTo struct {
	NodeIndex     int32
	StateFrom     int16
	StateTo       int16
	OpacityFrom   float32
	OpacityTo     float32
	OpacityDelta  float32
	RunTime       float32
}

type objectOpacityFromToRaw struct {
	NodeIndex    int32
	StateFrom    int16
	StateTo      int16
	OpacityFrom  float32
	OpacityTo    float32
	OpacityDelta float32
	RunTime      float32
}

// CameraState flag bits gate each of the seven optional scalars,
// grounded on e20_camera_state.rs.
const (
	CameraFov       uint32 = 1 << 0
	CameraFocus     uint32 = 1 << 1
	CameraRange     uint32 = 1 << 2
	CameraClip      uint32 = 1 << 3
	CameraZoom      uint32 = 1 << 4
	CameraFogStart  uint32 = 1 << 5
	CameraFogEnd    uint32 = 1 << 6
)

// CameraState is the event body for Type CameraStateT.
type CameraState struct {
	Flags     uint32
	NodeIndex int32

	Fov      *float32
	Focus    *float32
	Range    *float32
	Clip     *float32
	Zoom     *float32
	FogStart *float32
	FogEnd   *float32
}

type cameraStateRaw struct {
	Flags     uint32
	NodeIndex int32
	Fov       float32
	Focus     float32
	Range     float32
	Clip      float32
	Zoom      float32
	FogStart  float32
	FogEnd    float32
}

// FloatFromTo is a delta-validated scalar transition (from, to, and a
// precomputed delta), shared by CameraFromTo's seven flag-gated
// fields. Grounded on e21_camera_from_to.rs's assert_flag_and_value
// and make_value; the delta is carried literally rather than always
// recomputed, matching ObjectOpacityFromTo's anomaly-preserving
// convention elsewhere in this file.
type FloatFromTo struct {
	From, To, Delta float32
}

type floatFromToRaw struct {
	From, To, Delta float32
}

// Vec3FromTo is FloatFromTo's Vec3-valued counterpart, used by
// ObjectMotionFromTo's translate/rotate/scale components. Grounded on
// object_motion_from_to.rs.
type Vec3FromTo struct {
	From, To, Delta mesh.Vec3
}

// CameraFromTo flag bits gate each of the seven scalar transitions,
// grounded on e21_camera_from_to.rs's CameraFromToC field order.
const (
	CameraFromToClipNear      uint32 = 1 << 0
	CameraFromToClipFar       uint32 = 1 << 1
	CameraFromToLodMultiplier uint32 = 1 << 2
	CameraFromToFovH          uint32 = 1 << 3
	CameraFromToFovV          uint32 = 1 << 4
	CameraFromToZoomH         uint32 = 1 << 5
	CameraFromToZoomV         uint32 = 1 << 6
)

// CameraFromTo is the event body for Type CameraFromTo (21).
type CameraFromTo struct {
	Flags     uint32
	NodeIndex int32
	RunTime   float32

	ClipNear      *FloatFromTo
	ClipFar       *FloatFromTo
	LodMultiplier *FloatFromTo
	FovH          *FloatFromTo
	FovV          *FloatFromTo
	ZoomH         *FloatFromTo
	ZoomV         *FloatFromTo
}

type cameraFromToRaw struct {
	Flags         uint32
	NodeIndex     int32
	ClipNear      floatFromToRaw
	ClipFar       floatFromToRaw
	LodMultiplier floatFromToRaw
	FovH          floatFromToRaw
	FovV          floatFromToRaw
	ZoomH         floatFromToRaw
	ZoomV         floatFromToRaw
	RunTime       float32
}

// ObjectMotionFromTo flag bits gate morph/translate/rotate/scale,
// grounded on object_motion_from_to.rs's ObjectMotionFromToFlags.
const (
	ObjectMotionFromToTranslate uint32 = 1 << 0
	ObjectMotionFromToRotate    uint32 = 1 << 1
	ObjectMotionFromToScale     uint32 = 1 << 2
	ObjectMotionFromToMorph     uint32 = 1 << 3
)

// ObjectMotionFromTo is the event body for Type ObjectMotionFromTo
// (11).
type ObjectMotionFromTo struct {
	NodeIndex int32
	RunTime   float32
	Morph     *FloatFromTo
	Translate *Vec3FromTo
	Rotate    *Vec3FromTo
	Scale     *Vec3FromTo
}

type objectMotionFromToRaw struct {
	Flags          uint32
	NodeIndex      uint32
	MorphFrom      float32
	MorphTo        float32
	MorphDelta     float32
	TranslateFrom  mesh.Vec3
	TranslateTo    mesh.Vec3
	TranslateDelta mesh.Vec3
	RotateFrom     mesh.Vec3
	RotateTo       mesh.Vec3
	RotateDelta    mesh.Vec3
	ScaleFrom      mesh.Vec3
	ScaleTo        mesh.Vec3
	ScaleDelta     mesh.Vec3
	RunTime        float32
}

// FogState flags and fog type discriminant, grounded on
// e28_fog_state.rs.
const fogTypeFlag uint32 = 1 << 0

// Range is a min/max float pair (altitude or distance range).
type Range struct{ Min, Max float32 }

// FogState is the event body for Type FogStateT.
type FogState struct {
	FogName string
	Flags   uint32
	FogType string
	Color   mesh.Color
	Altitude Range
	Range    Range
}

type fogStateRaw struct {
	FogName  [32]byte
	Flags    uint32
	FogType  uint32
	Color    mesh.Color
	Altitude Range
	Range    Range
}

var fogTypeNames = map[uint32]string{0: "Linear", 1: "Exponential", 2: "Exponential2"}
var fogTypeValues = map[string]uint32{"Linear": 0, "Exponential": 1, "Exponential2": 2}

// Loop is the event body for Type LoopT: a control-flow repeat with
// a repeat count, grounded on control_flow.rs's INDEX=30 (8 bytes). The
// second field has no recoverable name in the retrieved source and is
// carried opaque, asserted zero on read like the module's other unnamed
// reserved fields.
type Loop struct {
	RepeatCount int32
	Zero04      uint32
}

// Condition discriminates If/ElseIf's 4-byte comparison value,
// grounded on control_flow.rs.
type ConditionKind uint32

const (
	ConditionFloat   ConditionKind = 0
	ConditionInt     ConditionKind = 1
	ConditionBoolean ConditionKind = 2
)

type Condition struct {
	Kind    ConditionKind
	Float   float32
	Int     int32
	Boolean uint32
}

// If is the event body for Type IfT (INDEX=31, 12 bytes: kind+value
// discriminated union plus a jump offset to the matching Else/Endif,
// needed by any bytecode interpreter executing these events in place
// rather than only round-tripping them).
type If struct {
	Cond       Condition
	JumpOffset uint32
}

type ifRaw struct {
	Kind       uint32
	Value      uint32
	JumpOffset uint32
}

// Else is the event body for Type ElseT (INDEX=32): no payload.
type Else struct{}

// Elseif is the event body for Type ElseifT (INDEX=33), same 12-byte
// shape as If.
type Elseif struct {
	Cond       Condition
	JumpOffset uint32
}

// Endif is the event body for Type EndifT (INDEX=34): no payload.
type Endif struct{}

// Callback is the event body for Type CallbackT (INDEX=35). Neither this
// package nor the anim package checks a Callback event against the owning
// anim def's has_callbacks flag.
type Callback struct {
	Value int32
}

// motion si-script flags, grounded on si_script handling.
const (
	SiTranslate uint32 = 1 << 0
	SiRotate    uint32 = 1 << 1
	SiScale     uint32 = 1 << 2
)

// ObjectMotionSiScript is the event body for Type
// ObjectMotionSiScriptT: a variable-length stream of per-frame
// keyframes, each carrying only the flagged-in payload blocks.
type ObjectMotionSiScript struct {
	NodeIndex int32
	Frames    []SiFrame
}

// SiFrame is one si-script keyframe.
type SiFrame struct {
	Flags     uint32
	StartTime float32
	EndTime   float32

	Translate *SiTranslateData
	Rotate    *SiRotateData
	Scale     *SiScaleData
}

// SiTranslateData carries a 64-byte opaque trailer never interpreted
// by this codec, matching the Open Question precedent for unnamed
// trailing blobs.
type SiTranslateData struct {
	Value mesh.Vec3
	Unk   [64]byte
}

type SiRotateData struct {
	Value Quat
	Unk   [60]byte
}

type SiScaleData struct {
	Value mesh.Vec3
	Unk   [64]byte
}

type siHeaderRaw struct {
	NodeIndex int32
	Count     uint32
	Zero08    uint32
	Zero12    uint32
	Zero16    uint32
	Zero20    uint32
}

type siFrameHeaderRaw struct {
	Flags     uint32
	StartTime float32
	EndTime   float32
}

func readBody(r *mio.CountingReader, t Type, ctx Context, offset int64) (any, error) {
	switch t {
	case ObjectScaleStateT:
		var raw objectScaleStateRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		return &ObjectScaleState{Scale: raw.Scale, NodeIndex: raw.NodeIndex}, nil

	case ObjectRotateStateT:
		var raw objectRotateStateRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		if _, err := mio.AssertBits("object rotate state flags", r.Prev, raw.Flags,
			RotateRelative|RotateAtNodeXYZ|RotateAtNodeMatrix); err != nil {
			return nil, err
		}
		return &ObjectRotateState{
			Flags: raw.Flags, Rotate: raw.Rotate,
			NodeIndex: raw.NodeIndex, AtNodeIndex: raw.AtNodeIndex,
		}, nil

	case ObjectOpacityFromToT:
		var raw objectOpacityFromToRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		if want := (raw.OpacityTo - raw.OpacityFrom) / raw.RunTime; want != raw.OpacityDelta {
			mlog.Default().Warnf("object opacity from-to delta mismatch at %d: got %v, computed %v", r.Prev, raw.OpacityDelta, want)
		}
		return &ObjectOpacityFromTo{
			NodeIndex: raw.NodeIndex, StateFrom: raw.StateFrom, StateTo: raw.StateTo,
			OpacityFrom: raw.OpacityFrom, OpacityTo: raw.OpacityTo,
			OpacityDelta: raw.OpacityDelta, RunTime: raw.RunTime,
		}, nil

	case CameraStateT:
		var raw cameraStateRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		known := CameraFov | CameraFocus | CameraRange | CameraClip | CameraZoom | CameraFogStart | CameraFogEnd
		if _, err := mio.AssertBits("camera state flags", r.Prev, raw.Flags, known); err != nil {
			return nil, err
		}
		cs := &CameraState{Flags: raw.Flags, NodeIndex: raw.NodeIndex}
		if raw.Flags&CameraFov != 0 {
			v := raw.Fov
			cs.Fov = &v
		} else if raw.Fov != 0 {
			return nil, merr.New("camera state fov", r.Prev+8, raw.Fov, 0)
		}
		if raw.Flags&CameraFocus != 0 {
			v := raw.Focus
			cs.Focus = &v
		} else if raw.Focus != 0 {
			return nil, merr.New("camera state focus", r.Prev+12, raw.Focus, 0)
		}
		if raw.Flags&CameraRange != 0 {
			v := raw.Range
			cs.Range = &v
		} else if raw.Range != 0 {
			return nil, merr.New("camera state range", r.Prev+16, raw.Range, 0)
		}
		if raw.Flags&CameraClip != 0 {
			v := raw.Clip
			cs.Clip = &v
		} else if raw.Clip != 0 {
			return nil, merr.New("camera state clip", r.Prev+20, raw.Clip, 0)
		}
		if raw.Flags&CameraZoom != 0 {
			v := raw.Zoom
			cs.Zoom = &v
		} else if raw.Zoom != 0 {
			return nil, merr.New("camera state zoom", r.Prev+24, raw.Zoom, 0)
		}
		if raw.Flags&CameraFogStart != 0 {
			v := raw.FogStart
			cs.FogStart = &v
		} else if raw.FogStart != 0 {
			return nil, merr.New("camera state fog start", r.Prev+28, raw.FogStart, 0)
		}
		if raw.Flags&CameraFogEnd != 0 {
			v := raw.FogEnd
			cs.FogEnd = &v
		} else if raw.FogEnd != 0 {
			return nil, merr.New("camera state fog end", r.Prev+32, raw.FogEnd, 0)
		}
		return cs, nil

	case CameraFromTo:
		var raw cameraFromToRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		known := CameraFromToClipNear | CameraFromToClipFar | CameraFromToLodMultiplier |
			CameraFromToFovH | CameraFromToFovV | CameraFromToZoomH | CameraFromToZoomV
		if _, err := mio.AssertBits("camera from to flags", r.Prev, raw.Flags, known); err != nil {
			return nil, err
		}
		if raw.RunTime <= 0 {
			return nil, merr.New("camera from to run time", r.Prev+92, raw.RunTime, "> 0")
		}
		cf := &CameraFromTo{Flags: raw.Flags, NodeIndex: raw.NodeIndex, RunTime: raw.RunTime}
		var err error
		if cf.ClipNear, err = readFloatFromTo("camera from to clip near", raw.Flags&CameraFromToClipNear != 0, raw.ClipNear, raw.RunTime, r.Prev+8); err != nil {
			return nil, err
		}
		if cf.ClipFar, err = readFloatFromTo("camera from to clip far", raw.Flags&CameraFromToClipFar != 0, raw.ClipFar, raw.RunTime, r.Prev+20); err != nil {
			return nil, err
		}
		if cf.LodMultiplier, err = readFloatFromTo("camera from to lod multiplier", raw.Flags&CameraFromToLodMultiplier != 0, raw.LodMultiplier, raw.RunTime, r.Prev+32); err != nil {
			return nil, err
		}
		if cf.FovH, err = readFloatFromTo("camera from to fov h", raw.Flags&CameraFromToFovH != 0, raw.FovH, raw.RunTime, r.Prev+44); err != nil {
			return nil, err
		}
		if cf.FovV, err = readFloatFromTo("camera from to fov v", raw.Flags&CameraFromToFovV != 0, raw.FovV, raw.RunTime, r.Prev+56); err != nil {
			return nil, err
		}
		if cf.ZoomH, err = readFloatFromTo("camera from to zoom h", raw.Flags&CameraFromToZoomH != 0, raw.ZoomH, raw.RunTime, r.Prev+68); err != nil {
			return nil, err
		}
		if cf.ZoomV, err = readFloatFromTo("camera from to zoom v", raw.Flags&CameraFromToZoomV != 0, raw.ZoomV, raw.RunTime, r.Prev+80); err != nil {
			return nil, err
		}
		return cf, nil

	case ObjectMotionFromTo:
		var raw objectMotionFromToRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		known := ObjectMotionFromToTranslate | ObjectMotionFromToRotate | ObjectMotionFromToScale | ObjectMotionFromToMorph
		if _, err := mio.AssertBits("object motion from to flags", r.Prev, raw.Flags, known); err != nil {
			return nil, err
		}
		if raw.RunTime <= 0 {
			return nil, merr.New("object motion from to run time", r.Prev+128, raw.RunTime, "> 0")
		}
		m := &ObjectMotionFromTo{NodeIndex: int32(raw.NodeIndex), RunTime: raw.RunTime}
		if raw.Flags&ObjectMotionFromToMorph != 0 {
			m.Morph = &FloatFromTo{From: raw.MorphFrom, To: raw.MorphTo, Delta: raw.MorphDelta}
		} else if raw.MorphFrom != 0 || raw.MorphTo != 0 || raw.MorphDelta != 0 {
			return nil, merr.New("object motion morph", r.Prev+8, raw.MorphFrom, 0)
		}
		var zero mesh.Vec3
		if raw.Flags&ObjectMotionFromToTranslate != 0 {
			m.Translate = &Vec3FromTo{From: raw.TranslateFrom, To: raw.TranslateTo, Delta: raw.TranslateDelta}
		} else if raw.TranslateFrom != zero || raw.TranslateTo != zero || raw.TranslateDelta != zero {
			return nil, merr.New("object motion translate", r.Prev+20, raw.TranslateFrom, zero)
		}
		if raw.Flags&ObjectMotionFromToRotate != 0 {
			m.Rotate = &Vec3FromTo{From: raw.RotateFrom, To: raw.RotateTo, Delta: raw.RotateDelta}
		} else if raw.RotateFrom != zero || raw.RotateTo != zero || raw.RotateDelta != zero {
			return nil, merr.New("object motion rotate", r.Prev+56, raw.RotateFrom, zero)
		}
		if raw.Flags&ObjectMotionFromToScale != 0 {
			m.Scale = &Vec3FromTo{From: raw.ScaleFrom, To: raw.ScaleTo, Delta: raw.ScaleDelta}
		} else if raw.ScaleFrom != zero || raw.ScaleTo != zero || raw.ScaleDelta != zero {
			return nil, merr.New("object motion scale", r.Prev+92, raw.ScaleFrom, zero)
		}
		return m, nil

	case FogStateT:
		var raw fogStateRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		name, err := decodeFogName(r.Prev, raw.FogName[:])
		if err != nil {
			return nil, err
		}
		var fogType string
		if raw.Flags&fogTypeFlag != 0 {
			t, ok := fogTypeNames[raw.FogType]
			if !ok {
				return nil, merr.Of(merr.BadDiscriminant, "fog state type", r.Prev+36, raw.FogType, nil)
			}
			fogType = t
		} else {
			fogType = fixup.DefaultFogType(fixup.FogContext{AnimName: ctx.AnimName, AnimDefName: ctx.AnimDefName, Offset: offset})
		}
		return &FogState{
			FogName: name, Flags: raw.Flags, FogType: fogType,
			Color: raw.Color, Altitude: raw.Altitude, Range: raw.Range,
		}, nil

	case LoopT:
		var raw Loop
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		if raw.Zero04 != 0 {
			return nil, merr.New("loop reserved", r.Prev+4, raw.Zero04, 0)
		}
		return &raw, nil

	case IfT, ElseifT:
		var raw ifRaw
		if err := r.Struct(&raw); err != nil {
			return nil, err
		}
		cond := Condition{Kind: ConditionKind(raw.Kind)}
		switch cond.Kind {
		case ConditionFloat:
			cond.Float = math.Float32frombits(raw.Value)
		case ConditionInt:
			cond.Int = int32(raw.Value)
		case ConditionBoolean:
			cond.Boolean = raw.Value
		default:
			return nil, merr.Of(merr.BadDiscriminant, "condition kind", r.Prev, raw.Kind, nil)
		}
		if t == IfT {
			return &If{Cond: cond, JumpOffset: raw.JumpOffset}, nil
		}
		return &Elseif{Cond: cond, JumpOffset: raw.JumpOffset}, nil

	case ElseT:
		return &Else{}, nil

	case EndifT:
		return &Endif{}, nil

	case CallbackT:
		v, err := r.I32()
		if err != nil {
			return nil, err
		}
		return &Callback{Value: v}, nil

	case ObjectMotionSiScriptT:
		var hdr siHeaderRaw
		if err := r.Struct(&hdr); err != nil {
			return nil, err
		}
		if hdr.Zero08 != 0 || hdr.Zero12 != 0 || hdr.Zero16 != 0 || hdr.Zero20 != 0 {
			return nil, merr.New("si script reserved", r.Prev+8, hdr, "zero")
		}
		script := &ObjectMotionSiScript{NodeIndex: hdr.NodeIndex}
		for i := uint32(0); i < hdr.Count; i++ {
			var fhdr siFrameHeaderRaw
			if err := r.Struct(&fhdr); err != nil {
				return nil, err
			}
			if _, err := mio.AssertBits("si frame flags", r.Prev, fhdr.Flags, SiTranslate|SiRotate|SiScale); err != nil {
				return nil, err
			}
			frame := SiFrame{Flags: fhdr.Flags, StartTime: fhdr.StartTime, EndTime: fhdr.EndTime}
			if fhdr.Flags&SiTranslate != 0 {
				var d SiTranslateData
				if err := r.Struct(&d); err != nil {
					return nil, err
				}
				frame.Translate = &d
			}
			if fhdr.Flags&SiRotate != 0 {
				var d SiRotateData
				if err := r.Struct(&d); err != nil {
					return nil, err
				}
				frame.Rotate = &d
			}
			if fhdr.Flags&SiScale != 0 {
				var d SiScaleData
				if err := r.Struct(&d); err != nil {
					return nil, err
				}
				frame.Scale = &d
			}
			script.Frames = append(script.Frames, frame)
		}
		return script, nil

	default:
		return nil, merr.Of(merr.Unsupported, "event type", offset, uint8(t), nil)
	}
}

// readFloatFromTo validates one of CameraFromTo's flag-gated scalar
// transitions: the delta is checked against the formula and a
// mismatch is only logged (same anomaly-preserving convention as
// ObjectOpacityFromTo), but when the gating flag is clear all three
// raw fields must be exactly zero.
func readFloatFromTo(name string, present bool, raw floatFromToRaw, runTime float32, offset int64) (*FloatFromTo, error) {
	if want := (raw.To - raw.From) / runTime; want != raw.Delta {
		mlog.Default().Warnf("%s delta mismatch at %d: got %v, computed %v", name, offset, raw.Delta, want)
	}
	if !present {
		if raw.From != 0 || raw.To != 0 || raw.Delta != 0 {
			return nil, merr.New(name, offset, raw.From, 0)
		}
		return nil, nil
	}
	return &FloatFromTo{From: raw.From, To: raw.To, Delta: raw.Delta}, nil
}

func decodeFogName(offset int64, field []byte) (string, error) {
	n := 0
	for n < len(field) && field[n] != 0 {
		n++
	}
	return string(field[:n]), nil
}

func encodeFogName(s string, width int) []byte {
	out := make([]byte, width)
	copy(out, s)
	return out
}

func writeBody(w *mio.CountingWriter, t Type, body any) error {
	switch b := body.(type) {
	case *ObjectScaleState:
		raw := objectScaleStateRaw{Scale: b.Scale, NodeIndex: b.NodeIndex}
		return w.Struct(&raw)

	case *ObjectRotateState:
		raw := objectRotateStateRaw{
			Flags: b.Flags, Rotate: b.Rotate, NodeIndex: b.NodeIndex, AtNodeIndex: b.AtNodeIndex,
		}
		return w.Struct(&raw)

	case *ObjectOpacityFromTo:
		raw := objectOpacityFromToRaw{
			NodeIndex: b.NodeIndex, StateFrom: b.StateFrom, StateTo: b.StateTo,
			OpacityFrom: b.OpacityFrom, OpacityTo: b.OpacityTo,
			OpacityDelta: b.OpacityDelta, RunTime: b.RunTime,
		}
		return w.Struct(&raw)

	case *CameraState:
		raw := cameraStateRaw{Flags: b.Flags, NodeIndex: b.NodeIndex}
		if b.Fov != nil {
			raw.Fov = *b.Fov
		}
		if b.Focus != nil {
			raw.Focus = *b.Focus
		}
		if b.Range != nil {
			raw.Range = *b.Range
		}
		if b.Clip != nil {
			raw.Clip = *b.Clip
		}
		if b.Zoom != nil {
			raw.Zoom = *b.Zoom
		}
		if b.FogStart != nil {
			raw.FogStart = *b.FogStart
		}
		if b.FogEnd != nil {
			raw.FogEnd = *b.FogEnd
		}
		return w.Struct(&raw)

	case *CameraFromTo:
		raw := cameraFromToRaw{
			Flags: b.Flags, NodeIndex: b.NodeIndex, RunTime: b.RunTime,
			ClipNear:      makeFloatFromTo(b.ClipNear),
			ClipFar:       makeFloatFromTo(b.ClipFar),
			LodMultiplier: makeFloatFromTo(b.LodMultiplier),
			FovH:          makeFloatFromTo(b.FovH),
			FovV:          makeFloatFromTo(b.FovV),
			ZoomH:         makeFloatFromTo(b.ZoomH),
			ZoomV:         makeFloatFromTo(b.ZoomV),
		}
		return w.Struct(&raw)

	case *ObjectMotionFromTo:
		var zero mesh.Vec3
		raw := objectMotionFromToRaw{NodeIndex: uint32(b.NodeIndex), RunTime: b.RunTime}
		if b.Morph != nil {
			raw.Flags |= ObjectMotionFromToMorph
			raw.MorphFrom, raw.MorphTo, raw.MorphDelta = b.Morph.From, b.Morph.To, b.Morph.Delta
		}
		if b.Translate != nil {
			raw.Flags |= ObjectMotionFromToTranslate
			raw.TranslateFrom, raw.TranslateTo, raw.TranslateDelta = b.Translate.From, b.Translate.To, b.Translate.Delta
		} else {
			raw.TranslateFrom, raw.TranslateTo, raw.TranslateDelta = zero, zero, zero
		}
		if b.Rotate != nil {
			raw.Flags |= ObjectMotionFromToRotate
			raw.RotateFrom, raw.RotateTo, raw.RotateDelta = b.Rotate.From, b.Rotate.To, b.Rotate.Delta
		} else {
			raw.RotateFrom, raw.RotateTo, raw.RotateDelta = zero, zero, zero
		}
		if b.Scale != nil {
			raw.Flags |= ObjectMotionFromToScale
			raw.ScaleFrom, raw.ScaleTo, raw.ScaleDelta = b.Scale.From, b.Scale.To, b.Scale.Delta
		} else {
			raw.ScaleFrom, raw.ScaleTo, raw.ScaleDelta = zero, zero, zero
		}
		return w.Struct(&raw)

	case *FogState:
		raw := fogStateRaw{Flags: b.Flags, Color: b.Color, Altitude: b.Altitude, Range: b.Range}
		copy(raw.FogName[:], encodeFogName(b.FogName, 32))
		if b.Flags&fogTypeFlag != 0 {
			ft, ok := fogTypeValues[b.FogType]
			if !ok {
				return merr.Of(merr.BadDiscriminant, "fog state type", w.Offset, b.FogType, nil)
			}
			raw.FogType = ft
		}
		return w.Struct(&raw)

	case *Loop:
		return w.Struct(b)

	case *If:
		return writeCondition(w, b.Cond, b.JumpOffset)
	case *Elseif:
		return writeCondition(w, b.Cond, b.JumpOffset)

	case *Else:
		return nil
	case *Endif:
		return nil

	case *Callback:
		return w.I32(b.Value)

	case *ObjectMotionSiScript:
		hdr := siHeaderRaw{NodeIndex: b.NodeIndex, Count: uint32(len(b.Frames))}
		if err := w.Struct(&hdr); err != nil {
			return err
		}
		for i := range b.Frames {
			f := &b.Frames[i]
			fhdr := siFrameHeaderRaw{Flags: f.Flags, StartTime: f.StartTime, EndTime: f.EndTime}
			if err := w.Struct(&fhdr); err != nil {
				return err
			}
			if f.Translate != nil {
				if err := w.Struct(f.Translate); err != nil {
					return err
				}
			}
			if f.Rotate != nil {
				if err := w.Struct(f.Rotate); err != nil {
					return err
				}
			}
			if f.Scale != nil {
				if err := w.Struct(f.Scale); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return merr.Of(merr.Unsupported, "event type", w.Offset, uint8(t), nil)
	}
}

// makeFloatFromTo builds a CameraFromTo raw field from an optional
// transition, emitting all-zero when absent (mirrors
// e21_camera_from_to.rs's make_value).
func makeFloatFromTo(v *FloatFromTo) floatFromToRaw {
	if v == nil {
		return floatFromToRaw{}
	}
	return floatFromToRaw{From: v.From, To: v.To, Delta: v.Delta}
}

func writeCondition(w *mio.CountingWriter, c Condition, jumpOffset uint32) error {
	raw := ifRaw{Kind: uint32(c.Kind), JumpOffset: jumpOffset}
	switch c.Kind {
	case ConditionFloat:
		raw.Value = math.Float32bits(c.Float)
	case ConditionInt:
		raw.Value = uint32(c.Int)
	case ConditionBoolean:
		raw.Value = c.Boolean
	}
	return w.Struct(&raw)
}

// BodySize returns the on-disk byte length of body (header excluded).
func BodySize(t Type, body any) (uint16, error) {
	switch b := body.(type) {
	case *ObjectScaleState:
		return 16, nil
	case *ObjectRotateState:
		return 20, nil
	case *ObjectOpacityFromTo:
		return 24, nil
	case *CameraState:
		return 36, nil
	case *CameraFromTo:
		return 96, nil
	case *ObjectMotionFromTo:
		return 132, nil
	case *FogState:
		return 68, nil
	case *Loop:
		return 8, nil
	case *If:
		return 12, nil
	case *Elseif:
		return 12, nil
	case *Else:
		return 0, nil
	case *Endif:
		return 0, nil
	case *Callback:
		return 4, nil
	case *ObjectMotionSiScript:
		size := 24
		for i := range b.Frames {
			size += 12
			if b.Frames[i].Translate != nil {
				size += 76
			}
			if b.Frames[i].Rotate != nil {
				size += 76
			}
			if b.Frames[i].Scale != nil {
				size += 76
			}
		}
		return uint16(size), nil
	default:
		return 0, merr.Of(merr.Unsupported, "event type", 0, uint8(t), nil)
	}
}
