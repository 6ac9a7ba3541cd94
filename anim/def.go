package anim

import (
	"github.com/TerranMechworks/mech3ax-sub003/merr"
	"github.com/TerranMechworks/mech3ax-sub003/mio"
	"github.com/TerranMechworks/mech3ax-sub003/mtype"
)

// DefFlags are the AnimDef record's bitflags, grounded on mw/anim_def/
// write.rs's AnimDefFlags construction.
type DefFlags uint32

const (
	FlagNetworkLogSet       DefFlags = 1 << 0
	FlagNetworkLogOn        DefFlags = 1 << 1
	FlagSaveLogSet          DefFlags = 1 << 2
	FlagSaveLogOn           DefFlags = 1 << 3
	FlagExecutionByZone     DefFlags = 1 << 4
	FlagExecutionByRange    DefFlags = 1 << 5
	FlagResetTime           DefFlags = 1 << 6
	FlagHasCallbacks        DefFlags = 1 << 7
	FlagAutoResetNodeStates DefFlags = 1 << 8
	FlagProximityDamage     DefFlags = 1 << 9
)

const defKnownFlags = FlagNetworkLogSet | FlagNetworkLogOn | FlagSaveLogSet | FlagSaveLogOn |
	FlagExecutionByZone | FlagExecutionByRange | FlagResetTime | FlagHasCallbacks |
	FlagAutoResetNodeStates | FlagProximityDamage

// Activation mirrors AnimActivation: OnCall is the sentinel value the
// always-zero entry 0 carries (mw/anim_def/zero.rs).
type Activation uint8

const (
	ActivationOnCall Activation = iota
	ActivationOnStartup
)

// Execution is the execution-mode discriminant folded out of the raw
// flags/range fields (mw/anim_def/write.rs's match on anim_def.execution).
type Execution int

const (
	ExecutionNone Execution = iota
	ExecutionByZone
	ExecutionByRange
)

// Range is a min/max pair, used for the execution-by-range bounds.
type Range struct{ Min, Max float32 }

const seqDefInfoSize = 64
const animDefSize = 316

type seqDefInfoRaw struct {
	Name    [32]byte
	Flags   uint32
	Zero36  [20]byte
	Pointer uint32
	Size    uint32
}

type animDefRaw struct {
	AnimName       [32]byte
	Name           [32]byte
	AnimPtr        uint32
	AnimRootName   [32]byte
	AnimRootPtr    uint32
	Zero104        [44]byte
	Flags          uint32
	Status         uint8
	Activation     uint8
	ExecutionPrio  uint8
	Two155         uint8
	ExecByRangeMin float32
	ExecByRangeMax float32
	ResetTime      float32
	Zero168        float32
	MaxHealth      float32
	CurHealth      float32
	Zero180        uint32
	Zero184        uint32
	Zero188        uint32
	Zero192        uint32
	SeqDefsPtr     uint32
	ResetState     seqDefInfoRaw
	SeqDefCount    uint8
	ObjectCount    uint8
	NodeCount      uint8
	LightCount     uint8
	PufferCount    uint8
	DynSoundCount  uint8
	StcSoundCount  uint8
	EffectCount    uint8
	PrereqCount    uint8
	PrereqMinToSat uint8
	AnimRefCount   uint8
	Zero275        uint8
	ObjectsPtr     uint32
	NodesPtr       uint32
	LightsPtr      uint32
	PuffersPtr     uint32
	DynSoundsPtr   uint32
	StcSoundsPtr   uint32
	EffectsPtr     uint32
	PrereqsPtr     uint32
	AnimRefsPtr    uint32
	Zero312        uint32
}

// AnimDef is one fully decoded animation definition: the root record's
// fields plus every collateral array and stream that follows it on
// disk. Grounded on mw/anim_def/write.rs and mw/anim_def/zero.rs (field
// layout and offsets) and mw/parse.rs's read_anim_def orchestration.
type AnimDef struct {
	AnimName     mtype.AsciiGarbage
	Name         string
	AnimPtr      uint32
	AnimRootName mtype.AsciiGarbage
	AnimRootPtr  uint32

	Active                bool
	NetworkLog            *bool
	SaveLog               *bool
	Execution             Execution
	ExecByRange           Range
	ResetTimeValue        *float32
	HasCallbacks          bool
	AutoResetNodeStates   bool
	ProximityDamage       bool
	Activation            Activation
	Health                float32
	SeqDefsPtr            uint32
	PrereqMinToSatisfy    uint8

	Objects       []ObjectRef
	Nodes         []NodeRef
	Lights        []LightRef
	Puffers       []PufferRef
	DynamicSounds []SoundRef
	StaticSounds  []StaticSoundRef
	ActivPrereqs  []ActivationPrereq
	AnimRefs      []AnimRef

	ObjectsPtr, NodesPtr, LightsPtr, PuffersPtr    uint32
	DynamicSoundsPtr, StaticSoundsPtr, AnimRefsPtr uint32
	EffectsPtr                                     uint32

	ResetState ResetState
	Sequences  []SeqDef
}

func readAnimDefZero(r *mio.CountingReader) error {
	var raw animDefRaw
	if err := r.Struct(&raw); err != nil {
		return err
	}
	if raw != (animDefRaw{Activation: uint8(ActivationOnCall)}) {
		return merr.New("anim def zero", r.Prev, raw, "zero (activation OnCall)")
	}
	var reset seqDefInfoRaw
	if err := r.Struct(&reset); err != nil {
		return err
	}
	if reset != (seqDefInfoRaw{}) {
		return merr.New("anim def zero reset state", r.Prev, reset, "zero")
	}
	return nil
}

func writeAnimDefZero(w *mio.CountingWriter) error {
	raw := animDefRaw{Activation: uint8(ActivationOnCall)}
	if err := w.Struct(&raw); err != nil {
		return err
	}
	return w.Struct(&seqDefInfoRaw{})
}

// collateralLen returns the on-disk count for a possibly-nil collateral
// slice: zero sentinel plus the real entries, mirroring v.len()+1 in
// write.rs (an absent slice writes zero, matching the teacher's
// .unwrap_or(0) on the Option).
func collateralLen(n int, present bool) uint8 {
	if !present {
		return 0
	}
	return uint8(n + 1)
}

func readAnimDef(r *mio.CountingReader, variant Variant) (*AnimDef, error) {
	var raw animDefRaw
	if err := r.Struct(&raw); err != nil {
		return nil, err
	}

	animName, err := mtype.DecodeAsciiGarbage("anim def anim name", r.Prev+0, raw.AnimName[:])
	if err != nil {
		return nil, err
	}
	name, err := mtype.DecodeAsciiPadded("anim def name", r.Prev+32, raw.Name[:])
	if err != nil {
		return nil, err
	}
	animRootName, err := mtype.DecodeAsciiGarbage("anim def anim root name", r.Prev+68, raw.AnimRootName[:])
	if err != nil {
		return nil, err
	}
	if raw.Zero104 != ([44]byte{}) {
		return nil, merr.New("anim def field 104", r.Prev+104, raw.Zero104, "zero")
	}

	flags, err := mio.AssertBits("anim def flags", r.Prev+148, DefFlags(raw.Flags), defKnownFlags)
	if err != nil {
		return nil, err
	}
	if raw.Status != 0 {
		return nil, merr.New("anim def status", r.Prev+152, raw.Status, 0)
	}
	if raw.ExecutionPrio != 4 {
		return nil, merr.New("anim def execution priority", r.Prev+154, raw.ExecutionPrio, 4)
	}
	if raw.Two155 != 2 {
		return nil, merr.New("anim def field 155", r.Prev+155, raw.Two155, 2)
	}
	if raw.Zero168 != 0 {
		return nil, merr.New("anim def field 168", r.Prev+168, raw.Zero168, 0)
	}
	if raw.MaxHealth != raw.CurHealth {
		return nil, merr.New("anim def health", r.Prev+176, raw.CurHealth, raw.MaxHealth)
	}
	if raw.Zero180 != 0 || raw.Zero184 != 0 || raw.Zero188 != 0 || raw.Zero192 != 0 {
		return nil, merr.New("anim def field 180", r.Prev+180, raw, "zero")
	}
	if raw.EffectCount != 0 {
		return nil, merr.Of(merr.Unsupported, "anim def effects", r.Prev+271, raw.EffectCount, 0)
	}
	if raw.Zero275 != 0 {
		return nil, merr.New("anim def field 275", r.Prev+275, raw.Zero275, 0)
	}

	execution := ExecutionNone
	execByRange := Range{}
	switch {
	case flags&FlagExecutionByRange != 0:
		execution = ExecutionByRange
		execByRange = Range{raw.ExecByRangeMin, raw.ExecByRangeMax}
	case flags&FlagExecutionByZone != 0:
		execution = ExecutionByZone
		if raw.ExecByRangeMin != 0 || raw.ExecByRangeMax != 0 {
			return nil, merr.New("anim def exec by zone range", r.Prev+156, raw, "zero")
		}
	default:
		if raw.ExecByRangeMin != 0 || raw.ExecByRangeMax != 0 {
			return nil, merr.New("anim def exec range", r.Prev+156, raw, "zero")
		}
	}

	var networkLog *bool
	if flags&FlagNetworkLogSet != 0 {
		v := flags&FlagNetworkLogOn != 0
		networkLog = &v
	}
	var saveLog *bool
	if flags&FlagSaveLogSet != 0 {
		v := flags&FlagSaveLogOn != 0
		saveLog = &v
	}
	var resetTime *float32
	if flags&FlagResetTime != 0 {
		v := raw.ResetTime
		resetTime = &v
	} else if raw.ResetTime != -1.0 {
		return nil, merr.New("anim def reset time", r.Prev+164, raw.ResetTime, -1.0)
	}

	def := &AnimDef{
		AnimName: animName, Name: name, AnimPtr: raw.AnimPtr,
		AnimRootName: animRootName, AnimRootPtr: raw.AnimRootPtr,
		Active: true, NetworkLog: networkLog, SaveLog: saveLog,
		Execution: execution, ExecByRange: execByRange, ResetTimeValue: resetTime,
		HasCallbacks:        flags&FlagHasCallbacks != 0,
		AutoResetNodeStates: flags&FlagAutoResetNodeStates != 0,
		ProximityDamage:     flags&FlagProximityDamage != 0,
		Activation:          Activation(raw.Activation),
		Health:              raw.MaxHealth,
		SeqDefsPtr:          raw.SeqDefsPtr,
		PrereqMinToSatisfy:  raw.PrereqMinToSat,
		ObjectsPtr:          raw.ObjectsPtr, NodesPtr: raw.NodesPtr, LightsPtr: raw.LightsPtr,
		PuffersPtr: raw.PuffersPtr, DynamicSoundsPtr: raw.DynSoundsPtr,
		StaticSoundsPtr: raw.StcSoundsPtr, AnimRefsPtr: raw.AnimRefsPtr,
		EffectsPtr: raw.EffectsPtr,
	}

	if raw.ObjectCount > 0 {
		objects, err := readObjects(r, int(raw.ObjectCount)-1)
		if err != nil {
			return nil, err
		}
		def.Objects = objects
	}
	if raw.NodeCount > 0 {
		nodes, err := readNodes(r, int(raw.NodeCount)-1)
		if err != nil {
			return nil, err
		}
		def.Nodes = nodes
	}
	if raw.LightCount > 0 {
		lights, err := readLights(r, int(raw.LightCount)-1)
		if err != nil {
			return nil, err
		}
		def.Lights = lights
	}
	if raw.PufferCount > 0 {
		puffers, err := readPuffers(r, int(raw.PufferCount)-1)
		if err != nil {
			return nil, err
		}
		def.Puffers = puffers
	}
	if raw.DynSoundCount > 0 {
		sounds, err := readSounds(r, int(raw.DynSoundCount)-1)
		if err != nil {
			return nil, err
		}
		def.DynamicSounds = sounds
	}
	if raw.StcSoundCount > 0 {
		sounds, err := readStaticSounds(r, int(raw.StcSoundCount)-1)
		if err != nil {
			return nil, err
		}
		def.StaticSounds = sounds
	}
	if raw.PrereqCount > 0 {
		prereqs, err := readActivPrereqs(r, raw.PrereqCount)
		if err != nil {
			return nil, err
		}
		def.ActivPrereqs = prereqs
	}
	if raw.AnimRefCount > 0 {
		refs, err := readAnimRefs(r, raw.AnimRefCount)
		if err != nil {
			return nil, err
		}
		def.AnimRefs = refs
	}

	resetState, err := readResetState(r, def, raw.ResetState, variant)
	if err != nil {
		return nil, err
	}
	def.ResetState = resetState

	seqs, err := readSequenceDefs(r, def, raw.SeqDefCount, variant)
	if err != nil {
		return nil, err
	}
	def.Sequences = seqs

	return def, nil
}

func writeAnimDef(w *mio.CountingWriter, variant Variant, def *AnimDef) error {
	if !def.Active {
		return merr.Of(merr.Unsupported, "anim def active", w.Offset, def.Active, true)
	}

	var flags DefFlags
	if def.NetworkLog != nil {
		flags |= FlagNetworkLogSet
		if *def.NetworkLog {
			flags |= FlagNetworkLogOn
		}
	}
	if def.SaveLog != nil {
		flags |= FlagSaveLogSet
		if *def.SaveLog {
			flags |= FlagSaveLogOn
		}
	}
	execMin, execMax := float32(0), float32(0)
	switch def.Execution {
	case ExecutionByZone:
		flags |= FlagExecutionByZone
	case ExecutionByRange:
		flags |= FlagExecutionByRange
		execMin, execMax = def.ExecByRange.Min, def.ExecByRange.Max
	}
	resetTime := float32(-1.0)
	if def.ResetTimeValue != nil {
		flags |= FlagResetTime
		resetTime = *def.ResetTimeValue
	}
	if def.HasCallbacks {
		flags |= FlagHasCallbacks
	}
	if def.AutoResetNodeStates {
		flags |= FlagAutoResetNodeStates
	}
	if def.ProximityDamage {
		flags |= FlagProximityDamage
	}

	resetSize, err := sizeEvents(def.ResetState.Events)
	if err != nil {
		return err
	}
	reset := seqDefInfoRaw{Pointer: def.ResetState.Pointer, Size: resetSize}
	copy(reset.Name[:], mtype.EncodeAsciiPadded(resetSequenceName, 32))

	raw := animDefRaw{
		AnimPtr: def.AnimPtr, AnimRootPtr: def.AnimRootPtr,
		Flags: uint32(flags), Activation: uint8(def.Activation),
		ExecutionPrio: 4, Two155: 2,
		ExecByRangeMin: execMin, ExecByRangeMax: execMax, ResetTime: resetTime,
		MaxHealth: def.Health, CurHealth: def.Health,
		SeqDefsPtr: def.SeqDefsPtr, ResetState: reset,
		SeqDefCount:    uint8(len(def.Sequences)),
		ObjectCount:    collateralLen(len(def.Objects), def.Objects != nil),
		NodeCount:      collateralLen(len(def.Nodes), def.Nodes != nil),
		LightCount:     collateralLen(len(def.Lights), def.Lights != nil),
		PufferCount:    collateralLen(len(def.Puffers), def.Puffers != nil),
		DynSoundCount:  collateralLen(len(def.DynamicSounds), def.DynamicSounds != nil),
		StcSoundCount:  collateralLen(len(def.StaticSounds), def.StaticSounds != nil),
		PrereqCount:    uint8(len(def.ActivPrereqs)),
		PrereqMinToSat: def.PrereqMinToSatisfy,
		AnimRefCount:   uint8(len(def.AnimRefs)),
		ObjectsPtr:     def.ObjectsPtr, NodesPtr: def.NodesPtr, LightsPtr: def.LightsPtr,
		PuffersPtr: def.PuffersPtr, DynSoundsPtr: def.DynamicSoundsPtr,
		StcSoundsPtr: def.StaticSoundsPtr, AnimRefsPtr: def.AnimRefsPtr,
		EffectsPtr: def.EffectsPtr,
	}
	copy(raw.AnimName[:], mtype.EncodeAsciiGarbage(def.AnimName, 32))
	copy(raw.Name[:], mtype.EncodeAsciiPadded(def.Name, 32))
	copy(raw.AnimRootName[:], mtype.EncodeAsciiGarbage(def.AnimRootName, 32))

	if err := w.Struct(&raw); err != nil {
		return err
	}

	if def.Objects != nil {
		if err := writeObjects(w, def.Objects); err != nil {
			return err
		}
	}
	if def.Nodes != nil {
		if err := writeNodes(w, def.Nodes); err != nil {
			return err
		}
	}
	if def.Lights != nil {
		if err := writeLights(w, def.Lights); err != nil {
			return err
		}
	}
	if def.Puffers != nil {
		if err := writePuffers(w, def.Puffers); err != nil {
			return err
		}
	}
	if def.DynamicSounds != nil {
		if err := writeSounds(w, def.DynamicSounds); err != nil {
			return err
		}
	}
	if def.StaticSounds != nil {
		if err := writeStaticSounds(w, def.StaticSounds); err != nil {
			return err
		}
	}
	if def.ActivPrereqs != nil {
		if err := writeActivPrereqs(w, def.ActivPrereqs); err != nil {
			return err
		}
	}
	if def.AnimRefs != nil {
		if err := writeAnimRefs(w, def.AnimRefs); err != nil {
			return err
		}
	}

	if err := writeResetState(w, def, variant); err != nil {
		return err
	}
	return writeSequenceDefs(w, def, variant)
}
