// Package fixup holds the static remap tables spec.md §4.C and §4.D call
// for: known-bad header/index patterns in shipped gamez files (the "C4"
// and "Planes" scenarios) and known-bad flag/value combinations in shipped
// anim files (the "vtol1/m6_start_animation" fog default). Per the Design
// Notes in spec.md §9, these are declared data, not code; they are
// authored as YAML documents and decoded once via gopkg.in/yaml.v3,
// mirroring how gazed-vu's `eg/is.go` loads its star catalog the same way.
package fixup

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables/gamez_cs.yaml
var gamezCSData []byte

//go:embed tables/anim_fog.yaml
var animFogData []byte

// GamezHeaderKey is the subset of a gamez header's fields a fixup entry is
// matched against, exact-byte-equal, per spec.md §4.C.
type GamezHeaderKey struct {
	Signature       uint32 `yaml:"signature"`
	Version         uint32 `yaml:"version"`
	Unk08           uint32 `yaml:"unk08"`
	TextureCount    uint32 `yaml:"texture_count"`
	TexturesOffset  uint32 `yaml:"textures_offset"`
	MaterialsOffset uint32 `yaml:"materials_offset"`
	MeshesOffset    uint32 `yaml:"meshes_offset"`
	NodeArraySize   uint32 `yaml:"node_array_size"`
	NodeCount       uint32 `yaml:"node_count"`
	NodesOffset     uint32 `yaml:"nodes_offset"`
}

// GamezFixup is one entry in the gamez fixup registry: a bidirectional
// bijection on model/node indices, keyed by an exact header match.
type GamezFixup struct {
	Name string `yaml:"name"`
	// ReadKey is matched against the header as read from disk.
	ReadKey GamezHeaderKey `yaml:"read_key"`
	// WriteKey is matched against the header as the caller intends to
	// write it (spec.md §4.C: "applies both a read-time and a write-time
	// remapping function").
	WriteKey GamezHeaderKey `yaml:"write_key"`
	// NodeCountFromArraySizeOnRead is the C4-specific quirk: on read,
	// node_count is rewritten to node_array_size (the shipped file's
	// node_count disagrees with the actual, correct, smaller array).
	NodeCountFromArraySizeOnRead bool `yaml:"node_count_from_array_size_on_read"`
	// MeshIndexRemap maps stored_index -> corrected_index: read applies it
	// forward, write applies its inverse (meshIndexUnmap).
	MeshIndexRemap map[int32]int32 `yaml:"mesh_index_remap"`
	// LastIndexRemap maps a model/node "last index" sentinel value.
	LastIndexRemap map[int32]int32 `yaml:"last_index_remap"`

	// meshIndexUnmap and lastIndexUnmap are the exact inverses of
	// MeshIndexRemap/LastIndexRemap, computed once after YAML load.
	meshIndexUnmap map[int32]int32
	lastIndexUnmap map[int32]int32
}

type gamezTable struct {
	Fixups []*GamezFixup `yaml:"fixups"`
}

var loadGamezTable = sync.OnceValue(func() *gamezTable {
	var t gamezTable
	if err := yaml.Unmarshal(gamezCSData, &t); err != nil {
		panic("fixup: malformed gamez_cs.yaml: " + err.Error())
	}
	for _, f := range t.Fixups {
		f.inverse()
	}
	return &t
})

func (f *GamezFixup) inverse() {
	inv := make(map[int32]int32, len(f.MeshIndexRemap))
	for k, v := range f.MeshIndexRemap {
		inv[v] = k
	}
	f.meshIndexUnmap = inv

	invLast := make(map[int32]int32, len(f.LastIndexRemap))
	for k, v := range f.LastIndexRemap {
		invLast[v] = k
	}
	f.lastIndexUnmap = invLast
}

// MatchGamezRead returns the fixup (if any) whose ReadKey matches header
// exactly.
func MatchGamezRead(header GamezHeaderKey) *GamezFixup {
	for _, f := range loadGamezTable().Fixups {
		if f.ReadKey == header {
			return f
		}
	}
	return nil
}

// MatchGamezWrite returns the fixup (if any) whose WriteKey matches header
// exactly.
func MatchGamezWrite(header GamezHeaderKey) *GamezFixup {
	for _, f := range loadGamezTable().Fixups {
		if f.WriteKey == header {
			return f
		}
	}
	return nil
}

// RemapIndexRead maps a stored index to the corrected index, for use after
// reading a sparse model/node slot's "expected index" field.
func (f *GamezFixup) RemapIndexRead(idx int32) int32 {
	if v, ok := f.MeshIndexRemap[idx]; ok {
		return v
	}
	return idx
}

// RemapIndexWrite is the exact inverse of RemapIndexRead.
func (f *GamezFixup) RemapIndexWrite(idx int32) int32 {
	if v, ok := f.meshIndexUnmap[idx]; ok {
		return v
	}
	return idx
}

// RemapLastIndexRead maps a stored "last index" field to its corrected
// value.
func (f *GamezFixup) RemapLastIndexRead(idx int32) int32 {
	if v, ok := f.LastIndexRemap[idx]; ok {
		return v
	}
	return idx
}

// RemapLastIndexWrite is the exact inverse of RemapLastIndexRead.
func (f *GamezFixup) RemapLastIndexWrite(idx int32) int32 {
	if v, ok := f.lastIndexUnmap[idx]; ok {
		return v
	}
	return idx
}

// FogContext identifies the exact mission/event location a fog-state
// fixup is keyed on (spec.md §4.D: "by context keys... {anim_name ==
// "vtol1" ∧ anim_def_name == "m6_start_animation" ∧ offset == 460748}"),
// rather than an exact header byte match like the gamez fixups.
type FogContext struct {
	AnimName    string `yaml:"anim_name"`
	AnimDefName string `yaml:"anim_def_name"`
	Offset      int64  `yaml:"offset"`
}

// FogEntry gives the default fog type a FogContext's event should assume
// when its FOG_TYPE flag bit is absent.
type FogEntry struct {
	Context     FogContext `yaml:"context"`
	DefaultType string     `yaml:"default_type"`
}

type fogTable struct {
	Entries []FogEntry `yaml:"entries"`
}

var loadFogTable = sync.OnceValue(func() *fogTable {
	var t fogTable
	if err := yaml.Unmarshal(animFogData, &t); err != nil {
		panic("fixup: malformed anim_fog.yaml: " + err.Error())
	}
	return &t
})

// DefaultFogType returns the fixed-up default fog type for ctx, and the
// ordinary default ("Linear") when no entry matches.
func DefaultFogType(ctx FogContext) string {
	for _, e := range loadFogTable().Entries {
		if e.Context == ctx {
			return e.DefaultType
		}
	}
	return "Linear"
}
