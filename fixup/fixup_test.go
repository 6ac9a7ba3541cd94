package fixup

import "testing"

func TestMatchGamezReadC4(t *testing.T) {
	key := GamezHeaderKey{
		Signature: 43455010, Version: 42, Unk08: 967279328,
		TextureCount: 654, TexturesOffset: 40, MaterialsOffset: 28816,
		MeshesOffset: 72964, NodeArraySize: 8289, NodeCount: 8437,
		NodesOffset: 5107144,
	}
	f := MatchGamezRead(key)
	if f == nil || f.Name != "c4" {
		t.Fatalf("MatchGamezRead(c4) = %v, want c4 fixup", f)
	}
	if !f.NodeCountFromArraySizeOnRead {
		t.Fatalf("c4 fixup should set node_count_from_array_size_on_read")
	}
	if got := f.RemapIndexRead(2308); got != 2268 {
		t.Fatalf("RemapIndexRead(2308) = %d, want 2268", got)
	}
	if got := f.RemapIndexWrite(2268); got != 2308 {
		t.Fatalf("RemapIndexWrite(2268) = %d, want 2308 (exact inverse)", got)
	}
	if got := f.RemapLastIndexRead(2490); got != 2283 {
		t.Fatalf("RemapLastIndexRead(2490) = %d, want 2283", got)
	}
	if got := f.RemapLastIndexWrite(2283); got != 2490 {
		t.Fatalf("RemapLastIndexWrite(2283) = %d, want 2490", got)
	}
}

func TestMatchGamezReadUnmatchedHeaderIsNil(t *testing.T) {
	if f := MatchGamezRead(GamezHeaderKey{}); f != nil {
		t.Fatalf("MatchGamezRead(zero key) = %v, want nil", f)
	}
}

func TestMatchGamezWriteUsesCorrectedNodeCount(t *testing.T) {
	key := GamezHeaderKey{
		Signature: 43455010, Version: 42, Unk08: 967279328,
		TextureCount: 654, TexturesOffset: 40, MaterialsOffset: 28816,
		MeshesOffset: 72964, NodeArraySize: 8289, NodeCount: 8289,
		NodesOffset: 5107144,
	}
	f := MatchGamezWrite(key)
	if f == nil || f.Name != "c4" {
		t.Fatalf("MatchGamezWrite(c4) = %v, want c4 fixup", f)
	}
}

func TestDefaultFogTypeRcM6(t *testing.T) {
	ctx := FogContext{AnimName: "vtol1", AnimDefName: "m6_start_animation", Offset: 460748}
	if got := DefaultFogType(ctx); got != "Off" {
		t.Fatalf("DefaultFogType(rc_m6) = %q, want Off", got)
	}
}

func TestDefaultFogTypeOrdinary(t *testing.T) {
	ctx := FogContext{AnimName: "any", AnimDefName: "any", Offset: 0}
	if got := DefaultFogType(ctx); got != "Linear" {
		t.Fatalf("DefaultFogType(ordinary) = %q, want Linear", got)
	}
}
