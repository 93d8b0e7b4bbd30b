package asset

import "testing"

func TestSplitAccessorsTightSingle(t *testing.T) {
	// S1: one VEC3/F32 accessor, 3 elements, tightly packed.
	src := make([]byte, 36)
	for i := range src {
		src[i] = byte(i)
	}
	acc := &Accessor{ComponentType: ComponentFloat, Type: TypeVec3, Count: 3}

	out, err := splitAccessors([]*Accessor{acc}, src)
	if err != nil {
		t.Fatalf("splitAccessors: %v", err)
	}
	if len(out) != 36 {
		t.Fatalf("len(out) = %d, want 36", len(out))
	}
	if acc.ViewOffset != 0 || acc.ByteOffset != 0 {
		t.Fatalf("rebuilt accessor offsets = (%d,%d), want (0,0)", acc.ViewOffset, acc.ByteOffset)
	}
}

func TestSplitAccessorsInterleavedCoalesce(t *testing.T) {
	// S2: interleaved POSITION+NORMAL, stride 24, 6 vertices -> 144 bytes.
	src := make([]byte, 144)
	for i := range src {
		src[i] = byte(i)
	}
	pos := &Accessor{OriginalIndex: 0, ComponentType: ComponentFloat, Type: TypeVec3, Count: 6, ViewStride: 24, ByteOffset: 0}
	nrm := &Accessor{OriginalIndex: 1, ComponentType: ComponentFloat, Type: TypeVec3, Count: 6, ViewStride: 24, ByteOffset: 12}

	out, err := splitAccessors([]*Accessor{pos, nrm}, src)
	if err != nil {
		t.Fatalf("splitAccessors: %v", err)
	}
	if len(out) != 144 {
		t.Fatalf("len(out) = %d, want 144 (single coalesced run)", len(out))
	}
	if pos.ViewOffset != 0 {
		t.Fatalf("pos.ViewOffset = %d, want 0", pos.ViewOffset)
	}
	if nrm.ViewOffset != 12 {
		t.Fatalf("nrm.ViewOffset = %d, want 12", nrm.ViewOffset)
	}
	if pos.ByteOffset != 0 || nrm.ByteOffset != 0 {
		t.Fatalf("accessor-level ByteOffset not folded into view: pos=%d nrm=%d", pos.ByteOffset, nrm.ByteOffset)
	}
}

func TestSplitAccessorsIdenticalOverlapSharesRange(t *testing.T) {
	// S5: two accessors over the identical source extent.
	src := make([]byte, 48)
	a := &Accessor{OriginalIndex: 0, ComponentType: ComponentFloat, Type: TypeVec3, Count: 4}
	b := &Accessor{OriginalIndex: 1, ComponentType: ComponentFloat, Type: TypeVec3, Count: 4}

	if _, err := splitAccessors([]*Accessor{a, b}, src); err != nil {
		t.Fatalf("splitAccessors: %v", err)
	}
	if a.ViewOffset != b.ViewOffset {
		t.Fatalf("identical-extent accessors rebuilt to different offsets: %d vs %d", a.ViewOffset, b.ViewOffset)
	}
}

func TestSplitAccessorsDisjointDoesNotCoalesce(t *testing.T) {
	src := make([]byte, 200)
	a := &Accessor{OriginalIndex: 0, ComponentType: ComponentFloat, Type: TypeVec3, Count: 2, ViewOffset: 0}
	b := &Accessor{OriginalIndex: 1, ComponentType: ComponentFloat, Type: TypeVec3, Count: 2, ViewOffset: 100}

	out, err := splitAccessors([]*Accessor{a, b}, src)
	if err != nil {
		t.Fatalf("splitAccessors: %v", err)
	}
	if len(out) != 48 {
		t.Fatalf("len(out) = %d, want 48 (two packed 24-byte runs)", len(out))
	}
	if a.ViewOffset == b.ViewOffset {
		t.Fatalf("disjoint accessors collapsed to same offset")
	}
}

func TestSplitAccessorsOutOfBounds(t *testing.T) {
	src := make([]byte, 4)
	acc := &Accessor{ComponentType: ComponentFloat, Type: TypeVec3, Count: 3}
	if _, err := splitAccessors([]*Accessor{acc}, src); err == nil {
		t.Fatal("expected out-of-bounds error, got nil")
	}
}
