package asset

import "testing"

func TestSourceExtent(t *testing.T) {
	acc := &Accessor{ComponentType: ComponentFloat, Type: TypeVec3, Count: 3, ViewOffset: 100, ByteOffset: 4}
	start, end := acc.SourceExtent()
	if start != 104 {
		t.Fatalf("start = %d, want 104", start)
	}
	if end != 104+3*12 {
		t.Fatalf("end = %d, want %d", end, 104+3*12)
	}
}

func TestSourceExtentZeroCount(t *testing.T) {
	acc := &Accessor{ComponentType: ComponentFloat, Type: TypeVec3, Count: 0, ViewOffset: 100, ByteOffset: 4}
	start, end := acc.SourceExtent()
	if start != 104 || end != 104 {
		t.Fatalf("SourceExtent = (%d,%d), want (104,104) for zero count", start, end)
	}
}

func TestAccessorValidateRejectsUnknownComponentType(t *testing.T) {
	acc := &Accessor{ComponentType: 0, Type: TypeVec3}
	if err := acc.validate(); err == nil {
		t.Fatal("expected error for unknown component type")
	}
}

func TestAccessorValidateRejectsUnknownType(t *testing.T) {
	acc := &Accessor{ComponentType: ComponentFloat, Type: "MAT9"}
	if err := acc.validate(); err == nil {
		t.Fatal("expected error for unknown accessor type")
	}
}

func TestEffectiveStrideFallsBackToElementSize(t *testing.T) {
	acc := &Accessor{ComponentType: ComponentFloat, Type: TypeVec3}
	if got := acc.EffectiveStride(); got != 12 {
		t.Fatalf("EffectiveStride = %d, want 12 (packed element size)", got)
	}
	acc.ViewStride = 32
	if got := acc.EffectiveStride(); got != 32 {
		t.Fatalf("EffectiveStride = %d, want 32 (explicit bufferView stride)", got)
	}
}
