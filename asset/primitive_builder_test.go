package asset

import (
	"testing"

	"github.com/Carmen-Shannon/gltfasset/asset/linear"
	"github.com/Carmen-Shannon/gltfasset/gpuiface"
)

type fakeMeshBufferFactory struct{ calls int }

func (f *fakeMeshBufferFactory) CreateMeshBuffer(label string, usage gpuiface.Usage, data []byte) (*gpuiface.MeshBuffer, error) {
	f.calls++
	return &gpuiface.MeshBuffer{ByteLength: len(data), Usage: usage}, nil
}

type fakeTextureFactory struct{ calls int }

func (f *fakeTextureFactory) CreateTexture(label string, pixels []byte, width, height uint32, params gpuiface.SamplerParams) (*gpuiface.GpuTexture, error) {
	f.calls++
	return &gpuiface.GpuTexture{}, nil
}

func identityNode(mesh *Mesh, children ...*Node) *Node {
	return &Node{Mesh: mesh, Children: children, Scale: linear.V3{1, 1, 1}, Rotation: linear.Q{W: 1}}
}

func TestAttributeNameMapsTexcoordAndColorSlotZeroWithoutDigit(t *testing.T) {
	cases := map[string]string{
		"TEXCOORD_0": "a_texcoord",
		"TEXCOORD_1": "a_texcoord1",
		"COLOR_0":    "a_color",
		"POSITION":   "a_position",
		"CUSTOM_X":   "CUSTOM_X",
	}
	for semantic, want := range cases {
		if got := AttributeName(semantic); got != want {
			t.Errorf("AttributeName(%q) = %q, want %q", semantic, got, want)
		}
	}
}

func TestPrimitiveBuilderCachesSharedBuffer(t *testing.T) {
	ctx := &Context{bufferEntries: map[int]*BufferEntry{
		0: {Index: 0, AttributeBinary: []byte{1, 2, 3}},
	}}
	posAcc := &Accessor{BufferIndex: 0, Count: 3}
	mat := DefaultMaterial()
	prim1 := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: mat, Mode: ModeTriangles}
	prim2 := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: mat, Mode: ModeTriangles}
	mesh := &Mesh{Primitives: []*Primitive{prim1, prim2}}

	content := &Content{ctx: ctx, Scenes: []*Scene{{Roots: []*Node{identityNode(mesh)}}}}

	meshFactory := &fakeMeshBufferFactory{}
	texFactory := &fakeTextureFactory{}
	builder := NewPrimitiveBuilder(content, meshFactory, texFactory)

	draws, err := builder.Build(content)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(draws) != 2 {
		t.Fatalf("len(draws) = %d, want 2", len(draws))
	}
	if meshFactory.calls != 1 {
		t.Fatalf("CreateMeshBuffer called %d times, want 1 (shared buffer)", meshFactory.calls)
	}
}

func TestPrimitiveBuilderComposesWorldMatrix(t *testing.T) {
	ctx := &Context{bufferEntries: map[int]*BufferEntry{
		0: {Index: 0, AttributeBinary: []byte{1, 2, 3}},
	}}
	posAcc := &Accessor{BufferIndex: 0, Count: 3}
	prim := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: DefaultMaterial(), Mode: ModeTriangles}
	mesh := &Mesh{Primitives: []*Primitive{prim}}

	child := identityNode(mesh)
	child.Translation = linear.V3{1, 0, 0}

	parent := identityNode(nil, child)
	parent.Translation = linear.V3{0, 2, 0}

	content := &Content{ctx: ctx, Scenes: []*Scene{{Roots: []*Node{parent}}}}
	builder := NewPrimitiveBuilder(content, &fakeMeshBufferFactory{}, &fakeTextureFactory{})

	draws, err := builder.Build(content)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(draws) != 1 {
		t.Fatalf("len(draws) = %d, want 1", len(draws))
	}
	gotX, gotY := draws[0].WorldMatrix[3][0], draws[0].WorldMatrix[3][1]
	if gotX != 1 || gotY != 2 {
		t.Fatalf("world translation = (%v, %v), want (1, 2)", gotX, gotY)
	}
}

func TestPrimitiveBuilderComputesBoundingBoxAndPivot(t *testing.T) {
	ctx := &Context{bufferEntries: map[int]*BufferEntry{
		0: {Index: 0, AttributeBinary: []byte{1, 2, 3}},
	}}
	posAcc := &Accessor{BufferIndex: 0, Count: 3, Min: []float32{-1, -2, -3}, Max: []float32{1, 2, 3}}
	prim := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: DefaultMaterial(), Mode: ModeTriangles}
	mesh := &Mesh{Primitives: []*Primitive{prim}}

	content := &Content{ctx: ctx, Scenes: []*Scene{{Roots: []*Node{identityNode(mesh)}}}}
	builder := NewPrimitiveBuilder(content, &fakeMeshBufferFactory{}, &fakeTextureFactory{})

	draws, err := builder.Build(content)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := draws[0]
	if d.BoundingBoxMin == nil || *d.BoundingBoxMin != ([3]float32{-1, -2, -3}) {
		t.Fatalf("BoundingBoxMin = %v, want (-1,-2,-3)", d.BoundingBoxMin)
	}
	if d.BoundingBoxMax == nil || *d.BoundingBoxMax != ([3]float32{1, 2, 3}) {
		t.Fatalf("BoundingBoxMax = %v, want (1,2,3)", d.BoundingBoxMax)
	}
	if d.Pivot == nil || *d.Pivot != ([3]float32{0, 0, 0}) {
		t.Fatalf("Pivot = %v, want (0,0,0)", d.Pivot)
	}
}

func TestPrimitiveBuilderOmitsBoundingBoxWhenMinOrMaxAbsent(t *testing.T) {
	ctx := &Context{bufferEntries: map[int]*BufferEntry{
		0: {Index: 0, AttributeBinary: []byte{1, 2, 3}},
	}}
	posAcc := &Accessor{BufferIndex: 0, Count: 3} // no Min/Max
	prim := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: DefaultMaterial(), Mode: ModeTriangles}
	mesh := &Mesh{Primitives: []*Primitive{prim}}

	content := &Content{ctx: ctx, Scenes: []*Scene{{Roots: []*Node{identityNode(mesh)}}}}
	builder := NewPrimitiveBuilder(content, &fakeMeshBufferFactory{}, &fakeTextureFactory{})

	draws, err := builder.Build(content)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := draws[0]
	if d.BoundingBoxMin != nil || d.BoundingBoxMax != nil || d.Pivot != nil {
		t.Fatalf("expected nil bounding box/pivot when accessor has no min/max, got min=%v max=%v pivot=%v", d.BoundingBoxMin, d.BoundingBoxMax, d.Pivot)
	}
}

func TestPrimitiveBuilderDedupsSharedTexture(t *testing.T) {
	ctx := &Context{bufferEntries: map[int]*BufferEntry{
		0: {Index: 0, AttributeBinary: []byte{1, 2, 3}},
	}}
	posAcc := &Accessor{BufferIndex: 0, Count: 3}

	img := &Image{Index: 0, Decoded: []byte{255, 255, 255, 255}, DecodedWidth: 1, DecodedHeight: 1}
	sharedTex := &Texture{Source: img}
	info0 := &TextureInfo{Texture: sharedTex}
	info1 := &TextureInfo{Texture: sharedTex}

	mat0 := DefaultMaterial()
	mat0.BaseColorTexture = info0
	mat1 := DefaultMaterial()
	mat1.BaseColorTexture = info1

	prim0 := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: mat0, Mode: ModeTriangles}
	prim1 := &Primitive{Attributes: map[string]*Accessor{"POSITION": posAcc}, Material: mat1, Mode: ModeTriangles}
	mesh := &Mesh{Primitives: []*Primitive{prim0, prim1}}

	content := &Content{ctx: ctx, Scenes: []*Scene{{Roots: []*Node{identityNode(mesh)}}}}
	texFactory := &fakeTextureFactory{}
	builder := NewPrimitiveBuilder(content, &fakeMeshBufferFactory{}, texFactory)

	if _, err := builder.Build(content); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if texFactory.calls != 1 {
		t.Fatalf("CreateTexture called %d times, want 1 (shared source image)", texFactory.calls)
	}
}
