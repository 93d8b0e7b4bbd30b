package asset

import (
	"fmt"

	"github.com/Carmen-Shannon/gltfasset/asset/linear"
	"github.com/Carmen-Shannon/gltfasset/gpuiface"
	"github.com/cogentcore/webgpu/wgpu"
)

// attributeNames maps a glTF attribute semantic to the vertex-shader input
// name a Pipeline expects, per §4.7's attribute-name-mapping rule.
var attributeNames = map[string]string{
	"POSITION":   "a_position",
	"NORMAL":     "a_normal",
	"TANGENT":    "a_tangent",
	"TEXCOORD_0": "a_texcoord",
	"TEXCOORD_1": "a_texcoord1",
	"COLOR_0":    "a_color",
}

// AttributeName returns the shader-facing name for a glTF attribute
// semantic, or the semantic unchanged if it is not one of the mapped set.
func AttributeName(semantic string) string {
	if name, ok := attributeNames[semantic]; ok {
		return name
	}
	return semantic
}

// BuiltMaterial is a Material together with its uploaded textures, one per
// populated texture slot.
type BuiltMaterial struct {
	*Material
	BaseColorTexture         *gpuiface.GpuTexture
	MetallicRoughnessTexture *gpuiface.GpuTexture
	NormalTexture            *gpuiface.GpuTexture
	OcclusionTexture         *gpuiface.GpuTexture
	EmissiveTexture          *gpuiface.GpuTexture
}

// DrawPrimitive is one GPU-ready drawable produced by the Primitive
// Builder: an uploaded vertex sub-buffer, an optional index sub-buffer,
// the resolved world matrix, and the built material.
type DrawPrimitive struct {
	VertexBuffer *gpuiface.MeshBuffer
	IndexBuffer  *gpuiface.MeshBuffer
	VertexCount  int
	Mode         int
	Material     *BuiltMaterial
	WorldMatrix  linear.M4

	// BoundingBoxMin/Max and Pivot come from the POSITION accessor's
	// min/max (§4.7); both stay nil when either is absent from the
	// source document.
	BoundingBoxMin *[3]float32
	BoundingBoxMax *[3]float32
	Pivot          *[3]float32
}

type bufferCacheKey struct {
	bufferIndex int
	usage       Usage
}

// PrimitiveBuilder walks a Content's scene graph once, uploading each
// distinct sub-buffer and source image exactly once regardless of how
// many primitives reference it (C10, §4.7).
type PrimitiveBuilder struct {
	ctx      *Context
	buffers  gpuiface.MeshBufferFactory
	textures gpuiface.TextureFactory

	bufferCache   map[bufferCacheKey]*gpuiface.MeshBuffer
	textureCache  map[*Image]*gpuiface.GpuTexture
	materialCache map[*Material]*BuiltMaterial
}

// NewPrimitiveBuilder builds a PrimitiveBuilder over a settled Content
// (so each BufferEntry.AttributeBinary/IndexBinary is already populated)
// and the GPU factories it uploads through.
func NewPrimitiveBuilder(content *Content, buffers gpuiface.MeshBufferFactory, textures gpuiface.TextureFactory) *PrimitiveBuilder {
	return &PrimitiveBuilder{
		ctx:           content.ctx,
		buffers:       buffers,
		textures:      textures,
		bufferCache:   make(map[bufferCacheKey]*gpuiface.MeshBuffer),
		textureCache:  make(map[*Image]*gpuiface.GpuTexture),
		materialCache: make(map[*Material]*BuiltMaterial),
	}
}

// Build walks every scene's root nodes depth-first, composing
// node_to_scene = parent_to_scene * node_local at each step (§9), and
// returns one DrawPrimitive per primitive reached.
func (b *PrimitiveBuilder) Build(content *Content) ([]*DrawPrimitive, error) {
	var out []*DrawPrimitive
	for _, scene := range content.Scenes {
		var id linear.M4
		id.I()
		for _, root := range scene.Roots {
			drawn, err := b.walk(root, id)
			if err != nil {
				return nil, err
			}
			out = append(out, drawn...)
		}
	}
	return out, nil
}

func (b *PrimitiveBuilder) walk(n *Node, parentToScene linear.M4) ([]*DrawPrimitive, error) {
	local := n.LocalMatrix()
	var world linear.M4
	world.Mul(&parentToScene, &local)

	var out []*DrawPrimitive
	if n.Mesh != nil {
		for _, prim := range n.Mesh.Primitives {
			dp, err := b.buildPrimitive(prim, world)
			if err != nil {
				return nil, err
			}
			out = append(out, dp)
		}
	}
	for _, child := range n.Children {
		childOut, err := b.walk(child, world)
		if err != nil {
			return nil, err
		}
		out = append(out, childOut...)
	}
	return out, nil
}

func (b *PrimitiveBuilder) buildPrimitive(p *Primitive, world linear.M4) (*DrawPrimitive, error) {
	posAcc, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, newErr(MalformedAsset, "primitive has no POSITION attribute")
	}

	vertexBuf, err := b.meshBuffer(posAcc.BufferIndex, UsageAttribute)
	if err != nil {
		return nil, err
	}

	var indexBuf *gpuiface.MeshBuffer
	if p.Indices != nil {
		if indexBuf, err = b.meshBuffer(p.Indices.BufferIndex, UsageIndex); err != nil {
			return nil, err
		}
	}

	mat, err := b.buildMaterial(p.Material)
	if err != nil {
		return nil, err
	}

	boundsMin, boundsMax, pivot := boundingBox(posAcc)

	return &DrawPrimitive{
		VertexBuffer:   vertexBuf,
		IndexBuffer:    indexBuf,
		VertexCount:    vertexCount(p),
		Mode:           p.Mode,
		Material:       mat,
		WorldMatrix:    world,
		BoundingBoxMin: boundsMin,
		BoundingBoxMax: boundsMax,
		Pivot:          pivot,
	}, nil
}

// boundingBox derives a primitive's bounding box and pivot (midpoint) from
// its POSITION accessor's min/max, per §4.7. Either both are returned or
// both are nil — a POSITION accessor missing one of min/max leaves a
// primitive with no bounding information rather than a partial one.
func boundingBox(posAcc *Accessor) (min, max, pivot *[3]float32) {
	if len(posAcc.Min) != 3 || len(posAcc.Max) != 3 {
		return nil, nil, nil
	}
	var lo, hi, mid [3]float32
	for i := 0; i < 3; i++ {
		lo[i] = posAcc.Min[i]
		hi[i] = posAcc.Max[i]
		mid[i] = (lo[i] + hi[i]) / 2
	}
	return &lo, &hi, &mid
}

// vertexCount is the index accessor's count when indexed, otherwise the
// smallest count across the primitive's attribute accessors (§4.7).
func vertexCount(p *Primitive) int {
	if p.Indices != nil {
		return p.Indices.Count
	}
	count := -1
	for _, acc := range p.Attributes {
		if count == -1 || acc.Count < count {
			count = acc.Count
		}
	}
	if count == -1 {
		return 0
	}
	return count
}

func (b *PrimitiveBuilder) meshBuffer(bufferIndex int, usage Usage) (*gpuiface.MeshBuffer, error) {
	key := bufferCacheKey{bufferIndex, usage}
	if mb, ok := b.bufferCache[key]; ok {
		return mb, nil
	}

	entry := b.ctx.BufferEntry(bufferIndex)
	if entry == nil {
		return nil, newErr(MalformedAsset, "buffer %d was never registered", bufferIndex)
	}

	var data []byte
	var gu gpuiface.Usage
	switch usage {
	case UsageAttribute:
		data, gu = entry.AttributeBinary, gpuiface.UsageAttribute
	case UsageIndex:
		data, gu = entry.IndexBinary, gpuiface.UsageIndex
	}

	mb, err := b.buffers.CreateMeshBuffer(fmt.Sprintf("buffer%d-usage%d", bufferIndex, usage), gu, data)
	if err != nil {
		return nil, wrapErr(MalformedAsset, err)
	}
	b.bufferCache[key] = mb
	return mb, nil
}

func (b *PrimitiveBuilder) buildMaterial(m *Material) (*BuiltMaterial, error) {
	if bm, ok := b.materialCache[m]; ok {
		return bm, nil
	}

	bm := &BuiltMaterial{Material: m}
	var err error
	if m.BaseColorTexture != nil {
		if bm.BaseColorTexture, err = b.texture(m.BaseColorTexture.Texture); err != nil {
			return nil, err
		}
	}
	if m.MetallicRoughnessTexture != nil {
		if bm.MetallicRoughnessTexture, err = b.texture(m.MetallicRoughnessTexture.Texture); err != nil {
			return nil, err
		}
	}
	if m.NormalTexture != nil {
		if bm.NormalTexture, err = b.texture(m.NormalTexture.Texture); err != nil {
			return nil, err
		}
	}
	if m.OcclusionTexture != nil {
		if bm.OcclusionTexture, err = b.texture(m.OcclusionTexture.Texture); err != nil {
			return nil, err
		}
	}
	if m.EmissiveTexture != nil {
		if bm.EmissiveTexture, err = b.texture(m.EmissiveTexture.Texture); err != nil {
			return nil, err
		}
	}

	b.materialCache[m] = bm
	return bm, nil
}

// texture uploads t's source image exactly once, keyed by *Image identity
// so §4.6's dedup (which overwrites TextureInfo.Texture pointers onto a
// shared Texture) also collapses the GPU upload.
func (b *PrimitiveBuilder) texture(t *Texture) (*gpuiface.GpuTexture, error) {
	if t == nil || t.Source == nil {
		return nil, nil
	}
	if gt, ok := b.textureCache[t.Source]; ok {
		return gt, nil
	}

	gt, err := b.textures.CreateTexture(t.Source.SourceURI, t.Source.Decoded, t.Source.DecodedWidth, t.Source.DecodedHeight, samplerParams(t.Sampler))
	if err != nil {
		return nil, wrapErr(MalformedAsset, err)
	}
	b.textureCache[t.Source] = gt
	return gt, nil
}

// samplerParams maps a glTF Sampler's integer constants to wgpu's sampler
// enums, leaving unset fields at their zero value so the factory's own
// coalesce-to-glTF-default behavior (InitSampler's common.Coalesce
// pattern) applies.
func samplerParams(s *Sampler) gpuiface.SamplerParams {
	if s == nil {
		return gpuiface.SamplerParams{}
	}
	return gpuiface.SamplerParams{
		AddressModeU: wrapToAddressMode(s.WrapS),
		AddressModeV: wrapToAddressMode(s.WrapT),
		MagFilter:    filterToFilterMode(s.MagFilter),
		MinFilter:    filterToFilterMode(s.MinFilter),
		MipmapFilter: filterToMipmapFilterMode(s.MinFilter),
	}
}

func wrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case WrapRepeat:
		return wgpu.AddressModeRepeat
	default:
		return 0
	}
}

func filterToFilterMode(filter int) wgpu.FilterMode {
	switch filter {
	case FilterNearest, FilterNearestMipmapNearest, FilterNearestMipmapLinear:
		return wgpu.FilterModeNearest
	case FilterLinear, FilterLinearMipmapNearest, FilterLinearMipmapLinear:
		return wgpu.FilterModeLinear
	default:
		return 0
	}
}

func filterToMipmapFilterMode(filter int) wgpu.MipmapFilterMode {
	switch filter {
	case FilterNearestMipmapNearest, FilterLinearMipmapNearest:
		return wgpu.MipmapFilterModeNearest
	case FilterNearestMipmapLinear, FilterLinearMipmapLinear:
		return wgpu.MipmapFilterModeLinear
	default:
		return 0
	}
}
