// Package gpuiface is the seam between the asset pipeline and the GPU.
// The pipeline itself never touches a device or a queue; it hands packed
// vertex/index bytes and decoded pixel buffers to these interfaces and gets
// back opaque handles it can cache and re-use across primitives that share
// the same sub-buffer or source image.
package gpuiface

import "github.com/cogentcore/webgpu/wgpu"

// Usage distinguishes a mesh buffer's role so a factory can pick the right
// wgpu buffer usage flags.
type Usage int

const (
	// UsageAttribute marks a buffer holding interleaved vertex attributes.
	UsageAttribute Usage = iota
	// UsageIndex marks a buffer holding primitive indices.
	UsageIndex
)

// MeshBuffer is the opaque result of uploading a packed sub-buffer.
type MeshBuffer struct {
	Buffer     *wgpu.Buffer
	ByteLength int
	Usage      Usage
}

// GpuTexture is the opaque result of uploading a decoded image plus the
// sampler selected for it.
type GpuTexture struct {
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
}

// SamplerParams mirrors a glTF sampler's resolved wgpu filter/wrap modes.
// Zero values mean "unset"; factories fall back to the glTF 2.0 defaults
// (repeat wrapping, linear filtering) the same way the teacher's
// InitSampler does via common.Coalesce.
type SamplerParams struct {
	AddressModeU  wgpu.AddressMode
	AddressModeV  wgpu.AddressMode
	AddressModeW  wgpu.AddressMode
	MagFilter     wgpu.FilterMode
	MinFilter     wgpu.FilterMode
	MipmapFilter  wgpu.MipmapFilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	MaxAnisotropy uint16
}

// MeshBufferFactory uploads a packed byte blob and returns a handle the
// Primitive Builder can cache by sub-buffer identity.
type MeshBufferFactory interface {
	CreateMeshBuffer(label string, usage Usage, data []byte) (*MeshBuffer, error)
}

// TextureFactory uploads decoded RGBA8 pixels plus a sampler and returns a
// handle the Primitive Builder can cache by source-image identity.
type TextureFactory interface {
	CreateTexture(label string, pixels []byte, width, height uint32, sampler SamplerParams) (*GpuTexture, error)
}
