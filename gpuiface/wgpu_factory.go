package gpuiface

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// coalesce returns the first non-zero value, same idiom as the renderer's
// sampler-defaulting (common.Coalesce), kept local here to avoid pulling in
// an unrelated package for one helper.
func coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// wgpuFactory is the default MeshBufferFactory/TextureFactory, backed by a
// real wgpu device and queue. It does no bind-group or pipeline work: the
// asset pipeline only needs buffers, texture views, and samplers.
type wgpuFactory struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

// NewWGPUFactory builds a MeshBufferFactory and TextureFactory pair backed
// by the given device and queue.
func NewWGPUFactory(device *wgpu.Device, queue *wgpu.Queue) (MeshBufferFactory, TextureFactory) {
	f := &wgpuFactory{device: device, queue: queue}
	return f, f
}

func (f *wgpuFactory) CreateMeshBuffer(label string, usage Usage, data []byte) (*MeshBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("gpuiface: CreateMeshBuffer %q: empty data", label)
	}

	bufUsage := wgpu.BufferUsageVertex
	if usage == UsageIndex {
		bufUsage = wgpu.BufferUsageIndex
	}

	buf, err := f.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            bufUsage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("gpuiface: create buffer %q: %w", label, err)
	}
	f.queue.WriteBuffer(buf, 0, data)

	return &MeshBuffer{Buffer: buf, ByteLength: len(data), Usage: usage}, nil
}

func (f *wgpuFactory) CreateTexture(label string, pixels []byte, width, height uint32, sampler SamplerParams) (*GpuTexture, error) {
	tex, err := f.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("gpuiface: create texture %q: %w", label, err)
	}

	f.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("gpuiface: create texture view %q: %w", label, err)
	}

	samp, err := f.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  coalesce(sampler.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  coalesce(sampler.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  coalesce(sampler.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     coalesce(sampler.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     coalesce(sampler.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  coalesce(sampler.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   coalesce(sampler.LodMinClamp, 0.0),
		LodMaxClamp:   coalesce(sampler.LodMaxClamp, 32.0),
		MaxAnisotropy: coalesce(sampler.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("gpuiface: create sampler %q: %w", label, err)
	}

	return &GpuTexture{View: view, Sampler: samp}, nil
}
