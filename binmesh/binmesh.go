// Package binmesh decodes the asset pipeline's embedded binary mesh file
// format: a 12-byte header (vertex/index layout plus counts) followed by
// tightly packed little-endian vertex and index data. It is a standalone
// codec with no call site in the asset package; Non-goals scope the core
// pipeline to glTF JSON buffers/images only (§6, §9).
package binmesh

import (
	"encoding/binary"
	"fmt"
	"math"
)

// VType is the vertex attribute layout a header declares.
type VType byte

const (
	// VTypeP is position-only: 3×float32.
	VTypeP VType = iota
	// VTypePN is position+normal: 6×float32.
	VTypePN
	// VTypePT is position+texcoord: 5×float32.
	VTypePT
	// VTypePNT is position+normal+texcoord: 8×float32.
	VTypePNT
)

// Stride returns the byte size of one vertex under this layout, or 0 for
// an unrecognized VType.
func (v VType) Stride() int {
	switch v {
	case VTypeP:
		return 12
	case VTypePN:
		return 24
	case VTypePT:
		return 20
	case VTypePNT:
		return 32
	default:
		return 0
	}
}

// IType is the on-disk index width a header declares.
type IType byte

const (
	// ITypeU16 means indices are stored as uint16.
	ITypeU16 IType = iota
	// ITypeU32 means indices are stored as uint32.
	ITypeU32
)

// Size returns the byte size of one index under this layout, or 0 for an
// unrecognized IType.
func (t IType) Size() int {
	switch t {
	case ITypeU16:
		return 2
	case ITypeU32:
		return 4
	default:
		return 0
	}
}

// PType is the primitive topology a header declares.
type PType byte

const (
	// PTypeTriangles means the index stream lists triangles.
	PTypeTriangles PType = iota
	// PTypeLines means the index stream lists line segments.
	PTypeLines
)

const headerSize = 12

// Mesh is one decoded binary mesh: its declared layout plus the raw
// vertex and index byte ranges (still packed per VType/IType — callers
// that need typed data read positions/normals/texcoords out with the
// accessors below).
type Mesh struct {
	VType VType
	IType IType
	PType PType

	VertexCount int
	IndexCount  int

	VertexData []byte
	IndexData  []byte
}

// Read decodes a Mesh from a complete binary mesh file buffer. Reference:
// the header table in §6 and gviegas-neo3/gltf/glb.go's magic-checked,
// fixed-size-header-then-chunks reading idiom (adapted here to a header
// with no magic number, just declared type bytes and counts).
func Read(data []byte) (*Mesh, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("binmesh: header truncated (%d bytes, want %d)", len(data), headerSize)
	}

	vtype := VType(data[0])
	itype := IType(data[1])
	ptype := PType(data[2])
	// data[3] is padding.

	vertexStride := vtype.Stride()
	if vertexStride == 0 {
		return nil, fmt.Errorf("binmesh: unknown vtype %d", vtype)
	}
	indexSize := itype.Size()
	if indexSize == 0 {
		return nil, fmt.Errorf("binmesh: unknown itype %d", itype)
	}
	if ptype != PTypeTriangles && ptype != PTypeLines {
		return nil, fmt.Errorf("binmesh: unknown ptype %d", ptype)
	}

	vertexCount := int(binary.LittleEndian.Uint32(data[4:8]))
	indexCount := int(binary.LittleEndian.Uint32(data[8:12]))

	vertexBytes := vertexCount * vertexStride
	indexBytes := indexCount * indexSize
	want := headerSize + vertexBytes + indexBytes
	if len(data) < want {
		return nil, fmt.Errorf("binmesh: body truncated (%d bytes, want %d)", len(data), want)
	}

	return &Mesh{
		VType:       vtype,
		IType:       itype,
		PType:       ptype,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
		VertexData:  data[headerSize : headerSize+vertexBytes],
		IndexData:   data[headerSize+vertexBytes : want],
	}, nil
}

// Positions reads this mesh's position attribute out of VertexData. Every
// VType carries position as its first 3 floats, so this never depends on
// VType beyond the stride already recorded on m.
func (m *Mesh) Positions() [][3]float32 {
	stride := m.VType.Stride()
	out := make([][3]float32, m.VertexCount)
	for i := range out {
		base := i * stride
		out[i] = [3]float32{
			readFloat32(m.VertexData[base : base+4]),
			readFloat32(m.VertexData[base+4 : base+8]),
			readFloat32(m.VertexData[base+8 : base+12]),
		}
	}
	return out
}

// Normals reads this mesh's normal attribute, or nil if VType carries none.
func (m *Mesh) Normals() [][3]float32 {
	if m.VType != VTypePN && m.VType != VTypePNT {
		return nil
	}
	stride := m.VType.Stride()
	out := make([][3]float32, m.VertexCount)
	for i := range out {
		base := i*stride + 12
		out[i] = [3]float32{
			readFloat32(m.VertexData[base : base+4]),
			readFloat32(m.VertexData[base+4 : base+8]),
			readFloat32(m.VertexData[base+8 : base+12]),
		}
	}
	return out
}

// TexCoords reads this mesh's texcoord attribute, or nil if VType carries
// none. The texcoord pair sits immediately after position for PT, and
// after position+normal for PNT.
func (m *Mesh) TexCoords() [][2]float32 {
	var offset int
	switch m.VType {
	case VTypePT:
		offset = 12
	case VTypePNT:
		offset = 24
	default:
		return nil
	}
	stride := m.VType.Stride()
	out := make([][2]float32, m.VertexCount)
	for i := range out {
		base := i*stride + offset
		out[i] = [2]float32{
			readFloat32(m.VertexData[base : base+4]),
			readFloat32(m.VertexData[base+4 : base+8]),
		}
	}
	return out
}

// Indices reads this mesh's index stream, widening to uint32 regardless
// of the on-disk IType.
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, m.IndexCount)
	switch m.IType {
	case ITypeU16:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(m.IndexData[i*2 : i*2+2]))
		}
	case ITypeU32:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(m.IndexData[i*4 : i*4+4])
		}
	}
	return out
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
