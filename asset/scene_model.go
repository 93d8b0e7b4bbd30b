package asset

import "github.com/Carmen-Shannon/gltfasset/asset/linear"

// Sampler carries glTF filter/wrap constants through to the Primitive
// Builder untouched, per §3.
type Sampler struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// Image is exactly one of URI-backed or bufferView-backed, decoded once the
// Image Fetcher (C3) completes.
type Image struct {
	Index      int
	SourceURI  string
	BufferView *int
	MimeType   string

	Decoded       []byte // RGBA8 pixels, width*height*4
	DecodedWidth  uint32
	DecodedHeight uint32
}

// Texture pairs a Sampler with a source Image. Multiple Textures may share
// one Image; §4.6 collapses TextureInfos onto a single Texture per Image.
type Texture struct {
	Sampler *Sampler
	Source  *Image
}

// TextureInfo is the polymorphic reference from a material slot to a
// Texture (§9's "Polymorphic TextureInfo" design note): a common header
// plus the slot-specific scalar, modeled with optional pointers rather
// than an interface so dedup can overwrite Texture uniformly.
type TextureInfo struct {
	Texture     *Texture
	TexCoordSet int

	// NormalScale is non-nil only for a normalTexture slot.
	NormalScale *float32
	// OcclusionStrength is non-nil only for an occlusionTexture slot.
	OcclusionStrength *float32
}

// Material is the fixed PBR metallic-roughness record from §3.
type Material struct {
	Name string

	BaseColorFactor          [4]float32
	BaseColorTexture         *TextureInfo
	MetallicFactor           float32
	RoughnessFactor          float32
	MetallicRoughnessTexture *TextureInfo

	NormalTexture    *TextureInfo
	OcclusionTexture *TextureInfo
	EmissiveTexture  *TextureInfo
	EmissiveFactor   [3]float32

	AlphaMode   string
	AlphaCutoff float32
	DoubleSided bool
}

// DefaultMaterial returns the glTF 2.0 default material, emitted when a
// primitive has no material index (§4.7).
func DefaultMaterial() *Material {
	return &Material{
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
		AlphaMode:       "OPAQUE",
		AlphaCutoff:     0.5,
	}
}

// Primitive is one drawable unit of a Mesh.
type Primitive struct {
	Attributes map[string]*Accessor
	Indices    *Accessor
	Material   *Material
	Mode       int
}

// Mesh is an ordered list of Primitives.
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// Node is one entry in the transform hierarchy. Matrix, if non-nil, is
// authoritative; otherwise Translation/Rotation/Scale (defaulting to
// zero/identity/one) are composed per §3.
type Node struct {
	Name     string
	Children []*Node
	Mesh     *Mesh
	Matrix   *linear.M4

	Translation linear.V3
	Rotation    linear.Q
	Scale       linear.V3
}

// LocalMatrix returns this node's local transform: Matrix verbatim when
// set, otherwise Translation/Rotation/Scale composed via linear.TRS (§3's
// "TRS decomposition also accepted and composed to a matrix").
func (n *Node) LocalMatrix() linear.M4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return linear.TRS(n.Translation, n.Rotation, n.Scale)
}

// Scene is a list of root nodes.
type Scene struct {
	Name  string
	Roots []*Node
}

// Content is the top-level result of a load: the resolved scene graph plus
// the index of the default scene. parseDocument sets -1 when the document
// names no scene (§3); Loader then replaces an unset index with 0 whenever
// at least one scene exists (the Open Question resolved in §9), so -1
// survives only for a document with no scenes.
type Content struct {
	Scenes            []*Scene
	DefaultSceneIndex int

	// ctx is the settled Context that produced this Content, retained so a
	// PrimitiveBuilder can reach each BufferEntry's packed sub-buffers.
	ctx *Context
}
