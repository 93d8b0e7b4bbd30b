package asset

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/gltfasset/asset/linear"
)

// parseDocument unmarshals a glTF JSON document, builds the full C9 entity
// tree (materials, textures, meshes, nodes, scenes), registering every
// Accessor and TextureInfo with a fresh Context as it goes, then waits for
// the Context's async fetch-and-rebuild pipeline to settle. Reference:
// gltf_parser.go's top-level parse entry point, adapted to register with
// a Context instead of reading buffer/image bytes inline.
func parseDocument(data []byte, baseDir string, workers, queueSize int, timeout time.Duration) (*Content, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, newErr(MalformedAsset, "parse glTF JSON: %v", err)
	}
	if err := checkVersion(doc.Asset); err != nil {
		return nil, err
	}

	accessors := make([]*Accessor, len(doc.Accessors))
	for i := range doc.Accessors {
		acc, err := resolveAccessor(i, &doc)
		if err != nil {
			return nil, err
		}
		accessors[i] = acc
	}

	ctx := newContext(baseDir, doc.Buffers, doc.Images, workers, queueSize, timeout)

	materials := make([]*Material, len(doc.Materials))
	for i := range doc.Materials {
		m, err := resolveMaterial(&doc.Materials[i], &doc, ctx)
		if err != nil {
			return nil, err
		}
		materials[i] = m
	}

	meshes := make([]*Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		gm := &doc.Meshes[i]
		mesh := &Mesh{Name: gm.Name}
		for pi := range gm.Primitives {
			prim, err := resolvePrimitive(&gm.Primitives[pi], accessors, materials, ctx)
			if err != nil {
				return nil, err
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}
		meshes[i] = mesh
	}

	nodeCache := make(map[int]*Node)
	for i := range doc.Nodes {
		if _, err := resolveNode(i, &doc, meshes, nodeCache); err != nil {
			return nil, err
		}
	}

	scenes := make([]*Scene, len(doc.Scenes))
	for i := range doc.Scenes {
		gs := doc.Scenes[i]
		s := &Scene{Name: gs.Name}
		for _, ni := range gs.Nodes {
			if ni < 0 || ni >= len(doc.Nodes) {
				return nil, newErr(MalformedAsset, "scene %d: node index %d out of range", i, ni)
			}
			s.Roots = append(s.Roots, nodeCache[ni])
		}
		scenes[i] = s
	}

	defaultSceneIndex := -1
	if doc.Scene != nil {
		defaultSceneIndex = *doc.Scene
	}
	if defaultSceneIndex >= len(scenes) || (doc.Scene != nil && defaultSceneIndex < 0) {
		return nil, newErr(SceneIndexOutOfRange, "default scene index %d out of range (have %d scenes)", defaultSceneIndex, len(scenes))
	}

	content := &Content{Scenes: scenes, DefaultSceneIndex: defaultSceneIndex, ctx: ctx}
	ctx.SetContent(content)
	ctx.MarkBodyFinished()

	return ctx.Wait()
}

// checkVersion rejects a missing or sub-2.0 asset.version (§7).
func checkVersion(a gltfAsset) error {
	if a.Version == "" {
		return newErr(VersionUnsupported, "missing asset.version")
	}
	var major int
	if _, err := fmt.Sscanf(a.Version, "%d.", &major); err != nil {
		return newErr(VersionUnsupported, "malformed asset.version %q", a.Version)
	}
	if major < 2 {
		return newErr(VersionUnsupported, "unsupported asset.version %q", a.Version)
	}
	return nil
}

// resolveAccessor resolves the i'th document accessor against its
// bufferView, rejecting sparse accessors (a Non-goal) outright.
func resolveAccessor(i int, doc *document) (*Accessor, error) {
	ga := doc.Accessors[i]
	if ga.SparseRaw != nil {
		return nil, newErr(MalformedAsset, "accessor %d: sparse accessors are not supported", i)
	}
	if ga.BufferView == nil {
		return nil, newErr(MalformedAsset, "accessor %d: zero-initialized (bufferView-less) accessors are not supported", i)
	}
	if *ga.BufferView < 0 || *ga.BufferView >= len(doc.BufferViews) {
		return nil, newErr(MalformedAsset, "accessor %d: bufferView index %d out of range", i, *ga.BufferView)
	}
	bv := doc.BufferViews[*ga.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, newErr(MalformedAsset, "accessor %d: buffer index %d out of range", i, bv.Buffer)
	}

	acc := &Accessor{
		OriginalIndex: i,
		BufferIndex:   bv.Buffer,
		ByteOffset:    ga.ByteOffset,
		ViewOffset:    bv.ByteOffset,
		ComponentType: ga.ComponentType,
		Normalized:    ga.Normalized,
		Count:         ga.Count,
		Type:          ga.Type,
		Min:           ga.Min,
		Max:           ga.Max,
	}
	if bv.ByteStride != nil {
		acc.ViewStride = *bv.ByteStride
	}
	if err := acc.validate(); err != nil {
		return nil, err
	}
	return acc, nil
}

// resolveTextureInfo resolves a glTF textureInfo reference into a
// TextureInfo, registering it with the owning ImageEntry for §4.6's dedup.
func resolveTextureInfo(gti *gltfTextureInfo, doc *document, ctx *Context) (*TextureInfo, error) {
	if gti.Index < 0 || gti.Index >= len(doc.Textures) {
		return nil, newErr(MalformedAsset, "texture index %d out of range", gti.Index)
	}
	gt := doc.Textures[gti.Index]
	if gt.Source == nil {
		return nil, newErr(MalformedAsset, "texture %d: missing source image", gti.Index)
	}
	if *gt.Source < 0 || *gt.Source >= len(doc.Images) {
		return nil, newErr(MalformedAsset, "texture %d: source image index %d out of range", gti.Index, *gt.Source)
	}

	var sampler *Sampler
	if gt.Sampler != nil {
		if *gt.Sampler < 0 || *gt.Sampler >= len(doc.Samplers) {
			return nil, newErr(MalformedAsset, "texture %d: sampler index %d out of range", gti.Index, *gt.Sampler)
		}
		gs := doc.Samplers[*gt.Sampler]
		sampler = &Sampler{WrapS: WrapRepeat, WrapT: WrapRepeat}
		if gs.MagFilter != nil {
			sampler.MagFilter = *gs.MagFilter
		}
		if gs.MinFilter != nil {
			sampler.MinFilter = *gs.MinFilter
		}
		if gs.WrapS != nil {
			sampler.WrapS = *gs.WrapS
		}
		if gs.WrapT != nil {
			sampler.WrapT = *gs.WrapT
		}
	}

	imageEntry := ctx.FindImage(*gt.Source)
	texture := &Texture{Sampler: sampler, Source: imageEntry.Image}
	info := &TextureInfo{Texture: texture, TexCoordSet: gti.TexCoord}
	ctx.AddTextureInfo(info, *gt.Source)
	return info, nil
}

// resolveMaterial resolves a glTF material into a Material, defaulting
// every PBR field per glTF 2.0's fixed defaults.
func resolveMaterial(gm *gltfMaterial, doc *document, ctx *Context) (*Material, error) {
	m := DefaultMaterial()
	m.Name = gm.Name

	if pbr := gm.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			m.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			m.RoughnessFactor = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			info, err := resolveTextureInfo(pbr.BaseColorTexture, doc, ctx)
			if err != nil {
				return nil, err
			}
			m.BaseColorTexture = info
		}
		if pbr.MetallicRoughnessTexture != nil {
			info, err := resolveTextureInfo(pbr.MetallicRoughnessTexture, doc, ctx)
			if err != nil {
				return nil, err
			}
			m.MetallicRoughnessTexture = info
		}
	}

	if gm.NormalTexture != nil {
		info, err := resolveTextureInfo(&gm.NormalTexture.gltfTextureInfo, doc, ctx)
		if err != nil {
			return nil, err
		}
		if gm.NormalTexture.Scale != nil {
			info.NormalScale = gm.NormalTexture.Scale
		}
		m.NormalTexture = info
	}
	if gm.OcclusionTexture != nil {
		info, err := resolveTextureInfo(&gm.OcclusionTexture.gltfTextureInfo, doc, ctx)
		if err != nil {
			return nil, err
		}
		if gm.OcclusionTexture.Strength != nil {
			info.OcclusionStrength = gm.OcclusionTexture.Strength
		}
		m.OcclusionTexture = info
	}
	if gm.EmissiveTexture != nil {
		info, err := resolveTextureInfo(gm.EmissiveTexture, doc, ctx)
		if err != nil {
			return nil, err
		}
		m.EmissiveTexture = info
	}
	if gm.EmissiveFactor != nil {
		m.EmissiveFactor = *gm.EmissiveFactor
	}
	if gm.AlphaMode != "" {
		m.AlphaMode = gm.AlphaMode
	}
	if gm.AlphaCutoff != nil {
		m.AlphaCutoff = *gm.AlphaCutoff
	}
	m.DoubleSided = gm.DoubleSided
	return m, nil
}

// resolvePrimitive resolves one glTF primitive, registering its attribute
// and index accessors with the Context under the correct usage class.
func resolvePrimitive(gp *gltfPrimitive, accessors []*Accessor, materials []*Material, ctx *Context) (*Primitive, error) {
	p := &Primitive{Attributes: make(map[string]*Accessor), Mode: ModeTriangles}
	if gp.Mode != nil {
		p.Mode = *gp.Mode
	}

	for name, idx := range gp.Attributes {
		if idx < 0 || idx >= len(accessors) {
			return nil, newErr(MalformedAsset, "primitive attribute %q: accessor index %d out of range", name, idx)
		}
		acc := accessors[idx]
		ctx.AddAccessor(acc, UsageAttribute)
		p.Attributes[name] = acc
	}

	if gp.Indices != nil {
		if *gp.Indices < 0 || *gp.Indices >= len(accessors) {
			return nil, newErr(MalformedAsset, "primitive: indices accessor %d out of range", *gp.Indices)
		}
		acc := accessors[*gp.Indices]
		ctx.AddAccessor(acc, UsageIndex)
		p.Indices = acc
	}

	if gp.Material != nil {
		if *gp.Material < 0 || *gp.Material >= len(materials) {
			return nil, newErr(MalformedAsset, "primitive: material index %d out of range", *gp.Material)
		}
		p.Material = materials[*gp.Material]
	} else {
		p.Material = DefaultMaterial()
	}

	return p, nil
}

// resolveNode resolves doc.Nodes[i] and its children, memoizing by index
// so a node referenced from more than one parent is built once.
func resolveNode(i int, doc *document, meshes []*Mesh, cache map[int]*Node) (*Node, error) {
	if n, ok := cache[i]; ok {
		return n, nil
	}
	if i < 0 || i >= len(doc.Nodes) {
		return nil, newErr(MalformedAsset, "node index %d out of range", i)
	}
	gn := doc.Nodes[i]

	n := &Node{Name: gn.Name, Scale: linear.V3{1, 1, 1}, Rotation: linear.Q{W: 1}}
	cache[i] = n

	switch {
	case gn.Matrix != nil:
		m := linear.FromColumnMajor(*gn.Matrix)
		n.Matrix = &m
	default:
		if gn.Translation != nil {
			n.Translation = linear.V3(*gn.Translation)
		}
		if gn.Rotation != nil {
			n.Rotation = linear.QFromArray(*gn.Rotation)
		}
		if gn.Scale != nil {
			n.Scale = linear.V3(*gn.Scale)
		}
	}

	if gn.Mesh != nil {
		if *gn.Mesh < 0 || *gn.Mesh >= len(meshes) {
			return nil, newErr(MalformedAsset, "node %d: mesh index %d out of range", i, *gn.Mesh)
		}
		n.Mesh = meshes[*gn.Mesh]
	}

	for _, childIdx := range gn.Children {
		child, err := resolveNode(childIdx, doc, meshes, cache)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	return n, nil
}
