package asset

// ImageEntry tracks every TextureInfo that references one shared source
// Image, so Dedup (§4.6) can collapse them onto a single Texture.
type ImageEntry struct {
	Index int
	Image *Image

	textureInfos []*TextureInfo
}

func newImageEntry(index int, img *Image) *ImageEntry {
	return &ImageEntry{Index: index, Image: img}
}

// AddTextureInfo registers info as one more reference to this entry's
// Image, in the order Context.add_texture_info sees them (construction
// order, §5's ordering guarantee).
func (e *ImageEntry) AddTextureInfo(info *TextureInfo) {
	e.textureInfos = append(e.textureInfos, info)
}

// Dedup overwrites every registered TextureInfo's Texture to the first
// one seen for this image, per §4.6: "pick tex0 = texture_infos[0].texture
// as the representative". A single reference is a no-op.
func (e *ImageEntry) Dedup() {
	if len(e.textureInfos) < 2 {
		return
	}
	tex0 := e.textureInfos[0].Texture
	for _, info := range e.textureInfos[1:] {
		info.Texture = tex0
	}
}
