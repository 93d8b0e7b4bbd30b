package asset

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

// fetchBytes resolves uri against baseDir via resolveURI (C1, §4.1) and
// returns its raw bytes, decoding a data: URI in place or reading a local
// file. Reference: gltf_parser.go's loadBufferURI/loadDataURI — the same
// two cases, adapted to run as one unit of work submitted to the worker
// pool (§4.2) rather than inline during parse.
func fetchBytes(uri, baseDir string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return decodeDataURI(uri)
	}

	// resolveURI expects base to be a document URI whose last path segment
	// it strips off; baseDir is already a bare directory, so give it a
	// trailing separator to keep the whole thing as the strip point.
	base := baseDir
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	path := resolveURI(uri, base)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// decodeDataURI decodes a base64 "data:[<mediatype>];base64,<data>" URI.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URI: no comma separator")
	}
	header := uri[5:comma]
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode base64 data URI: %w", err)
	}
	return data, nil
}

// decodeImage decodes encoded image bytes (PNG or JPEG) into tightly
// packed RGBA8 pixels, matching common.ImportedTexture.Decode's stdlib
// image/png+image/jpeg+image/draw pipeline — no third-party codec in the
// example corpus serves a decode-only need more simply than stdlib.
func decodeImage(encoded []byte) (pixels []byte, width, height uint32, err error) {
	img, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), nil
}
