package asset

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func minimalTriangleGLTF(bufferURI string, byteLength int) string {
	return `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}
		],
		"bufferViews": [
			{"buffer": 0, "byteLength": ` + itoa(byteLength) + `}
		],
		"buffers": [
			{"uri": "` + bufferURI + `", "byteLength": ` + itoa(byteLength) + `}
		]
	}`
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func triangleBytes() []byte {
	// 3 VEC3/FLOAT vertices, tightly packed: 36 bytes.
	b := make([]byte, 36)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestLoadSucceedsWithDataURIBuffer(t *testing.T) {
	raw := triangleBytes()
	dataURI := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
	doc := minimalTriangleGLTF(dataURI, len(raw))

	l := NewLoader()
	content, err := l.LoadReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(content.Scenes) != 1 {
		t.Fatalf("len(Scenes) = %d, want 1", len(content.Scenes))
	}
	if content.DefaultSceneIndex != 0 {
		t.Fatalf("DefaultSceneIndex = %d, want 0", content.DefaultSceneIndex)
	}
	pos := content.Scenes[0].Roots[0].Mesh.Primitives[0].Attributes["POSITION"]
	if pos.Count != 3 {
		t.Fatalf("POSITION.Count = %d, want 3", pos.Count)
	}
}

func TestLoadDefaultsUnsetSceneIndexToZero(t *testing.T) {
	raw := triangleBytes()
	dataURI := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
	doc := `{
		"asset": {"version": "2.0"},
		"scenes": [{"nodes": []}],
		"buffers": [{"uri": "` + dataURI + `", "byteLength": 36}]
	}`

	l := NewLoader()
	content, err := l.LoadReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if content.DefaultSceneIndex != 0 {
		t.Fatalf("DefaultSceneIndex = %d, want 0 (defaulted)", content.DefaultSceneIndex)
	}
}

func TestLoadWithSceneIndexOverridesDocumentScene(t *testing.T) {
	raw := triangleBytes()
	dataURI := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": []}, {"nodes": []}],
		"buffers": [{"uri": "` + dataURI + `", "byteLength": 36}]
	}`

	l := NewLoader()
	content, err := l.LoadReader(strings.NewReader(doc), WithSceneIndex(1))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if content.DefaultSceneIndex != 1 {
		t.Fatalf("DefaultSceneIndex = %d, want 1 (overridden)", content.DefaultSceneIndex)
	}
}

func TestLoadWithSceneIndexOutOfRange(t *testing.T) {
	doc := `{"asset": {"version": "2.0"}, "scenes": [{"nodes": []}]}`
	l := NewLoader()
	_, err := l.LoadReader(strings.NewReader(doc), WithSceneIndex(5))
	assertKind(t, err, SceneIndexOutOfRange)
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	doc := `{"asset": {"version": "1.0"}}`
	l := NewLoader()
	_, err := l.LoadReader(strings.NewReader(doc))
	assertKind(t, err, VersionUnsupported)
}

func TestLoadRejectsOutOfRangeSceneIndex(t *testing.T) {
	doc := `{"asset": {"version": "2.0"}, "scene": 5, "scenes": [{"nodes": []}]}`
	l := NewLoader()
	_, err := l.LoadReader(strings.NewReader(doc))
	assertKind(t, err, SceneIndexOutOfRange)
}

func TestLoadFailsWhenBufferFetchFails(t *testing.T) {
	raw := triangleBytes()
	doc := minimalTriangleGLTF("missing.bin", len(raw))
	l := NewLoader()
	_, err := l.LoadReader(strings.NewReader(doc))
	assertKind(t, err, FetchFailed)
}

func TestLoadReadsBufferRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "model.bin")
	raw := triangleBytes()
	writeFile(t, binPath, raw)

	gltfPath := filepath.Join(dir, "model.gltf")
	writeFile(t, gltfPath, []byte(minimalTriangleGLTF("model.bin", len(raw))))

	l := NewLoader()
	content, err := l.Load(gltfPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(content.Scenes) != 1 {
		t.Fatalf("len(Scenes) = %d, want 1", len(content.Scenes))
	}
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %s, got nil", want)
	}
	assetErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *asset.Error, got %T (%v)", err, err)
	}
	if assetErr.Kind != want {
		t.Fatalf("Kind = %s, want %s", assetErr.Kind, want)
	}
}
