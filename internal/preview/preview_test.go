package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"meshvault/internal/fbx"
)

func cube() fbx.Geometry {
	return fbx.Geometry{
		Vertices: []float64{
			-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
			-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
		},
		Indices: []int{
			0, 1, 2, -4,
			4, 5, 6, -8,
			0, 1, 5, -5,
			2, 3, 7, -7,
			0, 3, 7, -5,
			1, 2, 6, -6,
		},
	}
}

func TestRenderCube(t *testing.T) {
	r := &Renderer{Size: 64, Supersample: 2}
	img := r.Render([]fbx.Geometry{cube()})

	b := img.Bounds()
	if b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("bounds = %v, want 64x64 after downsample", b)
	}

	// The cube must cover pixels; the center cannot be transparent.
	if img.NRGBAAt(32, 32).A == 0 {
		t.Error("center pixel is transparent")
	}
	// Corners stay outside the model silhouette.
	if img.NRGBAAt(1, 1).A != 0 {
		t.Error("corner pixel should be background")
	}
}

func TestRenderEmptyGeometry(t *testing.T) {
	r := &Renderer{Size: 32, Supersample: 1}
	img := r.Render(nil)
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("bounds = %v", b)
	}
	if img.NRGBAAt(16, 16).A != 0 {
		t.Error("empty render must be fully transparent")
	}
}

const asciiTriangle = `; FBX 6.1.0 project file
Objects:  {
	Model: "Model::Tri", "Mesh" {
		Vertices: 0,0,0,1,0,0,0,1,0
		PolygonVertexIndex: 0,1,-3
	}
}
`

func TestWebPCaches(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tri.fbx")
	if err := os.WriteFile(src, []byte(asciiTriangle), 0644); err != nil {
		t.Fatal(err)
	}

	cacheDir := filepath.Join(dir, "cache")
	r := &Renderer{Size: 32, Supersample: 1, CacheDir: cacheDir}

	first, err := r.WebP(src)
	if err != nil {
		t.Fatalf("WebP: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("empty encoding")
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache entries = %v (%v), want 1", entries, err)
	}

	second, err := r.WebP(src)
	if err != nil {
		t.Fatalf("WebP (cached): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached bytes differ from the first encoding")
	}
}

func TestWebPMissingFile(t *testing.T) {
	r := &Renderer{Size: 32, Supersample: 1}
	if _, err := r.WebP(filepath.Join(t.TempDir(), "gone.fbx")); err == nil {
		t.Fatal("missing file must error")
	}
}
