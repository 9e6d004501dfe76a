package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPNG(t *testing.T) {
	path := writePNG(t, t.TempDir(), "tex.png", 8, 8)
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if img.NRGBAAt(3, 5).B != 128 {
		t.Errorf("pixel = %+v", img.NRGBAAt(3, 5))
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	os.WriteFile(path, []byte("not an image"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("garbage must not decode")
	}
}

func TestThumbnailPreservesAspect(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 100))
	thumb := Thumbnail(img, 64)
	if thumb.Bounds().Dx() != 64 || thumb.Bounds().Dy() != 16 {
		t.Errorf("thumb bounds = %v, want 64x16", thumb.Bounds())
	}
}

func TestThumbnailPassThrough(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	if thumb := Thumbnail(img, 64); thumb != img {
		t.Error("small image must pass through untouched")
	}
}

func TestThumbnailWebP(t *testing.T) {
	path := writePNG(t, t.TempDir(), "tex.png", 300, 300)
	data, err := ThumbnailWebP(path, 64)
	if err != nil {
		t.Fatalf("ThumbnailWebP: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty encoding")
	}
	// RIFF container magic.
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Errorf("output does not look like WebP: % x", data[:8])
	}
}

func TestCacheMemoizes(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "tex.png", 100, 100)

	c := NewCache(64)
	first, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Replace the file with garbage; the cached entry must still serve.
	os.WriteFile(path, []byte("junk"), 0644)
	second, err := c.Get(path)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cache returned different bytes")
	}
}

func TestCacheRemembersFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.png")
	os.WriteFile(path, []byte("junk"), 0644)

	c := NewCache(64)
	if _, err := c.Get(path); err == nil {
		t.Fatal("broken file must error")
	}
	// Fixing the file does not evict the failure entry.
	writePNG(t, dir, "bad.png", 4, 4)
	if _, err := c.Get(path); err == nil {
		t.Fatal("failure entry must persist for the cache lifetime")
	}
}
