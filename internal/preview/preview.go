// Package preview renders model files to WebP preview images, cached on
// disk per source file revision.
package preview

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"meshvault/internal/fbx"
	"meshvault/internal/postprocess"
	"meshvault/internal/raster"
)

// Renderer produces preview images for FBX files.
type Renderer struct {
	Size        int
	Supersample int
	// CacheDir, when set, keeps encoded previews keyed by path and mtime.
	CacheDir string
}

// Render rasterizes geometries at the configured size.
func (r *Renderer) Render(geoms []fbx.Geometry) *image.NRGBA {
	img := raster.RenderGeometries(geoms, r.Size, r.Supersample)
	if r.Supersample > 1 {
		img = postprocess.Downsample(img, r.Size)
	}
	return img
}

// RenderFile parses an FBX file, binary or textual, and renders its geometry.
func (r *Renderer) RenderFile(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preview: read %s: %w", path, err)
	}
	format, version, ok := fbx.Sniff(data)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fbx.ErrHeaderNotRecognized, path)
	}

	var geoms []fbx.Geometry
	if format == fbx.FormatASCII {
		geoms = fbx.ParseASCII(data)
	} else {
		doc, err := fbx.ParseBinary(data, version)
		if err != nil {
			return nil, err
		}
		geoms = doc.ExtractGeometries()
	}
	if len(geoms) == 0 {
		return nil, fmt.Errorf("%w: %s", fbx.ErrNoGeometryFound, path)
	}
	return r.Render(geoms), nil
}

// WebP returns the encoded preview for an FBX file, serving from the disk
// cache when the source has not changed.
func (r *Renderer) WebP(path string) ([]byte, error) {
	cachePath := ""
	if r.CacheDir != "" {
		st, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("preview: stat %s: %w", path, err)
		}
		key := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%d", path, st.ModTime().UnixNano(), st.Size(), r.Size)))
		cachePath = filepath.Join(r.CacheDir, hex.EncodeToString(key[:16])+".webp")
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	img, err := r.RenderFile(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("preview: encode %s: %w", path, err)
	}

	if cachePath != "" {
		if err := os.MkdirAll(r.CacheDir, 0755); err == nil {
			os.WriteFile(cachePath, buf.Bytes(), 0644)
		}
	}
	return buf.Bytes(), nil
}
