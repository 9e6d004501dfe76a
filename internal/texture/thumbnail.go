package texture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Thumbnail scales an image down so its longer side is at most maxSide,
// preserving aspect ratio. Images already small enough pass through.
func Thumbnail(img *image.NRGBA, maxSide int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	outW, outH := maxSide, maxSide
	if w > h {
		outH = h * maxSide / w
	} else {
		outW = w * maxSide / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ThumbnailWebP loads a texture file and returns it as a WebP thumbnail.
func ThumbnailWebP(path string, maxSide int) ([]byte, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, Thumbnail(img, maxSide), nil); err != nil {
		return nil, fmt.Errorf("texture: encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
