// Package raster renders extracted geometry to images with a software
// rasterizer: z-buffered, flat-shaded, fixed three-quarter view.
package raster

import (
	"image"
	"math"

	"meshvault/internal/fbx"
	"meshvault/internal/mathutil"
)

// Untextured surfaces render in a neutral gray.
const (
	baseR = 160
	baseG = 160
	baseB = 170
)

// DefaultView is the fixed camera rotation used for previews: slightly from
// above, turned toward the viewer.
func DefaultView() mathutil.Mat3 {
	return mathutil.Mat3Mul(
		mathutil.RotX(mathutil.Deg2Rad(-20)),
		mathutil.RotY(mathutil.Deg2Rad(35)),
	)
}

// RenderGeometries renders the geometries into a square NRGBA image of the
// given size. Rendering happens at size*supersample; the caller downsamples.
func RenderGeometries(geoms []fbx.Geometry, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := size * supersample
	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))

	view := DefaultView()

	// Bounding box of all transformed vertices
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	seen := false
	for gi := range geoms {
		g := &geoms[gi]
		for i := 0; i < g.VertexCount(); i++ {
			tv := view.MulVec3(mathutil.Vec3{g.Vertices[i*3], g.Vertices[i*3+1], g.Vertices[i*3+2]})
			for k := 0; k < 3; k++ {
				if tv[k] < lo[k] {
					lo[k] = tv[k]
				}
				if tv[k] > hi[k] {
					hi[k] = tv[k]
				}
			}
			seen = true
		}
	}
	if !seen {
		return img
	}

	center := mathutil.Vec3{
		(lo[0] + hi[0]) / 2,
		(lo[1] + hi[1]) / 2,
		(lo[2] + hi[2]) / 2,
	}
	span := hi[0] - lo[0]
	if s := hi[1] - lo[1]; s > span {
		span = s
	}
	if span < 0.001 {
		span = 0.001
	}

	margin := 16 * supersample
	scale := float64(renderSize-2*margin) / span

	fb := NewFrameBuffer(renderSize, renderSize)
	lc := DefaultLightConfig()

	for gi := range geoms {
		g := &geoms[gi]
		if g.VertexCount() == 0 {
			continue
		}
		px, py, pz := projectVertices(g, view, center, scale, renderSize)

		for _, face := range g.Polygons() {
			// Fan triangulation handles quads and n-gons alike.
			for i := 2; i < len(face); i++ {
				vi := [3]int{face[0].Index, face[i-1].Index, face[i].Index}
				RasterizeTriangle(fb, px, py, pz, vi, baseR, baseG, baseB, &lc)
			}
		}
	}

	copy(img.Pix, fb.Color)
	return img
}

// projectVertices applies the view rotation and maps model space onto pixel
// coordinates. Screen y grows downward, so world y flips.
func projectVertices(g *fbx.Geometry, view mathutil.Mat3, center mathutil.Vec3, scale float64, renderSize int) (px, py, pz []float64) {
	n := g.VertexCount()
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)

	half := float64(renderSize) / 2
	for i := 0; i < n; i++ {
		tv := view.MulVec3(mathutil.Vec3{g.Vertices[i*3], g.Vertices[i*3+1], g.Vertices[i*3+2]})
		px[i] = half + (tv[0]-center[0])*scale
		py[i] = half - (tv[1]-center[1])*scale
		pz[i] = (tv[2] - center[2]) * scale
	}
	return px, py, pz
}
