// Package obj serializes extracted geometry into Wavefront OBJ text.
package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"meshvault/internal/fbx"
)

// offsets carries the cumulative 1-based numbering state across geometries in
// one document. OBJ indices share a single namespace, so a later mesh's
// indices continue after every earlier mesh's counts.
type offsets struct {
	vertex int
	normal int
	uv     int
}

// Write serializes the geometries into one OBJ document. Named object markers
// are emitted only when more than one geometry is present.
func Write(w io.Writer, geoms []fbx.Geometry) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# Converted from FBX by meshvault\n")
	fmt.Fprintf(bw, "# Geometries: %d\n\n", len(geoms))

	var off offsets
	for gi := range geoms {
		off = writeGeometry(bw, &geoms[gi], gi, len(geoms) > 1, off)
	}
	return bw.Flush()
}

func writeGeometry(w *bufio.Writer, g *fbx.Geometry, gi int, named bool, off offsets) offsets {
	if named {
		fmt.Fprintf(w, "o Mesh_%d\n", gi)
	}

	numVerts := g.VertexCount()
	for i := 0; i < numVerts; i++ {
		fmt.Fprintf(w, "v %.6f %.6f %.6f\n", g.Vertices[i*3], g.Vertices[i*3+1], g.Vertices[i*3+2])
	}

	numNormals := g.NormalCount()
	for i := 0; i < numNormals; i++ {
		fmt.Fprintf(w, "vn %.6f %.6f %.6f\n", g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2])
	}

	numUVs := g.UVCount()
	for i := 0; i < numUVs; i++ {
		fmt.Fprintf(w, "vt %.6f %.6f\n", g.UVs[i*2], g.UVs[i*2+1])
	}

	fmt.Fprintf(w, "\n")

	hasNormals := numNormals > 0
	hasUVs := numUVs > 0 && len(g.UVIndices) > 0

	for _, face := range g.Polygons() {
		w.WriteString("f")
		for _, pv := range face {
			v := pv.Index + 1 + off.vertex
			switch {
			case hasNormals && hasUVs:
				// Per-polygon-vertex layers are addressed by the corner's
				// position in the flat stream, not by the vertex index.
				uvi := 0
				if pv.Pos < len(g.UVIndices) {
					uvi = g.UVIndices[pv.Pos]
				}
				fmt.Fprintf(w, " %d/%d/%d", v, uvi+1+off.uv, pv.Pos+1+off.normal)
			case hasNormals:
				fmt.Fprintf(w, " %d//%d", v, pv.Pos+1+off.normal)
			default:
				fmt.Fprintf(w, " %d", v)
			}
		}
		w.WriteString("\n")
	}
	fmt.Fprintf(w, "\n")

	off.vertex += numVerts
	off.normal += numNormals
	off.uv += numUVs
	return off
}

// WriteFile writes the OBJ document to path, creating parent directories as
// needed. The document lands via a temp file + rename so a failed write never
// leaves a partial output behind.
func WriteFile(path string, geoms []fbx.Geometry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("obj: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("obj: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, geoms); err != nil {
		tmp.Close()
		return fmt.Errorf("obj: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("obj: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("obj: rename into %s: %w", path, err)
	}
	return nil
}
