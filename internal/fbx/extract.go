package fbx

// Geometry is one extracted mesh: flat vertex triples, the polygon-vertex
// index stream (negative entry = bitwise complement of the polygon's final
// vertex index), and optional normal/UV layers.
type Geometry struct {
	Vertices  []float64 // x,y,z triples
	Indices   []int     // polygon-vertex index stream
	Normals   []float64 // nx,ny,nz triples, optional
	UVs       []float64 // u,v pairs, optional
	UVIndices []int     // per-polygon-vertex UV lookup, optional
}

// VertexCount returns the number of position triples.
func (g *Geometry) VertexCount() int { return len(g.Vertices) / 3 }

// NormalCount returns the number of normal triples.
func (g *Geometry) NormalCount() int { return len(g.Normals) / 3 }

// UVCount returns the number of UV pairs.
func (g *Geometry) UVCount() int { return len(g.UVs) / 2 }

// PolyVert is one corner of a decoded polygon. Index addresses the vertex
// array; Pos is the corner's position in the flat polygon-vertex stream.
// Per-polygon-vertex layers (normals, UV indices) are addressed by Pos,
// never by Index.
type PolyVert struct {
	Index int
	Pos   int
}

// Polygons replays the winding decode: indices accumulate into the open
// polygon until a negative entry closes it, contributing ^value as the final
// corner. One face is emitted per negative entry in the stream.
func (g *Geometry) Polygons() [][]PolyVert {
	var faces [][]PolyVert
	var open []PolyVert
	pos := 0
	for _, raw := range g.Indices {
		if raw < 0 {
			open = append(open, PolyVert{Index: ^raw, Pos: pos})
			faces = append(faces, open)
			open = nil
		} else {
			open = append(open, PolyVert{Index: raw, Pos: pos})
		}
		pos++
	}
	return faces
}

// ExtractGeometries scans the whole tree for nodes that own both a Vertices
// and a PolygonVertexIndex child. Every such pairing, anywhere in the tree,
// yields one Geometry, so multi-mesh files produce multiple records in
// document order. Pairings with no usable vertex or index data are dropped.
func (d *Document) ExtractGeometries() []Geometry {
	var out []Geometry

	// Depth-first in document order without recursing on input depth.
	stack := make([]int, 0, len(d.Roots))
	for i := len(d.Roots) - 1; i >= 0; i-- {
		stack = append(stack, d.Roots[i])
	}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if g, ok := d.extractAt(h); ok {
			out = append(out, g)
			continue // a geometry node's subtree holds layers, not more meshes
		}
		if d.Child(h, "Vertices") >= 0 && d.Child(h, "PolygonVertexIndex") >= 0 {
			continue // pairing present but unusable; do not descend into it
		}
		children := d.Nodes[h].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

func (d *Document) extractAt(h int) (Geometry, bool) {
	verts := d.Child(h, "Vertices")
	indices := d.Child(h, "PolygonVertexIndex")
	if verts < 0 || indices < 0 {
		return Geometry{}, false
	}

	g := Geometry{
		Vertices: d.numbersOf(verts),
		Indices:  d.intsOf(indices),
	}
	if ln := d.Child(h, "LayerElementNormal"); ln >= 0 {
		g.Normals = d.numbersOf(d.Child(ln, "Normals"))
	}
	if lu := d.Child(h, "LayerElementUV"); lu >= 0 {
		g.UVs = d.numbersOf(d.Child(lu, "UV"))
		g.UVIndices = d.intsOf(d.Child(lu, "UVIndex"))
	}

	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return Geometry{}, false
	}
	return g, true
}

// numbersOf flattens a node's numeric payload. It transparently accepts both
// historical storage conventions: one array property (later-generation files)
// or many individual scalar properties in order (legacy scalar burst).
func (d *Document) numbersOf(h int) []float64 {
	if h < 0 || len(d.Nodes[h].Props) == 0 {
		return nil
	}
	if vals, ok := d.Nodes[h].Props[0].FloatArray(); ok {
		return vals
	}
	var out []float64
	for _, p := range d.Nodes[h].Props {
		if v, ok := p.Number(); ok {
			out = append(out, v)
		}
	}
	return out
}

// intsOf is numbersOf for integer payloads.
func (d *Document) intsOf(h int) []int {
	if h < 0 || len(d.Nodes[h].Props) == 0 {
		return nil
	}
	if vals, ok := d.Nodes[h].Props[0].IntArray(); ok {
		return vals
	}
	var out []int
	for _, p := range d.Nodes[h].Props {
		if v, ok := p.Number(); ok {
			out = append(out, int(v))
		}
	}
	return out
}
