package fbx

import (
	"regexp"
	"strconv"
)

// The textual FBX 6.x encoding has no practical nested grammar to walk for
// geometry; labeled numeric blocks repeat per mesh and pair positionally (the
// i-th Vertices block belongs with the i-th PolygonVertexIndex block).

var (
	floatTokenRe = regexp.MustCompile(`[+-]?\d+\.?\d*(?:[eE][+-]?\d+)?`)
	intTokenRe   = regexp.MustCompile(`-?\d+`)
)

// ParseASCII extracts geometry records from a textual FBX document.
func ParseASCII(data []byte) []Geometry {
	verts := captureBlocks(data, "Vertices:")
	indices := captureBlocks(data, "PolygonVertexIndex:")
	normals := captureBlocks(data, "Normals:")

	var out []Geometry
	for i, vblock := range verts {
		g := Geometry{Vertices: parseFloats(vblock)}
		if i < len(indices) {
			g.Indices = parseInts(indices[i])
		}
		if i < len(normals) {
			g.Normals = parseFloats(normals[i])
		}
		if len(g.Vertices) > 0 && len(g.Indices) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// captureBlocks returns the numeric text following each occurrence of label,
// lazily captured up to the next structural marker (any byte outside the
// numeric token alphabet, in practice the next key or closing brace).
func captureBlocks(data []byte, label string) []string {
	var blocks []string
	for i := 0; i+len(label) <= len(data); i++ {
		if string(data[i:i+len(label)]) != label {
			continue
		}
		// Reject mid-identifier matches such as "SomethingVertices:".
		if i > 0 && isIdentByte(data[i-1]) {
			continue
		}
		start := i + len(label)
		end := start
		for end < len(data) && isNumericByte(data[end]) {
			end++
		}
		blocks = append(blocks, string(data[start:end]))
		i = end - 1
	}
	return blocks
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isNumericByte(b byte) bool {
	switch b {
	case '+', '-', '.', ',', 'e', 'E', ' ', '\t', '\r', '\n':
		return true
	}
	return b >= '0' && b <= '9'
}

func parseFloats(s string) []float64 {
	tokens := floatTokenRe.FindAllString(s, -1)
	out := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func parseInts(s string) []int {
	tokens := intTokenRe.FindAllString(s, -1)
	out := make([]int, 0, len(tokens))
	for _, t := range tokens {
		v, err := strconv.Atoi(t)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
