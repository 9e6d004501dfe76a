package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
)

// Test fixture builder for 32-bit-format binary documents.

type propBlock struct {
	count int
	data  []byte
}

func (p *propBlock) addF64(v float64) {
	p.data = append(p.data, TagFloat64)
	p.data = binary.LittleEndian.AppendUint64(p.data, math.Float64bits(v))
	p.count++
}

func (p *propBlock) addI32(v int32) {
	p.data = append(p.data, TagInt32)
	p.data = binary.LittleEndian.AppendUint32(p.data, uint32(v))
	p.count++
}

func (p *propBlock) addString(s string) {
	p.data = append(p.data, TagString)
	p.data = binary.LittleEndian.AppendUint32(p.data, uint32(len(s)))
	p.data = append(p.data, s...)
	p.count++
}

func (p *propBlock) addRawTag(tag byte, payload []byte) {
	p.data = append(p.data, tag)
	p.data = append(p.data, payload...)
	p.count++
}

func f64ArrayPayload(vals []float64, compressed bool) []byte {
	raw := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
	}
	return arrayPayload(len(vals), raw, compressed)
}

func i32ArrayPayload(vals []int32, compressed bool) []byte {
	raw := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(v))
	}
	return arrayPayload(len(vals), raw, compressed)
}

func arrayPayload(count int, raw []byte, compressed bool) []byte {
	encoding := uint32(0)
	payload := raw
	if compressed {
		encoding = 1
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		zw.Write(raw)
		zw.Close()
		payload = buf.Bytes()
	}
	out := binary.LittleEndian.AppendUint32(nil, uint32(count))
	out = binary.LittleEndian.AppendUint32(out, encoding)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

func (p *propBlock) addF64Array(vals []float64, compressed bool) {
	p.addRawTag(TagDoubleArray, f64ArrayPayload(vals, compressed))
}

func (p *propBlock) addI32Array(vals []int32, compressed bool) {
	p.addRawTag(TagIntArray, i32ArrayPayload(vals, compressed))
}

type nodeSpec struct {
	name  string
	props propBlock
	kids  []nodeSpec
}

func (n *nodeSpec) size() int {
	s := 13 + len(n.name) + len(n.props.data)
	if len(n.kids) > 0 {
		for i := range n.kids {
			s += n.kids[i].size()
		}
		s += 13 // null sentinel closing the child list
	}
	return s
}

func (n *nodeSpec) render(base int) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(base+n.size()))
	out = binary.LittleEndian.AppendUint32(out, uint32(n.props.count))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(n.props.data)))
	out = append(out, byte(len(n.name)))
	out = append(out, n.name...)
	out = append(out, n.props.data...)
	if len(n.kids) > 0 {
		off := base + len(out)
		for i := range n.kids {
			kb := n.kids[i].render(off)
			out = append(out, kb...)
			off += len(kb)
		}
		out = append(out, make([]byte, 13)...)
	}
	return out
}

// buildDocument assembles a complete binary file: magic header, version, the
// given top-level records, and a terminating null record.
func buildDocument(version uint32, roots ...nodeSpec) []byte {
	out := make([]byte, 0, 256)
	out = append(out, magic...)
	out = append(out, 0x1a, 0x00)
	out = binary.LittleEndian.AppendUint32(out, version)
	for i := range roots {
		out = append(out, roots[i].render(len(out))...)
	}
	return append(out, make([]byte, 13)...)
}

// cubeGeometry returns the node subtree of a minimal cube-like mesh:
// 8 vertices and a 24-entry index stream describing 6 quads.
func cubeGeometry() nodeSpec {
	verts := propBlock{}
	verts.addF64Array(cubeVertices(), false)
	indices := propBlock{}
	indices.addI32Array(cubeIndices(), false)

	return nodeSpec{
		name: "Model",
		kids: []nodeSpec{
			{name: "Vertices", props: verts},
			{name: "PolygonVertexIndex", props: indices},
		},
	}
}

func cubeVertices() []float64 {
	return []float64{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
	}
}

func cubeIndices() []int32 {
	return []int32{
		0, 1, 2, ^int32(3),
		4, 5, 6, ^int32(7),
		0, 1, 5, ^int32(4),
		2, 3, 7, ^int32(6),
		0, 3, 7, ^int32(4),
		1, 2, 6, ^int32(5),
	}
}
