package fbx

// Property type tags, matching the on-disk single-byte discriminators.
const (
	TagInt16       = 'Y'
	TagBool        = 'C'
	TagInt32       = 'I'
	TagFloat32     = 'F'
	TagFloat64     = 'D'
	TagInt64       = 'L'
	TagFloatArray  = 'f'
	TagDoubleArray = 'd'
	TagIntArray    = 'i'
	TagLongArray   = 'l'
	TagBoolArray   = 'b'
	TagString      = 'S'
	TagRaw         = 'R'
)

// Property is one decoded, typed node property. Exactly one payload field is
// populated, selected by Tag; call sites switch on Tag and reject anything
// outside the closed set above.
type Property struct {
	Tag    byte
	Int    int64
	Float  float64
	Bool   bool
	Ints   []int64
	Floats []float64
	Bools  []bool
	Str    string
	Raw    []byte
}

// Number returns the scalar numeric payload, widening integers to float64.
func (p Property) Number() (float64, bool) {
	switch p.Tag {
	case TagInt16, TagInt32, TagInt64:
		return float64(p.Int), true
	case TagFloat32, TagFloat64:
		return p.Float, true
	case TagBool:
		if p.Bool {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// FloatArray returns an array payload widened to float64.
func (p Property) FloatArray() ([]float64, bool) {
	switch p.Tag {
	case TagFloatArray, TagDoubleArray:
		return p.Floats, true
	case TagIntArray, TagLongArray:
		out := make([]float64, len(p.Ints))
		for i, v := range p.Ints {
			out[i] = float64(v)
		}
		return out, true
	}
	return nil, false
}

// IntArray returns an array payload narrowed to int.
func (p Property) IntArray() ([]int, bool) {
	switch p.Tag {
	case TagIntArray, TagLongArray:
		out := make([]int, len(p.Ints))
		for i, v := range p.Ints {
			out[i] = int(v)
		}
		return out, true
	case TagFloatArray, TagDoubleArray:
		out := make([]int, len(p.Floats))
		for i, v := range p.Floats {
			out[i] = int(v)
		}
		return out, true
	}
	return nil, false
}

// Node is one record of the parsed tree. Children are handles into the owning
// Document's arena, which keeps the structure a strict tree with no pointer
// cycles and no recursion on input depth.
type Node struct {
	Name     string
	Props    []Property
	Children []int
}

// Document is a parsed FBX tree stored as a flat node arena.
type Document struct {
	Version int
	Nodes   []Node
	Roots   []int
}

// Child returns the handle of the first direct child of h named name, or -1.
// A negative h is tolerated and yields -1, so lookups chain safely.
func (d *Document) Child(h int, name string) int {
	if h < 0 || h >= len(d.Nodes) {
		return -1
	}
	for _, c := range d.Nodes[h].Children {
		if d.Nodes[c].Name == name {
			return c
		}
	}
	return -1
}

// TopLevel returns the handle of the first root node named name, or -1.
func (d *Document) TopLevel(name string) int {
	for _, h := range d.Roots {
		if d.Nodes[h].Name == name {
			return h
		}
	}
	return -1
}
