package fbx

import (
	"encoding/binary"
	"fmt"
	"os"
)

// wideRecordVersion is where node record fields grow from 32 to 64 bits.
const wideRecordVersion = 7500

// ParseBinary parses the node records following the 27-byte header into a
// Document. The grammar is a flat list of records, each carrying its absolute
// end offset, a property count, the property block's byte length, and a nested
// child list terminated by an all-zero null sentinel record.
//
// The parse runs on an explicit stack over the node arena, so pathological
// nesting depth cannot blow the goroutine stack. Property decode errors are
// contained: the node keeps what decoded cleanly, the rest of its property
// block is skipped (its byte length is known), and parsing continues. Record
// offsets pointing outside the stream surface as ErrTruncatedStream.
func ParseBinary(data []byte, version int) (*Document, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d-byte input", ErrTruncatedStream, len(data))
	}

	doc := &Document{Version: version}
	c := &cursor{data: data, off: headerSize}
	wide := version >= wideRecordVersion

	recordHeader := 13 // u32 end, u32 numProps, u32 propLen, u8 nameLen
	if wide {
		recordHeader = 25 // same fields at 64-bit width
	}

	// Each frame is an open record whose child list is being read.
	type frame struct {
		node int
		end  int
	}
	var stack []frame

	appendNode := func(h int) {
		if len(stack) == 0 {
			doc.Roots = append(doc.Roots, h)
			return
		}
		p := stack[len(stack)-1].node
		doc.Nodes[p].Children = append(doc.Nodes[p].Children, h)
	}

	for {
		// Close records whose child region is exhausted, forcing the cursor
		// to each declared end offset (tolerates trailing padding).
		for len(stack) > 0 && c.off >= stack[len(stack)-1].end {
			c.off = stack[len(stack)-1].end
			stack = stack[:len(stack)-1]
		}

		if c.remaining() < recordHeader {
			break // top-level list ends at end-of-stream
		}

		var end, numProps, propLen uint64
		var nameLen int
		if wide {
			end = binary.LittleEndian.Uint64(data[c.off:])
			numProps = binary.LittleEndian.Uint64(data[c.off+8:])
			propLen = binary.LittleEndian.Uint64(data[c.off+16:])
			nameLen = int(data[c.off+24])
		} else {
			end = uint64(binary.LittleEndian.Uint32(data[c.off:]))
			numProps = uint64(binary.LittleEndian.Uint32(data[c.off+4:]))
			propLen = uint64(binary.LittleEndian.Uint32(data[c.off+8:]))
			nameLen = int(data[c.off+12])
		}
		c.off += recordHeader

		if end == 0 {
			// Null sentinel: the current sibling list is done.
			if len(stack) == 0 {
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c.off = top.end
			continue
		}

		// Validate before converting to int: a 64-bit end or length past
		// the stream would wrap into a negative cursor.
		if end > uint64(len(data)) || int(end) < c.off {
			return nil, fmt.Errorf("%w: record end %d outside %d-byte stream", ErrTruncatedStream, end, len(data))
		}
		endOff := int(end)

		nameB, err := c.readBytes(nameLen)
		if err != nil {
			return nil, fmt.Errorf("%w: record name", ErrTruncatedStream)
		}

		h := len(doc.Nodes)
		doc.Nodes = append(doc.Nodes, Node{Name: string(nameB)})
		appendNode(h)

		propStart := c.off
		if propStart > endOff || propLen > uint64(endOff-propStart) {
			return nil, fmt.Errorf("%w: node %q: %d-byte property block outside record", ErrTruncatedStream, doc.Nodes[h].Name, propLen)
		}
		for i := uint64(0); i < numProps; i++ {
			p, err := c.readProperty()
			if err != nil {
				warnf("fbx: node %q: property %d/%d: %v", doc.Nodes[h].Name, i, numProps, err)
				break
			}
			doc.Nodes[h].Props = append(doc.Nodes[h].Props, p)
		}
		// Whether decoding drifted or bailed, the block length is
		// authoritative for where children start.
		c.off = propStart + int(propLen)

		if c.off < endOff {
			stack = append(stack, frame{node: h, end: endOff})
		} else {
			c.off = endOff
		}
	}

	return doc, nil
}

// ParseFile reads, sniffs, and parses a binary FBX file in one step.
func ParseFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fbx: read %s: %w", path, err)
	}
	format, version, ok := Sniff(raw)
	if !ok || format != FormatBinary {
		return nil, fmt.Errorf("%w: %s", ErrHeaderNotRecognized, path)
	}
	return ParseBinary(raw, version)
}
