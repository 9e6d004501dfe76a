package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxInflateRatio bounds how much a compressed array may claim to expand
// relative to its compressed byte length. Anything beyond this is treated as a
// corrupt or hostile declared count rather than allocated blindly.
const maxInflateRatio = 1000

// cursor is a bounds-checked little-endian byte reader.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int { return len(c.data) - c.off }

func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		c.off = len(c.data)
		return nil, ErrTruncatedStream
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) readU32() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readProperty decodes exactly one typed value starting at a one-byte tag and
// leaves the cursor positioned past it.
func (c *cursor) readProperty() (Property, error) {
	tagB, err := c.readBytes(1)
	if err != nil {
		return Property{}, err
	}
	tag := tagB[0]
	p := Property{Tag: tag}

	switch tag {
	case TagInt16:
		b, err := c.readBytes(2)
		if err != nil {
			return Property{}, err
		}
		p.Int = int64(int16(binary.LittleEndian.Uint16(b)))

	case TagBool:
		b, err := c.readBytes(1)
		if err != nil {
			return Property{}, err
		}
		p.Bool = b[0] != 0

	case TagInt32:
		b, err := c.readBytes(4)
		if err != nil {
			return Property{}, err
		}
		p.Int = int64(int32(binary.LittleEndian.Uint32(b)))

	case TagFloat32:
		b, err := c.readBytes(4)
		if err != nil {
			return Property{}, err
		}
		p.Float = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))

	case TagFloat64:
		b, err := c.readBytes(8)
		if err != nil {
			return Property{}, err
		}
		p.Float = math.Float64frombits(binary.LittleEndian.Uint64(b))

	case TagInt64:
		b, err := c.readBytes(8)
		if err != nil {
			return Property{}, err
		}
		p.Int = int64(binary.LittleEndian.Uint64(b))

	case TagFloatArray:
		raw, n, err := c.readArray(4)
		if err != nil {
			return Property{}, err
		}
		p.Floats = make([]float64, n)
		for i := 0; i < n; i++ {
			p.Floats[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}

	case TagDoubleArray:
		raw, n, err := c.readArray(8)
		if err != nil {
			return Property{}, err
		}
		p.Floats = make([]float64, n)
		for i := 0; i < n; i++ {
			p.Floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}

	case TagIntArray:
		raw, n, err := c.readArray(4)
		if err != nil {
			return Property{}, err
		}
		p.Ints = make([]int64, n)
		for i := 0; i < n; i++ {
			p.Ints[i] = int64(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}

	case TagLongArray:
		raw, n, err := c.readArray(8)
		if err != nil {
			return Property{}, err
		}
		p.Ints = make([]int64, n)
		for i := 0; i < n; i++ {
			p.Ints[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}

	case TagBoolArray:
		raw, n, err := c.readArray(1)
		if err != nil {
			return Property{}, err
		}
		p.Bools = make([]bool, n)
		for i := 0; i < n; i++ {
			p.Bools[i] = raw[i] != 0
		}

	case TagString:
		length, err := c.readU32()
		if err != nil {
			return Property{}, err
		}
		b, err := c.readBytes(int(length))
		if err != nil {
			return Property{}, err
		}
		p.Str = string(b)

	case TagRaw:
		length, err := c.readU32()
		if err != nil {
			return Property{}, err
		}
		b, err := c.readBytes(int(length))
		if err != nil {
			return Property{}, err
		}
		p.Raw = append([]byte(nil), b...)

	default:
		return Property{}, fmt.Errorf("%w: tag %q", ErrUnsupportedPropertyType, tag)
	}

	return p, nil
}

// readArray consumes the 12-byte (count, encoding, byteLength) sub-header and
// the payload, inflating encoding 1 with zlib. It returns the raw
// little-endian element bytes and the usable element count, which is
// min(declared count, decoded length / element size).
func (c *cursor) readArray(elemSize int) ([]byte, int, error) {
	hdr, err := c.readBytes(12)
	if err != nil {
		return nil, 0, err
	}
	count := int(binary.LittleEndian.Uint32(hdr[0:4]))
	encoding := binary.LittleEndian.Uint32(hdr[4:8])
	byteLen := int(binary.LittleEndian.Uint32(hdr[8:12]))

	switch encoding {
	case 0:
		// A raw array can never be larger than what is left in the stream.
		if count > c.remaining()/elemSize {
			return nil, 0, fmt.Errorf("%w: raw array declares %d elements, %d bytes remain",
				ErrTruncatedStream, count, c.remaining())
		}
		raw, err := c.readBytes(count * elemSize)
		if err != nil {
			return nil, 0, err
		}
		return raw, count, nil

	case 1:
		comp, err := c.readBytes(byteLen)
		if err != nil {
			return nil, 0, err
		}
		// Array-bomb guard: refuse declared sizes wildly beyond what the
		// compressed payload could plausibly inflate to.
		if byteLen == 0 || count > (byteLen*maxInflateRatio)/elemSize {
			return nil, 0, fmt.Errorf("%w: %d elements declared from %d compressed bytes",
				ErrDecompressionFailure, count, byteLen)
		}
		zr, err := zlib.NewReader(bytes.NewReader(comp))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrDecompressionFailure, err)
		}
		raw, err := io.ReadAll(io.LimitReader(zr, int64(count*elemSize)))
		zr.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrDecompressionFailure, err)
		}
		n := len(raw) / elemSize
		if n > count {
			n = count
		}
		return raw[:n*elemSize], n, nil

	default:
		// Skip the payload so the cursor stays aligned for the caller.
		c.readBytes(byteLen)
		return nil, 0, fmt.Errorf("%w: encoding %d", ErrUnsupportedArrayEncoding, encoding)
	}
}
