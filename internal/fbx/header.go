package fbx

import (
	"bytes"
	"encoding/binary"
	"os"
	"regexp"
	"strconv"
)

// Format classifies the on-disk encoding of an FBX file.
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

func (f Format) String() string {
	if f == FormatASCII {
		return "ascii"
	}
	return "binary"
}

// magic is the fixed 21-byte header of binary FBX files.
var magic = []byte("Kaydara FBX Binary  \x00")

// headerSize covers magic (21) + padding (2) + version (4).
const headerSize = 27

// asciiVersionRe matches the trailing version of "; FBX 6.1.0 project file".
var asciiVersionRe = regexp.MustCompile(`FBX\s+(\d+)\.(\d+)`)

// Sniff classifies the leading bytes of a file and extracts the format
// version. Truncated, malformed, or alien headers are a normal ok=false
// outcome, never a panic or error.
func Sniff(header []byte) (Format, int, bool) {
	if len(header) >= headerSize && bytes.Equal(header[:21], magic) {
		return FormatBinary, int(binary.LittleEndian.Uint32(header[23:27])), true
	}
	if bytes.HasPrefix(header, []byte("; FBX")) {
		if m := asciiVersionRe.FindSubmatch(header); m != nil {
			major, _ := strconv.Atoi(string(m[1]))
			minor, _ := strconv.Atoi(string(m[2]))
			return FormatASCII, major*1000 + minor*100, true
		}
	}
	return 0, 0, false
}

// SniffFile reads just enough of the file to classify it.
func SniffFile(path string) (Format, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	return Sniff(buf[:n])
}
