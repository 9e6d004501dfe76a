package fbx

import (
	"errors"
	"log"
	"os"
)

// Error kinds surfaced by the decoder. Property-level kinds are contained
// during parsing (the offending node keeps its already-decoded properties and
// the parse continues); pipeline-level kinds abort a conversion.
var (
	ErrHeaderNotRecognized      = errors.New("fbx: header not recognized")
	ErrUnsupportedPropertyType  = errors.New("fbx: unsupported property type")
	ErrUnsupportedArrayEncoding = errors.New("fbx: unsupported array encoding")
	ErrDecompressionFailure     = errors.New("fbx: array decompression failed")
	ErrTruncatedStream          = errors.New("fbx: truncated stream")
	ErrNoGeometryFound          = errors.New("fbx: no geometry found")
)

// Warnings receives contained decode errors (skipped properties, bad arrays).
// Partial meshes are more useful than total failure, so these never abort a
// parse. Point it at io.Discard to silence.
var Warnings = log.New(os.Stderr, "", log.LstdFlags)

func warnf(format string, args ...any) {
	Warnings.Printf(format, args...)
}
