// Package convert orchestrates the legacy-FBX → OBJ pipeline: classify the
// input, dispatch to the binary or ASCII decode path, extract geometry, and
// write the OBJ document.
package convert

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meshvault/internal/fbx"
	"meshvault/internal/obj"
)

// NativeVersion is the first FBX version downstream viewers consume directly.
// Anything below it goes through conversion.
const NativeVersion = 7000

// NeedsConversion reports whether path is a legacy FBX file (version below
// 7000). Unreadable or unrecognized files never need conversion; they are
// served as-is and left to the viewer.
func NeedsConversion(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".fbx") {
		return false
	}
	_, version, ok := fbx.SniffFile(path)
	return ok && version < NativeVersion
}

// Stats describes one completed conversion.
type Stats struct {
	Format        fbx.Format
	SourceVersion int
	GeometryCount int
	Duration      time.Duration
}

// Convert runs the full pipeline from srcPath to an OBJ document at dstPath.
// Pipeline-level failures (unrecognized header, no geometry, write failure)
// surface as errors and leave no output file behind.
func Convert(srcPath, dstPath string) (Stats, error) {
	start := time.Now()

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return Stats{}, fmt.Errorf("convert: read %s: %w", srcPath, err)
	}

	format, version, ok := fbx.Sniff(raw)
	if !ok {
		return Stats{}, fmt.Errorf("%w: %s", fbx.ErrHeaderNotRecognized, srcPath)
	}
	stats := Stats{Format: format, SourceVersion: version}

	var geoms []fbx.Geometry
	if format == fbx.FormatASCII {
		geoms = fbx.ParseASCII(raw)
	} else {
		doc, err := fbx.ParseBinary(raw, version)
		if err != nil {
			return stats, fmt.Errorf("convert: parse %s: %w", srcPath, err)
		}
		geoms = doc.ExtractGeometries()
	}

	if len(geoms) == 0 {
		return stats, fmt.Errorf("%w: %s", fbx.ErrNoGeometryFound, srcPath)
	}
	if err := obj.WriteFile(dstPath, geoms); err != nil {
		return stats, err
	}
	stats.GeometryCount = len(geoms)
	stats.Duration = time.Since(start)
	return stats, nil
}

// ConvertedPath is the sibling output path for a legacy FBX file.
func ConvertedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".converted.obj"
}

// MaybeConvert converts path when it is a legacy FBX, reusing a previously
// converted sibling when one exists. It returns the path to serve and whether
// that path is a converted artifact. On conversion failure the original path
// comes back unchanged so the caller can serve the source file.
func MaybeConvert(path string) (string, bool) {
	if !NeedsConversion(path) {
		return path, false
	}
	out := ConvertedPath(path)
	if _, err := os.Stat(out); err == nil {
		return out, true
	}
	if _, err := Convert(path, out); err != nil {
		log.Printf("convert: %s: %v", path, err)
		return path, false
	}
	return out, true
}
