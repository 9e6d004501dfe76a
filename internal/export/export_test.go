package export

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExportSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lib", "old.obj")
	touch(t, src, "v 0 0 0")
	target := filepath.Join(dir, "out")

	res := Export(Request{SourcePath: src, TargetDir: target, NewName: "fresh"})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	want := filepath.Join(target, "fresh.obj")
	if len(res.Files) != 1 || res.Files[0] != want {
		t.Fatalf("files = %v, want [%s]", res.Files, want)
	}
	if data, _ := os.ReadFile(want); string(data) != "v 0 0 0" {
		t.Errorf("content = %q", data)
	}
}

func TestExportWithSidecarsCreatesSubfolder(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "chair.obj")
	mtl := filepath.Join(dir, "chair.mtl")
	tex := filepath.Join(dir, "chair.png")
	touch(t, src, "v 0 0 0")
	touch(t, mtl, "newmtl wood")
	touch(t, tex, "png")
	target := filepath.Join(dir, "out")

	res := Export(Request{
		SourcePath:   src,
		TargetDir:    target,
		NewName:      "seat",
		RelatedFiles: []string{mtl, tex},
	})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	assetDir := filepath.Join(target, "seat")
	for _, name := range []string{"seat.obj", "seat.mtl", "seat.png"} {
		if _, err := os.Stat(filepath.Join(assetDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if len(res.Files) != 3 {
		t.Errorf("files = %v, want 3 entries", res.Files)
	}
}

func TestExportSidecarExtensionCollision(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ship.obj")
	texA := filepath.Join(dir, "hull.png")
	texB := filepath.Join(dir, "sail.png")
	touch(t, src, "v 0 0 0")
	touch(t, texA, "hull")
	touch(t, texB, "sail")
	target := filepath.Join(dir, "out")

	res := Export(Request{
		SourcePath:   src,
		TargetDir:    target,
		NewName:      "boat",
		RelatedFiles: []string{texA, texB},
	})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	assetDir := filepath.Join(target, "boat")
	// First texture takes the new name; the second keeps its own.
	if data, _ := os.ReadFile(filepath.Join(assetDir, "boat.png")); string(data) != "hull" {
		t.Errorf("boat.png = %q", data)
	}
	if data, _ := os.ReadFile(filepath.Join(assetDir, "sail.png")); string(data) != "sail" {
		t.Errorf("sail.png = %q", data)
	}
}

func TestExportSamePathSkipsCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "model.obj")
	touch(t, src, "v 0 0 0")

	res := Export(Request{SourcePath: src, TargetDir: dir, NewName: "model"})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	if data, _ := os.ReadFile(src); string(data) != "v 0 0 0" {
		t.Error("in-place export truncated its own source")
	}
}

func TestExportMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	res := Export(Request{
		SourcePath: filepath.Join(dir, "gone.obj"),
		TargetDir:  filepath.Join(dir, "out"),
		NewName:    "x",
	})
	if res.Success {
		t.Fatal("missing source must fail")
	}
	if !strings.HasPrefix(res.Message, "Export failed") {
		t.Errorf("message = %q", res.Message)
	}
}

func writeZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	zw.Close()
	path := filepath.Join(dir, "pack.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExportFromZipSingle(t *testing.T) {
	dir := t.TempDir()
	pack := writeZip(t, dir, map[string]string{"models/ship.fbx": "fbxdata"})
	target := filepath.Join(dir, "out")

	res := Export(Request{
		TargetDir:   target,
		NewName:     "cruiser",
		IsInArchive: true,
		ArchivePath: pack,
		InnerPath:   "models/ship.fbx",
	})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	want := filepath.Join(target, "cruiser.fbx")
	if data, _ := os.ReadFile(want); string(data) != "fbxdata" {
		t.Errorf("exported content = %q", data)
	}
	if res.OutputPath != target {
		t.Errorf("output path = %q, want target dir for single file", res.OutputPath)
	}
}

func TestExportFromZipWithSidecars(t *testing.T) {
	dir := t.TempDir()
	pack := writeZip(t, dir, map[string]string{
		"ship.fbx": "fbxdata",
		"hull.png": "pngdata",
	})
	target := filepath.Join(dir, "out")

	res := Export(Request{
		TargetDir:    target,
		NewName:      "cruiser",
		IsInArchive:  true,
		ArchivePath:  pack,
		InnerPath:    "ship.fbx",
		RelatedFiles: []string{"hull.png"},
	})
	if !res.Success {
		t.Fatalf("export failed: %s", res.Message)
	}
	assetDir := filepath.Join(target, "cruiser")
	if res.OutputPath != assetDir {
		t.Errorf("output path = %q, want asset subfolder", res.OutputPath)
	}
	// Main file renamed, sidecar keeps its name.
	if data, _ := os.ReadFile(filepath.Join(assetDir, "cruiser.fbx")); string(data) != "fbxdata" {
		t.Errorf("main content = %q", data)
	}
	if data, _ := os.ReadFile(filepath.Join(assetDir, "hull.png")); string(data) != "pngdata" {
		t.Errorf("sidecar content = %q", data)
	}
}

func TestExportFromZipMissingEntry(t *testing.T) {
	dir := t.TempDir()
	pack := writeZip(t, dir, map[string]string{"a.obj": "v"})

	res := Export(Request{
		TargetDir:   filepath.Join(dir, "out"),
		NewName:     "x",
		IsInArchive: true,
		ArchivePath: pack,
		InnerPath:   "missing.obj",
	})
	if res.Success {
		t.Fatal("missing entry must fail")
	}
}

func TestExportUnsupportedArchive(t *testing.T) {
	dir := t.TempDir()
	res := Export(Request{
		TargetDir:   filepath.Join(dir, "out"),
		NewName:     "x",
		IsInArchive: true,
		ArchivePath: filepath.Join(dir, "pack.7z"),
		InnerPath:   "a.obj",
	})
	if res.Success {
		t.Fatal("unsupported archive format must fail")
	}
	if !strings.Contains(res.Message, "Unsupported archive format") &&
		!strings.Contains(res.Message, "unsupported archive format") {
		t.Errorf("message = %q", res.Message)
	}
}
