package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const asciiTriangle = `; FBX 6.1.0 project file
Objects:  {
	Model: "Model::Tri", "Mesh" {
		Vertices: 0,0,0,1,0,0,0,1,0
		PolygonVertexIndex: 0,1,-3
	}
}
`

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFindsLegacyFBX(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.fbx"), asciiTriangle)
	touch(t, filepath.Join(root, "sub", "b.fbx"), asciiTriangle)
	touch(t, filepath.Join(root, ".hidden", "c.fbx"), asciiTriangle)
	touch(t, filepath.Join(root, ".d.fbx"), asciiTriangle)
	touch(t, filepath.Join(root, "model.obj"), "v 0 0 0")
	touch(t, filepath.Join(root, "junk.fbx"), "not fbx")

	targets, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets = %v, want the two visible legacy files", targets)
	}
}

func TestRunConvertsAll(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.fbx", "b.fbx", "c.fbx"} {
		touch(t, filepath.Join(root, name), asciiTriangle)
	}
	targets, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var mu sync.Mutex
	var seen []Result
	results := Run(Config{Workers: 2, OnResult: func(r Result) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	}}, targets)

	if len(results) != 3 || len(seen) != 3 {
		t.Fatalf("results = %d, callbacks = %d, want 3 each", len(results), len(seen))
	}
	for _, r := range results {
		if !r.Success || r.Skipped {
			t.Errorf("%s: %+v", r.SourcePath, r)
		}
		if r.SourceVersion != 6100 || r.GeometryCount != 1 {
			t.Errorf("%s: stats = %+v", r.SourcePath, r)
		}
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("%s: output missing: %v", r.SourcePath, err)
		}
	}
}

func TestRunSkipsExistingUnlessForced(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.fbx")
	touch(t, src, asciiTriangle)
	touch(t, filepath.Join(root, "a.converted.obj"), "# prior output\n")

	results := Run(Config{Workers: 1}, []string{src})
	if !results[0].Skipped || !results[0].Success {
		t.Fatalf("result = %+v, want skipped", results[0])
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.converted.obj"))
	if string(data) != "# prior output\n" {
		t.Error("existing output was rewritten without Force")
	}

	results = Run(Config{Workers: 1, Force: true}, []string{src})
	if results[0].Skipped || !results[0].Success {
		t.Fatalf("forced result = %+v, want fresh conversion", results[0])
	}
	data, _ = os.ReadFile(filepath.Join(root, "a.converted.obj"))
	if string(data) == "# prior output\n" {
		t.Error("Force did not reconvert")
	}
}

func TestRunReportsFailures(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "bad.fbx")
	// Sniffs as FBX but holds no geometry blocks.
	touch(t, src, "; FBX 6.1.0 project file\nObjects: {}\n")

	results := Run(Config{Workers: 1}, []string{src})
	if results[0].Success || results[0].Error == "" {
		t.Fatalf("result = %+v, want failure with message", results[0])
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	results := []Result{
		{SourcePath: "/a.fbx", Success: true},
		{SourcePath: "/b.fbx", Success: true, Skipped: true},
		{SourcePath: "/c.fbx", Error: "boom"},
	}

	if err := WriteManifest(path, "/models", results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.Converted != 1 || m.Skipped != 1 || m.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", m.Converted, m.Skipped, m.Failed)
	}
	if m.Root != "/models" || len(m.Results) != 3 {
		t.Errorf("manifest = %+v", m)
	}
}
