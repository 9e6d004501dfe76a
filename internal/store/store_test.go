package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAssignsIdentity(t *testing.T) {
	s := openStore(t)

	rec, err := s.Record(Conversion{
		SourcePath:    "/models/a.fbx",
		OutputPath:    "/models/a.converted.obj",
		SourceVersion: 6100,
		GeometryCount: 2,
		Duration:      42 * time.Millisecond,
		Status:        StatusOK,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.ID == "" {
		t.Error("ID not assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned")
	}
}

func TestRecentOrdering(t *testing.T) {
	s := openStore(t)

	for i, src := range []string{"/a.fbx", "/b.fbx", "/c.fbx"} {
		_, err := s.Record(Conversion{
			SourcePath:    src,
			OutputPath:    src + ".obj",
			SourceVersion: 6000 + i,
			Status:        StatusOK,
		})
		if err != nil {
			t.Fatalf("Record %s: %v", src, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct timestamps
	}

	recent, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d rows, want 2", len(recent))
	}
	if recent[0].SourcePath != "/c.fbx" || recent[1].SourcePath != "/b.fbx" {
		t.Errorf("order = %s, %s; want newest first", recent[0].SourcePath, recent[1].SourcePath)
	}
}

func TestBySourceAndRoundTrip(t *testing.T) {
	s := openStore(t)

	_, err := s.Record(Conversion{
		SourcePath:    "/models/tank.fbx",
		OutputPath:    "/models/tank.converted.obj",
		SourceVersion: 6100,
		GeometryCount: 3,
		Duration:      1500 * time.Millisecond,
		Status:        StatusFailed,
		Error:         "no geometry found",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	_, err = s.Record(Conversion{SourcePath: "/other.fbx", Status: StatusOK})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.BySource("/models/tank.fbx")
	if err != nil {
		t.Fatalf("BySource: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	c := got[0]
	if c.GeometryCount != 3 || c.SourceVersion != 6100 {
		t.Errorf("round trip lost fields: %+v", c)
	}
	if c.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", c.Duration)
	}
	if c.Status != StatusFailed || c.Error != "no geometry found" {
		t.Errorf("status/error = %s/%s", c.Status, c.Error)
	}
	if c.CreatedAt.IsZero() {
		t.Error("created_at did not round trip")
	}
}
