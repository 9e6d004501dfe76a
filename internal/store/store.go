// Package store keeps a history of FBX conversions in a SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversions (
	id             TEXT PRIMARY KEY,
	source_path    TEXT NOT NULL,
	output_path    TEXT NOT NULL,
	source_version INTEGER NOT NULL,
	geometry_count INTEGER NOT NULL,
	duration_ms    INTEGER NOT NULL,
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS conversions_source ON conversions(source_path);
`

// Conversion is one recorded pipeline run.
type Conversion struct {
	ID            string        `json:"id"`
	SourcePath    string        `json:"source_path"`
	OutputPath    string        `json:"output_path"`
	SourceVersion int           `json:"source_version"`
	GeometryCount int           `json:"geometry_count"`
	Duration      time.Duration `json:"duration_ms"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Store wraps the conversions database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists a conversion, assigning its ID and timestamp.
func (s *Store) Record(c Conversion) (Conversion, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO conversions
			(id, source_path, output_path, source_version, geometry_count, duration_ms, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SourcePath, c.OutputPath, c.SourceVersion, c.GeometryCount,
		c.Duration.Milliseconds(), c.Status, c.Error, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Conversion{}, fmt.Errorf("store: record conversion: %w", err)
	}
	return c, nil
}

// Recent returns the latest conversions, newest first.
func (s *Store) Recent(limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, source_path, output_path, source_version, geometry_count, duration_ms, status, error, created_at
		FROM conversions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query recent: %w", err)
	}
	defer rows.Close()
	return scanConversions(rows)
}

// BySource returns the conversions recorded for one source file, newest first.
func (s *Store) BySource(sourcePath string) ([]Conversion, error) {
	rows, err := s.db.Query(`
		SELECT id, source_path, output_path, source_version, geometry_count, duration_ms, status, error, created_at
		FROM conversions WHERE source_path = ? ORDER BY created_at DESC, id`, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("store: query by source: %w", err)
	}
	defer rows.Close()
	return scanConversions(rows)
}

func scanConversions(rows *sql.Rows) ([]Conversion, error) {
	var out []Conversion
	for rows.Next() {
		var c Conversion
		var durationMS int64
		var createdAt string
		err := rows.Scan(&c.ID, &c.SourcePath, &c.OutputPath, &c.SourceVersion,
			&c.GeometryCount, &durationMS, &c.Status, &c.Error, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("store: scan conversion: %w", err)
		}
		c.Duration = time.Duration(durationMS) * time.Millisecond
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
