// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists the download and conversion history of a course
// tree. The store is advisory: every pipeline stage works without it, and
// callers treat an unavailable catalog as a warning, not an error.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

const (
	catalogDir = ".course-engine"
	dbFile     = "catalog.db"
	exportFile = "export.yaml"
)

// Store manages the catalog SQLite database.
type Store struct {
	db   *sql.DB
	root string
}

// Open opens or creates the catalog database at root/.course-engine/catalog.db,
// creating the schema if it does not exist.
func Open(root string) (*Store, error) {
	dir := filepath.Join(root, catalogDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db, root: root}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			path TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			unit TEXT,
			category TEXT,
			size INTEGER,
			downloaded_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_course ON downloads(course_id)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			source_path TEXT PRIMARY KEY,
			label TEXT,
			ok INTEGER NOT NULL,
			converted_at TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordDownload upserts one downloaded file. Paths are stored relative to
// the catalog root when possible so the tree can be moved wholesale.
func (s *Store) RecordDownload(path, courseID, unit, category string, size int64) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (path, course_id, unit, category, size, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			course_id=excluded.course_id, unit=excluded.unit,
			category=excluded.category, size=excluded.size,
			downloaded_at=excluded.downloaded_at`,
		s.rel(path), courseID, unit, category, size, now(),
	)
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}
	return nil
}

// RecordConversion upserts one conversion outcome. label names the strategy
// that produced the PDF ("none" when every strategy failed).
func (s *Store) RecordConversion(sourcePath, label string, ok bool) error {
	okInt := 0
	if ok {
		okInt = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO conversions (source_path, label, ok, converted_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_path) DO UPDATE SET
			label=excluded.label, ok=excluded.ok, converted_at=excluded.converted_at`,
		s.rel(sourcePath), label, okInt, now(),
	)
	if err != nil {
		return fmt.Errorf("recording conversion: %w", err)
	}
	return nil
}

func (s *Store) rel(path string) string {
	if r, err := filepath.Rel(s.root, path); err == nil && !filepath.IsAbs(r) {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(path)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CourseSummary aggregates the catalog per course.
type CourseSummary struct {
	CourseID string `yaml:"course_id"`
	Files    int    `yaml:"files"`
	Bytes    int64  `yaml:"bytes"`
}

// Summaries returns per-course download totals, ordered by course id.
func (s *Store) Summaries() ([]CourseSummary, error) {
	rows, err := s.db.Query(
		`SELECT course_id, COUNT(*), COALESCE(SUM(size), 0)
		 FROM downloads GROUP BY course_id ORDER BY course_id`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var out []CourseSummary
	for rows.Next() {
		var cs CourseSummary
		if err := rows.Scan(&cs.CourseID, &cs.Files, &cs.Bytes); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// Record is one download joined with its conversion outcome, if any.
type Record struct {
	Path            string `yaml:"path"`
	CourseID        string `yaml:"course_id"`
	Unit            string `yaml:"unit,omitempty"`
	Category        string `yaml:"category,omitempty"`
	Size            int64  `yaml:"size"`
	DownloadedAt    string `yaml:"downloaded_at"`
	ConversionLabel string `yaml:"conversion_label,omitempty"`
	Converted       *bool  `yaml:"converted,omitempty"`
}

// Records returns the full download history joined with conversion outcomes,
// ordered by path.
func (s *Store) Records() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT d.path, d.course_id, d.unit, d.category, d.size, d.downloaded_at,
			c.label, c.ok
		 FROM downloads d LEFT JOIN conversions c ON c.source_path = d.path
		 ORDER BY d.path`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var label sql.NullString
		var ok sql.NullInt64
		if err := rows.Scan(&r.Path, &r.CourseID, &r.Unit, &r.Category, &r.Size, &r.DownloadedAt, &label, &ok); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if label.Valid {
			r.ConversionLabel = label.String
		}
		if ok.Valid {
			b := ok.Int64 != 0
			r.Converted = &b
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// export is the YAML document layout written by ExportYAML.
type export struct {
	GeneratedAt string          `yaml:"generated_at"`
	Courses     []CourseSummary `yaml:"courses"`
	Records     []Record        `yaml:"records"`
}

// ExportYAML writes a human-readable snapshot of the catalog to
// root/.course-engine/export.yaml.
func (s *Store) ExportYAML() error {
	summaries, err := s.Summaries()
	if err != nil {
		return err
	}
	records, err := s.Records()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(export{
		GeneratedAt: now(),
		Courses:     summaries,
		Records:     records,
	})
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}

	path := filepath.Join(s.root, catalogDir, exportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
