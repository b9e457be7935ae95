// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists research candidates and generated citations in
// SQLite. It stands in for the hosted history_candidates and citations
// tables.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-vault/pkg/types"
)

const dbFile = "vault.db"

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the vault SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
	now     func() time.Time
}

// NewStore opens or creates the database at dataDir/vault.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("store: data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir, now: time.Now}
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

// DataDir returns the directory holding the database and exports.
func (s *Store) DataDir() string { return s.dataDir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history_candidates (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			normalized_url TEXT NOT NULL UNIQUE,
			title TEXT,
			visited_at TEXT,
			visit_count INTEGER NOT NULL DEFAULT 1,
			confidence_score REAL NOT NULL,
			suggested_reason TEXT,
			is_academic INTEGER NOT NULL DEFAULT 0,
			category TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_confidence ON history_candidates(confidence_score DESC)`,
		`CREATE TABLE IF NOT EXISTS citations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			url TEXT,
			title TEXT NOT NULL,
			style TEXT NOT NULL,
			citation TEXT NOT NULL,
			in_text TEXT,
			reference TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_url ON citations(url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// KnownURLs returns the normalized URLs of every stored candidate.
func (s *Store) KnownURLs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT normalized_url FROM history_candidates`)
	if err != nil {
		return nil, fmt.Errorf("querying known URLs: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning known URL: %w", err)
		}
		known[u] = true
	}
	return known, rows.Err()
}

// SaveCandidates inserts candidates in one transaction. Candidates whose
// normalized URL is already stored are ignored. Inserted candidates get an
// ID and CreatedAt in place. It returns the number inserted.
func (s *Store) SaveCandidates(ctx context.Context, candidates []types.Candidate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO history_candidates
			(id, url, normalized_url, title, visited_at, visit_count,
			 confidence_score, suggested_reason, is_academic, category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	created := s.now().UTC()
	ids := make(map[int]string)
	for i, c := range candidates {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		res, err := stmt.ExecContext(ctx,
			id, c.URL, c.NormalizedURL, c.Title, formatTime(c.VisitedAt), c.VisitCount,
			c.ConfidenceScore, c.SuggestedReason, c.IsAcademic, string(c.Category),
			formatTime(created),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting candidate %s: %w", c.URL, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			ids[i] = id
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing candidates: %w", err)
	}

	// Only rows that were committed get an ID.
	for i, id := range ids {
		candidates[i].ID = id
		candidates[i].CreatedAt = created
	}
	return len(ids), nil
}

// ListOptions filter ListCandidates.
type ListOptions struct {
	// Limit caps the result. Zero or negative means no cap.
	Limit int

	// AcademicOnly keeps only academic candidates.
	AcademicOnly bool

	// MinConfidence drops candidates scored below it.
	MinConfidence float64
}

// ListCandidates returns stored candidates, highest confidence first and
// oldest first on ties.
func (s *Store) ListCandidates(ctx context.Context, opts ListOptions) ([]types.Candidate, error) {
	var (
		where []string
		args  []any
	)
	if opts.AcademicOnly {
		where = append(where, "is_academic = 1")
	}
	if opts.MinConfidence > 0 {
		where = append(where, "confidence_score >= ?")
		args = append(args, opts.MinConfidence)
	}

	q := `SELECT id, url, normalized_url, title, visited_at, visit_count,
			confidence_score, suggested_reason, is_academic, category, created_at
		  FROM history_candidates`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY confidence_score DESC, rowid ASC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var (
			c                types.Candidate
			visited, created string
			category         sql.NullString
			title, reason    sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.URL, &c.NormalizedURL, &title, &visited, &c.VisitCount,
			&c.ConfidenceScore, &reason, &c.IsAcademic, &category, &created); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Title = title.String
		c.SuggestedReason = reason.String
		c.Category = types.Category(category.String)
		c.VisitedAt = parseTime(visited)
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCandidate removes a candidate by ID.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history_candidates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting candidate %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("candidate %s: %w", id, ErrNotFound)
	}
	return nil
}

// CitationRecord is one generated citation.
type CitationRecord struct {
	ID        string          `json:"id" yaml:"id"`
	Reference types.Reference `json:"reference" yaml:"reference"`
	Style     string          `json:"style" yaml:"style"`
	Citation  string          `json:"citation" yaml:"citation"`
	InText    string          `json:"in_text,omitempty" yaml:"in_text,omitempty"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}

// RecordCitation stores a generated citation and returns it with ID and
// CreatedAt set.
func (s *Store) RecordCitation(ctx context.Context, rec CitationRecord) (CitationRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	refJSON, err := json.Marshal(rec.Reference)
	if err != nil {
		return rec, fmt.Errorf("marshaling reference: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO citations (id, url, title, style, citation, in_text, reference, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Reference.URL, rec.Reference.Title, rec.Style, rec.Citation, rec.InText,
		string(refJSON), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return rec, fmt.Errorf("inserting citation: %w", err)
	}
	return rec, nil
}

// ListCitations returns stored citations, newest first.
func (s *Store) ListCitations(ctx context.Context, limit int) ([]CitationRecord, error) {
	q := `SELECT id, style, citation, in_text, reference, created_at FROM citations ORDER BY rowid DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	var out []CitationRecord
	for rows.Next() {
		var (
			rec              CitationRecord
			inText           sql.NullString
			refJSON, created string
		)
		if err := rows.Scan(&rec.ID, &rec.Style, &rec.Citation, &inText, &refJSON, &created); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		if err := json.Unmarshal([]byte(refJSON), &rec.Reference); err != nil {
			return nil, fmt.Errorf("decoding citation %s reference: %w", rec.ID, err)
		}
		rec.InText = inText.String
		rec.CreatedAt = parseTime(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
