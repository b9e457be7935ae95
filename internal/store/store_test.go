// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-vault/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.StoreConfig{DataDir: filepath.Join(t.TempDir(), "vault")})
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCandidates() []types.Candidate {
	return []types.Candidate{
		{
			URL:             "https://example.com/a",
			NormalizedURL:   "https://example.com/a",
			Title:           "Hello",
			VisitCount:      1,
			ConfidenceScore: 0.3,
			SuggestedReason: "May be related to research",
			Category:        types.CategoryGeneral,
		},
		{
			URL:             "https://arxiv.org/abs/1234?v=2",
			NormalizedURL:   "https://arxiv.org/abs/1234",
			Title:           "Deep Learning Survey",
			VisitedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			VisitCount:      2,
			ConfidenceScore: 0.9,
			SuggestedReason: "Academic preprint on arXiv",
			IsAcademic:      true,
			Category:        types.CategoryAcademicDomain,
		},
	}
}

// --- tests ---

func TestNewStoreCreatesDBFile(t *testing.T) {
	s := testStore(t)
	if _, err := os.Stat(filepath.Join(s.DataDir(), dbFile)); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestNewStoreRequiresDataDir(t *testing.T) {
	if _, err := NewStore(types.StoreConfig{}); err == nil {
		t.Fatal("NewStore without a data directory should fail")
	}
}

func TestNewStoreReopens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault")
	s, err := NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveCandidates(context.Background(), sampleCandidates()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewStore(types.StoreConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()
	known, err := s.KnownURLs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(known) != 2 {
		t.Errorf("len(known) = %d after reopen, want 2", len(known))
	}
}

func TestSaveAndListCandidates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cands := sampleCandidates()
	n, err := s.SaveCandidates(ctx, cands)
	if err != nil {
		t.Fatalf("SaveCandidates: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}
	for _, c := range cands {
		if c.ID == "" {
			t.Errorf("candidate %s has no ID after insert", c.URL)
		}
	}

	got, err := s.ListCandidates(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	top := got[0]
	if top.NormalizedURL != "https://arxiv.org/abs/1234" {
		t.Errorf("first candidate = %q, want the highest confidence", top.NormalizedURL)
	}
	if !top.IsAcademic || top.Category != types.CategoryAcademicDomain {
		t.Errorf("academic fields lost: %+v", top)
	}
	if !top.VisitedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("VisitedAt = %v", top.VisitedAt)
	}
	if !top.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", top.CreatedAt)
	}
	if top.ID != cands[1].ID {
		t.Errorf("ID = %q, want %q", top.ID, cands[1].ID)
	}
	if !got[1].VisitedAt.IsZero() {
		t.Errorf("zero VisitedAt should round-trip, got %v", got[1].VisitedAt)
	}
}

func TestSaveCandidatesIgnoresKnown(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.SaveCandidates(ctx, sampleCandidates()); err != nil {
		t.Fatal(err)
	}
	again := sampleCandidates()
	again[0].ConfidenceScore = 0.99
	n, err := s.SaveCandidates(ctx, again)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("inserted = %d on second save, want 0", n)
	}
	if again[0].ID != "" {
		t.Errorf("ignored candidate got ID %q", again[0].ID)
	}

	got, err := s.ListCandidates(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].ConfidenceScore != 0.3 {
		t.Errorf("stored candidates changed: %+v", got)
	}
}

func TestSaveCandidatesFailureLeavesInputUntouched(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel once the transaction is open so the inserts fail.
	s.now = func() time.Time {
		cancel()
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	cands := sampleCandidates()
	if _, err := s.SaveCandidates(ctx, cands); err == nil {
		t.Fatal("expected error from cancelled save")
	}
	for _, c := range cands {
		if c.ID != "" || !c.CreatedAt.IsZero() {
			t.Errorf("candidate %s got ID %q after failed save", c.URL, c.ID)
		}
	}

	got, err := s.ListCandidates(context.Background(), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("stored %d candidates after failed save, want 0", len(got))
	}
}

func TestListCandidatesFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.SaveCandidates(ctx, sampleCandidates()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts ListOptions
		want int
	}{
		{"all", ListOptions{}, 2},
		{"limit", ListOptions{Limit: 1}, 1},
		{"academic", ListOptions{AcademicOnly: true}, 1},
		{"confidence", ListOptions{MinConfidence: 0.5}, 1},
		{"none", ListOptions{MinConfidence: 0.95}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListCandidates(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDeleteCandidate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cands := sampleCandidates()
	if _, err := s.SaveCandidates(ctx, cands); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteCandidate(ctx, cands[0].ID); err != nil {
		t.Fatalf("DeleteCandidate: %v", err)
	}
	known, err := s.KnownURLs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if known["https://example.com/a"] || !known["https://arxiv.org/abs/1234"] {
		t.Errorf("known after delete = %v", known)
	}

	err = s.DeleteCandidate(ctx, cands[0].ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestRecordAndListCitations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ref := types.Reference{
		URL:     "https://x.com",
		Title:   "T",
		Authors: types.AuthorsFromNames("Jane Doe", "John Roe"),
	}
	first, err := s.RecordCitation(ctx, CitationRecord{Reference: ref, Style: "APA", Citation: "first"})
	if err != nil {
		t.Fatalf("RecordCitation: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("record missing ID or CreatedAt: %+v", first)
	}
	if _, err := s.RecordCitation(ctx, CitationRecord{Reference: ref, Style: "MLA", Citation: "second", InText: "(Doe and Roe)"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListCitations(ctx, 0)
	if err != nil {
		t.Fatalf("ListCitations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Citation != "second" || got[0].InText != "(Doe and Roe)" {
		t.Errorf("newest citation = %+v", got[0])
	}
	if names := got[1].Reference.Authors.Names(); len(names) != 2 || names[1] != "John Roe" {
		t.Errorf("reference authors = %v", names)
	}

	got, err = s.ListCitations(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("len with limit = %d, want 1", len(got))
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.SaveCandidates(ctx, sampleCandidates()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordCitation(ctx, CitationRecord{Reference: types.Reference{Title: "T"}, Style: "APA", Citation: "T. (n.d.)."}); err != nil {
		t.Fatal(err)
	}

	path, err := s.ExportYAML(ctx, ListOptions{AcademicOnly: true})
	if err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exp Export
	if err := yaml.Unmarshal(data, &exp); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(exp.Candidates) != 1 || exp.Candidates[0].Title != "Deep Learning Survey" {
		t.Errorf("candidates = %+v", exp.Candidates)
	}
	if len(exp.Citations) != 1 || exp.Citations[0].Citation != "T. (n.d.)." {
		t.Errorf("citations = %+v", exp.Citations)
	}
}

func TestExportJSONEmpty(t *testing.T) {
	s := testStore(t)
	path, err := s.ExportJSON(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if filepath.Base(path) != "export.json" {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["candidates"]) != "[]" || string(raw["citations"]) != "[]" {
		t.Errorf("empty export = %s", data)
	}
}
