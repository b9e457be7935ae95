// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-vault/pkg/types"
)

// Export is the full content of the vault.
type Export struct {
	Candidates []types.Candidate `json:"candidates" yaml:"candidates"`
	Citations  []CitationRecord  `json:"citations" yaml:"citations"`
}

// ExportYAML writes the vault to dataDir/export.yaml and returns the path.
// Candidate filters follow ListCandidates.
func (s *Store) ExportYAML(ctx context.Context, opts ListOptions) (string, error) {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ExportJSON writes the vault to dataDir/export.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, opts ListOptions) (string, error) {
	exp, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dataDir, "export.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (s *Store) export(ctx context.Context, opts ListOptions) (Export, error) {
	candidates, err := s.ListCandidates(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	citations, err := s.ListCitations(ctx, 0)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	if citations == nil {
		citations = []CitationRecord{}
	}
	return Export{Candidates: candidates, Citations: citations}, nil
}
