// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/research-vault/internal/citation"
	"github.com/pdiddy/research-vault/internal/history"
	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/relevance"
	"github.com/pdiddy/research-vault/internal/store"
	"github.com/pdiddy/research-vault/pkg/types"
)

// loadTables returns the configured relevance tables.
func loadTables(c types.Config) (relevance.Tables, error) {
	if c.Scorer.TablesPath == "" {
		return relevance.DefaultTables(), nil
	}
	t, err := relevance.LoadTables(c.Scorer.TablesPath)
	if err != nil {
		return relevance.Tables{}, fmt.Errorf("loading scorer tables: %w", err)
	}
	return t, nil
}

// pipeline bundles the scorer, its pre-filter and the scanner built
// from one set of tables.
type pipeline struct {
	tables  relevance.Tables
	scorer  *relevance.Scorer
	filter  *relevance.Filter
	scanner *history.Scanner
}

func newPipeline(c types.Config, metrics *observability.Metrics) (*pipeline, error) {
	tables, err := loadTables(c)
	if err != nil {
		return nil, err
	}
	scorer, err := relevance.New(tables, c.Scorer.Weights, relevance.WithLocale(c.Scorer.Locale))
	if err != nil {
		return nil, err
	}
	filter, err := relevance.NewFilter(tables)
	if err != nil {
		return nil, err
	}
	scanner := history.NewScanner(scorer, filter,
		history.WithLogger(observability.WithComponent(logger, "history")),
		history.WithMetrics(metrics),
		history.WithWorkers(c.Scan.Workers),
	)
	return &pipeline{tables: tables, scorer: scorer, filter: filter, scanner: scanner}, nil
}

// newFormatter builds the citation formatter for the configured locale.
func newFormatter(c types.Config, metrics *observability.Metrics) *citation.Formatter {
	return citation.New(
		citation.WithLogger(observability.WithComponent(logger, "citation")),
		citation.WithLabels(citation.LabelsFor(c.Citation.Locale)),
		citation.WithMetrics(metrics),
	)
}

// openStore opens the candidate store under the configured data dir.
func openStore(c types.Config) (*store.Store, error) {
	return store.NewStore(c.Store)
}

// openInput returns stdin for "-" or an empty path, else the named file.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
