// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history turns browser-history entries into ranked research
// candidates. A scan filters, deduplicates, scores, ranks and truncates a
// batch; persistence is left to the caller.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/relevance"
	"github.com/pdiddy/research-vault/pkg/types"
)

const defaultWorkers = 4

// Options bound a single scan.
type Options struct {
	// Limit caps the number of candidates. Zero or negative means no cap.
	Limit int

	// MinConfidence drops candidates whose total score is below it.
	MinConfidence float64

	// Known holds normalized URLs already persisted. Matching entries are
	// counted as duplicates.
	Known map[string]bool
}

// ScanResult is the outcome of a scan.
type ScanResult struct {
	Candidates []types.Candidate `json:"candidates"`

	// Skipped counts entries dropped by the pre-filter.
	Skipped int `json:"skipped"`

	// Duplicates counts entries already known or repeated in the batch.
	Duplicates int `json:"duplicates"`

	// Scored counts entries that reached the scorer.
	Scored int `json:"scored"`
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the scan logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

// WithWorkers sets the number of concurrent scoring goroutines.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Scanner runs history scans. It is safe for concurrent use.
type Scanner struct {
	scorer  *relevance.Scorer
	filter  *relevance.Filter
	logger  zerolog.Logger
	metrics *observability.Metrics
	workers int
}

// NewScanner builds a Scanner over a scorer and its pre-filter.
func NewScanner(scorer *relevance.Scorer, filter *relevance.Filter, opts ...Option) *Scanner {
	s := &Scanner{
		scorer:  scorer,
		filter:  filter,
		logger:  zerolog.Nop(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scored struct {
	entry types.HistoryEntry
	key   string
	score types.Score
	class types.Classification
}

// Scan processes one batch of history entries:
//
//  1. drop entries the pre-filter skips;
//  2. drop entries whose normalized URL is known or was seen earlier in
//     the batch (first occurrence wins);
//  3. score the survivors in parallel;
//  4. sort by total score, descending, keeping scan order on ties;
//  5. drop scores below MinConfidence and truncate to Limit.
//
// The output is identical for identical input regardless of the worker
// count. A cancelled context aborts the scan.
func (s *Scanner) Scan(ctx context.Context, entries []types.HistoryEntry, opts Options) (ScanResult, error) {
	var res ScanResult
	seen := make(map[string]bool, len(entries))
	work := make([]scored, 0, len(entries))
	for _, e := range entries {
		if s.filter != nil && s.filter.ShouldSkip(e.URL) {
			res.Skipped++
			continue
		}
		key := NormalizeURL(e.URL)
		if opts.Known[key] || seen[key] {
			res.Duplicates++
			continue
		}
		seen[key] = true
		work = append(work, scored{entry: e, key: key})
	}
	s.metrics.Skipped("filtered", res.Skipped)
	s.metrics.Skipped("duplicate", res.Duplicates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range work {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			work[i].score, work[i].class = s.scorer.Evaluate(work[i].entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, fmt.Errorf("scanning history: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return ScanResult{}, fmt.Errorf("scanning history: %w", err)
	}
	res.Scored = len(work)

	sort.SliceStable(work, func(i, j int) bool {
		return work[i].score.Total > work[j].score.Total
	})

	res.Candidates = make([]types.Candidate, 0, len(work))
	for _, w := range work {
		s.metrics.Scored(w.class.IsAcademic)
		if w.score.Total < opts.MinConfidence {
			continue
		}
		if opts.Limit > 0 && len(res.Candidates) >= opts.Limit {
			continue
		}
		res.Candidates = append(res.Candidates, candidate(w))
	}

	s.logger.Debug().
		Int("entries", len(entries)).
		Int("skipped", res.Skipped).
		Int("duplicates", res.Duplicates).
		Int("scored", res.Scored).
		Int("candidates", len(res.Candidates)).
		Msg("history scan complete")
	return res, nil
}

func candidate(w scored) types.Candidate {
	return types.Candidate{
		URL:             w.entry.URL,
		NormalizedURL:   w.key,
		Title:           strings.TrimSpace(w.entry.Title),
		VisitedAt:       w.entry.VisitedAt(),
		VisitCount:      w.entry.Visits(),
		ConfidenceScore: RoundConfidence(w.score.Total),
		SuggestedReason: w.class.Reason,
		IsAcademic:      w.class.IsAcademic,
		Category:        w.class.Category,
	}
}

// RoundConfidence rounds a score to two decimals for persistence.
func RoundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeURL is the deduplication key of a URL: the fragment and query
// are dropped, then one trailing slash.
func NormalizeURL(raw string) string {
	u, _, _ := strings.Cut(raw, "#")
	u, _, _ = strings.Cut(u, "?")
	return strings.TrimSuffix(u, "/")
}

// LoadEntries decodes a JSON array of history entries as exported from
// the browser history API.
func LoadEntries(r io.Reader) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding history entries: %w", err)
	}
	return entries, nil
}
