// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for research-vault.
// Implements: the relevance scorer (HistoryEntry, Score, Classification),
//
//	the history scan (Candidate),
//	the citation formatter (Reference, Author, Style).
//
// See DESIGN.md for the component map.
package types

import (
	"math"
	"time"
)

// HistoryEntry is one browsing-history record as reported by the browser
// history API. The core never persists it.
type HistoryEntry struct {
	// URL is the absolute page URL.
	URL string `json:"url" yaml:"url"`

	// Title is the page title, possibly empty.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// LastVisitTime is the last visit as epoch milliseconds. Browsers report
	// fractional milliseconds, hence float64.
	LastVisitTime float64 `json:"lastVisitTime,omitempty" yaml:"last_visit_time,omitempty"`

	// VisitCount is the number of visits. Zero is treated as one.
	VisitCount int `json:"visitCount,omitempty" yaml:"visit_count,omitempty"`
}

// Visits returns VisitCount, defaulting to 1 when unset.
func (e HistoryEntry) Visits() int {
	if e.VisitCount <= 0 {
		return 1
	}
	return e.VisitCount
}

// VisitedAt converts LastVisitTime to a UTC time. A zero LastVisitTime
// yields the zero time.
func (e HistoryEntry) VisitedAt() time.Time {
	if e.LastVisitTime <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(e.LastVisitTime / 1000)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// Score is the academic-relevance score of a single history entry. Every
// sub-score and Total lie in [0,1].
type Score struct {
	// Domain reflects allow-list or academic TLD match strength.
	Domain float64 `json:"domain" yaml:"domain"`

	// Keyword is the sum of the title and URL keyword bonuses.
	Keyword float64 `json:"keyword" yaml:"keyword"`

	// VisitFrequency is the repeat-visit bonus.
	VisitFrequency float64 `json:"visitFrequency" yaml:"visit_frequency"`

	// Total is the capped composite of the sub-scores.
	Total float64 `json:"total" yaml:"total"`

	// Host is the lowercased hostname extracted from the URL.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// MatchedDomain is the allow-list entry or pattern tag that matched
	// the host. Empty when the host is not academic.
	MatchedDomain string `json:"matchedDomain,omitempty" yaml:"matched_domain,omitempty"`

	// TitleMatch reports whether a title keyword matched.
	TitleMatch bool `json:"titleMatch" yaml:"title_match"`

	// URLMatch reports whether a URL keyword matched.
	URLMatch bool `json:"urlMatch" yaml:"url_match"`

	// VisitCount is the effective visit count used for scoring.
	VisitCount int `json:"visitCount" yaml:"visit_count"`

	// Invalid is set when the URL could not be parsed; all scores are zero.
	Invalid bool `json:"invalid,omitempty" yaml:"invalid,omitempty"`
}

// Category labels why an entry was suggested.
type Category string

const (
	CategoryAcademicDomain Category = "academic-domain"
	CategoryFrequentVisit  Category = "frequent-visit"
	CategoryKeywordMatch   Category = "keyword-match"
	CategoryGeneral        Category = "general"
)

// Classification is the human-readable explanation derived from a Score.
type Classification struct {
	Category   Category `json:"category" yaml:"category"`
	Reason     string   `json:"reason" yaml:"reason"`
	IsAcademic bool     `json:"isAcademic" yaml:"is_academic"`
}

// Candidate is a scored history entry ready for persistence as a
// research suggestion.
type Candidate struct {
	// ID is assigned by the store on insert.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	URL           string    `json:"url" yaml:"url"`
	NormalizedURL string    `json:"normalized_url" yaml:"normalized_url"`
	Title         string    `json:"title" yaml:"title"`
	VisitedAt     time.Time `json:"visited_at" yaml:"visited_at"`
	VisitCount    int       `json:"visit_count" yaml:"visit_count"`

	// ConfidenceScore is Score.Total rounded to two decimals.
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence_score"`

	SuggestedReason string   `json:"suggested_reason" yaml:"suggested_reason"`
	IsAcademic      bool     `json:"is_academic" yaml:"is_academic"`
	Category        Category `json:"category" yaml:"category"`

	// CreatedAt is set by the store.
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}
