// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores browsing-history entries for research
// relevance and explains each suggestion with a category and reason.
//
// Scoring is split into two stages. Filter.ShouldSkip is a deterministic
// pre-filter that drops browser-internal, loopback and blocked URLs before
// any scoring happens. Scorer.Score then computes the domain, keyword and
// visit-frequency sub-scores, and Scorer.Classify turns a score into a
// category and reason from the rule table.
//
// Both stages are pure functions over tables fixed at construction and are
// safe for concurrent use.
package relevance

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/pdiddy/research-vault/pkg/types"
)

// ErrInvalidURL is reported when an entry's URL has no parseable host.
// Score recovers from it locally and never returns it.
var ErrInvalidURL = errors.New("invalid URL")

// Weight constants of the composite score.
const (
	BaseScore           = 0.3
	AcademicDomainBonus = 0.4
	VisitStep           = 0.1
	VisitCap            = 0.3
	TitleKeywordBonus   = 0.2
	URLKeywordBonus     = 0.1
	AcademicThreshold   = 0.7
	FrequentVisits      = 3
)

// DefaultWeights returns the built-in weight constants.
func DefaultWeights() types.ScoreWeights {
	return types.ScoreWeights{
		Base:                BaseScore,
		AcademicDomainBonus: AcademicDomainBonus,
		VisitStep:           VisitStep,
		VisitCap:            VisitCap,
		TitleKeywordBonus:   TitleKeywordBonus,
		URLKeywordBonus:     URLKeywordBonus,
		AcademicThreshold:   AcademicThreshold,
		FrequentVisits:      FrequentVisits,
	}
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLabels selects the reason wording.
func WithLabels(l Labels) Option {
	return func(s *Scorer) { s.labels = l }
}

// WithLocale selects the reason wording by locale.
func WithLocale(locale string) Option {
	return func(s *Scorer) { s.labels = LabelsFor(locale) }
}

// Scorer computes academic-relevance scores.
type Scorer struct {
	tables  Tables
	weights types.ScoreWeights
	labels  Labels
}

// New builds a Scorer over tables and weights. Tables are copied so later
// changes by the caller do not leak into the scorer. Weights outside
// [0,1] are rejected.
func New(tables Tables, weights types.ScoreWeights, opts ...Option) (*Scorer, error) {
	for name, w := range map[string]float64{
		"base":                  weights.Base,
		"academic_domain_bonus": weights.AcademicDomainBonus,
		"visit_step":            weights.VisitStep,
		"visit_cap":             weights.VisitCap,
		"title_keyword_bonus":   weights.TitleKeywordBonus,
		"url_keyword_bonus":     weights.URLKeywordBonus,
		"academic_threshold":    weights.AcademicThreshold,
	} {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return nil, fmt.Errorf("weight %s=%v outside [0,1]", name, w)
		}
	}
	if weights.FrequentVisits < 0 {
		return nil, fmt.Errorf("weight frequent_visits=%d is negative", weights.FrequentVisits)
	}

	t := tables.clone()
	t.normalize()
	s := &Scorer{tables: t, weights: weights, labels: LabelsFor("en")}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Default returns a Scorer over the built-in tables and weights.
func Default() *Scorer {
	s, err := New(DefaultTables(), DefaultWeights())
	if err != nil {
		panic(err)
	}
	return s
}

// Tables returns the scorer's tables.
func (s *Scorer) Tables() Tables { return s.tables.clone() }

// Score computes the score of one entry. A URL without a parseable host
// yields a zero score flagged Invalid; the call never fails.
func (s *Scorer) Score(entry types.HistoryEntry) types.Score {
	visits := entry.Visits()
	host, err := Hostname(entry.URL)
	if err != nil {
		return types.Score{VisitCount: visits, Invalid: true}
	}

	w := s.weights
	sc := types.Score{Host: host, VisitCount: visits, Domain: w.Base}

	if m := s.MatchAcademic(host); m != "" {
		sc.MatchedDomain = m
		sc.Domain += w.AcademicDomainBonus
	}
	if visits > 1 {
		sc.VisitFrequency = math.Min(float64(visits)*w.VisitStep, w.VisitCap)
	}
	if entry.Title != "" && containsAny(strings.ToLower(entry.Title), s.tables.TitleKeywords) {
		sc.TitleMatch = true
		sc.Keyword += w.TitleKeywordBonus
	}
	if containsAny(strings.ToLower(entry.URL), s.tables.URLKeywords) {
		sc.URLMatch = true
		sc.Keyword += w.URLKeywordBonus
	}

	sc.Domain = unit(sc.Domain)
	sc.VisitFrequency = unit(sc.VisitFrequency)
	sc.Keyword = unit(sc.Keyword)
	sc.Total = unit(sc.Domain + sc.VisitFrequency + sc.Keyword)
	return sc
}

// Classify maps a score to a category and reason. Rules are evaluated in
// priority order: academic domain, frequent visits, title keyword, then
// the generic fallback.
func (s *Scorer) Classify(sc types.Score) types.Classification {
	c := types.Classification{
		IsAcademic: !sc.Invalid && sc.Domain >= s.weights.AcademicThreshold,
	}
	switch {
	case sc.MatchedDomain != "":
		c.Category = types.CategoryAcademicDomain
		c.Reason = s.domainReason(sc.Host)
	case sc.VisitCount > s.weights.FrequentVisits:
		c.Category = types.CategoryFrequentVisit
		c.Reason = s.labels.Frequent
	case sc.TitleMatch:
		c.Category = types.CategoryKeywordMatch
		c.Reason = s.labels.Keyword
	default:
		c.Category = types.CategoryGeneral
		c.Reason = s.labels.General
	}
	return c
}

// Evaluate scores and classifies one entry.
func (s *Scorer) Evaluate(entry types.HistoryEntry) (types.Score, types.Classification) {
	sc := s.Score(entry)
	return sc, s.Classify(sc)
}

// MatchAcademic returns the allow-list entry or academic pattern matching
// host, or "" when the host is not academic.
func (s *Scorer) MatchAcademic(host string) string {
	host = strings.ToLower(host)
	for _, d := range s.tables.AcademicDomains {
		if hostMatches(host, d) {
			return d
		}
	}
	for _, p := range s.tables.AcademicPatterns {
		if hostMatches(host, p) {
			return p
		}
	}
	return ""
}

func (s *Scorer) domainReason(host string) string {
	for _, r := range s.tables.DomainReasons {
		if !hostMatches(host, r.Match) {
			continue
		}
		if text, ok := r.Reasons[s.labels.Locale]; ok && text != "" {
			return text
		}
		if text, ok := r.Reasons["en"]; ok && text != "" {
			return text
		}
	}
	return s.labels.Academic
}

// Hostname extracts the lowercased host of raw. It returns ErrInvalidURL
// when raw does not parse or carries no host.
func Hostname(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}
	return host, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// unit clamps v to [0,1] and rounds away float noise such as
// 0.30000000000000004.
func unit(v float64) float64 {
	v = math.Round(v*1e9) / 1e9
	return math.Max(0, math.Min(v, 1))
}

func (t Tables) clone() Tables {
	c := t
	c.AcademicDomains = append([]string(nil), t.AcademicDomains...)
	c.AcademicPatterns = append([]string(nil), t.AcademicPatterns...)
	c.TitleKeywords = append([]string(nil), t.TitleKeywords...)
	c.URLKeywords = append([]string(nil), t.URLKeywords...)
	c.SkipSchemes = append([]string(nil), t.SkipSchemes...)
	c.BlockedDomains = append([]string(nil), t.BlockedDomains...)
	c.BlockedPatterns = append([]string(nil), t.BlockedPatterns...)
	c.DomainReasons = make([]DomainReason, len(t.DomainReasons))
	for i, r := range t.DomainReasons {
		reasons := make(map[string]string, len(r.Reasons))
		for k, v := range r.Reasons {
			reasons[k] = v
		}
		c.DomainReasons[i] = DomainReason{Match: r.Match, Reasons: reasons}
	}
	c.SiteNames = make(map[string]string, len(t.SiteNames))
	for k, v := range t.SiteNames {
		c.SiteNames[k] = v
	}
	return c
}
