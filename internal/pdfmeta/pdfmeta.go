// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfmeta obtains bibliographic metadata for PDFs from an external
// generative-AI service and normalizes the answer into a types.Reference.
package pdfmeta

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-vault/internal/relevance"
	"github.com/pdiddy/research-vault/pkg/types"
)

var (
	// ErrNoAPIKey is returned when the backend has no credentials.
	ErrNoAPIKey = errors.New("pdfmeta: no API key configured")

	// ErrEmptyResponse is returned when the service answers without text.
	ErrEmptyResponse = errors.New("pdfmeta: empty response")

	// ErrInvalidPDF is returned when the payload is not base64 PDF data.
	ErrInvalidPDF = errors.New("pdfmeta: payload is not a base64-encoded PDF")
)

// StatusError reports a non-200 answer from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pdfmeta: service returned HTTP %d: %s", e.Code, e.Body)
}

// Request is one extraction job. URL and SiteName are optional and only
// feed the author fallback and the prompt.
type Request struct {
	PDFBase64 string
	URL       string
	SiteName  string
}

// Backend abstracts the metadata service so tests can supply a mock.
type Backend interface {
	Extract(ctx context.Context, req Request) (RawMetadata, error)
}

// RawMetadata is the answer as the service returns it. Authors accept the
// same loose shapes as stored references.
type RawMetadata struct {
	Title         string           `json:"title"`
	Authors       types.AuthorList `json:"authors"`
	PublishedDate looseString      `json:"publishedDate"`
	Publisher     string           `json:"publisher"`
	JournalName   string           `json:"journalName"`
	Volume        looseString      `json:"volume"`
	Issue         looseString      `json:"issue"`
	Pages         looseString      `json:"pages"`
	DOI           string           `json:"doi"`
	ISBN          looseString      `json:"isbn"`
	Description   string           `json:"description"`
	ReferenceType string           `json:"referenceType"`
}

// looseString decodes a JSON string or number into a string.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %.20q", data)
		}
		*s = looseString(n.String())
	}
	return nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Extractor wraps a Backend with bounded retries and normalization.
type Extractor struct {
	backend    Backend
	tables     relevance.Tables
	maxRetries int
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTables sets the site-name table used for the author fallback.
func WithTables(t relevance.Tables) Option {
	return func(e *Extractor) { e.tables = t }
}

// WithMaxRetries sets how many times a failed backend call is repeated.
func WithMaxRetries(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithRateLimit spaces backend calls to perSecond requests per second,
// shared by all callers of the Extractor. Zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(e *Extractor) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			e.limiter = nil
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns an Extractor over backend.
func NewExtractor(backend Backend, opts ...Option) *Extractor {
	e := &Extractor{
		backend:    backend,
		tables:     relevance.DefaultTables(),
		maxRetries: 1,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract validates the payload, calls the backend and returns the
// normalized reference. The reference URL is req.URL.
func (e *Extractor) Extract(ctx context.Context, req Request) (types.Reference, error) {
	req.PDFBase64 = strings.TrimSpace(req.PDFBase64)
	if err := validatePDF(req.PDFBase64); err != nil {
		return types.Reference{}, err
	}

	raw, err := e.callWithRetry(ctx, req)
	if err != nil {
		return types.Reference{}, err
	}

	ref := Normalize(raw, req.URL, req.SiteName, e.tables)
	e.logger.Debug().
		Str("url", req.URL).
		Str("title", ref.Title).
		Int("authors", len(ref.Authors)).
		Str("type", string(ref.ReferenceType)).
		Msg("pdf metadata extracted")
	return ref, nil
}

func (e *Extractor) callWithRetry(ctx context.Context, req Request) (RawMetadata, error) {
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			e.logger.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).Msg("metadata extraction failed, retrying")
			select {
			case <-ctx.Done():
				return RawMetadata{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return RawMetadata{}, err
			}
		}
		raw, err := e.backend.Extract(ctx, req)
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, ErrNoAPIKey) || ctx.Err() != nil {
			return RawMetadata{}, err
		}
		lastErr = err
	}
	return RawMetadata{}, fmt.Errorf("after %d retries: %w", e.maxRetries, lastErr)
}

// validatePDF checks that s decodes as base64 and starts with the PDF
// magic bytes.
func validatePDF(s string) error {
	if s == "" {
		return ErrInvalidPDF
	}
	head := s
	if len(head) > 64 {
		head = head[:64]
	}
	decoded, err := base64.StdEncoding.DecodeString(head[:len(head)/4*4])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	if !bytes.HasPrefix(decoded, []byte("%PDF-")) {
		return ErrInvalidPDF
	}
	return nil
}

// Normalize converts a raw answer into a Reference. Blank authors fall
// back to SiteAuthor.
func Normalize(raw RawMetadata, pageURL, siteName string, tables relevance.Tables) types.Reference {
	ref := types.Reference{
		URL:           strings.TrimSpace(pageURL),
		Title:         collapse(raw.Title),
		Authors:       types.NormalizeAuthors(raw.Authors),
		PublishedDate: collapse(string(raw.PublishedDate)),
		Publisher:     collapse(raw.Publisher),
		SiteName:      collapse(siteName),
		JournalName:   collapse(raw.JournalName),
		Volume:        collapse(string(raw.Volume)),
		Issue:         collapse(string(raw.Issue)),
		Pages:         collapse(string(raw.Pages)),
		DOI:           collapse(raw.DOI),
		ISBN:          collapse(string(raw.ISBN)),
		Description:   collapse(raw.Description),
		ReferenceType: NormalizeReferenceType(raw.ReferenceType),
	}
	if len(ref.Authors) == 0 {
		if a := SiteAuthor(pageURL, siteName, tables); a != "" {
			ref.Authors = types.AuthorsFromNames(a)
		}
	}
	return ref
}

// NormalizeReferenceType maps free text into the closed set of reference
// types by substring. Anything unrecognized is a website.
func NormalizeReferenceType(v string) types.ReferenceType {
	v = strings.ToLower(v)
	switch {
	case strings.Contains(v, "journal"):
		return types.ReferenceJournal
	case containsAny(v, "report", "thesis", "dissertation", "white paper", "whitepaper"):
		return types.ReferenceReport
	case containsAny(v, "book", "chapter", "monograph"):
		return types.ReferenceBook
	case containsAny(v, "article", "paper", "preprint", "proceedings", "conference"):
		return types.ReferenceArticle
	default:
		return types.ReferenceWebsite
	}
}

// SiteAuthor derives an author from the page origin: the site-name table
// entry for the host, else siteName, else the host without "www.".
func SiteAuthor(pageURL, siteName string, tables relevance.Tables) string {
	var host string
	if u, err := url.Parse(strings.TrimSpace(pageURL)); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	if host != "" {
		if name := tables.SiteName(host); name != "" {
			return name
		}
	}
	if s := collapse(siteName); s != "" {
		return s
	}
	return strings.TrimPrefix(host, "www.")
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
