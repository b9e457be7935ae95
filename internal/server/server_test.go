// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-vault/internal/citation"
	"github.com/pdiddy/research-vault/internal/history"
	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/pdfmeta"
	"github.com/pdiddy/research-vault/internal/relevance"
	"github.com/pdiddy/research-vault/internal/store"
	"github.com/pdiddy/research-vault/pkg/types"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fakeExtractor struct {
	ref types.Reference
	err error
	got pdfmeta.Request
}

func (f *fakeExtractor) Extract(_ context.Context, req pdfmeta.Request) (types.Reference, error) {
	f.got = req
	return f.ref, f.err
}

type testEnv struct {
	srv   *Server
	store *store.Store
	reg   *prometheus.Registry
}

func newTestEnv(t *testing.T, withStore bool, pdf MetadataExtractor) testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	deps := Deps{
		Formatter: citation.New(citation.WithMetrics(metrics)),
		Scanner:   history.NewScanner(relevance.Default(), relevance.DefaultFilter(), history.WithMetrics(metrics)),
		Metrics:   metrics,
		Gatherer:  reg,
	}
	var st *store.Store
	if withStore {
		var err error
		st, err = store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		deps.Store = st
	}
	if pdf != nil {
		deps.PDF = pdf
	}

	srv := New(types.DefaultConfig(), deps)
	srv.now = func() time.Time { return fixedNow }
	return testEnv{srv: srv, store: st, reg: reg}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false, nil)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGenerateCitation(t *testing.T) {
	env := newTestEnv(t, true, nil)

	body := map[string]any{
		"url":   "https://arxiv.org/abs/1706.03762",
		"title": "Attention Is All You Need",
		"metadata": map[string]any{
			"authors":       "Ashish Vaswani; Noam Shazeer",
			"siteName":      "arXiv",
			"publishedDate": "2017-06-12",
		},
		"format":         "ieee",
		"citationNumber": 2,
	}
	rec := env.do(t, http.MethodPost, "/api/v1/citations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[citationResponse](t, rec)
	ref := types.Reference{
		URL:           "https://arxiv.org/abs/1706.03762",
		Title:         "Attention Is All You Need",
		Authors:       types.AuthorsFromNames("Ashish Vaswani", "Noam Shazeer"),
		PublishedDate: "2017-06-12",
		SiteName:      "arXiv",
		AccessDate:    "2024-03-15",
	}
	want, err := citation.New().FullCitation(ref, types.StyleIEEE)
	require.NoError(t, err)

	assert.Equal(t, want, resp.Citation)
	assert.Equal(t, "[2]", resp.InText)
	assert.Equal(t, "IEEE", resp.Format)
	assert.True(t, resp.GeneratedAt.Equal(fixedNow))
	assert.NotEmpty(t, resp.ID)

	recs, err := env.store.ListCitations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, resp.ID, recs[0].ID)
	assert.Equal(t, "2024-03-15", recs[0].Reference.AccessDate)
}

func TestGenerateCitation_DefaultAndUnknownStyle(t *testing.T) {
	env := newTestEnv(t, false, nil)

	for _, format := range []string{"", "vancouver"} {
		rec := env.do(t, http.MethodPost, "/api/v1/citations", map[string]any{
			"title":  "Some Page",
			"url":    "https://example.com/page",
			"format": format,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[citationResponse](t, rec)
		assert.Equal(t, "APA", resp.Format, format)
		assert.Contains(t, resp.Citation, "Some Page")
	}
}

func TestGenerateCitation_MissingTitle(t *testing.T) {
	env := newTestEnv(t, false, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/citations", map[string]any{
		"url":   "https://example.com",
		"title": "   ",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, codeMissingTitle, resp.Code)
}

func TestGenerateCitation_BadRequests(t *testing.T) {
	env := newTestEnv(t, false, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/citations", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeBadRequest, decodeBody[errorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/citations", map[string]any{"title": "T", "url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeValidation, decodeBody[errorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/citations", map[string]any{"title": "T", "citationNumber": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/citations", strings.NewReader(`{"title":"T"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func scanBody() map[string]any {
	return map[string]any{
		"entries": []map[string]any{
			{"url": "https://example.com/blog", "title": "Weekend", "visitCount": 1},
			{"url": "https://arxiv.org/abs/1706.03762", "title": "Attention paper", "visitCount": 4},
			{"url": "chrome://settings", "title": "Settings"},
			{"url": "https://arxiv.org/abs/1706.03762?utm=x", "title": "dup"},
		},
	}
}

func TestScanHistory_PersistsAndDeduplicates(t *testing.T) {
	env := newTestEnv(t, true, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/history/scan", scanBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decodeBody[scanResponse](t, rec)

	require.Len(t, first.Candidates, 2)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", first.Candidates[0].URL)
	assert.True(t, first.Candidates[0].IsAcademic)
	assert.Equal(t, 1, first.Skipped)
	assert.Equal(t, 1, first.Duplicates)
	assert.Equal(t, 2, first.Saved)

	rec = env.do(t, http.MethodPost, "/api/v1/history/scan", scanBody())
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeBody[scanResponse](t, rec)
	assert.Empty(t, second.Candidates)
	assert.Equal(t, 3, second.Duplicates)
	assert.Equal(t, 0, second.Saved)

	rec = env.do(t, http.MethodGet, "/api/v1/candidates?academic=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[candidatesResponse](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", list.Candidates[0].NormalizedURL)
}

func TestScanHistory_WithoutStore(t *testing.T) {
	env := newTestEnv(t, false, nil)

	body := scanBody()
	body["limit"] = 1
	rec := env.do(t, http.MethodPost, "/api/v1/history/scan", body)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[scanResponse](t, rec)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 0, resp.Saved)
}

func TestScanHistory_Validation(t *testing.T) {
	env := newTestEnv(t, false, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/history/scan", map[string]any{"limit": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/history/scan", map[string]any{"entries": []any{}, "minConfidence": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/history/scan", map[string]any{"entries": []any{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"candidates":[]`)
}

func TestListCandidates(t *testing.T) {
	env := newTestEnv(t, false, nil)
	rec := env.do(t, http.MethodGet, "/api/v1/candidates", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, codeStoreUnavailable, decodeBody[errorResponse](t, rec).Code)

	env = newTestEnv(t, true, nil)
	for _, q := range []string{"limit=-1", "limit=x", "academic=maybe", "minConfidence=3"} {
		rec = env.do(t, http.MethodGet, "/api/v1/candidates?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/candidates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"candidates":[],"count":0}`, rec.Body.String())
}

func TestListCandidates_PageBound(t *testing.T) {
	env := newTestEnv(t, true, nil)
	env.srv.maxPage = 2
	env.srv.scan.Limit = 0

	var cands []types.Candidate
	for _, u := range []string{"https://arxiv.org/abs/1", "https://arxiv.org/abs/2", "https://arxiv.org/abs/3"} {
		cands = append(cands, types.Candidate{URL: u, NormalizedURL: u, Title: "Paper", ConfidenceScore: 0.9, IsAcademic: true})
	}
	_, err := env.store.SaveCandidates(context.Background(), cands)
	require.NoError(t, err)

	for _, q := range []string{"", "?limit=0", "?limit=10"} {
		rec := env.do(t, http.MethodGet, "/api/v1/candidates"+q, nil)
		require.Equal(t, http.StatusOK, rec.Code, q)
		body := decodeBody[struct {
			Count int `json:"count"`
		}](t, rec)
		assert.Equal(t, 2, body.Count, q)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/candidates?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[struct {
		Count int `json:"count"`
	}](t, rec).Count)
}

func TestExtractPDFMetadata(t *testing.T) {
	fake := &fakeExtractor{ref: types.Reference{Title: "Paper", ReferenceType: types.ReferenceArticle}}
	env := newTestEnv(t, false, fake)

	rec := env.do(t, http.MethodPost, "/api/v1/pdf/metadata", map[string]any{
		"pdfBase64": "JVBERi0xLjQK",
		"url":       "https://arxiv.org/pdf/1706.03762",
		"siteName":  "arXiv",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ref := decodeBody[types.Reference](t, rec)
	assert.Equal(t, "Paper", ref.Title)
	assert.Equal(t, "arXiv", fake.got.SiteName)
	assert.Equal(t, "JVBERi0xLjQK", fake.got.PDFBase64)
}

func TestExtractPDFMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid pdf", pdfmeta.ErrInvalidPDF, http.StatusBadRequest},
		{"no key", pdfmeta.ErrNoAPIKey, http.StatusServiceUnavailable},
		{"upstream", errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false, &fakeExtractor{err: tt.err})
			rec := env.do(t, http.MethodPost, "/api/v1/pdf/metadata", map[string]any{"pdfBase64": "JVBERi0xLjQK"})
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	env := newTestEnv(t, false, nil)
	rec := env.do(t, http.MethodPost, "/api/v1/pdf/metadata", map[string]any{"pdfBase64": "JVBERi0xLjQK"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/pdf/metadata", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false, nil)
	env.do(t, http.MethodPost, "/api/v1/citations", map[string]any{"title": "T"})

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `research_vault_http_request_duration_seconds_count{route="/api/v1/citations",status="200"} 1`)
	assert.Contains(t, body, `research_vault_citation_generated_total{kind="full",style="APA"} 1`)
}
