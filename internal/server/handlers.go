// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-vault/internal/citation"
	"github.com/pdiddy/research-vault/internal/history"
	"github.com/pdiddy/research-vault/internal/pdfmeta"
	"github.com/pdiddy/research-vault/internal/store"
	"github.com/pdiddy/research-vault/pkg/types"
)

const maxCandidatePage = 500

// citationRequest is the body of POST /api/v1/citations.
type citationRequest struct {
	URL            string           `json:"url" validate:"omitempty,url"`
	Title          string           `json:"title"`
	Metadata       citationMetadata `json:"metadata"`
	Format         string           `json:"format"`
	AccessDate     string           `json:"accessDate"`
	CitationNumber int              `json:"citationNumber" validate:"gte=0"`
}

type citationMetadata struct {
	Authors       types.AuthorList    `json:"authors"`
	SiteName      string              `json:"siteName"`
	PublishedDate string              `json:"publishedDate"`
	Description   string              `json:"description"`
	Publisher     string              `json:"publisher"`
	JournalName   string              `json:"journalName"`
	Volume        string              `json:"volume"`
	Issue         string              `json:"issue"`
	Pages         string              `json:"pages"`
	DOI           string              `json:"doi"`
	ISBN          string              `json:"isbn"`
	ReferenceType types.ReferenceType `json:"referenceType" validate:"omitempty,oneof=website article journal book report"`
}

type citationResponse struct {
	ID          string    `json:"id,omitempty"`
	Citation    string    `json:"citation"`
	InText      string    `json:"inText"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func (r citationRequest) reference() types.Reference {
	m := r.Metadata
	return types.Reference{
		URL:           strings.TrimSpace(r.URL),
		Title:         strings.TrimSpace(r.Title),
		Authors:       m.Authors,
		PublishedDate: m.PublishedDate,
		Publisher:     m.Publisher,
		SiteName:      m.SiteName,
		JournalName:   m.JournalName,
		Volume:        m.Volume,
		Issue:         m.Issue,
		Pages:         m.Pages,
		DOI:           m.DOI,
		ISBN:          m.ISBN,
		AccessDate:    r.AccessDate,
		Description:   m.Description,
		ReferenceType: m.ReferenceType,
	}
}

// generateCitation handles POST /api/v1/citations.
func (s *Server) generateCitation(w http.ResponseWriter, r *http.Request) {
	var req citationRequest
	if !s.decode(w, r, &req) {
		return
	}

	now := s.now().UTC()
	if strings.TrimSpace(req.AccessDate) == "" {
		req.AccessDate = now.Format("2006-01-02")
	}
	format := req.Format
	if strings.TrimSpace(format) == "" {
		format = string(s.defaultStyle)
	}
	style := s.deps.Formatter.Style(format)
	ref := req.reference()

	full, err := s.deps.Formatter.FullCitation(ref, style)
	if errors.Is(err, citation.ErrIncompleteData) {
		writeError(w, http.StatusUnprocessableEntity, codeMissingTitle, "a title is required to generate a citation")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("generating citation")
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to generate citation")
		return
	}
	resp := citationResponse{
		Citation:    full,
		InText:      s.deps.Formatter.InTextCitation(ref, style, req.CitationNumber),
		Format:      string(style),
		GeneratedAt: now,
	}

	if s.deps.Store != nil {
		rec, err := s.deps.Store.RecordCitation(r.Context(), store.CitationRecord{
			Reference: ref,
			Style:     string(style),
			Citation:  resp.Citation,
			InText:    resp.InText,
			CreatedAt: now,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("recording citation")
		} else {
			resp.ID = rec.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// scanRequest is the body of POST /api/v1/history/scan.
type scanRequest struct {
	Entries       []types.HistoryEntry `json:"entries" validate:"required"`
	Limit         int                  `json:"limit" validate:"gte=0"`
	MinConfidence float64              `json:"minConfidence" validate:"gte=0,lte=1"`
}

type scanResponse struct {
	history.ScanResult
	Saved int `json:"saved"`
}

// scanHistory handles POST /api/v1/history/scan.
func (s *Server) scanHistory(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.deps.Scanner == nil {
		writeError(w, http.StatusServiceUnavailable, codeInternal, "history scanning is not configured")
		return
	}

	opts := history.Options{Limit: req.Limit, MinConfidence: req.MinConfidence}
	if opts.Limit == 0 {
		opts.Limit = s.scan.Limit
	}
	if opts.MinConfidence == 0 {
		opts.MinConfidence = s.scan.MinConfidence
	}
	ctx := r.Context()
	if s.deps.Store != nil {
		known, err := s.deps.Store.KnownURLs(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("loading known URLs")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to load stored candidates")
			return
		}
		opts.Known = known
	}

	result, err := s.deps.Scanner.Scan(ctx, req.Entries, opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("scanning history")
		writeError(w, http.StatusInternalServerError, codeInternal, "history scan failed")
		return
	}
	resp := scanResponse{ScanResult: result}
	if s.deps.Store != nil && len(result.Candidates) > 0 {
		saved, err := s.deps.Store.SaveCandidates(ctx, result.Candidates)
		if err != nil {
			s.logger.Error().Err(err).Msg("saving candidates")
			writeError(w, http.StatusInternalServerError, codeInternal, "failed to save candidates")
			return
		}
		resp.Saved = saved
	}
	if resp.Candidates == nil {
		resp.Candidates = []types.Candidate{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type candidatesResponse struct {
	Candidates []types.Candidate `json:"candidates"`
	Count      int               `json:"count"`
}

// listCandidates handles GET /api/v1/candidates.
func (s *Server) listCandidates(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "no candidate store configured")
		return
	}

	q := r.URL.Query()
	limit := s.scan.Limit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be a non-negative integer")
			return
		}
		if n > 0 {
			limit = n
		}
	}
	if limit <= 0 || limit > s.maxPage {
		limit = s.maxPage
	}
	opts := store.ListOptions{Limit: limit}
	if v := q.Get("academic"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "academic must be a boolean")
			return
		}
		opts.AcademicOnly = b
	}
	if v := q.Get("minConfidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "minConfidence must be between 0 and 1")
			return
		}
		opts.MinConfidence = f
	}

	candidates, err := s.deps.Store.ListCandidates(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing candidates")
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to list candidates")
		return
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidatesResponse{Candidates: candidates, Count: len(candidates)})
}

// pdfRequest is the body of POST /api/v1/pdf/metadata.
type pdfRequest struct {
	PDFBase64 string `json:"pdfBase64" validate:"required"`
	URL       string `json:"url" validate:"omitempty,url"`
	SiteName  string `json:"siteName"`
}

// extractPDFMetadata handles POST /api/v1/pdf/metadata.
func (s *Server) extractPDFMetadata(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.deps.PDF == nil {
		writeError(w, http.StatusServiceUnavailable, codePDFUnavailable, "PDF metadata extraction is not configured")
		return
	}

	ref, err := s.deps.PDF.Extract(r.Context(), pdfmeta.Request{
		PDFBase64: req.PDFBase64,
		URL:       req.URL,
		SiteName:  req.SiteName,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ref)
	case errors.Is(err, pdfmeta.ErrInvalidPDF):
		writeError(w, http.StatusBadRequest, codeInvalidPDF, err.Error())
	case errors.Is(err, pdfmeta.ErrNoAPIKey):
		writeError(w, http.StatusServiceUnavailable, codePDFUnavailable, "no API key configured for PDF metadata")
	default:
		s.logger.Error().Err(err).Str("url", req.URL).Msg("extracting PDF metadata")
		writeError(w, http.StatusBadGateway, codeUpstream, "metadata service failed")
	}
}
