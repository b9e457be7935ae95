// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes citation generation, history scanning, candidate
// listing and PDF metadata extraction over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-vault/internal/citation"
	"github.com/pdiddy/research-vault/internal/history"
	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/pdfmeta"
	"github.com/pdiddy/research-vault/internal/store"
	"github.com/pdiddy/research-vault/pkg/types"
)

// CandidateStore persists scan results and generated citations.
type CandidateStore interface {
	KnownURLs(ctx context.Context) (map[string]bool, error)
	SaveCandidates(ctx context.Context, candidates []types.Candidate) (int, error)
	ListCandidates(ctx context.Context, opts store.ListOptions) ([]types.Candidate, error)
	RecordCitation(ctx context.Context, rec store.CitationRecord) (store.CitationRecord, error)
}

// MetadataExtractor turns a PDF into a reference.
type MetadataExtractor interface {
	Extract(ctx context.Context, req pdfmeta.Request) (types.Reference, error)
}

// Deps are the collaborators a Server calls. Store and PDF are optional;
// their endpoints answer 503 when unset.
type Deps struct {
	Formatter *citation.Formatter
	Scanner   *history.Scanner
	Store     CandidateStore
	PDF       MetadataExtractor
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	deps         Deps
	validate     *validator.Validate
	logger       zerolog.Logger
	scan         types.ScanConfig
	defaultStyle types.CitationStyle
	maxBody      int64
	maxPage      int
	now          func() time.Time
}

// New builds a Server from configuration and collaborators.
func New(cfg types.Config, deps Deps) *Server {
	if deps.Formatter == nil {
		deps.Formatter = citation.New(citation.WithLogger(deps.Logger), citation.WithMetrics(deps.Metrics))
	}
	s := &Server{
		deps:         deps,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       observability.WithComponent(deps.Logger, "http-server"),
		scan:         cfg.Scan,
		defaultStyle: cfg.Citation.DefaultStyle,
		maxBody:      cfg.Server.MaxBodyBytes,
		maxPage:      maxCandidatePage,
		now:          time.Now,
	}
	if s.maxBody <= 0 {
		s.maxBody = 25 << 20
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.instrument)

	r.Get("/healthz", s.healthHandler)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/citations", s.generateCitation)
		r.Post("/history/scan", s.scanHistory)
		r.Get("/candidates", s.listCandidates)
		r.Post("/pdf/metadata", s.extractPDFMetadata)
	})
	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	s.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server starting")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
