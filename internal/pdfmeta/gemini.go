// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfmeta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-vault/internal/httputil"
	"github.com/pdiddy/research-vault/pkg/types"
)

// DefaultEndpoint is the generative-language API base URL.
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend sends the PDF as inline data to the generateContent
// endpoint and parses the JSON answer. Throttled responses (429, 503) are
// retried by httputil.Retrier.
type GeminiBackend struct {
	APIKey     string
	Model      string
	Endpoint   string
	UserAgent  string
	MaxRetries int
	Client     *http.Client
	Logger     zerolog.Logger
}

// NewGeminiBackend builds a backend from configuration.
func NewGeminiBackend(cfg types.PDFMetaConfig, logger zerolog.Logger) *GeminiBackend {
	return &GeminiBackend{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Endpoint:   cfg.Endpoint,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract asks the model for the metadata of one PDF.
func (g *GeminiBackend) Extract(ctx context.Context, req Request) (RawMetadata, error) {
	if g.APIKey == "" {
		return RawMetadata{}, ErrNoAPIKey
	}
	prompt, err := renderPrompt(req.SiteName)
	if err != nil {
		return RawMetadata{}, fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{MimeType: "application/pdf", Data: req.PDFBase64}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return RawMetadata{}, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u := strings.TrimSuffix(endpoint, "/") + "/models/" + url.PathEscape(g.Model) + ":generateContent"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return RawMetadata{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)
	if g.UserAgent != "" {
		httpReq.Header.Set("User-Agent", g.UserAgent)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	retrier := httputil.NewRetrier(client, g.MaxRetries)
	retrier.Logger = g.Logger

	resp, err := retrier.Do(ctx, httpReq)
	if err != nil {
		return RawMetadata{}, fmt.Errorf("calling generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return RawMetadata{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return RawMetadata{}, fmt.Errorf("decoding generateContent response: %w", err)
	}
	if gResp.Error != nil {
		return RawMetadata{}, fmt.Errorf("generateContent error %d: %s", gResp.Error.Code, gResp.Error.Message)
	}

	for _, c := range gResp.Candidates {
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) == "" {
				continue
			}
			var raw RawMetadata
			if err := json.Unmarshal([]byte(stripFence(p.Text)), &raw); err != nil {
				return RawMetadata{}, fmt.Errorf("parsing metadata JSON: %w", err)
			}
			return raw, nil
		}
	}
	return RawMetadata{}, ErrEmptyResponse
}

// stripFence removes a Markdown code fence around a JSON answer.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
