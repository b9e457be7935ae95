// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfmeta

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/research-vault/internal/httputil"
)

// MaxPDFBytes bounds downloads fetched for extraction.
const MaxPDFBytes = 25 << 20

// Fetch downloads a PDF from url, requesting application/pdf and retrying
// throttled responses. The body must start with the PDF magic bytes.
func Fetch(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if len(data) > MaxPDFBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", url, MaxPDFBytes)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPDF, url)
	}
	return data, nil
}
