// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-vault/internal/observability"
	"github.com/pdiddy/research-vault/internal/pdfmeta"
	"github.com/pdiddy/research-vault/pkg/types"
)

var pdfmetaCmd = &cobra.Command{
	Use:   "pdfmeta [file.pdf | url]",
	Short: "Extract bibliographic metadata from a PDF",
	Long: `Pdfmeta sends a PDF to the generative-language API and prints the
normalized reference. The API key is read from .secrets/gemini-api-key or
RESEARCH_VAULT_GEMINI_API_KEY. An http(s) argument is downloaded first and
doubles as the reference URL.

Use --cite to print an APA citation of the result as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDFMeta,
}

func init() {
	pdfmetaCmd.Flags().String("url", "", "URL the PDF was downloaded from")
	pdfmetaCmd.Flags().String("site", "", "name of the site the PDF came from")
	pdfmetaCmd.Flags().String("model", "", "model override (default: configured pdfmeta.model)")
	pdfmetaCmd.Flags().Bool("cite", false, "also print a citation in the configured default style")

	rootCmd.AddCommand(pdfmetaCmd)
}

func runPDFMeta(cmd *cobra.Command, args []string) error {
	pageURL, _ := cmd.Flags().GetString("url")
	site, _ := cmd.Flags().GetString("site")
	ctx := context.Background()

	var data []byte
	var err error
	if src := args[0]; strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		client := &http.Client{Timeout: cfg.PDFMeta.Timeout}
		if data, err = pdfmeta.Fetch(ctx, client, src, cfg.PDFMeta.UserAgent); err != nil {
			return err
		}
		if pageURL == "" {
			pageURL = src
		}
	} else if data, err = os.ReadFile(src); err != nil {
		return err
	}

	c := cfg
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		c.PDFMeta.Model = model
	}
	extractor, err := newPDFExtractor(c)
	if err != nil {
		return err
	}

	ref, err := extractor.Extract(ctx, pdfmeta.Request{
		PDFBase64: base64.StdEncoding.EncodeToString(data),
		URL:       pageURL,
		SiteName:  site,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := printJSON(w, ref); err != nil {
		return err
	}
	if doCite, _ := cmd.Flags().GetBool("cite"); doCite {
		formatter := newFormatter(cfg, nil)
		style := formatter.Style(string(cfg.Citation.DefaultStyle))
		full, err := formatter.FullCitation(ref, style)
		if err != nil {
			return fmt.Errorf("citing extracted metadata: %w", err)
		}
		fmt.Fprintf(w, "\n[%s]\n%s\n", style, full)
	}
	return nil
}

// newPDFExtractor wires the Gemini backend to an extractor using the
// configured tables for site names.
func newPDFExtractor(c types.Config) (*pdfmeta.Extractor, error) {
	tables, err := loadTables(c)
	if err != nil {
		return nil, err
	}
	l := observability.WithComponent(logger, "pdfmeta")
	backend := pdfmeta.NewGeminiBackend(c.PDFMeta, l)
	return pdfmeta.NewExtractor(backend,
		pdfmeta.WithTables(tables),
		pdfmeta.WithLogger(l),
		pdfmeta.WithMaxRetries(c.PDFMeta.MaxRetries),
		pdfmeta.WithRateLimit(c.PDFMeta.RateLimit),
	), nil
}
