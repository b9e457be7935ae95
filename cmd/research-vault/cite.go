// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-vault/internal/citation"
	"github.com/pdiddy/research-vault/internal/store"
	"github.com/pdiddy/research-vault/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Format a reference as a full and in-text citation",
	Long: `Cite renders a reference in APA, MLA, Chicago, Harvard or IEEE style.
The reference comes from flags or from a YAML/JSON file (--from) holding one
reference or a list of them. Unknown styles fall back to APA.

A title is required. With --csl the references are written as CSL-YAML for
Pandoc and reference managers instead.`,
	RunE: runCite,
}

func init() {
	f := citeCmd.Flags()
	f.String("from", "", "read references from a YAML or JSON file (- for stdin)")
	f.String("title", "", "title of the work")
	f.String("url", "", "URL of the work")
	f.StringArray("author", nil, "author name, repeatable, in citation order")
	f.String("date", "", "publication date")
	f.String("publisher", "", "publisher")
	f.String("site", "", "site name")
	f.String("journal", "", "journal name")
	f.String("volume", "", "volume")
	f.String("issue", "", "issue")
	f.String("pages", "", "page range")
	f.String("doi", "", "DOI")
	f.String("isbn", "", "ISBN")
	f.String("type", "", "reference type: website, article, journal, book, report")
	f.String("access-date", "", "access date (default: today)")
	f.String("style", "", "citation style (default: configured citation.default_style)")
	f.Bool("all-styles", false, "render every supported style")
	f.Int("number", 1, "reference number for IEEE in-text citations")
	f.Bool("csl", false, "write CSL-YAML instead of formatted citations")
	f.Bool("record", false, "store generated citations in the vault")
	f.Bool("json", false, "output as JSON")

	rootCmd.AddCommand(citeCmd)
}

type citeOutput struct {
	Title    string `json:"title"`
	Style    string `json:"style"`
	Citation string `json:"citation"`
	InText   string `json:"inText"`
}

func runCite(cmd *cobra.Command, args []string) error {
	refs, err := citeReferences(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if asCSL, _ := cmd.Flags().GetBool("csl"); asCSL {
		return citation.WriteCSL(refs, w)
	}

	formatter := newFormatter(cfg, nil)
	styles := []types.CitationStyle{formatter.Style(citeStyleName(cmd))}
	if all, _ := cmd.Flags().GetBool("all-styles"); all {
		styles = types.Styles
	}
	number, _ := cmd.Flags().GetInt("number")

	var out []citeOutput
	for i, ref := range refs {
		for _, style := range styles {
			full, err := formatter.FullCitation(ref, style)
			if errors.Is(err, citation.ErrIncompleteData) {
				return fmt.Errorf("reference %d: %w; pass --title or add a title to the reference file", i+1, err)
			}
			if err != nil {
				return err
			}
			out = append(out, citeOutput{
				Title:    ref.Title,
				Style:    string(style),
				Citation: full,
				InText:   formatter.InTextCitation(ref, style, number+i),
			})
		}
	}

	if record, _ := cmd.Flags().GetBool("record"); record {
		if err := recordCitations(refs, styles, out); err != nil {
			return err
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(w, out)
	}
	for _, o := range out {
		fmt.Fprintf(w, "[%s]\n%s\nIn-text: %s\n\n", o.Style, o.Citation, o.InText)
	}
	return nil
}

func citeStyleName(cmd *cobra.Command) string {
	if s, _ := cmd.Flags().GetString("style"); s != "" {
		return s
	}
	return string(cfg.Citation.DefaultStyle)
}

// citeReferences builds references from --from or the individual flags.
// A blank access date defaults to today.
func citeReferences(cmd *cobra.Command) ([]types.Reference, error) {
	today := time.Now().Format("2006-01-02")
	from, _ := cmd.Flags().GetString("from")

	var refs []types.Reference
	if from != "" {
		in, err := openInput(from)
		if err != nil {
			return nil, err
		}
		defer in.Close()
		if refs, err = loadReferences(in, from); err != nil {
			return nil, err
		}
	} else {
		refs = []types.Reference{referenceFromFlags(cmd)}
	}

	accessDate, _ := cmd.Flags().GetString("access-date")
	for i := range refs {
		if accessDate != "" {
			refs[i].AccessDate = accessDate
		}
		if strings.TrimSpace(refs[i].AccessDate) == "" {
			refs[i].AccessDate = today
		}
	}
	return refs, nil
}

func referenceFromFlags(cmd *cobra.Command) types.Reference {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	authors, _ := cmd.Flags().GetStringArray("author")
	return types.Reference{
		URL:           get("url"),
		Title:         get("title"),
		Authors:       types.AuthorsFromNames(authors...),
		PublishedDate: get("date"),
		Publisher:     get("publisher"),
		SiteName:      get("site"),
		JournalName:   get("journal"),
		Volume:        get("volume"),
		Issue:         get("issue"),
		Pages:         get("pages"),
		DOI:           get("doi"),
		ISBN:          get("isbn"),
		ReferenceType: types.ReferenceType(strings.ToLower(get("type"))),
	}
}

// loadReferences decodes one reference or a list of them. Files ending in
// .json use the JSON field names; everything else is read as YAML.
func loadReferences(r io.Reader, path string) ([]types.Reference, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no references in %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if data[0] == '[' {
			var refs []types.Reference
			if err := json.Unmarshal(data, &refs); err != nil {
				return nil, fmt.Errorf("decoding references: %w", err)
			}
			return refs, nil
		}
		var ref types.Reference
		if err := json.Unmarshal(data, &ref); err != nil {
			return nil, fmt.Errorf("decoding reference: %w", err)
		}
		return []types.Reference{ref}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decoding references: %w", err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var refs []types.Reference
		if err := node.Decode(&refs); err != nil {
			return nil, fmt.Errorf("decoding references: %w", err)
		}
		return refs, nil
	}
	var ref types.Reference
	if err := node.Decode(&ref); err != nil {
		return nil, fmt.Errorf("decoding reference: %w", err)
	}
	return []types.Reference{ref}, nil
}

func recordCitations(refs []types.Reference, styles []types.CitationStyle, out []citeOutput) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for i, o := range out {
		ref := refs[i/len(styles)]
		if _, err := st.RecordCitation(ctx, store.CitationRecord{
			Reference: ref,
			Style:     o.Style,
			Citation:  o.Citation,
			InText:    o.InText,
		}); err != nil {
			return err
		}
	}
	logger.Info().Int("citations", len(out)).Str("data_dir", st.DataDir()).Msg("citations recorded")
	return nil
}
