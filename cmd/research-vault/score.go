// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-vault/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [url]",
	Short: "Score one URL for academic relevance",
	Long: `Score computes the domain, keyword and visit-frequency sub-scores of a
single history entry and prints the resulting classification. URLs that the
pre-filter would skip are reported as such.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().String("title", "", "page title")
	scoreCmd.Flags().Int("visits", 1, "visit count")
	scoreCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	URL            string               `json:"url"`
	Skipped        bool                 `json:"skipped"`
	Score          types.Score          `json:"score"`
	Classification types.Classification `json:"classification"`
}

func runScore(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	visits, _ := cmd.Flags().GetInt("visits")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}

	entry := types.HistoryEntry{URL: args[0], Title: title, VisitCount: visits}
	sc, class := p.scorer.Evaluate(entry)
	out := scoreOutput{URL: entry.URL, Skipped: p.filter.ShouldSkip(entry.URL), Score: sc, Classification: class}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, out)
	}
	if out.Skipped {
		fmt.Fprintln(w, "Skipped: the pre-filter excludes this URL from scans.")
	}
	fmt.Fprintf(w, "Host:       %s\n", sc.Host)
	fmt.Fprintf(w, "Domain:     %.2f\n", sc.Domain)
	fmt.Fprintf(w, "Keyword:    %.2f\n", sc.Keyword)
	fmt.Fprintf(w, "Visits:     %.2f\n", sc.VisitFrequency)
	fmt.Fprintf(w, "Total:      %.2f\n", sc.Total)
	fmt.Fprintf(w, "Category:   %s\n", class.Category)
	fmt.Fprintf(w, "Reason:     %s\n", class.Reason)
	fmt.Fprintf(w, "Academic:   %t\n", class.IsAcademic)
	return nil
}
