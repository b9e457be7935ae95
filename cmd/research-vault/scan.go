// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-vault/internal/history"
	"github.com/pdiddy/research-vault/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan [history.json]",
	Short: "Rank exported browser history as research candidates",
	Long: `Scan reads a JSON array of history entries ({url, title, lastVisitTime,
visitCount}) from a file or stdin, drops browser-internal and blocked URLs,
scores the rest and prints them ranked by confidence.

With --save, new candidates are written to the vault and URLs already
stored are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Int("limit", 0, "maximum candidates (0 = use configured scan.limit)")
	scanCmd.Flags().Float64("min-confidence", -1, "drop candidates below this score (default: configured scan.min_confidence)")
	scanCmd.Flags().Bool("save", false, "persist new candidates to the vault")
	scanCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = cfg.Scan.Limit
	}
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	if minConfidence < 0 {
		minConfidence = cfg.Scan.MinConfidence
	}
	save, _ := cmd.Flags().GetBool("save")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	in, err := openInput(path)
	if err != nil {
		return err
	}
	entries, err := history.LoadEntries(in)
	in.Close()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, nil)
	if err != nil {
		return err
	}

	ctx := context.Background()
	opts := history.Options{Limit: limit, MinConfidence: minConfidence}

	var st *store.Store
	if save {
		if st, err = openStore(cfg); err != nil {
			return err
		}
		defer st.Close()
		if opts.Known, err = st.KnownURLs(ctx); err != nil {
			return err
		}
	}

	result, err := p.scanner.Scan(ctx, entries, opts)
	if err != nil {
		return err
	}
	saved := 0
	if st != nil {
		if saved, err = st.SaveCandidates(ctx, result.Candidates); err != nil {
			return err
		}
	}
	return printScan(cmd, result, saved, jsonOutput)
}

func printScan(cmd *cobra.Command, result history.ScanResult, saved int, jsonOutput bool) error {
	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, struct {
			history.ScanResult
			Saved int `json:"saved"`
		}{result, saved})
	}

	if len(result.Candidates) == 0 {
		fmt.Fprintln(w, "No candidates found.")
	} else {
		fmt.Fprintf(w, "%-4s  %-5s  %-3s  %-50s  %s\n", "Rank", "Score", "Aca", "URL", "Reason")
		fmt.Fprintln(w, strings.Repeat("-", 110))
		for i, c := range result.Candidates {
			aca := ""
			if c.IsAcademic {
				aca = "yes"
			}
			fmt.Fprintf(w, "%-4d  %.2f   %-3s  %-50s  %s\n", i+1, c.ConfidenceScore, aca, truncate(c.URL, 50), c.SuggestedReason)
		}
	}

	fmt.Fprintf(w, "\n%d candidates, %d scored, %d skipped, %d duplicates", len(result.Candidates), result.Scored, result.Skipped, result.Duplicates)
	if saved > 0 {
		fmt.Fprintf(w, ", %d saved", saved)
	}
	fmt.Fprintln(w)
	return nil
}
