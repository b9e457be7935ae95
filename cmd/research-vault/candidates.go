// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-vault/internal/store"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Manage stored research candidates (list, export, delete)",
	Long: `Candidates manages the research suggestions saved by "scan --save" in
the vault database under the data directory.`,
}

// --- list subcommand ---

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored candidates by confidence",
	RunE:  runCandidatesList,
}

func runCandidatesList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	candidates, err := st.ListCandidates(context.Background(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(w, candidates)
	}
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No candidates stored.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-5s  %-40s  %s\n", "ID", "Score", "Title", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, c := range candidates {
		fmt.Fprintf(w, "%-36s  %.2f   %-40s  %s\n", c.ID, c.ConfidenceScore, truncate(c.Title, 40), c.URL)
	}
	fmt.Fprintf(w, "\n%d candidates\n", len(candidates))
	return nil
}

// --- export subcommand ---

var candidatesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export candidates and citations to YAML or JSON",
	Long: `Export writes stored candidates (optionally filtered) and all recorded
citations to export.yaml or export.json in the data directory.`,
	RunE: runCandidatesExport,
}

func runCandidatesExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := listOptsFromFlags(cmd)
	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(context.Background(), opts)
	case "json":
		path, err = st.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- delete subcommand ---

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete stored candidates by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCandidatesDelete,
}

func runCandidatesDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, id := range args {
		if err := st.DeleteCandidate(context.Background(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}

// --- shared helpers ---

func listOptsFromFlags(cmd *cobra.Command) store.ListOptions {
	limit, _ := cmd.Flags().GetInt("limit")
	academic, _ := cmd.Flags().GetBool("academic")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	return store.ListOptions{
		Limit:         limit,
		AcademicOnly:  academic,
		MinConfidence: minConfidence,
	}
}

func init() {
	// Filter flags shared by list and export.
	for _, c := range []*cobra.Command{candidatesListCmd, candidatesExportCmd} {
		c.Flags().Int("limit", 0, "maximum candidates (0 = all)")
		c.Flags().Bool("academic", false, "only candidates classified as academic")
		c.Flags().Float64("min-confidence", 0, "minimum confidence score")
	}
	candidatesListCmd.Flags().Bool("json", false, "output as JSON")
	candidatesExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	candidatesCmd.AddCommand(candidatesListCmd)
	candidatesCmd.AddCommand(candidatesExportCmd)
	candidatesCmd.AddCommand(candidatesDeleteCmd)

	rootCmd.AddCommand(candidatesCmd)
}
