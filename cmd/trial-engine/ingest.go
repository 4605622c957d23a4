// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/aggregate"
	"github.com/pdiddy/trial-engine/internal/ingest"
	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Read both registry exports and save a snapshot",
	Long: `Ingest reads the ClinicalTrials.gov CSV export and the EU Clinical Trials
Register text dump (local files or http(s) URLs, fetched concurrently),
normalizes them into study records, prints a per-source summary, and saves
the records as the snapshot that studies, classify, stats and serve read.

Source locations come from the sources section of trial-engine.yaml and can
be overridden with --ctg and --eudract.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ic := cfg.Ingest()
	if v, _ := cmd.Flags().GetString("ctg"); v != "" {
		ic.CTGPath = v
	}
	if v, _ := cmd.Flags().GetString("eudract"); v != "" {
		ic.EudraCTPath = v
	}

	records, err := ingest.NewLoader(ic).Load(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printIngestSummary(w, records)

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintln(w, "\ndry run: snapshot not saved")
		return nil
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveSnapshot(cmd.Context(), records); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nsnapshot saved to %s\n", st.Dir())
	return nil
}

func printIngestSummary(w io.Writer, records []types.StudyRecord) {
	fmt.Fprintf(w, "%-16s  %8s  %10s\n", "Source", "Trials", "Enrollment")
	for _, r := range aggregate.Regions(records) {
		fmt.Fprintf(w, "%-16s  %8d  %10d\n", r.Source, r.Trials, r.Enrollment)
	}
	for _, s := range aggregate.Statuses(records) {
		fmt.Fprintf(w, "  %-14s  %8d\n", s.Label, s.Count)
	}
	fmt.Fprintf(w, "\n%d studies ingested\n", len(records))
}

func init() {
	ingestCmd.Flags().String("ctg", "", "ClinicalTrials.gov CSV export (file or URL)")
	ingestCmd.Flags().String("eudract", "", "EU register text dump (file or URL)")
	ingestCmd.Flags().Bool("dry-run", false, "print the summary without saving a snapshot")

	rootCmd.AddCommand(ingestCmd)
}
