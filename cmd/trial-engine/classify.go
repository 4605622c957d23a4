// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [title]",
	Short: "Classify study titles by area, phase, treatment and population",
	Long: `Classify labels each study title on four axes using ordered pattern
tables: therapeutic areas (every match), study phase, treatment type and
population (first match each), with a confidence score in [0, 0.9].

With a title argument, classify prints that title's classification. Without
one, it classifies every study passing the filter flags. Replace the
built-in tables with classify.patterns_file in trial-engine.yaml.`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()

	if len(args) > 0 {
		title := strings.Join(args, " ")
		results := e.catalog.Classify([]types.StudyRecord{{Title: title}})
		return formatClassifications(w, results, jsonOutput)
	}

	records, _, err := filteredRecords(cmd, e)
	if err != nil {
		return err
	}
	return formatClassifications(w, e.catalog.Classify(records), jsonOutput)
}

func formatClassifications(w io.Writer, results []types.ClassificationResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No studies to classify.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-30s  %-13s  %-10s  %-18s  %s\n",
		"ID", "Areas", "Phase", "Treatment", "Population", "Conf")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for _, r := range results {
		c := r.Classification
		fmt.Fprintf(w, "%-16s  %-30s  %-13s  %-10s  %-18s  %.2f\n",
			truncate(r.StudyID, 16), truncate(orDash(strings.Join(c.TherapeuticAreas, ",")), 30),
			orDash(c.StudyPhase), orDash(c.TreatmentType), orDash(c.Population), c.Confidence)
	}

	fmt.Fprintf(w, "\n%d classified\n", len(results))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	addRecordFlags(classifyCmd)
	rootCmd.AddCommand(classifyCmd)
}
