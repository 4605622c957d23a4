// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/aggregate"
	"github.com/pdiddy/trial-engine/internal/catalog"
	"github.com/pdiddy/trial-engine/pkg/types"
)

const defaultTop = 10

// report is the stats output: classification frequencies plus the record
// breakdowns the dashboard charts show.
type report struct {
	Classification types.ClassificationStats `json:"classification"`
	Conditions     []aggregate.Count          `json:"conditions"`
	Sponsors       []aggregate.Count          `json:"sponsors"`
	Statuses       []aggregate.Count          `json:"statuses"`
	StartYears     []aggregate.YearCount      `json:"startYears"`
	Regions        []aggregate.RegionTotals   `json:"regions"`
}

func buildReport(cat *catalog.Catalog, records []types.StudyRecord, top int) report {
	return report{
		Classification: cat.Stats(cat.Classify(records)),
		Conditions:     aggregate.TopConditions(records, top),
		Sponsors:       aggregate.TopSponsors(records, top),
		Statuses:       aggregate.Statuses(records),
		StartYears:     aggregate.StartYears(records),
		Regions:        aggregate.Regions(records),
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize classifications and record breakdowns",
	Long: `Stats classifies every study passing the filter flags and prints the
frequency of each therapeutic area, phase, treatment type and population,
the average confidence, and record breakdowns: top conditions, top
sponsors, statuses, a start-year histogram, and trials and enrollment per
region.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	records, _, err := filteredRecords(cmd, e)
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	rep := buildReport(e.catalog, records, top)

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(w, rep)
	}
	printReport(w, rep, top)
	return nil
}

func printReport(w io.Writer, rep report, top int) {
	s := rep.Classification
	fmt.Fprintf(w, "Studies: %d   Average confidence: %.2f\n", s.TotalStudies, s.AverageConfidence)

	printCounts(w, "Therapeutic areas", aggregate.TopLabels(s.TherapeuticAreas, top))
	printCounts(w, "Study phases", aggregate.TopLabels(s.StudyPhases, top))
	printCounts(w, "Treatment types", aggregate.TopLabels(s.TreatmentTypes, top))
	printCounts(w, "Populations", aggregate.TopLabels(s.Populations, top))
	printCounts(w, "Top conditions", rep.Conditions)
	printCounts(w, "Top sponsors", rep.Sponsors)
	printCounts(w, "Statuses", rep.Statuses)

	fmt.Fprintf(w, "\nStart years\n%s\n", strings.Repeat("-", 40))
	for _, y := range rep.StartYears {
		fmt.Fprintf(w, "  %d  %6d\n", y.Year, y.Count)
	}

	fmt.Fprintf(w, "\nRegions\n%s\n", strings.Repeat("-", 40))
	for _, r := range rep.Regions {
		fmt.Fprintf(w, "  %-4s  %6d trials  %8d enrolled\n", regionLabel(r.Source), r.Trials, r.Enrollment)
	}
}

func printCounts(w io.Writer, heading string, counts []aggregate.Count) {
	fmt.Fprintf(w, "\n%s\n%s\n", heading, strings.Repeat("-", 40))
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-30s  %6d\n", truncate(c.Label, 30), c.Count)
	}
}

func init() {
	addRecordFlags(statsCmd)
	statsCmd.Flags().Int("top", defaultTop, "rows per frequency table (0 = all)")

	rootCmd.AddCommand(statsCmd)
}
