// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/trial-engine/internal/filter"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var studiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "List study records matching a filter",
	Long: `Studies lists the records of the saved snapshot (or, with --live, of the
configured sources) that pass every given filter: region, a case-insensitive
condition substring, and an inclusive start-date range. Records without a
start date are excluded whenever --from or --to is set.

Use --save-filter to keep the filter for later runs with --filter-file.`,
	RunE: runStudies,
}

func runStudies(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	records, state, err := filteredRecords(cmd, e)
	if err != nil {
		return err
	}

	if search, _ := cmd.Flags().GetString("search"); search != "" {
		records = searchRecords(records, search)
	}

	if path, _ := cmd.Flags().GetString("save-filter"); path != "" {
		if err := filter.WriteFile(path, state, len(records)); err != nil {
			return err
		}
		zap.L().Info("filter saved", zap.String("path", path))
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStudies(cmd.OutOrStdout(), records, jsonOutput)
}

// searchRecords keeps records whose title contains text, case-insensitively.
func searchRecords(records []types.StudyRecord, text string) []types.StudyRecord {
	needle := strings.ToLower(text)
	out := make([]types.StudyRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			out = append(out, r)
		}
	}
	return out
}

func formatStudies(w io.Writer, records []types.StudyRecord, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No studies found.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-6s  %-8s  %-10s  %-50s  %s\n",
		"ID", "Region", "Status", "Start", "Title", "Conditions")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range records {
		start := r.StartISO
		if len(start) > 10 {
			start = start[:10]
		}
		fmt.Fprintf(w, "%-16s  %-6s  %-8s  %-10s  %-50s  %s\n",
			truncate(r.ID, 16), regionLabel(r.Source), r.Status, start,
			truncate(r.Title, 50), truncate(strings.Join(r.Conditions, "; "), 40))
	}

	fmt.Fprintf(w, "\n%d studies\n", len(records))
	return nil
}

func regionLabel(s types.StudySource) string {
	if s == types.SourceEudraCT {
		return string(types.RegionEU)
	}
	return string(types.RegionUS)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	addRecordFlags(studiesCmd)
	studiesCmd.Flags().String("search", "", "case-insensitive title substring")
	studiesCmd.Flags().String("save-filter", "", "save the active filter to a YAML file")
	studiesCmd.Flags().Int("limit", 0, "maximum rows to print (0 = all)")

	rootCmd.AddCommand(studiesCmd)
}
