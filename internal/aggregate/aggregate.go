// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate reduces classification results and study records into
// frequency tables for display.
package aggregate

import (
	"sort"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// Count is one row of a sorted frequency table.
type Count struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// YearCount is one bucket of the start-year histogram.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`
}

// RegionTotals is the trial count and summed enrollment for one source.
type RegionTotals struct {
	Source     types.StudySource `json:"source" yaml:"source"`
	Trials     int               `json:"trials" yaml:"trials"`
	Enrollment int               `json:"enrollment" yaml:"enrollment"`
}

// Summarize builds per-axis frequency tables and the mean confidence.
// Axes with no matched label contribute nothing to their table. The average
// of an empty input is 0.
func Summarize(results []types.ClassificationResult) types.ClassificationStats {
	stats := types.ClassificationStats{
		TherapeuticAreas: map[string]int{},
		StudyPhases:      map[string]int{},
		TreatmentTypes:   map[string]int{},
		Populations:      map[string]int{},
		TotalStudies:     len(results),
	}

	var total float64
	for _, r := range results {
		c := r.Classification
		for _, area := range c.TherapeuticAreas {
			stats.TherapeuticAreas[area]++
		}
		if c.StudyPhase != "" {
			stats.StudyPhases[c.StudyPhase]++
		}
		if c.TreatmentType != "" {
			stats.TreatmentTypes[c.TreatmentType]++
		}
		if c.Population != "" {
			stats.Populations[c.Population]++
		}
		total += c.Confidence
	}
	if len(results) > 0 {
		stats.AverageConfidence = total / float64(len(results))
	}
	return stats
}

// TopLabels sorts a frequency table by descending count, breaking ties by
// label, and keeps the first n rows. n <= 0 keeps all rows.
func TopLabels(table map[string]int, n int) []Count {
	out := make([]Count, 0, len(table))
	for label, c := range table {
		out = append(out, Count{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopConditions counts every condition across records.
func TopConditions(records []types.StudyRecord, n int) []Count {
	table := map[string]int{}
	for _, r := range records {
		for _, c := range r.Conditions {
			table[c]++
		}
	}
	return TopLabels(table, n)
}

// TopSponsors counts records per sponsor. Records without a sponsor are
// not counted.
func TopSponsors(records []types.StudyRecord, n int) []Count {
	table := map[string]int{}
	for _, r := range records {
		if r.Sponsor != "" {
			table[r.Sponsor]++
		}
	}
	return TopLabels(table, n)
}

// Statuses counts records per normalized status.
func Statuses(records []types.StudyRecord) []Count {
	table := map[string]int{}
	for _, r := range records {
		table[string(r.Status)]++
	}
	return TopLabels(table, 0)
}

// StartYears returns a dense histogram of start years from the earliest to
// the latest dated record, with zero buckets for empty years. Records
// without a start date are ignored.
func StartYears(records []types.StudyRecord) []YearCount {
	counts := map[int]int{}
	minYear, maxYear := 0, 0
	for _, r := range records {
		t, ok := r.StartTime()
		if !ok {
			continue
		}
		y := t.Year()
		if len(counts) == 0 || y < minYear {
			minYear = y
		}
		if len(counts) == 0 || y > maxYear {
			maxYear = y
		}
		counts[y]++
	}
	if len(counts) == 0 {
		return []YearCount{}
	}

	out := make([]YearCount, 0, maxYear-minYear+1)
	for y := minYear; y <= maxYear; y++ {
		out = append(out, YearCount{Year: y, Count: counts[y]})
	}
	return out
}

// Regions totals trials and enrollment per source, ClinicalTrials.gov first.
// Both sources are always present.
func Regions(records []types.StudyRecord) []RegionTotals {
	out := []RegionTotals{
		{Source: types.SourceClinicalTrials},
		{Source: types.SourceEudraCT},
	}
	for _, r := range records {
		i := 0
		if r.Source == types.SourceEudraCT {
			i = 1
		}
		out[i].Trials++
		out[i].Enrollment += r.Enrollment
	}
	return out
}
