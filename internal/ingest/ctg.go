// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"github.com/pdiddy/trial-engine/internal/csvparse"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// Column positions in the ClinicalTrials.gov CSV export. The export layout
// is fixed, so columns are addressed by index rather than header name.
const (
	colID            = 0
	colTitle         = 1
	colURL           = 2
	colStatus        = 4
	colSummary       = 5
	colConditions    = 7
	colSponsor       = 12
	colCollaborators = 13
	colEnrollment    = 17
	colStartDate     = 22
)

// ParseCTG tokenizes a ClinicalTrials.gov CSV export and normalizes it.
func ParseCTG(text string) []types.StudyRecord {
	return FromCSV(csvparse.Parse(text))
}

// FromCSV normalizes CSV rows (header first) into study records. Rows with
// fewer fields than the header are skipped.
func FromCSV(rows [][]string) []types.StudyRecord {
	studies := []types.StudyRecord{}
	if len(rows) == 0 {
		return studies
	}
	width := len(rows[0])

	for _, row := range rows[1:] {
		if len(row) < width {
			continue
		}
		studies = append(studies, types.StudyRecord{
			ID:            at(row, colID),
			Source:        types.SourceClinicalTrials,
			Title:         at(row, colTitle),
			URL:           at(row, colURL),
			Status:        MapStudyStatus(at(row, colStatus)),
			Summary:       at(row, colSummary),
			Sponsor:       at(row, colSponsor),
			Collaborators: SplitList(at(row, colCollaborators), "|"),
			Conditions:    SplitList(at(row, colConditions), ","),
			StartISO:      NormalizeDate(at(row, colStartDate)),
			Enrollment:    ParseEnrollment(at(row, colEnrollment)),
		})
	}
	return studies
}

// at returns row[i], or "" when the row is too short.
func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
