// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-engine/pkg/types"
)

const ctgColumns = 23

// ctgHeader builds a 23-column header with the positional columns named.
func ctgHeader() string {
	cols := make([]string, ctgColumns)
	for i := range cols {
		cols[i] = "x"
	}
	cols[colID] = "NCT Number"
	cols[colTitle] = "Study Title"
	cols[colURL] = "Study URL"
	cols[colStatus] = "Study Status"
	cols[colSummary] = "Brief Summary"
	cols[colConditions] = "Conditions"
	cols[colSponsor] = "Sponsor"
	cols[colCollaborators] = "Collaborators"
	cols[colEnrollment] = "Enrollment"
	cols[colStartDate] = "Start Date"
	return strings.Join(cols, ",")
}

// ctgRow builds a 23-column data row from the given positional values.
func ctgRow(values map[int]string) string {
	cols := make([]string, ctgColumns)
	for i, v := range values {
		cols[i] = v
	}
	return strings.Join(cols, ",")
}

func TestParseCTGEndToEnd(t *testing.T) {
	text := ctgHeader() + "\n" + ctgRow(map[int]string{
		colID:            "NCT1",
		colTitle:         "Phase 2 Study of Drug X in Breast Cancer",
		colURL:           "http://x",
		colStatus:        "COMPLETED",
		colSummary:       "sum",
		colConditions:    "breast cancer",
		colSponsor:       "SponsorCo",
		colCollaborators: "collabA|collabB",
		colEnrollment:    "250",
		colStartDate:     "2021-03-01",
	})

	studies := ParseCTG(text)
	require.Len(t, studies, 1)

	s := studies[0]
	assert.Equal(t, "NCT1", s.ID)
	assert.Equal(t, types.SourceClinicalTrials, s.Source)
	assert.Equal(t, "Phase 2 Study of Drug X in Breast Cancer", s.Title)
	assert.Equal(t, "http://x", s.URL)
	assert.Equal(t, types.StatusComplete, s.Status)
	assert.Equal(t, "sum", s.Summary)
	assert.Equal(t, []string{"breast cancer"}, s.Conditions)
	assert.Equal(t, "SponsorCo", s.Sponsor)
	assert.Equal(t, []string{"collabA", "collabB"}, s.Collaborators)
	assert.Equal(t, 250, s.Enrollment)
	assert.Equal(t, "2021-03-01T00:00:00.000Z", s.StartISO)
}

func TestFromCSVSkipsShortRows(t *testing.T) {
	rows := [][]string{
		{"id", "title", "url"},
		{"NCT1", "ok", "u"},
		{"NCT2", "short"},
		{"NCT3", "extra", "u", "more"},
	}
	studies := FromCSV(rows)
	require.Len(t, studies, 2)
	assert.Equal(t, "NCT1", studies[0].ID)
	assert.Equal(t, "NCT3", studies[1].ID)

	// Columns beyond the row degrade to defaults.
	assert.Equal(t, types.StatusActive, studies[0].Status)
	assert.Equal(t, []string{}, studies[0].Conditions)
	assert.Equal(t, "", studies[0].StartISO)
	assert.Equal(t, 0, studies[0].Enrollment)
}

func TestFromCSVQuotedConditions(t *testing.T) {
	text := ctgHeader() + "\n" + ctgRow(map[int]string{
		colID:         "NCT9",
		colTitle:      "Title",
		colConditions: `"Asthma, Obesity"`,
		colStartDate:  "garbage",
		colEnrollment: "many",
	})
	studies := ParseCTG(text)
	require.Len(t, studies, 1)
	assert.Equal(t, []string{"Asthma", "Obesity"}, studies[0].Conditions)
	assert.Equal(t, "", studies[0].StartISO)
	assert.Equal(t, 0, studies[0].Enrollment)
}

func TestFromCSVEmpty(t *testing.T) {
	assert.Empty(t, FromCSV(nil))
	assert.Empty(t, ParseCTG(ctgHeader()+"\n"))
}
