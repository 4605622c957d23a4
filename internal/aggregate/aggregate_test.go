// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/pkg/types"
)

func result(id string, areas []string, phase, treatment, population string, confidence float64) types.ClassificationResult {
	return types.ClassificationResult{
		StudyID: id,
		Classification: types.StudyClassification{
			TherapeuticAreas: areas,
			StudyPhase:       phase,
			TreatmentType:    treatment,
			Population:       population,
			Confidence:       confidence,
		},
	}
}

func sum(table map[string]int) int {
	n := 0
	for _, v := range table {
		n += v
	}
	return n
}

func TestSummarize(t *testing.T) {
	results := []types.ClassificationResult{
		result("1", []string{"cancer"}, "phase2", "drug", "", 0.9),
		result("2", []string{"cancer", "cardiovascular"}, "phase3", "", "geriatric", 0.6),
		result("3", []string{}, "", "", "", 0),
	}

	stats := Summarize(results)
	assert.Equal(t, 3, stats.TotalStudies)
	assert.Equal(t, map[string]int{"cancer": 2, "cardiovascular": 1}, stats.TherapeuticAreas)
	assert.Equal(t, map[string]int{"phase2": 1, "phase3": 1}, stats.StudyPhases)
	assert.Equal(t, map[string]int{"drug": 1}, stats.TreatmentTypes)
	assert.Equal(t, map[string]int{"geriatric": 1}, stats.Populations)
	assert.InDelta(t, 0.5, stats.AverageConfidence, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	assert.Equal(t, 0, stats.TotalStudies)
	assert.Equal(t, 0.0, stats.AverageConfidence)
	assert.NotNil(t, stats.TherapeuticAreas)
	assert.Empty(t, stats.StudyPhases)
}

func TestSummarizeSumProperties(t *testing.T) {
	titles := []string{
		"Phase 1 study in lung cancer",
		"Phase 2 trial of insulin in diabetes",
		"Phase 3 asthma trial",
		"Phase 4 heart surveillance",
	}
	results := make([]types.ClassificationResult, len(titles))
	for i, title := range titles {
		results[i] = classify.Default().Classify(title, "")
	}

	stats := Summarize(results)
	// Every title carries exactly one phase marker.
	assert.Equal(t, stats.TotalStudies, sum(stats.StudyPhases))
	assert.LessOrEqual(t, sum(stats.TreatmentTypes), stats.TotalStudies)
	assert.LessOrEqual(t, sum(stats.Populations), stats.TotalStudies)
}

func TestSummarizeOneAreaPerTitle(t *testing.T) {
	results := []types.ClassificationResult{
		result("1", []string{"cancer"}, "", "", "", 0.2),
		result("2", []string{"diabetes"}, "", "", "", 0.2),
		result("3", []string{"cancer"}, "", "", "", 0.2),
	}
	stats := Summarize(results)
	assert.Equal(t, stats.TotalStudies, sum(stats.TherapeuticAreas))
}

func TestTopLabels(t *testing.T) {
	table := map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}

	assert.Equal(t, []Count{
		{Label: "c", Count: 5},
		{Label: "a", Count: 2},
		{Label: "b", Count: 2},
		{Label: "d", Count: 1},
	}, TopLabels(table, 0))

	assert.Equal(t, []Count{
		{Label: "c", Count: 5},
		{Label: "a", Count: 2},
	}, TopLabels(table, 2))

	assert.Empty(t, TopLabels(nil, 10))
}

func records() []types.StudyRecord {
	return []types.StudyRecord{
		{ID: "1", Source: types.SourceClinicalTrials, Sponsor: "Acme", Status: types.StatusActive,
			Conditions: []string{"breast cancer", "obesity"}, StartISO: "2019-05-01T00:00:00.000Z", Enrollment: 100},
		{ID: "2", Source: types.SourceClinicalTrials, Sponsor: "Acme", Status: types.StatusComplete,
			Conditions: []string{"breast cancer"}, StartISO: "2021-01-15T00:00:00.000Z", Enrollment: 50},
		{ID: "3", Source: types.SourceEudraCT, Sponsor: "Beta", Status: types.StatusActive,
			Conditions: []string{"asthma"}, StartISO: "2021-07-01T00:00:00.000Z", Enrollment: 30},
		{ID: "4", Source: types.SourceEudraCT, Status: types.StatusActive,
			Conditions: []string{}, StartISO: ""},
	}
}

func TestTopConditions(t *testing.T) {
	got := TopConditions(records(), 2)
	assert.Equal(t, []Count{
		{Label: "breast cancer", Count: 2},
		{Label: "asthma", Count: 1},
	}, got)
}

func TestTopSponsors(t *testing.T) {
	got := TopSponsors(records(), 10)
	assert.Equal(t, []Count{
		{Label: "Acme", Count: 2},
		{Label: "Beta", Count: 1},
	}, got)
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, []Count{
		{Label: "ACTIVE", Count: 3},
		{Label: "COMPLETE", Count: 1},
	}, Statuses(records()))
}

func TestStartYears(t *testing.T) {
	got := StartYears(records())
	require.Len(t, got, 3)
	assert.Equal(t, []YearCount{
		{Year: 2019, Count: 1},
		{Year: 2020, Count: 0},
		{Year: 2021, Count: 2},
	}, got)

	assert.Empty(t, StartYears([]types.StudyRecord{{ID: "x"}}))
}

func TestRegions(t *testing.T) {
	got := Regions(records())
	assert.Equal(t, []RegionTotals{
		{Source: types.SourceClinicalTrials, Trials: 2, Enrollment: 150},
		{Source: types.SourceEudraCT, Trials: 2, Enrollment: 30},
	}, got)

	empty := Regions(nil)
	require.Len(t, empty, 2)
	assert.Zero(t, empty[0].Trials)
}
