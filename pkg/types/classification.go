// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StudyClassification holds the labels matched against a study title on
// each of the four classification axes.
type StudyClassification struct {
	// TherapeuticAreas lists every matching area label, in table order.
	TherapeuticAreas []string `json:"therapeuticAreas" yaml:"therapeuticAreas"`

	// StudyPhase is the first matching phase label, or empty.
	StudyPhase string `json:"studyPhase" yaml:"studyPhase"`

	// TreatmentType is the first matching treatment label, or empty.
	TreatmentType string `json:"treatmentType" yaml:"treatmentType"`

	// Population is the first matching population label, or empty.
	Population string `json:"population" yaml:"population"`

	// Confidence is a heuristic in [0, 0.9] reflecting how many labels matched
	// relative to the title length.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Keywords lists every matched label across axes in match order.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// ClassificationResult pairs a study with its title classification.
type ClassificationResult struct {
	StudyID        string              `json:"studyId" yaml:"studyId"`
	Title          string              `json:"title" yaml:"title"`
	Classification StudyClassification `json:"classification" yaml:"classification"`
}

// ClassificationStats aggregates a set of ClassificationResults into
// per-axis frequency tables.
type ClassificationStats struct {
	TherapeuticAreas  map[string]int `json:"therapeuticAreas" yaml:"therapeuticAreas"`
	StudyPhases       map[string]int `json:"studyPhases" yaml:"studyPhases"`
	TreatmentTypes    map[string]int `json:"treatmentTypes" yaml:"treatmentTypes"`
	Populations       map[string]int `json:"populations" yaml:"populations"`
	TotalStudies      int            `json:"totalStudies" yaml:"totalStudies"`
	AverageConfidence float64        `json:"averageConfidence" yaml:"averageConfidence"`
}
