// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trial-engine pipeline:
// the normalized study record, classification results, dashboard layouts,
// and stage configuration.
package types

import "time"

// StudySource identifies the registry a record was ingested from.
type StudySource string

const (
	SourceClinicalTrials StudySource = "CLINICAL_TRIALS"
	SourceEudraCT        StudySource = "EUDRACT"
)

// StudyStatus is the normalized recruitment status of a study.
type StudyStatus string

const (
	StatusActive   StudyStatus = "ACTIVE"
	StatusComplete StudyStatus = "COMPLETE"
)

// Region selects records by source registry.
type Region string

const (
	RegionUS  Region = "us"
	RegionEU  Region = "eu"
	RegionAll Region = "all"
)

// StudyRecord is the source-agnostic representation of one clinical trial.
// Records are treated as values: nothing downstream of ingestion mutates them.
type StudyRecord struct {
	// ID is the registry identifier (NCT number or EudraCT number). Unique
	// within a source only.
	ID string `json:"id" yaml:"id"`

	// Source is the registry the record came from.
	Source StudySource `json:"source" yaml:"source"`

	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	Summary string `json:"summary" yaml:"summary"`
	Sponsor string `json:"sponsor" yaml:"sponsor"`

	// Status is ACTIVE unless the source vocabulary says the study is finished.
	Status StudyStatus `json:"status" yaml:"status"`

	// Collaborators lists collaborating organisations in source order.
	Collaborators []string `json:"collaborators" yaml:"collaborators"`

	// Conditions lists the medical conditions studied, in source order.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// StartISO is the start (or first-entered) date in ISO-8601, or empty
	// when the source value could not be parsed.
	StartISO string `json:"startISO" yaml:"startISO"`

	// Enrollment is the participant count, 0 when absent.
	Enrollment int `json:"enrollment" yaml:"enrollment"`
}

// StartTime parses StartISO. It reports false when the record has no usable
// start date.
func (r StudyRecord) StartTime() (time.Time, bool) {
	if r.StartISO == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, r.StartISO)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
