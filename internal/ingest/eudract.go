// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// RecordMarker starts every trial block in an EU register text dump.
const RecordMarker = "EudraCT Number:"

// DefaultLinkBase derives a register URL from a EudraCT number.
const DefaultLinkBase = "https://www.clinicaltrialsregister.eu/ctr-search/search?query="

// Field names a StudyRecord attribute a registry line can populate.
type Field int

const (
	FieldID Field = iota
	FieldTitle
	FieldURL
	FieldStatus
	FieldSummary
	FieldSponsor
	FieldStartDate
	FieldCondition
	FieldEnrollment
)

// FieldRule maps a line prefix to the field it populates.
type FieldRule struct {
	Prefix string
	Field  Field
}

// DefaultRules returns the line prefixes of the EU Clinical Trials Register
// text export. Rules are tried in order and the first matching prefix wins.
func DefaultRules() []FieldRule {
	return []FieldRule{
		{Prefix: RecordMarker, Field: FieldID},
		{Prefix: "A.3 Full title of the trial:", Field: FieldTitle},
		{Prefix: "Link:", Field: FieldURL},
		{Prefix: "Trial Status:", Field: FieldStatus},
		{Prefix: "E.2.1 Main objective of the trial:", Field: FieldSummary},
		{Prefix: "B.1.1 Name of Sponsor:", Field: FieldSponsor},
		{Prefix: "Date on which this record was first entered in the EudraCT database:", Field: FieldStartDate},
		{Prefix: "E.1.1 Medical condition(s) being investigated:", Field: FieldCondition},
		{Prefix: "F.4.1 In the member state:", Field: FieldEnrollment},
	}
}

// RegistryOptions configures ParseEudraCT.
type RegistryOptions struct {
	// Rules overrides DefaultRules when non-empty.
	Rules []FieldRule

	// LinkBase is prefixed to the trial id to build a URL for blocks without
	// a Link line. Empty leaves the URL blank.
	LinkBase string
}

// ParseEudraCT splits an EU register text dump into trial blocks and
// extracts one record per block. Text before the first record marker is
// discarded, and blocks missing an id or title are dropped.
func ParseEudraCT(text string, opts RegistryOptions) []types.StudyRecord {
	rules := opts.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	studies := []types.StudyRecord{}
	for _, block := range SplitBlocks(text) {
		study, ok := parseBlock(block, rules)
		if !ok {
			continue
		}
		if study.URL == "" && opts.LinkBase != "" {
			study.URL = opts.LinkBase + study.ID
		}
		studies = append(studies, study)
	}
	return studies
}

// SplitBlocks splits text before every occurrence of RecordMarker, keeping
// the marker at the start of each block. The preamble is not returned.
func SplitBlocks(text string) []string {
	var blocks []string
	start := strings.Index(text, RecordMarker)
	if start < 0 {
		return blocks
	}
	for {
		next := strings.Index(text[start+len(RecordMarker):], RecordMarker)
		if next < 0 {
			blocks = append(blocks, text[start:])
			return blocks
		}
		end := start + len(RecordMarker) + next
		blocks = append(blocks, text[start:end])
		start = end
	}
}

func parseBlock(block string, rules []FieldRule) (types.StudyRecord, bool) {
	study := types.StudyRecord{
		Source:        types.SourceEudraCT,
		Status:        types.StatusActive,
		Collaborators: []string{},
		Conditions:    []string{},
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		for _, rule := range rules {
			if !strings.HasPrefix(line, rule.Prefix) {
				continue
			}
			apply(&study, rule.Field, strings.TrimSpace(line[len(rule.Prefix):]))
			break
		}
	}

	if study.ID == "" || study.Title == "" {
		return types.StudyRecord{}, false
	}
	return study, true
}

func apply(study *types.StudyRecord, field Field, value string) {
	switch field {
	case FieldID:
		study.ID = value
	case FieldTitle:
		study.Title = value
	case FieldURL:
		study.URL = value
	case FieldStatus:
		study.Status = MapRegistryStatus(value)
	case FieldSummary:
		study.Summary = value
	case FieldSponsor:
		study.Sponsor = value
	case FieldStartDate:
		study.StartISO = NormalizeDate(value)
	case FieldCondition:
		if value != "" {
			study.Conditions = append(study.Conditions, value)
		}
	case FieldEnrollment:
		study.Enrollment = ParseEnrollment(value)
	}
}
