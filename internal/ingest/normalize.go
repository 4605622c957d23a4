// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// isoLayout matches the millisecond UTC form produced by JavaScript's
// Date.toISOString, which downstream consumers of the record shape expect.
const isoLayout = "2006-01-02T15:04:05.000Z"

// dateLayouts lists the date forms seen in registry exports, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2 January 2006",
	"01/02/2006",
	"2006/01/02",
}

// MapStudyStatus maps a ClinicalTrials.gov overall status to a StudyStatus.
// Only COMPLETED maps to COMPLETE; everything else, including unknown and
// empty values, is ACTIVE.
func MapStudyStatus(status string) types.StudyStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "RECRUITING", "ACTIVE_NOT_RECRUITING", "NOT_YET_RECRUITING", "ENROLLING_BY_INVITATION":
		return types.StatusActive
	case "COMPLETED":
		return types.StatusComplete
	default:
		return types.StatusActive
	}
}

// MapRegistryStatus maps an EU register trial status to a StudyStatus.
// "Completed" and "Prematurely Ended" (in any case, anywhere in the value)
// are COMPLETE; everything else is ACTIVE.
func MapRegistryStatus(status string) types.StudyStatus {
	s := strings.ToLower(status)
	if strings.Contains(s, "completed") || strings.Contains(s, "prematurely ended") {
		return types.StatusComplete
	}
	return types.StatusActive
}

// SplitList splits s on sep, trims each entry, and drops empty entries.
// It returns an empty, non-nil slice when nothing remains.
func SplitList(s, sep string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, sep) {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeDate parses a date in any of the known layouts and returns it in
// ISO-8601 UTC form. Unparseable or empty input yields "".
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

// ParseDate parses s using the known layouts. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseEnrollment reads the leading integer of s. Values without leading
// digits, and negative values, yield 0.
func ParseEnrollment(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
