// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter selects study records by region, condition text, and start
// date range, and saves filter states to YAML files.
package filter

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// ParseRegion validates a user-supplied region. Empty input is RegionAll.
func ParseRegion(s string) (types.Region, error) {
	switch r := types.Region(strings.ToLower(strings.TrimSpace(s))); r {
	case "", types.RegionAll:
		return types.RegionAll, nil
	case types.RegionUS, types.RegionEU:
		return r, nil
	default:
		return "", eris.Errorf("filter: unknown region %q (want us, eu or all)", s)
	}
}

// Match reports whether a record passes every set constraint of the state.
// A record without a parseable start date fails any set date bound.
func Match(r types.StudyRecord, s types.FilterState) bool {
	switch s.Region {
	case types.RegionUS:
		if r.Source != types.SourceClinicalTrials {
			return false
		}
	case types.RegionEU:
		if r.Source != types.SourceEudraCT {
			return false
		}
	}

	if s.ConditionSearch != "" && !matchCondition(r.Conditions, s.ConditionSearch) {
		return false
	}

	from, to := s.DateRange.From, s.DateRange.To
	if from.IsZero() && to.IsZero() {
		return true
	}
	start, ok := r.StartTime()
	if !ok {
		return false
	}
	if !from.IsZero() && start.Before(from) {
		return false
	}
	if !to.IsZero() && start.After(to) {
		return false
	}
	return true
}

// Apply returns the records that match s, in input order. The input slice
// is not modified.
func Apply(records []types.StudyRecord, s types.FilterState) []types.StudyRecord {
	out := make([]types.StudyRecord, 0, len(records))
	for _, r := range records {
		if Match(r, s) {
			out = append(out, r)
		}
	}
	return out
}

func matchCondition(conditions []string, search string) bool {
	needle := strings.ToLower(search)
	for _, c := range conditions {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}
