// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DateRange bounds a study's start date. A zero From or To is unset. Both
// bounds are inclusive.
type DateRange struct {
	From time.Time `json:"from,omitzero" yaml:"from,omitempty"`
	To   time.Time `json:"to,omitzero" yaml:"to,omitempty"`
}

// FilterState is the active record filter: all set constraints must pass.
type FilterState struct {
	// Region restricts records by source. Empty means all.
	Region Region `json:"region" yaml:"region"`

	// ConditionSearch is a case-insensitive substring matched against any
	// of a record's conditions. Empty imposes no constraint.
	ConditionSearch string `json:"conditionSearch" yaml:"conditionSearch"`

	DateRange DateRange `json:"dateRange" yaml:"dateRange"`
}
