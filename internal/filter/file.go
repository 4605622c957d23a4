// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trial-engine/pkg/types"
)

const dateFmt = "2006-01-02"

// File is the on-disk representation of a saved filter. Users save a filter
// from the CLI and reapply it later with --filter-file.
type File struct {
	Filter  Params    `yaml:"filter"`
	Matched int       `yaml:"matched"`
	SavedAt time.Time `yaml:"saved_at"`
}

// Params stores a filter state in a serializable form.
type Params struct {
	Region    string `yaml:"region,omitempty"`
	Condition string `yaml:"condition,omitempty"`
	DateFrom  string `yaml:"date_from,omitempty"`
	DateTo    string `yaml:"date_to,omitempty"`
}

// WriteFile saves a filter state and the number of records it matched.
func WriteFile(path string, s types.FilterState, matched int) error {
	f := File{
		Filter: Params{
			Region:    string(s.Region),
			Condition: s.ConditionSearch,
		},
		Matched: matched,
		SavedAt: time.Now().UTC(),
	}
	if !s.DateRange.From.IsZero() {
		f.Filter.DateFrom = s.DateRange.From.Format(dateFmt)
	}
	if !s.DateRange.To.IsZero() {
		f.Filter.DateTo = s.DateRange.To.Format(dateFmt)
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return eris.Wrap(err, "filter: marshal filter file")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "filter: write %s", path)
	}
	return nil
}

// ReadFile loads a saved filter file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "filter: read %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "filter: parse %s", path)
	}
	return &f, nil
}

// State converts stored params back into a FilterState.
func (p Params) State() (types.FilterState, error) {
	region, err := ParseRegion(p.Region)
	if err != nil {
		return types.FilterState{}, err
	}
	from, err := ParseDate(p.DateFrom)
	if err != nil {
		return types.FilterState{}, err
	}
	to, err := ParseDate(p.DateTo)
	if err != nil {
		return types.FilterState{}, err
	}
	return types.FilterState{
		Region:          region,
		ConditionSearch: p.Condition,
		DateRange:       types.DateRange{From: from, To: to},
	}, nil
}

// ParseDate parses a YYYY-MM-DD bound. Empty input is the zero time (unset).
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFmt, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "filter: invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
