// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/trial-engine/pkg/types"
)

func TestMapStudyStatus(t *testing.T) {
	tests := []struct {
		in   string
		want types.StudyStatus
	}{
		{"RECRUITING", types.StatusActive},
		{"recruiting", types.StatusActive},
		{"ACTIVE_NOT_RECRUITING", types.StatusActive},
		{"Active_Not_Recruiting", types.StatusActive},
		{"NOT_YET_RECRUITING", types.StatusActive},
		{"ENROLLING_BY_INVITATION", types.StatusActive},
		{"COMPLETED", types.StatusComplete},
		{"completed", types.StatusComplete},
		{"UNKNOWN", types.StatusActive},
		{"TERMINATED", types.StatusActive},
		{"WITHDRAWN", types.StatusActive},
		{"SUSPENDED", types.StatusActive},
		{"", types.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStudyStatus(tt.in))
		})
	}
}

func TestMapRegistryStatus(t *testing.T) {
	tests := []struct {
		in   string
		want types.StudyStatus
	}{
		{"Completed", types.StatusComplete},
		{"Prematurely Ended", types.StatusComplete},
		{"GB - Completed", types.StatusComplete},
		{"Ongoing", types.StatusActive},
		{"Restarted", types.StatusActive},
		{"Not Authorised", types.StatusActive},
		{"", types.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MapRegistryStatus(tt.in))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a | |b ", "|"))
	assert.Equal(t, []string{"breast cancer", "obesity"}, SplitList("breast cancer, obesity,", ","))
	assert.Equal(t, []string{}, SplitList("", ","))
	assert.Equal(t, []string{}, SplitList(" , ", ","))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2021-03-01", "2021-03-01T00:00:00.000Z"},
		{"2021-03", "2021-03-01T00:00:00.000Z"},
		{"2019", "2019-01-01T00:00:00.000Z"},
		{"2020-06-15T12:30:00+02:00", "2020-06-15T10:30:00.000Z"},
		{"March 5, 2018", "2018-03-05T00:00:00.000Z"},
		{"March 2018", "2018-03-01T00:00:00.000Z"},
		{" 2021-03-01 ", "2021-03-01T00:00:00.000Z"},
		{"", ""},
		{"not a date", ""},
		{"2021-13-45", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestParseEnrollment(t *testing.T) {
	assert.Equal(t, 120, ParseEnrollment("120"))
	assert.Equal(t, 30, ParseEnrollment(" 30 "))
	assert.Equal(t, 45, ParseEnrollment("45 (estimated)"))
	assert.Equal(t, 0, ParseEnrollment(""))
	assert.Equal(t, 0, ParseEnrollment("n/a"))
	assert.Equal(t, 0, ParseEnrollment("-5"))
}
