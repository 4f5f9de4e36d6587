package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateSpecUnmarshalKeyword(t *testing.T) {
	var criteria FilterCriteria
	err := json.Unmarshal([]byte(`{"dateRange":"next week"}`), &criteria)
	require.NoError(t, err)
	require.NotNil(t, criteria.DateRange)
	assert.Equal(t, "next week", criteria.DateRange.Keyword)
	assert.False(t, criteria.DateRange.Explicit())
}

func TestDateSpecUnmarshalObject(t *testing.T) {
	var criteria FilterCriteria
	err := json.Unmarshal([]byte(`{"dateRange":{"start":"2025-06-01","end":"2025-06-07"}}`), &criteria)
	require.NoError(t, err)
	require.NotNil(t, criteria.DateRange)
	assert.True(t, criteria.DateRange.Explicit())
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), criteria.DateRange.Start)
	assert.Equal(t, time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC), criteria.DateRange.End)
}

func TestDateSpecUnmarshalRejectsOtherShapes(t *testing.T) {
	var spec DateSpec
	assert.Error(t, json.Unmarshal([]byte(`42`), &spec))
	assert.Error(t, json.Unmarshal([]byte(`{"start":"soon","end":"later"}`), &spec))
}

func TestDateSpecMarshalRoundTrip(t *testing.T) {
	keyword := DateSpec{Keyword: "weekend"}
	raw, err := json.Marshal(keyword)
	require.NoError(t, err)
	assert.JSONEq(t, `"weekend"`, string(raw))

	explicit := DateSpec{
		Start: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC),
	}
	raw, err = json.Marshal(explicit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-06-01","end":"2025-06-07"}`, string(raw))
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, 31, day.Day())

	ts, err := ParseDate("2025-12-31T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 18, ts.Hour())

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestFilterCriteriaOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(FilterCriteria{Types: []string{"music"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"types":["music"],"isReported":false}`, string(raw))
}
