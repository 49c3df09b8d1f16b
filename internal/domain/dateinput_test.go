package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateInputArray(t *testing.T) {
	got, err := ParseDateInput([]byte(`[2024, 5, 17, 14, 30]`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 17, 14, 30, 0, 0, time.UTC), got)

	got, err = ParseDateInput([]byte(`[2024,1,2]`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDateInput([]byte(`[2024,1,2,3,4,5,600000000]`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 2, 3, 4, 5, 600000000, time.UTC), got)
}

func TestParseDateInputStrings(t *testing.T) {
	got, err := ParseDateInput([]byte(`"2024-05-17T14:30:00Z"`), time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.May, 17, 14, 30, 0, 0, time.UTC)))

	got, err = ParseDateInput([]byte(`"2024-05-17T14:30:00.123"`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 17, 14, 30, 0, 123000000, time.UTC), got)

	got, err = ParseDateInput([]byte(`"2024-05-17"`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.May, 17, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateInputEmpty(t *testing.T) {
	for _, raw := range []string{`null`, `""`, ``} {
		got, err := ParseDateInput([]byte(raw), time.UTC)
		require.NoError(t, err, raw)
		assert.True(t, got.IsZero(), raw)
	}
}

func TestParseDateInputRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`"yesterday"`, `[2024]`, `[2024,13,1]`, `{"y":2024}`, `true`, `[2024,1,1,25]`} {
		_, err := ParseDateInput([]byte(raw), time.UTC)
		assert.Error(t, err, raw)
	}
}

func TestTimestampRoundTripThroughJSON(t *testing.T) {
	var payload struct {
		At Timestamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"2024-05-17T14:30:00Z"}`), &payload))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2024-05-17T14:30:00Z"}`, string(out))

	var empty struct {
		At Timestamp `json:"at"`
	}
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":null}`, string(out))
}

func TestTimestampReadsZonelessValuesAsUTC(t *testing.T) {
	var payload struct {
		End   Timestamp `json:"endTime"`
		Start Timestamp `json:"startTime"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"endTime":"2024-05-17T14:30:00","startTime":[2024,5,17,9,0]}`), &payload))

	assert.Equal(t, time.UTC, payload.End.Location())
	assert.Equal(t, time.Date(2024, time.May, 17, 14, 30, 0, 0, time.UTC), payload.End.Time)
	assert.Equal(t, time.Date(2024, time.May, 17, 9, 0, 0, 0, time.UTC), payload.Start.Time)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"endTime":"2024-05-17T14:30:00Z","startTime":"2024-05-17T09:00:00Z"}`, string(out))
}
