package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-caltemp/internal/engine"
)

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"UTC with millis", "2025-06-15T12:00:00.000Z", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
		{"UTC", "2025-06-15T12:00:00Z", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
		{"Offset", "2025-06-15T14:00:00+02:00", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)},
		{"No zone", "2025-06-15T14:00:00", time.Date(2025, 6, 15, 14, 0, 0, 0, time.Local)},
		{"No seconds", "2025-06-15T14:00", time.Date(2025, 6, 15, 14, 0, 0, 0, time.Local)},
		{"Day only", "2025-06-15", time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ParseEventDate(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}

	_, err := engine.ParseEventDate("demain à 14h")
	assert.Error(t, err)
}

// TestEvent_JSONShape pins the events.json record layout.
func TestEvent_JSONShape(t *testing.T) {
	e := engine.Event{ID: "id-1", Title: "T", Date: "2025-06-15T12:00:00.000Z", Description: "D", Reminder: true}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-1","title":"T","date":"2025-06-15T12:00:00.000Z","description":"D","reminder":true}`, string(data))
}

func TestParseDayTime(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)

	got, err := engine.ParseDayTime("2025-06-15", "14:30", paris)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15T12:30:00.000Z", engine.FormatEventDate(got))

	got, err = engine.ParseDayTime("2025-01-15", "9:05", time.FixedZone("CET", 60*60))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T08:05:00.000Z", engine.FormatEventDate(got))

	for _, bad := range [][2]string{{"15/06/2025", "14:30"}, {"2025-06-15", "14h30"}, {"2025-06-15", "25:00"}, {"", ""}} {
		_, err := engine.ParseDayTime(bad[0], bad[1], paris)
		assert.Error(t, err, "%q %q", bad[0], bad[1])
	}
}
