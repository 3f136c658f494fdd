package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartEnd(t *testing.T) {
	def := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		parse func(string, time.Time) (time.Time, error)
		in    string
		want  time.Time
	}{
		{"start default", parseStart, "", def},
		{"start date only", parseStart, "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"start rfc3339", parseStart, "2024-05-01T08:30:00Z", time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)},
		{"end default", parseEnd, "", def},
		{"end date only is inclusive", parseEnd, "2024-05-31", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"end rfc3339", parseEnd, "2024-05-31T17:00:00Z", time.Date(2024, 5, 31, 17, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.in, def)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	_, err := parseStart("last week", def)
	assert.Error(t, err)
	_, err = parseEnd("2024/05/31", def)
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, err := parseDay("2024-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 10, got.Day())

	_, err = parseDay("", loc)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", "console")
	assert.NoError(t, err)
	_, err = newLogger("", "json")
	assert.NoError(t, err)
	_, err = newLogger("loud", "json")
	assert.Error(t, err)
	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}
