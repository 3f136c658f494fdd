package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRange_NormalizesToDayBoundaries(t *testing.T) {
	start := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 6, 1, 0, 0, 0, time.UTC)

	r := NewDateRange(start, end, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 3, 6, 23, 59, 59, 999999999, time.UTC), r.End)
	assert.True(t, r.Contains(time.Date(2024, 3, 6, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 3, 23, 59, 59, 0, time.UTC)))
}

func TestNewDateRange_UsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on Mar 5 is still Mar 4 in New York.
	r := NewDateRange(time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC), ny)

	assert.Equal(t, 4, r.Start.Day())
	assert.Equal(t, 4, r.End.Day())
	assert.Equal(t, ny, r.Start.Location())
}

func TestTimeEntry_Minutes(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Minute + 59*time.Second)
	before := start.Add(-time.Minute)

	assert.Equal(t, int64(90), TimeEntry{StartTime: start, EndTime: &end}.Minutes())
	assert.Equal(t, int64(0), TimeEntry{StartTime: start}.Minutes())
	assert.Equal(t, int64(0), TimeEntry{StartTime: start, EndTime: &before}.Minutes())
	assert.True(t, TimeEntry{StartTime: start}.IsRunning())
}

func TestStatusFor(t *testing.T) {
	end := time.Now()
	assert.Equal(t, StatusInProgress, StatusFor(nil))
	assert.Equal(t, StatusCompleted, StatusFor(&end))
}

func TestUser_DisplayName(t *testing.T) {
	name := "Ada"
	empty := ""
	assert.Equal(t, "Ada", User{Name: &name, Email: "ada@example.com"}.DisplayName())
	assert.Equal(t, "ada@example.com", User{Name: &empty, Email: "ada@example.com"}.DisplayName())
	assert.Equal(t, "ada@example.com", User{Email: "ada@example.com"}.DisplayName())
}

func TestValidationError(t *testing.T) {
	err := Invalid("startDate", "is required")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "startDate", ve.Field)
	assert.Equal(t, "startDate: is required", err.Error())
}
