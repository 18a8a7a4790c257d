package itinerary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itingen/internal/itinerary"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestBuildDays_SpansTripInclusive(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	start := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 15, 13, 0, 0, 0, time.UTC)

	days := itinerary.BuildDays(start, end, loc)

	require.Equal(t, 6, days.Len())
	assert.Equal(t, "2025-05-10", days.First().Key())
	assert.Equal(t, "2025-05-15", days.Last().Key())

	want := []string{"2025-05-10", "2025-05-11", "2025-05-12", "2025-05-13", "2025-05-14", "2025-05-15"}
	for i, day := range days.Days() {
		assert.Equal(t, want[i], day.Key())
	}
}

func TestBuildDays_LocalDateShiftsAcrossMidnight(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	// 02:00 UTC is still the previous evening in New York.
	start := time.Date(2025, 5, 10, 2, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 10, 3, 0, 0, 0, time.UTC)

	days := itinerary.BuildDays(start, end, loc)

	require.Equal(t, 1, days.Len())
	assert.Equal(t, "2025-05-09", days.First().Key())
}

func TestBuildDays_EndBeforeStartYieldsSingleDay(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	start := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -3)

	days := itinerary.BuildDays(start, end, loc)

	require.Equal(t, 1, days.Len())
	assert.Equal(t, "2025-05-10", days.First().Key())
}

func TestBuildDays_ByDateLookup(t *testing.T) {
	loc := mustLocation(t, "UTC")
	start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	days := itinerary.BuildDays(start, end, loc)

	day, ok := days.ByDate("2025-05-11")
	require.True(t, ok)
	assert.Equal(t, "2025-05-11", day.Key())

	_, ok = days.ByDate("2025-06-01")
	assert.False(t, ok)
}

func TestBuildDays_NilLocationDefaultsToUTC(t *testing.T) {
	start := time.Date(2025, 5, 10, 23, 0, 0, 0, time.UTC)
	days := itinerary.BuildDays(start, start, nil)

	require.Equal(t, 1, days.Len())
	assert.Equal(t, "2025-05-10", days.First().Key())
}
