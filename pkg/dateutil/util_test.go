package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateString(t *testing.T) {
	morning := time.Date(2024, time.March, 5, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, time.March, 5, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "Tue Mar 05 2024", DateString(morning))
	require.Equal(t, DateString(morning), DateString(night))
	require.NotEqual(t, DateString(night), DateString(nextDay))
}

func TestStartOfNextMonth(t *testing.T) {
	now := time.Date(2024, time.December, 31, 22, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), StartOfNextMonth(now))
	require.Equal(t, "2024-12", MonthPeriod(now))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "06:00:00", FormatClock(6*time.Hour))
	require.Equal(t, "00:00:59", FormatClock(59*time.Second+999*time.Millisecond))
	require.Equal(t, "00:00:00", FormatClock(-time.Second))

	d := 3*24*time.Hour + 4*time.Hour + 5*time.Minute + 30*time.Second
	require.Equal(t, "3 days 4 hours 5 minutes", FormatDaysHoursMinutes(d))
}
