package dateutil

import (
	"fmt"
	"time"
)

// DateLayout renders the date-only part of a time, two times on the same
// local calendar day always produce the same string.
const DateLayout = "Mon Jan 02 2006"

func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfNextMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0)
}

// MonthPeriod is the identifier of the monthly leaderboard containing t.
func MonthPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// FormatClock renders d as HH:MM:SS, truncated to whole seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatDaysHoursMinutes renders d as "D days H hours M minutes".
func FormatDaysHoursMinutes(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int64(d / (24 * time.Hour))
	hours := int64((d % (24 * time.Hour)) / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%d days %d hours %d minutes", days, hours, minutes)
}
