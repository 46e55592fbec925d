package calendar

import "time"

// CountWorkingDays returns the number of Monday–Friday dates in the inclusive
// range [start, end]. No holiday calendar is consulted. Returns 0 when end
// precedes start.
func CountWorkingDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWorkingDay(d) {
			count++
		}
	}
	return count
}

func isWorkingDay(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// CountCalendarDays returns the inclusive day count of [start, end].
func CountCalendarDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
