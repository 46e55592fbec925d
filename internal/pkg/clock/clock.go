package clock

import "time"

// Clock abstracts the current time so attendance day-bucketing and lateness
// checks can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall-clock time in the configured reference location.
// One location is used for the whole system: the same zone buckets days and
// decides lateness.
type SystemClock struct {
	Location *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Location: loc}
}

func (c SystemClock) Now() time.Time {
	return time.Now().In(c.Location)
}

// Day normalizes t to the reference midnight of its calendar date. The
// returned value is always UTC midnight so dates compare and hash
// consistently regardless of the zone t carried.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
