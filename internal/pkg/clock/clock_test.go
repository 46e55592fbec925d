package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	d := Day(time.Date(2024, 6, 3, 23, 45, 0, 0, loc))

	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 3, 23, 59, 0, 0, time.UTC)
	c := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, c))
}

func TestSystemClockDefaultsToUTC(t *testing.T) {
	c := NewSystemClock(nil)
	assert.Equal(t, time.UTC, c.Location)
}
