package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDayKey_NormalizesToUTC(t *testing.T) {
	almaty := time.FixedZone("UTC+5", 5*60*60)
	// 03:00 on June 2nd in UTC+5 is still June 1st in UTC.
	local := time.Date(2025, 6, 2, 3, 0, 0, 0, almaty)

	assert.Equal(t, "2025-06-01", DayKey(local))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(evening, nextDay))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2025, 6, 1), date(2025, 6, 1)))
	assert.Equal(t, 1, DaysBetween(date(2025, 6, 1), date(2025, 6, 2)))
	assert.Equal(t, -3, DaysBetween(date(2025, 6, 4), date(2025, 6, 1)))
	// Time-of-day must not affect the result.
	late := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	early := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(late, early))
}

func TestHasConsecutiveDays(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Time
		n     int
		want  bool
	}{
		{"empty", nil, 2, false},
		{"single day", []time.Time{date(2025, 6, 1)}, 2, false},
		{"two in a row", []time.Time{date(2025, 6, 1), date(2025, 6, 2)}, 2, true},
		{"gap breaks run", []time.Time{date(2025, 6, 1), date(2025, 6, 3)}, 2, false},
		{"run after gap", []time.Time{date(2025, 6, 1), date(2025, 6, 5), date(2025, 6, 6)}, 2, true},
		{"duplicates collapse", []time.Time{date(2025, 6, 1), date(2025, 6, 1)}, 2, false},
		{"unsorted input", []time.Time{date(2025, 6, 2), date(2025, 6, 1)}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConsecutiveDays(tt.times, tt.n))
		})
	}
}

func TestCountUniqueDays(t *testing.T) {
	times := []time.Time{
		time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, 2, CountUniqueDays(times))
	assert.Equal(t, 0, CountUniqueDays(nil))
}
