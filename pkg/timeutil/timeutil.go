// Package timeutil provides UTC day-bucket helpers for usage tracking.
// Daily goals, streaks, and same-day checks all operate on calendar days
// in UTC, matching how usage logs are bucketed for aggregation.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DayKeyFormat is the canonical format for a calendar-day key.
const DayKeyFormat = "2006-01-02"

// DayKey returns the canonical UTC day key for a timestamp.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyFormat)
}

// StartOfDay returns midnight UTC of the given timestamp's day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DaysBetween returns the number of whole calendar days between two
// timestamps, ignoring time-of-day. The result is negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// HasConsecutiveDays reports whether the given timestamps cover at least
// n consecutive calendar days. Duplicate days are collapsed first.
func HasConsecutiveDays(times []time.Time, n int) bool {
	if n <= 1 {
		return len(times) > 0
	}

	days := UniqueDays(times)
	if len(days) < n {
		return false
	}

	run := 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}

	return false
}

// UniqueDays returns the distinct calendar days covered by the given
// timestamps, as midnight-UTC times in ascending order.
func UniqueDays(times []time.Time) []time.Time {
	seen := make(map[string]bool, len(times))
	days := make([]time.Time, 0, len(times))

	for _, t := range times {
		key := DayKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, StartOfDay(t))
	}

	// Insertion sort; day sets are tiny.
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j].Before(days[j-1]); j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}

	return days
}

// CountUniqueDays returns the number of distinct UTC calendar days
// covered by the given timestamps.
func CountUniqueDays(times []time.Time) int {
	seen := make(map[string]bool, len(times))
	for _, t := range times {
		seen[DayKey(t)] = true
	}
	return len(seen)
}
