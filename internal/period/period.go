// Package period maps civil dates to period indices and back.
//
// A period index is year*12 + (month-1). The real-valued form adds
// (day-1)/30 so the week view can interpolate scroll position inside a
// month. The divisor is fixed at 30 regardless of month length, so the
// 31st of a month already reports the next integer; only the integer part
// identifies a month.
package period

import (
	"math"
	"time"
)

// daysPerPeriod is the fixed fractional divisor.
const daysPerPeriod = 30.0

// ToIndex returns the real-valued period index of t's civil date.
func ToIndex(t time.Time) float64 {
	return float64(Index(t.Year(), t.Month())) + float64(t.Day()-1)/daysPerPeriod
}

// Index returns the integer period index of (year, month).
func Index(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// FromIndex decomposes an integer period index into (year, month) using
// floored division, so negative indices map to years before year 0
// continuously: FromIndex(-1) is (-1, December).
func FromIndex(i int) (int, time.Month) {
	year := i / 12
	rem := i % 12
	if rem < 0 {
		rem += 12
		year--
	}
	return year, time.Month(rem + 1)
}

// FromRealIndex floors f and decomposes the result.
func FromRealIndex(f float64) (int, time.Month) {
	return FromIndex(int(math.Floor(f)))
}

// DaysIn returns the number of days in the civil month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay returns 00:00:00.000 of t's civil day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's civil day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Range returns the inclusive civil range of the month identified by i:
// day 1 at start of day through the last day at end of day.
func Range(i int, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	year, month := FromIndex(i)
	start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end = EndOfDay(time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, loc))
	return start, end
}

// Neighbors returns the prefetch window around i: previous, current, next.
func Neighbors(i int) [3]int {
	return [3]int{i - 1, i, i + 1}
}
