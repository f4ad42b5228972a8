// Package stats turns task lists into chart-ready series: a weekly burndown,
// a weekly logged-hours rollup and a status distribution.
//
// Every function here is pure. Bucket maps are built and discarded within a
// single call, so callers may invoke them concurrently on disjoint or shared
// read-only inputs.
package stats

import "time"

const (
	keyLayout   = "2006-01-02"
	labelLayout = "Jan 2"
	daysPerWeek = 7
)

// wallClock maps t onto UTC with the same calendar fields t shows in its own
// location. Week arithmetic on the result is free of DST shifts.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// weekStart returns midnight of the first day of the week containing t,
// where weeks begin on first.
func weekStart(t time.Time, first time.Weekday) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(first) + daysPerWeek) % daysPerWeek
	return day.AddDate(0, 0, -offset)
}

// weekEnd returns the last instant of the week beginning at start.
func weekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, daysPerWeek).Add(-time.Nanosecond)
}

func hours(minutes int) float64 {
	return float64(minutes) / 60
}
