package stats

import (
	"math"
	"slices"
	"time"

	"github.com/abatilo/taskstats/internal/task"
)

// DefaultWeeks is how many recent weeks WeeklyHours keeps.
const DefaultWeeks = 12

// HourBucket is one week of logged time.
type HourBucket struct {
	Label     string  `json:"name"`
	WeekStart string  `json:"week_start"`
	Hours     float64 `json:"hours"`
}

// WeeklyHours rolls logged minutes up into Monday-start weeks and returns the
// most recent DefaultWeeks buckets.
func WeeklyHours(tasks []*task.Task) []HourBucket {
	return WeeklyHoursWindow(tasks, DefaultWeeks)
}

// WeeklyHoursWindow is WeeklyHours with a configurable number of trailing
// weeks. A window below 1 falls back to DefaultWeeks.
//
// Every week between the earliest and latest task with logged time appears,
// including weeks where nothing was logged.
func WeeklyHoursWindow(tasks []*task.Task, weeks int) []HourBucket {
	if weeks < 1 {
		weeks = DefaultWeeks
	}

	type logged struct {
		at      time.Time
		minutes int
	}

	relevant := make([]logged, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || !t.HasCreatedAt() || t.Actual() <= 0 {
			continue
		}
		relevant = append(relevant, logged{at: wallClock(t.CreatedAt), minutes: t.Actual()})
	}
	if len(relevant) == 0 {
		return []HourBucket{}
	}

	slices.SortStableFunc(relevant, func(a, b logged) int {
		return a.at.Compare(b.at)
	})

	first := weekStart(relevant[0].at, time.Monday)
	last := weekStart(relevant[len(relevant)-1].at, time.Monday)

	var buckets []HourBucket
	next := 0
	for start := first; !start.After(last); start = start.AddDate(0, 0, daysPerWeek) {
		end := weekEnd(start)

		totalMinutes := 0
		// relevant is sorted and weeks are contiguous, so each task is consumed once.
		for next < len(relevant) && !relevant[next].at.After(end) {
			if !relevant[next].at.Before(start) {
				totalMinutes += relevant[next].minutes
			}
			next++
		}

		buckets = append(buckets, HourBucket{
			Label:     "Week of " + start.Format(labelLayout),
			WeekStart: start.Format(keyLayout),
			Hours:     roundHours(totalMinutes),
		})
	}

	if len(buckets) > weeks {
		buckets = buckets[len(buckets)-weeks:]
	}
	return buckets
}

// roundHours converts minutes to hours rounded to two decimal places.
func roundHours(minutes int) float64 {
	return math.Round(hours(minutes)*100) / 100
}
