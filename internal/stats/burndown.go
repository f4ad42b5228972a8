package stats

import (
	"sort"
	"time"

	"github.com/abatilo/taskstats/internal/task"
)

// BurndownSeries holds three aligned series, one entry per week.
type BurndownSeries struct {
	Labels []string  `json:"labels"`
	Ideal  []float64 `json:"ideal"`
	Actual []float64 `json:"actual"`
}

// Len returns the number of weeks in the series.
func (s BurndownSeries) Len() int {
	return len(s.Labels)
}

// weekBucket accumulates effort for one Sunday-start week.
type weekBucket struct {
	start          time.Time
	totalHours     float64
	completedHours float64
}

// burndownBuckets groups tasks by the Sunday starting their creation week and
// returns the buckets in ascending order.
func burndownBuckets(tasks []*task.Task) []*weekBucket {
	byWeek := make(map[string]*weekBucket)
	for _, t := range tasks {
		if t == nil || !t.HasCreatedAt() {
			continue
		}

		start := weekStart(t.CreatedAt, time.Sunday)
		key := start.Format(keyLayout)
		b, ok := byWeek[key]
		if !ok {
			b = &weekBucket{start: start}
			byWeek[key] = b
		}

		estimated := hours(t.Estimated())
		b.totalHours += estimated
		if t.IsDone() {
			// A finished task with no logged time is assumed to have used its estimate.
			if actual := hours(t.Actual()); actual > 0 {
				b.completedHours += actual
			} else {
				b.completedHours += estimated
			}
		}
	}

	keys := make([]string, 0, len(byWeek))
	for k := range byWeek {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]*weekBucket, len(keys))
	for i, k := range keys {
		buckets[i] = byWeek[k]
	}
	return buckets
}

// Burndown computes ideal and actual remaining work per creation week, in hours.
//
// Remaining work accumulates each week's estimated hours. The ideal value
// re-derives its per-week decrement from the running total at every step
// (remaining - remaining/(weeks-i)*i) rather than from the overall scope.
// That curve is kept as-is until product decides otherwise.
func Burndown(tasks []*task.Task) BurndownSeries {
	buckets := burndownBuckets(tasks)

	series := BurndownSeries{
		Labels: make([]string, 0, len(buckets)),
		Ideal:  make([]float64, 0, len(buckets)),
		Actual: make([]float64, 0, len(buckets)),
	}

	totalWeeks := len(buckets)
	remainingWork := 0.0
	for i, b := range buckets {
		remainingWork += b.totalHours
		idealPerWeek := remainingWork / float64(totalWeeks-i)

		series.Labels = append(series.Labels, b.start.Format(labelLayout))
		series.Ideal = append(series.Ideal, remainingWork-idealPerWeek*float64(i))
		series.Actual = append(series.Actual, remainingWork-b.completedHours)
	}
	return series
}
