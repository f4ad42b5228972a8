//nolint:testpackage // Tests require internal access for thorough testing
package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

func sampleTask() *task.Task {
	end := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:               "abc",
		Title:            "Write report",
		Description:      "Quarterly numbers",
		Status:           task.StatusDone,
		Priority:         task.PriorityHigh,
		Category:         "work",
		EstimatedMinutes: task.Minutes(90),
		ActualMinutes:    task.Minutes(120),
		CreatedAt:        time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		EndTime:          &end,
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(true).(*JSONFormatter); !ok {
		t.Error("New(true) should return a JSONFormatter")
	}
	if _, ok := New(false).(*HumanFormatter); !ok {
		t.Error("New(false) should return a HumanFormatter")
	}
}

func TestHumanFormatTask(t *testing.T) {
	out := NewHumanFormatter().FormatTask(sampleTask())

	for _, want := range []string{
		"[abc] Write report",
		"Status:    done",
		"Priority:  high",
		"Category:  work",
		"Estimate:  1h 30m",
		"Actual:    2h",
		"Created:   2024-01-08 09:00",
		"Ended:     2024-01-10 17:00",
		"Quarterly numbers",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Started:") {
		t.Errorf("unset start time should be omitted:\n%s", out)
	}
}

func TestHumanFormatTaskList(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatTaskList(nil); got != "No tasks found.\n" {
		t.Errorf("empty list = %q", got)
	}

	tasks := []*task.Task{
		sampleTask(),
		{ID: "def", Title: "Plan", Status: task.StatusNotStarted, Priority: task.PriorityLow},
	}
	out := f.FormatTaskList(tasks)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "[X] P1 [abc] Write report (work)" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "[ ] P3 [def] Plan" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{90, "1h 30m"},
		{605, "10h 5m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.minutes); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		name         string
		value, scale float64
		want         int
	}{
		{"full", 10, 10, barWidth},
		{"half", 5, 10, barWidth / 2},
		{"zero value", 0, 10, 0},
		{"zero scale", 5, 0, 0},
		{"clamped", 20, 10, barWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Count(bar(tt.value, tt.scale), barRune)
			if got != tt.want {
				t.Errorf("bar(%v, %v) has %d cells, want %d", tt.value, tt.scale, got, tt.want)
			}
		})
	}
}

func TestHumanFormatBurndown(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatBurndown(stats.BurndownSeries{}); got != "No burndown data.\n" {
		t.Errorf("empty series = %q", got)
	}

	out := f.FormatBurndown(stats.BurndownSeries{
		Labels: []string{"Jan 7", "Jan 14"},
		Ideal:  []float64{4, 0},
		Actual: []float64{3, 2},
	})
	if !strings.Contains(out, "Jan 7") || !strings.Contains(out, "Jan 14") {
		t.Errorf("labels missing:\n%s", out)
	}
	if !strings.Contains(out, "4.0h") || !strings.Contains(out, "2.0h") {
		t.Errorf("values missing:\n%s", out)
	}
}

func TestHumanFormatWeeklyHours(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatWeeklyHours(nil); got != "No logged time.\n" {
		t.Errorf("empty buckets = %q", got)
	}

	out := f.FormatWeeklyHours([]stats.HourBucket{
		{Label: "Week of Jan 1", Hours: 2},
		{Label: "Week of Jan 8", Hours: 0.33},
	})
	if !strings.Contains(out, "Week of Jan 1") || !strings.Contains(out, "0.33h") {
		t.Errorf("unexpected output:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if strings.Count(lines[0], barRune) != barWidth {
		t.Errorf("largest week should fill the bar:\n%s", out)
	}
}

func TestHumanFormatDistribution(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatDistribution(stats.StatusDistribution(nil)); got != "No tasks found.\n" {
		t.Errorf("empty distribution = %q", got)
	}

	d := stats.StatusDistribution([]*task.Task{
		{Status: task.StatusBacklog},
		{Status: task.StatusDone},
	})
	out := f.FormatDistribution(d)
	for _, want := range []string{"Backlog", "In Progress", "Validation", "Done", "50.0%", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHumanFormatCategoryList(t *testing.T) {
	f := NewHumanFormatter()

	if got := f.FormatCategoryList(nil); got != "No categories found.\n" {
		t.Errorf("empty list = %q", got)
	}

	out := f.FormatCategoryList([]storage.Category{
		{ID: "c1", Name: "work", Color: "#ff0000"},
		{ID: "c2", Name: "home"},
	})
	if !strings.Contains(out, "[c1] work") || !strings.Contains(out, "#ff0000") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "[c2] home\n") {
		t.Errorf("category without color should end after its name:\n%s", out)
	}
}

func TestJSONFormatTask(t *testing.T) {
	out := NewJSONFormatter().FormatTask(sampleTask())

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got["id"] != "abc" || got["status"] != "done" || got["category"] != "work" {
		t.Errorf("unexpected fields: %v", got)
	}
	if got["estimated_minutes"] != float64(90) || got["actual_minutes"] != float64(120) {
		t.Errorf("unexpected minutes: %v", got)
	}
}

func TestJSONFormatTaskListEmpty(t *testing.T) {
	out := NewJSONFormatter().FormatTaskList(nil)
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty list should encode as [], got %q", out)
	}
}

func TestJSONFormatWeeklyHoursNil(t *testing.T) {
	out := NewJSONFormatter().FormatWeeklyHours(nil)
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("nil buckets should encode as [], got %q", out)
	}
}

func TestJSONFormatBurndown(t *testing.T) {
	out := NewJSONFormatter().FormatBurndown(stats.BurndownSeries{
		Labels: []string{"Jan 7"},
		Ideal:  []float64{4},
		Actual: []float64{3},
	})

	var got stats.BurndownSeries
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Len() != 1 || got.Ideal[0] != 4 || got.Actual[0] != 3 {
		t.Errorf("unexpected series: %+v", got)
	}
}

func TestJSONFormatErrorAndMessage(t *testing.T) {
	f := NewJSONFormatter()

	var e errorJSON
	if err := json.Unmarshal([]byte(f.FormatError(errors.New("boom"))), &e); err != nil || e.Error != "boom" {
		t.Errorf("FormatError produced %+v (%v)", e, err)
	}

	var m messageJSON
	if err := json.Unmarshal([]byte(f.FormatMessage("hello")), &m); err != nil || m.Message != "hello" {
		t.Errorf("FormatMessage produced %+v (%v)", m, err)
	}
}
