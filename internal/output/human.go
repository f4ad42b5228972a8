package output

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

const (
	timeLayout = "2006-01-02 15:04"
	barWidth   = 30
	barRune    = "█"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	idealStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	actualStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	hoursStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))

	columnStyles = map[task.Status]lipgloss.Style{
		task.StatusBacklog:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")),
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("#4F9DFF")),
		task.StatusValidation: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5C542")),
		task.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F")),
	}
)

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t *task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", t.ID, t.Title)
	fmt.Fprintf(&sb, "  Status:    %s\n", t.Status)
	fmt.Fprintf(&sb, "  Priority:  %s\n", t.Priority)
	if t.Category != "" {
		fmt.Fprintf(&sb, "  Category:  %s\n", t.Category)
	}
	if t.EstimatedMinutes != nil {
		fmt.Fprintf(&sb, "  Estimate:  %s\n", formatMinutes(*t.EstimatedMinutes))
	}
	if t.ActualMinutes != nil {
		fmt.Fprintf(&sb, "  Actual:    %s\n", formatMinutes(*t.ActualMinutes))
	}
	if t.HasCreatedAt() {
		fmt.Fprintf(&sb, "  Created:   %s\n", t.CreatedAt.Format(timeLayout))
	}
	if t.StartTime != nil {
		fmt.Fprintf(&sb, "  Started:   %s\n", t.StartTime.Format(timeLayout))
	}
	if t.EndTime != nil {
		fmt.Fprintf(&sb, "  Ended:     %s\n", t.EndTime.Format(timeLayout))
	}
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t *task.Task) string {
	category := ""
	if t.Category != "" {
		category = fmt.Sprintf(" (%s)", t.Category)
	}
	return fmt.Sprintf("%s %s [%s] %s%s\n", f.statusIcon(t.Status), f.priorityMark(t.Priority), t.ID, t.Title, category)
}

func (f *HumanFormatter) statusIcon(s task.Status) string {
	switch s {
	case task.StatusBacklog, task.StatusNotStarted:
		return "[ ]"
	case task.StatusInProgress:
		return "[*]"
	case task.StatusValidation:
		return "[~]"
	case task.StatusDone, task.StatusCompleted:
		return "[X]"
	default:
		return "[?]"
	}
}

func (f *HumanFormatter) priorityMark(p task.Priority) string {
	switch p {
	case task.PriorityUrgent:
		return "P0"
	case task.PriorityHigh:
		return "P1"
	case task.PriorityNormal:
		return "P2"
	case task.PriorityLow:
		return "P3"
	default:
		return "P?"
	}
}

// FormatCategory formats a single category for display.
func (f *HumanFormatter) FormatCategory(c *storage.Category) string {
	color := ""
	if c.Color != "" {
		color = " " + lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(barRune) + " " + c.Color
	}
	return fmt.Sprintf("[%s] %s%s\n", c.ID, c.Name, color)
}

// FormatCategoryList formats a list of categories for display.
func (f *HumanFormatter) FormatCategoryList(categories []storage.Category) string {
	if len(categories) == 0 {
		return "No categories found.\n"
	}

	var sb strings.Builder
	for i := range categories {
		sb.WriteString(f.FormatCategory(&categories[i]))
	}
	return sb.String()
}

// FormatBurndown renders one row per week with the ideal and actual remaining
// hours and a bar for the actual value.
func (f *HumanFormatter) FormatBurndown(s stats.BurndownSeries) string {
	if s.Len() == 0 {
		return "No burndown data.\n"
	}

	scale := 0.0
	for i := range s.Labels {
		scale = math.Max(scale, math.Max(s.Ideal[i], s.Actual[i]))
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %9s %9s", "Week", "Ideal", "Actual")))
	sb.WriteString("\n")
	for i, label := range s.Labels {
		fmt.Fprintf(&sb, "%-8s %s %s  %s\n",
			label,
			idealStyle.Render(fmt.Sprintf("%8.1fh", s.Ideal[i])),
			fmt.Sprintf("%8.1fh", s.Actual[i]),
			actualStyle.Render(bar(s.Actual[i], scale)),
		)
	}
	return sb.String()
}

// FormatWeeklyHours renders one bar per week.
func (f *HumanFormatter) FormatWeeklyHours(buckets []stats.HourBucket) string {
	if len(buckets) == 0 {
		return "No logged time.\n"
	}

	scale, width := 0.0, 0
	for _, b := range buckets {
		scale = math.Max(scale, b.Hours)
		width = max(width, len(b.Label))
	}

	var sb strings.Builder
	for _, b := range buckets {
		fmt.Fprintf(&sb, "%-*s %7.2fh  %s\n", width, b.Label, b.Hours, hoursStyle.Render(bar(b.Hours, scale)))
	}
	return sb.String()
}

// FormatDistribution renders the board columns as a stacked list of bars.
func (f *HumanFormatter) FormatDistribution(d stats.Distribution) string {
	if d.Total == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, c := range d.Columns {
		style := columnStyles[c.Status]
		fmt.Fprintf(&sb, "%-11s %4d %5.1f%%  %s\n", c.Name, c.Count, c.Percent, style.Render(bar(c.Percent, 100)))
	}
	fmt.Fprintf(&sb, "%-11s %4d\n", "Total", d.Total)
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err.Error())
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

// bar scales value against scale into at most barWidth cells.
func bar(value, scale float64) string {
	if scale <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(value / scale * barWidth))
	return strings.Repeat(barRune, min(n, barWidth))
}

// formatMinutes renders a duration such as "1h 30m".
func formatMinutes(m int) string {
	d := time.Duration(m) * time.Minute
	h, rem := int(d.Hours()), m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rem)
	case rem == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, rem)
	}
}
