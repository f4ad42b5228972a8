package output

import (
	"encoding/json"
	"time"

	"github.com/abatilo/taskstats/internal/export"
	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatTask formats a single task as JSON, using the export record shape.
func (f *JSONFormatter) FormatTask(t *task.Task) string {
	return marshalJSON(export.ToRecord(t))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []*task.Task) string {
	records := make([]export.Record, len(tasks))
	for i, t := range tasks {
		records[i] = export.ToRecord(t)
	}
	return marshalJSON(records)
}

// categoryJSON is the JSON representation of a category.
type categoryJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toCategoryJSON(c *storage.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// FormatCategory formats a single category as JSON.
func (f *JSONFormatter) FormatCategory(c *storage.Category) string {
	return marshalJSON(toCategoryJSON(c))
}

// FormatCategoryList formats a list of categories as JSON.
func (f *JSONFormatter) FormatCategoryList(categories []storage.Category) string {
	out := make([]categoryJSON, len(categories))
	for i := range categories {
		out[i] = toCategoryJSON(&categories[i])
	}
	return marshalJSON(out)
}

// FormatBurndown formats the burndown series as JSON.
func (f *JSONFormatter) FormatBurndown(s stats.BurndownSeries) string {
	return marshalJSON(s)
}

// FormatWeeklyHours formats the weekly hour buckets as JSON.
func (f *JSONFormatter) FormatWeeklyHours(buckets []stats.HourBucket) string {
	if buckets == nil {
		buckets = []stats.HourBucket{}
	}
	return marshalJSON(buckets)
}

// FormatDistribution formats the status distribution as JSON.
func (f *JSONFormatter) FormatDistribution(d stats.Distribution) string {
	return marshalJSON(d)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
