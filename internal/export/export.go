// Package export writes task lists as CSV or JSON and reads JSON exports back.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	tserrors "github.com/abatilo/taskstats/internal/errors"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", tserrors.InvalidFormatError{Value: s}
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename returns the default export file name for the given day.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("tasks-export-%s.%s", now.Format("2006-01-02"), f)
}

// csvHeader lists the exported columns in order.
var csvHeader = []string{ //nolint:gochecknoglobals // fixed column order
	"id", "title", "description", "status", "priority",
	"estimated_minutes", "actual_minutes", "created_at",
}

// Record is the exchange representation of a task.
type Record struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description,omitempty"`
	Status           string  `json:"status"`
	Priority         string  `json:"priority"`
	Category         string  `json:"category,omitempty"`
	EstimatedMinutes *int    `json:"estimated_minutes"`
	ActualMinutes    *int    `json:"actual_minutes"`
	CreatedAt        string  `json:"created_at,omitempty"`
	StartTime        *string `json:"start_time,omitempty"`
	EndTime          *string `json:"end_time,omitempty"`
}

// ToRecord converts a task for export.
func ToRecord(t *task.Task) Record {
	r := Record{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		Category:         t.Category,
		EstimatedMinutes: t.EstimatedMinutes,
		ActualMinutes:    t.ActualMinutes,
		StartTime:        formatTime(t.StartTime),
		EndTime:          formatTime(t.EndTime),
	}
	if t.HasCreatedAt() {
		r.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return r
}

// ToTask converts an imported record. Timestamps that don't parse are left
// empty rather than rejecting the record.
func (r Record) ToTask() *task.Task {
	t := &task.Task{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Status:           task.Status(r.Status),
		Priority:         task.Priority(r.Priority),
		Category:         r.Category,
		EstimatedMinutes: r.EstimatedMinutes,
		ActualMinutes:    r.ActualMinutes,
		StartTime:        parseTime(r.StartTime),
		EndTime:          parseTime(r.EndTime),
	}
	if createdAt, err := storage.ParseTime(r.CreatedAt); err == nil {
		t.CreatedAt = createdAt
	}
	return t
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, f Format, tasks []*task.Task) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, tasks)
	case FormatJSON:
		return WriteJSON(w, tasks)
	default:
		return tserrors.InvalidFormatError{Value: string(f)}
	}
}

// WriteJSON writes tasks as an indented JSON array.
func WriteJSON(w io.Writer, tasks []*task.Task) error {
	records := make([]Record, len(tasks))
	for i, t := range tasks {
		records[i] = ToRecord(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes tasks as CSV with a header row. Absent values are empty cells.
func WriteCSV(w io.Writer, tasks []*task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		r := ToRecord(t)
		row := []string{
			r.ID,
			r.Title,
			r.Description,
			r.Status,
			r.Priority,
			formatMinutes(r.EstimatedMinutes),
			formatMinutes(r.ActualMinutes),
			r.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSON decodes a JSON export.
func ReadJSON(r io.Reader) ([]*task.Task, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make([]*task.Task, len(records))
	for i, rec := range records {
		tasks[i] = rec.ToTask()
	}
	return tasks, nil
}

func formatMinutes(m *int) string {
	if m == nil {
		return ""
	}
	return strconv.Itoa(*m)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := storage.ParseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}
