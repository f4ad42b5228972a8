package storage

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskstats/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of a task.
type taskFrontmatter struct {
	ID               string        `yaml:"id"`
	Title            string        `yaml:"title"`
	Status           task.Status   `yaml:"status"`
	Priority         task.Priority `yaml:"priority"`
	Category         string        `yaml:"category,omitempty"`
	EstimatedMinutes *int          `yaml:"estimated_minutes,omitempty"`
	ActualMinutes    *int          `yaml:"actual_minutes,omitempty"`
	CreatedAt        string        `yaml:"created_at,omitempty"`
	StartTime        *string       `yaml:"start_time,omitempty"`
	EndTime          *string       `yaml:"end_time,omitempty"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Task.
// Timestamps that don't parse are dropped rather than failing the file, so a
// bad created_at leaves the task listed but off every timeline.
func ParseMarkdown(content []byte) (*task.Task, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, &parseError{"missing YAML frontmatter"}
	}

	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return nil, &parseError{"unclosed YAML frontmatter"}
	}

	yamlContent := strings.Join(lines[1:frontmatterEnd], "\n")
	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}
	if fm.ID == "" {
		return nil, &parseError{"missing id"}
	}

	var description string
	if frontmatterEnd+1 < len(lines) {
		description = strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
	}

	t := &task.Task{
		ID:               fm.ID,
		Title:            fm.Title,
		Description:      description,
		Status:           fm.Status,
		Priority:         fm.Priority,
		Category:         fm.Category,
		EstimatedMinutes: fm.EstimatedMinutes,
		ActualMinutes:    fm.ActualMinutes,
		StartTime:        parseOptionalTime(fm.StartTime),
		EndTime:          parseOptionalTime(fm.EndTime),
	}
	if createdAt, err := ParseTime(fm.CreatedAt); err == nil {
		t.CreatedAt = createdAt
	}
	return t, nil
}

// SerializeMarkdown converts a Task to markdown with YAML frontmatter.
func SerializeMarkdown(t *task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:               t.ID,
		Title:            t.Title,
		Status:           t.Status,
		Priority:         t.Priority,
		Category:         t.Category,
		EstimatedMinutes: t.EstimatedMinutes,
		ActualMinutes:    t.ActualMinutes,
		StartTime:        formatOptionalTime(t.StartTime),
		EndTime:          formatOptionalTime(t.EndTime),
	}
	if t.HasCreatedAt() {
		fm.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

// ParseTime tries to parse a time string in the formats tasks arrive in.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &parseError{"empty time"}
	}
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized time format: " + s}
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
