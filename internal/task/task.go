package task

import "time"

// Status represents the current state of a task.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusBacklog    Status = "backlog"
	StatusInProgress Status = "in-progress"
	StatusValidation Status = "validation"
	StatusDone       Status = "done"
	StatusCompleted  Status = "completed"
)

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// PriorityOrder returns the sort order for a priority (lower = higher priority).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Task represents a tracked work item.
type Task struct {
	ID               string
	Title            string
	Description      string
	Status           Status
	Priority         Priority
	Category         string
	EstimatedMinutes *int
	ActualMinutes    *int
	// CreatedAt is the zero time when the record carries no usable timestamp.
	CreatedAt time.Time
	StartTime *time.Time
	EndTime   *time.Time
}

// IsDone reports whether the task is finished. Both "done" and "completed" count.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone || t.Status == StatusCompleted
}

// HasCreatedAt reports whether the task can be placed on a timeline.
func (t *Task) HasCreatedAt() bool {
	return !t.CreatedAt.IsZero()
}

// Estimated returns the estimated effort in minutes, or 0 when absent.
func (t *Task) Estimated() int {
	if t.EstimatedMinutes == nil {
		return 0
	}
	return *t.EstimatedMinutes
}

// Actual returns the logged effort in minutes, or 0 when absent.
func (t *Task) Actual() int {
	if t.ActualMinutes == nil {
		return 0
	}
	return *t.ActualMinutes
}

// Minutes returns a pointer to m, for filling optional minute fields.
func Minutes(m int) *int {
	return &m
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusBacklog, StatusInProgress, StatusValidation, StatusDone, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}
