package task

import "strings"

// Filter narrows a task list the way the list and board views do.
// Zero-valued fields are ignored.
type Filter struct {
	Search   string
	Status   Status
	Priority Priority
	Category string
}

// IsEmpty reports whether the filter matches every task.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && f.Status == "" && f.Priority == "" && f.Category == ""
}

// Matches returns true if the task passes every set criterion.
func (f Filter) Matches(t *Task) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
