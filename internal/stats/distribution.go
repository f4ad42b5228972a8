package stats

import "github.com/abatilo/taskstats/internal/task"

// StatusCount is one board column of the status distribution.
type StatusCount struct {
	Name    string      `json:"name"`
	Status  task.Status `json:"status"`
	Count   int         `json:"count"`
	Percent float64     `json:"percent"`
}

// Distribution is the task count per board column.
type Distribution struct {
	Total   int           `json:"total"`
	Columns []StatusCount `json:"columns"`
}

// column maps a status to its board column. Aliases fold into the column
// that shows them on the board.
func column(s task.Status) (int, bool) {
	switch s {
	case task.StatusBacklog, task.StatusNotStarted:
		return 0, true
	case task.StatusInProgress:
		return 1, true
	case task.StatusValidation:
		return 2, true
	case task.StatusDone, task.StatusCompleted:
		return 3, true
	default:
		return 0, false
	}
}

// StatusDistribution counts tasks per column. Unknown statuses are ignored.
func StatusDistribution(tasks []*task.Task) Distribution {
	columns := []StatusCount{
		{Name: "Backlog", Status: task.StatusBacklog},
		{Name: "In Progress", Status: task.StatusInProgress},
		{Name: "Validation", Status: task.StatusValidation},
		{Name: "Done", Status: task.StatusDone},
	}

	total := 0
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if i, ok := column(t.Status); ok {
			columns[i].Count++
			total++
		}
	}

	if total > 0 {
		for i := range columns {
			columns[i].Percent = float64(columns[i].Count) / float64(total) * 100
		}
	}
	return Distribution{Total: total, Columns: columns}
}
