package output

import (
	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t *task.Task) string
	FormatTaskList(tasks []*task.Task) string
	FormatCategory(c *storage.Category) string
	FormatCategoryList(categories []storage.Category) string
	FormatBurndown(s stats.BurndownSeries) string
	FormatWeeklyHours(buckets []stats.HourBucket) string
	FormatDistribution(d stats.Distribution) string
	FormatError(err error) string
	FormatMessage(msg string) string
}

// New returns the JSON formatter when jsonOutput is set, the human one otherwise.
func New(jsonOutput bool) Formatter {
	if jsonOutput {
		return NewJSONFormatter()
	}
	return NewHumanFormatter()
}
