package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	tserrors "github.com/abatilo/taskstats/internal/errors"
	"github.com/abatilo/taskstats/internal/export"
	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/task"
)

// loadTasks reads tasks from an exported JSON file when input is set, and
// from the project store otherwise.
func loadTasks(input string) ([]*task.Task, error) {
	if input != "" {
		tasks, err := readExportFile(input)
		if err != nil {
			return nil, err
		}
		return validRecords(tasks, logger), nil
	}

	store, err := getStore()
	if err != nil {
		return nil, err
	}
	return store.List(task.Filter{})
}

func readExportFile(path string) ([]*task.Task, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	tasks, err := export.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tasks, nil
}

// validRecords drops records that import would reject, logging each one.
func validRecords(tasks []*task.Task, logger *log.Logger) []*task.Task {
	valid := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if err := validateImported(t); err != nil {
			logger.Warn("skipping invalid record", "id", t.ID, "err", err)
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

// burndownCmd implements 'taskstats burndown'.
func burndownCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "burndown",
		Short: "Show ideal and actual remaining hours per week",
		Run: func(_ *cobra.Command, _ []string) {
			tasks, err := loadTasks(input)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatBurndown(stats.Burndown(tasks)))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read tasks from an exported JSON file")
	return cmd
}

// hoursCmd implements 'taskstats hours'.
func hoursCmd() *cobra.Command {
	var input string
	var weeks int
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Show logged hours per week",
		Run: func(cmd *cobra.Command, _ []string) {
			if !cmd.Flags().Changed("weeks") {
				weeks = cfg.HoursWeeks
			} else if weeks < 1 {
				printError(fmt.Errorf("--weeks must be at least 1, got %d", weeks))
			}

			tasks, err := loadTasks(input)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatWeeklyHours(stats.WeeklyHoursWindow(tasks, weeks)))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read tasks from an exported JSON file")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", stats.DefaultWeeks, "Number of most recent weeks to show")
	return cmd
}

// distributionCmd implements 'taskstats distribution'.
func distributionCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Show task counts per status column",
		Run: func(_ *cobra.Command, _ []string) {
			tasks, err := loadTasks(input)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatDistribution(stats.StatusDistribution(tasks)))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read tasks from an exported JSON file")
	return cmd
}

// exportCmd implements 'taskstats export'.
func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as CSV or JSON",
		Run: func(_ *cobra.Command, _ []string) {
			f, err := export.ParseFormat(format)
			if err != nil {
				printError(err)
			}

			tasks, err := loadTasks("")
			if err != nil {
				printError(err)
			}

			if out == "-" {
				if err = export.Write(os.Stdout, f, tasks); err != nil {
					printError(err)
				}
				return
			}

			if out == "" {
				out = export.Filename(f, time.Now())
			}
			if err = writeExportFile(out, f, tasks); err != nil {
				printError(err)
			}
			logger.Debug("export written", "path", out, "format", f, "tasks", len(tasks))
			printOutput(formatter.FormatMessage(fmt.Sprintf("Exported %d tasks to %s", len(tasks), out)))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "Export format (csv, json)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (\"-\" for stdout, default tasks-export-<date>.<format>)")
	return cmd
}

func writeExportFile(path string, f export.Format, tasks []*task.Task) error {
	file, err := os.Create(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err = export.Write(file, f, tasks); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// importCmd implements 'taskstats import'.
func importCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import tasks from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			tasks, err := readExportFile(args[0])
			if err != nil {
				printError(err)
			}
			for _, t := range tasks {
				if err = validateImported(t); err != nil {
					printError(err)
				}
			}

			n, err := store.Import(tasks, overwrite)
			if err != nil {
				if n > 0 {
					err = fmt.Errorf("imported %d of %d tasks before failing: %w", n, len(tasks), err)
				}
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Imported %d tasks", n)))
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace tasks whose IDs already exist")
	return cmd
}

// validateImported fills defaults and rejects values the store would not accept.
func validateImported(t *task.Task) error {
	if t.Status == "" {
		t.Status = task.StatusBacklog
	}
	if t.Priority == "" {
		t.Priority = task.PriorityNormal
	}
	if !task.IsValidStatus(t.Status) {
		return tserrors.InvalidStatusError{Value: string(t.Status)}
	}
	if !task.IsValidPriority(t.Priority) {
		return tserrors.InvalidPriorityError{Value: string(t.Priority)}
	}
	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		return tserrors.NegativeMinutesError{Field: "estimated_minutes", Value: *t.EstimatedMinutes}
	}
	if t.ActualMinutes != nil && *t.ActualMinutes < 0 {
		return tserrors.NegativeMinutesError{Field: "actual_minutes", Value: *t.ActualMinutes}
	}
	return nil
}
