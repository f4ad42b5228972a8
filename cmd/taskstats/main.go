package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abatilo/taskstats/internal/config"
	tserrors "github.com/abatilo/taskstats/internal/errors"
	"github.com/abatilo/taskstats/internal/logging"
	"github.com/abatilo/taskstats/internal/output"
	"github.com/abatilo/taskstats/internal/storage"
	"github.com/abatilo/taskstats/internal/task"
)

//nolint:gochecknoglobals // CLI flags and formatter are package-level by design
var (
	jsonOutput bool
	configPath string
	dataDir    string
	logLevel   string
	logFormat  string

	cfg       *config.Config
	logger    *log.Logger
	formatter output.Formatter
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskstats",
		Short: "Task tracking with burndown and logged-hour analytics",
		Long:  "taskstats - A file-based task tracker with weekly burndown, hours and status charts.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			formatter = output.New(jsonOutput)

			var err error
			cfg, err = config.Load(configPath, config.Overrides{
				DataDir:   dataDir,
				LogLevel:  logLevel,
				LogFormat: logFormat,
			})
			if err != nil {
				printError(err)
			}
			logger = logging.New(os.Stderr, loggingOptions(cfg))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory holding task data")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(
		initCmd(),
		addCmd(),
		listCmd(),
		showCmd(),
		updateCmd(),
		rmCmd(),
		categoryCmd(),
		burndownCmd(),
		hoursCmd(),
		distributionCmd(),
		exportCmd(),
		importCmd(),
		serveCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loggingOptions(c *config.Config) logging.Options {
	return logging.Options{
		Level:           c.Level(),
		JSON:            c.LogFormat == config.LogFormatJSON,
		ReportTimestamp: c.LogTimestamps,
	}
}

func getStore() (*storage.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return storage.NewStore(cfg.DataDir, cwd).WithLogger(logger), nil
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

// taskFlags holds the editable task fields shared by add and update.
type taskFlags struct {
	title       string
	description string
	status      string
	priority    string
	category    string
	estimate    int
	actual      int
	start       string
	end         string
}

func (f *taskFlags) register(cmd *cobra.Command, defaultStatus, defaultPriority string) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&f.status, "status", "s", defaultStatus,
		"Status (not-started, backlog, in-progress, validation, done, completed)")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", defaultPriority, "Priority (urgent, high, normal, low)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category name or ID")
	cmd.Flags().IntVar(&f.estimate, "estimate", 0, "Estimated minutes")
	cmd.Flags().IntVar(&f.actual, "actual", 0, "Actual minutes logged")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (RFC3339, YYYY-MM-DD, or \"now\")")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (RFC3339, YYYY-MM-DD, or \"now\")")
}

// apply copies every flag the user set onto t.
func (f *taskFlags) apply(cmd *cobra.Command, store *storage.Store, t *task.Task) error {
	changed := cmd.Flags().Changed

	if changed("title") {
		if strings.TrimSpace(f.title) == "" {
			return tserrors.MissingTitleError{}
		}
		t.Title = f.title
	}
	if changed("description") {
		t.Description = f.description
	}
	if changed("status") {
		s := task.Status(f.status)
		if !task.IsValidStatus(s) {
			return tserrors.InvalidStatusError{Value: f.status}
		}
		t.Status = s
	}
	if changed("priority") {
		p := task.Priority(f.priority)
		if !task.IsValidPriority(p) {
			return tserrors.InvalidPriorityError{Value: f.priority}
		}
		t.Priority = p
	}
	if changed("category") {
		t.Category = ""
		if f.category != "" {
			c, err := store.FindCategory(f.category)
			if err != nil {
				return err
			}
			t.Category = c.Name
		}
	}
	if changed("estimate") {
		if f.estimate < 0 {
			return tserrors.NegativeMinutesError{Field: "estimated_minutes", Value: f.estimate}
		}
		t.EstimatedMinutes = task.Minutes(f.estimate)
	}
	if changed("actual") {
		if f.actual < 0 {
			return tserrors.NegativeMinutesError{Field: "actual_minutes", Value: f.actual}
		}
		t.ActualMinutes = task.Minutes(f.actual)
	}
	if changed("start") {
		ts, err := parseTimeFlag(f.start)
		if err != nil {
			return err
		}
		t.StartTime = ts
	}
	if changed("end") {
		ts, err := parseTimeFlag(f.end)
		if err != nil {
			return err
		}
		t.EndTime = ts
	}
	return nil
}

// parseTimeFlag parses a time flag. An empty value clears the field.
func parseTimeFlag(v string) (*time.Time, error) {
	switch v {
	case "":
		return nil, nil //nolint:nilnil // nil clears the field
	case "now":
		now := time.Now().UTC()
		return &now, nil
	}
	ts, err := storage.ParseTime(v)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", v, err)
	}
	return &ts, nil
}

// initCmd implements 'taskstats init'.
func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the task directory for this project",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			if err = store.Init(force); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Initialized taskstats at %s", store.BasePath())))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}

// addCmd implements 'taskstats add'.
func addCmd() *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			draft := task.Task{Title: args[0]}
			if err = flags.apply(cmd, store, &draft); err != nil {
				printError(err)
			}

			t, err := store.CreateTask(draft)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	flags.register(cmd, string(task.StatusBacklog), string(task.PriorityNormal))
	return cmd
}

// listCmd implements 'taskstats list'.
func listCmd() *cobra.Command {
	var search, status, priority, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Run: func(_ *cobra.Command, _ []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			filter := task.Filter{
				Search:   search,
				Status:   task.Status(status),
				Priority: task.Priority(priority),
				Category: category,
			}
			if status != "" && !task.IsValidStatus(filter.Status) {
				printError(tserrors.InvalidStatusError{Value: status})
			}
			if priority != "" && !task.IsValidPriority(filter.Priority) {
				printError(tserrors.InvalidPriorityError{Value: priority})
			}

			tasks, err := store.List(filter)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTaskList(tasks))
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Match text in title or description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Show only tasks with this status")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Show only tasks with this priority")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Show only tasks in this category")
	return cmd
}

// showCmd implements 'taskstats show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// updateCmd implements 'taskstats update'.
func updateCmd() *cobra.Command {
	var flags taskFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}

			t, err := store.Load(args[0])
			if err != nil {
				printError(err)
			}
			if err = flags.apply(cmd, store, t); err != nil {
				printError(err)
			}
			if err = store.Save(t); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "Task title")
	flags.register(cmd, "", "")
	return cmd
}

// rmCmd implements 'taskstats rm'.
func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			store, err := getStore()
			if err != nil {
				printError(err)
			}
			if err = store.Delete(args[0]); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %s", args[0])))
		},
	}
}
