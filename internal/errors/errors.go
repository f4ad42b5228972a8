//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// NotInitializedError indicates the data directory doesn't exist yet.
type NotInitializedError struct{}

func (e NotInitializedError) Error() string {
	return "taskstats not initialized: run 'taskstats init' first"
}

// AlreadyInitializedError indicates the data directory already exists.
type AlreadyInitializedError struct{}

func (e AlreadyInitializedError) Error() string {
	return "taskstats already initialized"
}

// TaskNotFoundError indicates the task ID doesn't match any file.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// AlreadyExistsError indicates an ID collision on import.
type AlreadyExistsError struct {
	ID string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("task already exists: %s", e.ID)
}

// CategoryNotFoundError indicates no category has the given ID or name.
type CategoryNotFoundError struct {
	Ref string
}

func (e CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category not found: %s", e.Ref)
}

// CategoryExistsError indicates a category with the same name already exists.
type CategoryExistsError struct {
	Name string
}

func (e CategoryExistsError) Error() string {
	return fmt.Sprintf("a category named %q already exists", e.Name)
}

// InvalidStatusError indicates an unknown status value.
type InvalidStatusError struct {
	Value string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status: %s (valid: not-started, backlog, in-progress, validation, done, completed)", e.Value)
}

// InvalidPriorityError indicates an invalid priority value.
type InvalidPriorityError struct {
	Value string
}

func (e InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %s (valid: urgent, high, normal, low)", e.Value)
}

// InvalidFormatError indicates an unsupported export format.
type InvalidFormatError struct {
	Value string
}

func (e InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format: %s (valid: csv, json)", e.Value)
}

// NegativeMinutesError indicates a negative effort value.
type NegativeMinutesError struct {
	Field string
	Value int
}

func (e NegativeMinutesError) Error() string {
	return fmt.Sprintf("%s must be non-negative, got %d", e.Field, e.Value)
}

// MissingTitleError indicates a task was created without a title.
type MissingTitleError struct{}

func (e MissingTitleError) Error() string {
	return "task title is required"
}

// InvalidIDError indicates a task ID that can't be used as a file name.
type InvalidIDError struct {
	ID string
}

func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid task id: %q", e.ID)
}
