package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	tserrors "github.com/abatilo/taskstats/internal/errors"
	"github.com/abatilo/taskstats/internal/task"
)

const fileExt = ".md"

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Store handles task and category file operations.
type Store struct {
	basePath string
	logger   *log.Logger
	now      func() time.Time
}

// NewStore creates a Store under dataDir, scoped to the git project containing cwd.
func NewStore(dataDir, cwd string) *Store {
	return NewStoreWithPath(filepath.Join(dataDir, ScopeDir(cwd)))
}

// NewStoreWithPath creates a Store with a custom base path.
func NewStoreWithPath(path string) *Store {
	return &Store{
		basePath: path,
		logger:   log.New(io.Discard),
		now:      time.Now,
	}
}

// WithLogger sets the logger used to report skipped files.
func (s *Store) WithLogger(l *log.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the store directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the store directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return tserrors.AlreadyInitializedError{}
	}
	//nolint:gosec // G301: 0755 is appropriate for user-accessible task directory
	return os.MkdirAll(s.basePath, 0o755)
}

// taskPath returns the full path for a task file.
func (s *Store) taskPath(id string) string {
	return filepath.Join(s.basePath, id+fileExt)
}

// Exists checks if a task with the given ID exists.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.taskPath(id))
	return err == nil
}

// Save writes a task to disk.
func (s *Store) Save(t *task.Task) error {
	if !s.IsInitialized() {
		return tserrors.NotInitializedError{}
	}
	if !validID.MatchString(t.ID) {
		return tserrors.InvalidIDError{ID: t.ID}
	}
	content, err := SerializeMarkdown(t)
	if err != nil {
		return fmt.Errorf("serialize task %s: %w", t.ID, err)
	}
	//nolint:gosec // G306: 0644 is appropriate for user-readable task files
	return os.WriteFile(s.taskPath(t.ID), content, 0o644)
}

// Load reads a task from disk.
func (s *Store) Load(id string) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, tserrors.NotInitializedError{}
	}
	if !validID.MatchString(id) {
		return nil, tserrors.TaskNotFoundError{ID: id}
	}
	content, err := os.ReadFile(s.taskPath(id))
	if os.IsNotExist(err) {
		return nil, tserrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(content)
}

// Delete removes a task file.
func (s *Store) Delete(id string) error {
	if !s.IsInitialized() {
		return tserrors.NotInitializedError{}
	}
	if !validID.MatchString(id) {
		return tserrors.TaskNotFoundError{ID: id}
	}
	err := os.Remove(s.taskPath(id))
	if os.IsNotExist(err) {
		return tserrors.TaskNotFoundError{ID: id}
	}
	return err
}

// List returns all tasks matching the filter, sorted by priority (urgent
// first) then creation time (oldest first).
func (s *Store) List(filter task.Filter) ([]*task.Task, error) {
	ids, err := s.AllIDs()
	if err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(ids))
	for id := range ids {
		t, loadErr := s.Load(id)
		if loadErr != nil {
			s.logger.Warn("skipping unreadable task file", "id", id, "err", loadErr)
			continue
		}
		if filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		pi := task.PriorityOrder(tasks[i].Priority)
		pj := task.PriorityOrder(tasks[j].Priority)
		if pi != pj {
			return pi < pj
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

// AllIDs returns all task IDs (for ID generation collision checking).
func (s *Store) AllIDs() (map[string]bool, error) {
	if !s.IsInitialized() {
		return nil, tserrors.NotInitializedError{}
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		ids[strings.TrimSuffix(entry.Name(), fileExt)] = true
	}
	return ids, nil
}

// CreateTask assigns an ID and creation time to draft and saves it.
// Status defaults to backlog and priority to normal.
func (s *Store) CreateTask(draft task.Task) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, tserrors.NotInitializedError{}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, tserrors.MissingTitleError{}
	}

	existingIDs, err := s.AllIDs()
	if err != nil {
		return nil, err
	}

	t := draft
	if !t.HasCreatedAt() {
		t.CreatedAt = s.now()
	}
	if t.Status == "" {
		t.Status = task.StatusBacklog
	}
	if t.Priority == "" {
		t.Priority = task.PriorityNormal
	}

	t.ID, err = task.GenerateID(t.Title, t.CreatedAt, func(id string) bool {
		return existingIDs[id]
	})
	if err != nil {
		return nil, err
	}

	if err = s.Save(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Import saves externally produced tasks. Tasks without an ID get one;
// tasks whose ID already exists are rejected unless overwrite is set, and an
// ID may appear only once per batch. The whole batch is checked before any
// file is written. Returns the number of tasks written.
func (s *Store) Import(tasks []*task.Task, overwrite bool) (int, error) {
	existingIDs, err := s.AllIDs()
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(tasks))
	batch := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			continue
		}
		if !validID.MatchString(t.ID) {
			return 0, tserrors.InvalidIDError{ID: t.ID}
		}
		if batch[t.ID] || (existingIDs[t.ID] && !overwrite) {
			return 0, tserrors.AlreadyExistsError{ID: t.ID}
		}
		batch[t.ID] = true
		ids[i] = t.ID
	}

	for i, t := range tasks {
		if ids[i] != "" {
			continue
		}
		ids[i], err = task.GenerateID(t.Title, t.CreatedAt, func(id string) bool {
			return existingIDs[id] || batch[id]
		})
		if err != nil {
			return 0, err
		}
		batch[ids[i]] = true
	}

	written := 0
	for i, t := range tasks {
		t.ID = ids[i]
		if err = s.Save(t); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
