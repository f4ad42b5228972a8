package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	tserrors "github.com/abatilo/taskstats/internal/errors"
)

const categoriesFile = "categories.yaml"

// Category groups tasks under a named, colored label.
type Category struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Color     string    `yaml:"color,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

func (s *Store) categoriesPath() string {
	return filepath.Join(s.basePath, categoriesFile)
}

func (s *Store) readCategories() ([]Category, error) {
	if !s.IsInitialized() {
		return nil, tserrors.NotInitializedError{}
	}
	data, err := os.ReadFile(s.categoriesPath())
	if os.IsNotExist(err) {
		return []Category{}, nil
	}
	if err != nil {
		return nil, err
	}

	var categories []Category
	if err = yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse %s: %w", categoriesFile, err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

func (s *Store) writeCategories(categories []Category) error {
	data, err := yaml.Marshal(categories)
	if err != nil {
		return err
	}
	//nolint:gosec // G306: 0644 is appropriate for user-readable category files
	return os.WriteFile(s.categoriesPath(), data, 0o644)
}

// ListCategories returns all categories sorted by name.
func (s *Store) ListCategories() ([]Category, error) {
	categories, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

// CreateCategory adds a category. Names are unique regardless of case.
func (s *Store) CreateCategory(name, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	categories, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return nil, tserrors.CategoryExistsError{Name: name}
		}
	}

	c := Category{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now(),
	}
	if err = s.writeCategories(append(categories, c)); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCategory looks a category up by ID or, failing that, by name.
func (s *Store) FindCategory(ref string) (*Category, error) {
	categories, err := s.readCategories()
	if err != nil {
		return nil, err
	}
	if i := findCategory(categories, ref); i >= 0 {
		return &categories[i], nil
	}
	return nil, tserrors.CategoryNotFoundError{Ref: ref}
}

// DeleteCategory removes a category by ID or name. Tasks keep their category
// label.
func (s *Store) DeleteCategory(ref string) error {
	categories, err := s.readCategories()
	if err != nil {
		return err
	}
	i := findCategory(categories, ref)
	if i < 0 {
		return tserrors.CategoryNotFoundError{Ref: ref}
	}
	return s.writeCategories(append(categories[:i], categories[i+1:]...))
}

func findCategory(categories []Category, ref string) int {
	for i, c := range categories {
		if c.ID == ref {
			return i
		}
	}
	for i, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return i
		}
	}
	return -1
}
