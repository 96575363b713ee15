package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
)

type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

// Init creates the data directory and an empty document if none exists.
func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access schedule file: %w", err)
	}

	return s.Save(models.Schedule{})
}

// Load never fails: a missing, unreadable or malformed file is an empty
// schedule.
func (s *JSONStore) Load() (models.Schedule, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read schedule file, treating as empty", "path", s.path, "error", err)
		}
		return models.Schedule{}, nil
	}
	return Decode(data, s.path), nil
}

// Save overwrites the whole document through a temp file and rename.
func (s *JSONStore) Save(schedule models.Schedule) error {
	data, err := Encode(schedule)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schedule-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) Kind() string {
	return "json"
}
