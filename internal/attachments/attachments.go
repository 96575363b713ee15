package attachments

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/julianstephens/confsched/internal/constants"
)

// ErrInvalidName is returned for file names that reduce to nothing usable.
var ErrInvalidName = errors.New("invalid file name")

// Manager stores event outlines under one directory per event identifier.
type Manager struct {
	dir string
}

// NewManager creates a manager rooted at dir. The directory is created lazily.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the root directory that holds every event directory.
func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) eventDir(eventID string) string {
	return filepath.Join(m.dir, eventID)
}

// PublicPath is the URL path an outline is served from.
func PublicPath(eventID, filename string) string {
	return path.Join(constants.OutlinesURLPrefix, eventID, filename)
}

// cleanName keeps only the last element of a client supplied file name.
func cleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return name, nil
}

// Save writes content to <dir>/<eventID>/<filename>, replacing any file of
// the same name, and returns the public path for it.
func (m *Manager) Save(eventID, filename string, content io.Reader) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}

	dir := m.eventDir(eventID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create outline directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create outline file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write outline file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write outline file: %w", err)
	}

	return PublicPath(eventID, name), nil
}

// Exists reports whether an attachment directory exists for eventID.
func (m *Manager) Exists(eventID string) bool {
	if eventID == "" {
		return false
	}
	info, err := os.Stat(m.eventDir(eventID))
	return err == nil && info.IsDir()
}

// Rename moves the attachment directory of oldID to newID. It is a no-op
// when oldID has no directory.
func (m *Manager) Rename(oldID, newID string) error {
	if oldID == newID || !m.Exists(oldID) {
		return nil
	}
	if m.Exists(newID) {
		return fmt.Errorf("outline directory for %s already exists", newID)
	}
	if err := os.Rename(m.eventDir(oldID), m.eventDir(newID)); err != nil {
		return fmt.Errorf("failed to rename outline directory: %w", err)
	}
	return nil
}

// Remove deletes the attachment directory of eventID, if any.
func (m *Manager) Remove(eventID string) error {
	if eventID == "" {
		return nil
	}
	if err := os.RemoveAll(m.eventDir(eventID)); err != nil {
		return fmt.Errorf("failed to remove outline directory: %w", err)
	}
	return nil
}

// RewritePath swaps the event directory segment of a stored outline path.
// Paths that do not point into oldID's directory are returned unchanged.
func RewritePath(outlinePath, oldID, newID string) string {
	prefix := path.Join(constants.OutlinesURLPrefix, oldID) + "/"
	if !strings.HasPrefix(outlinePath, prefix) {
		return outlinePath
	}
	return path.Join(constants.OutlinesURLPrefix, newID) + "/" + strings.TrimPrefix(outlinePath, prefix)
}
