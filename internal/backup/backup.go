package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/storage"
)

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
	seq       int
}

// Manager handles backup operations. Backups are JSON snapshots of the
// schedule document, whatever backend currently stores it.
type Manager struct {
	store     storage.Provider
	backupDir string
	now       func() time.Time
}

// NewManager creates a new backup manager writing into backupDir
func NewManager(store storage.Provider, backupDir string) *Manager {
	return &Manager{
		store:     store,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// ensureBackupDir creates the backup directory if it doesn't exist
func (m *Manager) ensureBackupDir() error {
	return os.MkdirAll(m.backupDir, 0700)
}

// CreateBackup snapshots the current schedule
func (m *Manager) CreateBackup() (string, error) {
	schedule, err := m.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load schedule: %w", err)
	}
	return m.writeSnapshot(schedule, false)
}

// Snapshot writes the given schedule as a backup. It is used as a hook
// when the caller already holds the document.
func (m *Manager) Snapshot(schedule models.Schedule) error {
	path, err := m.writeSnapshot(schedule, false)
	if err != nil {
		return err
	}
	logger.Info("Created schedule backup", "path", path, "days", len(schedule))
	return nil
}

// writeSnapshot skipRotation is used during restore so the pre-restore
// snapshot never pushes the backup being restored out of the window.
func (m *Manager) writeSnapshot(schedule models.Schedule, skipRotation bool) (string, error) {
	if err := m.ensureBackupDir(); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	data, err := storage.Encode(schedule)
	if err != nil {
		return "", fmt.Errorf("failed to encode schedule: %w", err)
	}

	tmp := backupPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, backupPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			// Log error but don't fail the backup operation
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	return backupPath, nil
}

// nextBackupPath tries minute precision first, then seconds, then a counter.
func (m *Manager) nextBackupPath() (string, error) {
	now := m.now()
	name := func(ts string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+ts+constants.BackupFileSuffix)
	}

	backupPath := name(now.Format("20060102-1504"))
	if !exists(backupPath) {
		return backupPath, nil
	}

	timestamp := now.Format("20060102-150405")
	backupPath = name(timestamp)
	for counter := 1; exists(backupPath); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		backupPath = name(fmt.Sprintf("%s-%d", timestamp, counter))
	}
	return backupPath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// parseBackupName extracts the timestamp and counter of a backup file name.
func parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)

	// Counter is always after the last hyphen of a YYYYMMDD-HHMMSS-N name
	seq := 0
	parts := strings.Split(stamp, "-")
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, 0, false
		}
		seq = n
		stamp = parts[0] + "-" + parts[1]
	}

	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if ts, err := time.Parse(layout, stamp); err == nil {
			return ts, seq, true
		}
	}
	return time.Time{}, 0, false
}

// ListBackups returns a list of all available backups, sorted by timestamp (newest first)
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		timestamp, seq, ok := parseBackupName(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(m.backupDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Timestamp: timestamp,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].seq > backups[j].seq
	})

	return backups, nil
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	if len(backups) <= constants.MaxBackups {
		return nil
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}

	return nil
}

// ReadBackup loads and verifies a backup file.
func ReadBackup(backupPath string) (models.Schedule, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup file does not exist: %s", backupPath)
		}
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var schedule models.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	return storage.Decode(data, backupPath), nil
}

// RestoreBackup replaces the stored schedule with a backup. The current
// schedule is snapshotted first and the snapshot path is returned.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	schedule, err := ReadBackup(backupPath)
	if err != nil {
		return "", err
	}

	current, err := m.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load current schedule: %w", err)
	}
	currentBackup, err := m.writeSnapshot(current, true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current schedule before restore: %w", err)
	}

	if err := m.store.Save(schedule); err != nil {
		return currentBackup, fmt.Errorf("failed to restore schedule: %w", err)
	}

	logger.Info("Restored schedule backup", "path", backupPath, "previous", currentBackup)
	return currentBackup, nil
}
