package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/storage"
)

func setupTestStore(t *testing.T) (storage.Provider, string) {
	t.Helper()
	tempDir := t.TempDir()

	store := storage.NewJSONStore(filepath.Join(tempDir, "schedule.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	schedule := models.Schedule{
		{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{
			{ID: "1-opening", Time: "9am", Name: "Opening"},
		}},
		{ID: "2", Day: "Day 2", Date: "d2", Events: []models.Event{}},
	}
	if err := store.Save(schedule); err != nil {
		t.Fatalf("failed to save test schedule: %v", err)
	}

	return store, filepath.Join(tempDir, constants.BackupDirName)
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestCreateBackup(t *testing.T) {
	store, dir := setupTestStore(t)

	mgr := NewManager(store, dir)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		t.Errorf("backup file was not created: %s", backupPath)
	}

	schedule, err := ReadBackup(backupPath)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if len(schedule) != 2 || schedule.EventCount() != 1 {
		t.Errorf("unexpected backup contents: %#v", schedule)
	}
}

func TestBackupNaming(t *testing.T) {
	store, dir := setupTestStore(t)

	mgr := NewManager(store, dir)
	mgr.now = fixedClock(time.Date(2023, 12, 27, 12, 30, 45, 0, time.UTC))

	want := []string{
		"confsched-20231227-1230.json",
		"confsched-20231227-123045.json",
		"confsched-20231227-123045-1.json",
		"confsched-20231227-123045-2.json",
	}
	for i, name := range want {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if filepath.Base(path) != name {
			t.Errorf("backup #%d: expected %s, got %s", i, name, filepath.Base(path))
		}
	}
}

func TestBackupRotation(t *testing.T) {
	store, dir := setupTestStore(t)

	mgr := NewManager(store, dir)
	start := time.Date(2023, 12, 27, 8, 0, 0, 0, time.UTC)

	numBackups := constants.MaxBackups + 5
	for i := 0; i < numBackups; i++ {
		mgr.now = fixedClock(start.Add(time.Duration(i) * time.Hour))
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}

	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}

	newest := start.Add(time.Duration(numBackups-1) * time.Hour)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("expected newest backup at %v, got %v", newest, backups[0].Timestamp)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted correctly: backup %d is newer than backup %d", i, i-1)
		}
	}
}

func TestListBackups_IgnoresForeignFiles(t *testing.T) {
	store, dir := setupTestStore(t)
	mgr := NewManager(store, dir)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "confsched-garbage.json", "confsched-20231227-1230.json.tmp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := mgr.CreateBackup(); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	store, dir := setupTestStore(t)
	mgr := NewManager(store, dir)
	mgr.now = fixedClock(time.Date(2023, 12, 27, 12, 0, 0, 0, time.UTC))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if err := store.Save(models.Schedule{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	previous, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	schedule, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(schedule) != 2 {
		t.Errorf("expected restored schedule with 2 days, got %d", len(schedule))
	}

	snapshot, err := ReadBackup(previous)
	if err != nil {
		t.Fatalf("failed to read pre-restore snapshot: %v", err)
	}
	if len(snapshot) != 0 {
		t.Errorf("expected pre-restore snapshot to be empty, got %d days", len(snapshot))
	}
}

func TestRestoreBackup_Invalid(t *testing.T) {
	store, dir := setupTestStore(t)
	mgr := NewManager(store, dir)

	if _, err := mgr.RestoreBackup(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing backup")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bad); err == nil {
		t.Error("expected error for corrupted backup")
	}

	schedule, _ := store.Load()
	if len(schedule) != 2 {
		t.Errorf("store changed by failed restore: %d days", len(schedule))
	}
}

func TestSnapshot(t *testing.T) {
	store, dir := setupTestStore(t)
	mgr := NewManager(store, dir)

	if err := mgr.Snapshot(models.Schedule{{ID: "9", Day: "Day 9", Date: "x"}}); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	backups, err := mgr.ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d (%v)", len(backups), err)
	}
	schedule, err := ReadBackup(backups[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	if schedule[0].ID != "9" || schedule[0].Events == nil {
		t.Errorf("unexpected snapshot %#v", schedule)
	}
}
