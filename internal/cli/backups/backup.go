package backups

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/lockfile"
)

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	backupPath, err := ctx.Backups.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	ctx.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	backups, err := ctx.Backups.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", ctx.Backups.GetBackupDir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), sizeKB)
	}
	ctx.Printf("\nBackup directory: %s\n", ctx.Backups.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	backupPath, err := c.resolve(ctx.Backups.GetBackupDir())
	if err != nil {
		return err
	}

	if info, running := lockfile.Running(ctx.Config.DataDir); running {
		ctx.Printf("⚠️  A server is running on %s (pid %d).\n", info.Listen, info.PID)
		ctx.Println("   JSON stores are picked up by its file watcher; restart it for SQL stores.")
	}

	ok, err := ctx.Confirmed(c.Yes, "Replace the current schedule with this backup?",
		fmt.Sprintf("Restoring from %s. The current schedule is backed up first.", filepath.Base(backupPath)))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Restore cancelled.")
		return nil
	}

	safety, err := ctx.Backups.RestoreBackup(backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	ctx.Println("✓ Schedule restored successfully!")
	if safety != "" {
		ctx.Printf("  Previous schedule saved to: %s\n", filepath.Base(safety))
	}
	return nil
}

// resolve accepts an absolute path, a path relative to the working
// directory, or a bare filename inside the backup directory.
func (c *BackupRestoreCmd) resolve(backupDir string) (string, error) {
	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); err != nil {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}

	if _, err := os.Stat(c.BackupFile); err == nil {
		absPath, err := filepath.Abs(c.BackupFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return absPath, nil
	}

	candidate := filepath.Join(backupDir, c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", backupDir)
}
