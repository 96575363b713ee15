package system

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/lockfile"
	"github.com/julianstephens/confsched/internal/migration"
	"github.com/julianstephens/confsched/internal/storage/postgres"
	"github.com/julianstephens/confsched/internal/storage/sqlite"
	"github.com/julianstephens/confsched/internal/validation"
	"github.com/julianstephens/confsched/migrations"
)

// ErrDoctorFailed is returned when at least one check fails.
var ErrDoctorFailed = errors.New("one or more checks failed")

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error, warnOnly bool) {
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", name, err)
			hasError = true
		}
	}
	skip := func(name string) {
		ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", name)
	}

	reachable := checkStoreReachable(ctx)
	report("Storage reachable", reachable, false)

	if reachable == nil {
		report("Schema version", checkSchemaVersion(ctx), false)
	} else {
		skip("Schema version")
	}

	report("Backups present", checkBackupsPresent(ctx), true)

	if reachable == nil {
		report("Data validation", checkValidation(ctx), false)
	} else {
		skip("Data validation")
	}

	if info, ok := lockfile.Running(ctx.Config.DataDir); ok {
		ctx.Printf("ℹ Server running: pid %d on %s\n", info.PID, info.Listen)
	} else {
		ctx.Println("ℹ Server not running")
	}

	ctx.Println()
	if hasError {
		return ErrDoctorFailed
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	if _, err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	if db := storeDB(ctx); db != nil {
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

// storeDB returns the SQL connection behind the store, or nil for the JSON store.
func storeDB(ctx *cli.Context) *sql.DB {
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		return s.GetDB()
	case *postgres.Store:
		return s.GetDB()
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return nil
	}

	dir, dialect := "sqlite", migration.DialectSQLite
	if _, ok := ctx.Store.(*postgres.Store); ok {
		dir, dialect = "postgres", migration.DialectPostgres
	}
	subFS, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to access migrations: %w", err)
	}

	return migration.NewRunner(db, subFS, dialect).ValidateVersion()
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	current, err := ctx.Service.Schedule(context.Background())
	if err != nil {
		return err
	}
	result := validation.New(ctx.Files).ValidateSchedule(current)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found - run '%s validate' for details", len(result.Conflicts), constants.AppName)
	}
	return nil
}
