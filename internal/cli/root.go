package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/backup"
	"github.com/julianstephens/confsched/internal/config"
	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/keyring"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/storage"
	"github.com/julianstephens/confsched/internal/storage/postgres"
	"github.com/julianstephens/confsched/internal/storage/sqlite"
)

// PostgresKeyword selects Postgres with the connection string taken from
// the environment or the OS keyring.
const PostgresKeyword = "postgres"

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Files   *attachments.Manager
	Backups *backup.Manager
	Service *schedule.Service
	Out     io.Writer

	// Confirm asks a yes/no question. Commands call it unless --yes is set.
	Confirm func(title, description string) (bool, error)
}

// NewContext wires the store, attachments, backups and service for cfg.
func NewContext(cfg *config.Config) (*Context, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Config:  cfg,
		Store:   store,
		Files:   attachments.NewManager(cfg.OutlinesDir()),
		Backups: backup.NewManager(store, cfg.BackupDir()),
		Out:     os.Stdout,
		Confirm: confirm,
	}
	ctx.Service = ctx.NewService()
	return ctx, nil
}

// NewService builds a schedule service over the context's store. A backup
// is taken before the schedule is replaced with sample data.
func (c *Context) NewService(opts ...schedule.Option) *schedule.Service {
	opts = append([]schedule.Option{schedule.WithBeforeInitialize(c.Backups.Snapshot)}, opts...)
	return schedule.NewService(c.Store, c.Files, opts...)
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Close releases the store.
func (c *Context) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path, err := c.Backups.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	logger.Info("Automatic backup created", "path", path)
}

// Confirmed returns true when skip is set or the user agrees.
func (c *Context) Confirmed(skip bool, title, description string) (bool, error) {
	if skip {
		return true, nil
	}
	if c.Confirm == nil {
		return false, errors.New("confirmation required: pass --yes")
	}
	return c.Confirm(title, description)
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// OpenStore selects the storage backend from cfg.Store:
//   - empty: JSON document at <data_dir>/schedule.json
//   - "postgres": connection string from CONFSCHED_DB_CONNECTION or the keyring
//   - postgres:// or postgresql:// URL without a password
//   - *.db or *.sqlite: SQLite database
//   - anything else: JSON document at that path
func OpenStore(cfg *config.Config) (storage.Provider, error) {
	target := strings.TrimSpace(cfg.Store)

	switch {
	case target == "":
		return storage.NewJSONStore(cfg.SchedulePath()), nil

	case target == PostgresKeyword || target == "postgresql":
		connStr, err := resolveConnString()
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil

	case postgres.IsConnString(target):
		if _, err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; "+
					"store it with '%s keyring set' or export %s and use --store %s",
					constants.AppName, constants.EnvDBConnection, PostgresKeyword)
			}
			return nil, err
		}
		return postgres.New(target), nil

	case strings.HasSuffix(target, ".db") || strings.HasSuffix(target, ".sqlite"):
		return sqlite.NewStore(target), nil

	default:
		return storage.NewJSONStore(target), nil
	}
}

func resolveConnString() (string, error) {
	if connStr := os.Getenv(constants.EnvDBConnection); connStr != "" {
		logger.Debug("Using PostgreSQL connection from environment")
		return connStr, nil
	}

	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection configured: set %s or run '%s keyring set'",
				constants.EnvDBConnection, constants.AppName)
		}
		return "", fmt.Errorf("failed to read connection string from keyring: %w", err)
	}
	logger.Debug("Using PostgreSQL connection from keyring")
	return connStr, nil
}
