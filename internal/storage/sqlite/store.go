package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/migration"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/storage"
	"github.com/julianstephens/confsched/migrations"
)

// Store keeps the schedule document as a single row in SQLite, so every
// save is one transactional upsert.
type Store struct {
	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	return s.open()
}

// open creates the database on first use and brings the schema up to date.
func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.runMigrations(); err != nil {
		s.db = nil
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	runner := migration.NewRunner(s.db, subFS, migration.DialectSQLite)
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "store", "sqlite")
	})
	return err
}

func (s *Store) Load() (models.Schedule, error) {
	if err := s.open(); err != nil {
		return nil, err
	}

	var body string
	err := s.db.QueryRow("SELECT body FROM schedule_documents WHERE name = ?", constants.ScheduleDocumentKey).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, nil
		}
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	return storage.Decode([]byte(body), s.path), nil
}

func (s *Store) Save(schedule models.Schedule) error {
	if err := s.open(); err != nil {
		return err
	}

	data, err := storage.Encode(schedule)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO schedule_documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		constants.ScheduleDocumentKey, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Kind() string {
	return "sqlite"
}

// GetDB returns the underlying database connection, or nil before first use.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
