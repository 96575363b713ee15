package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/migration"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/storage"
	"github.com/julianstephens/confsched/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var _ storage.Provider = (*Store)(nil)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	return &Store{
		connStr: connStr,
	}
}

// IsConnString reports whether target looks like a PostgreSQL URL.
func IsConnString(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// hasSSLMode checks if the connection string contains an sslmode parameter key (case-insensitive).
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}

	return false
}

// ValidateConnString checks that connStr is a valid PostgreSQL connection
// string (URI or DSN) and that it does not carry a password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if IsConnString(connStr) {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}

		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}

		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	} else {
		for _, pair := range strings.Fields(connStr) {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.ToLower(strings.TrimSpace(parts[0])) == "password" {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *Store) Init() error {
	return s.open()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		s.db = nil
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}

	runner := migration.NewRunner(s.db, subFS, migration.DialectPostgres)
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "store", "postgres")
	})
	return err
}

func (s *Store) Load() (models.Schedule, error) {
	if err := s.open(); err != nil {
		return nil, err
	}

	var body string
	err := s.db.QueryRow("SELECT body FROM schedule_documents WHERE name = $1", constants.ScheduleDocumentKey).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Schedule{}, nil
		}
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	return storage.Decode([]byte(body), s.GetConfigPath()), nil
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
		INSERT INTO schedule_documents (name, body, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		constants.ScheduleDocumentKey, string(data), time.Now().UTC())
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

// GetConfigPath returns a non-sensitive identifier instead of the connection string.
func (s *Store) GetConfigPath() string {
	return "postgresql"
}

func (s *Store) Kind() string {
	return "postgres"
}

// GetDB returns the underlying connection pool, or nil before first use.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
