package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/confsched/internal/constants"
)

// BackupCronDisabled turns off scheduled backups when used as backup_cron.
const BackupCronDisabled = "off"

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds schedule.json, outlines, backups and logs.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Store selects the schedule backend. Empty means <data_dir>/schedule.json.
	// A *.db or *.sqlite path selects SQLite, a postgres:// URL selects Postgres.
	Store string `yaml:"store,omitempty" json:"store,omitempty"`

	// BackupCron is a cron-style schedule (e.g. "0 3 * * *") for automatic
	// backups while serving, or "off".
	BackupCron string `yaml:"backup_cron" json:"backup_cron"`

	// MaxUploadMB caps outline upload size. Zero leaves uploads unlimited.
	MaxUploadMB int64 `yaml:"max_upload_mb" json:"max_upload_mb"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     constants.DefaultListen,
		DataDir:    constants.DefaultDataDir,
		BackupCron: constants.DefaultBackupCron,
		BasicAuth:  nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = constants.DefaultListen
	}
	if c.DataDir == "" {
		c.DataDir = constants.DefaultDataDir
	}
	if c.BackupCron == "" {
		c.BackupCron = constants.DefaultBackupCron
	}
	if c.MaxUploadMB < 0 {
		c.MaxUploadMB = 0
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if c.BackupCronEnabled() {
		if _, err := cron.ParseStandard(c.BackupCron); err != nil {
			return fmt.Errorf("invalid backup_cron %q: %w", c.BackupCron, err)
		}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return errors.New("basic_auth requires both username and password")
	}
	return nil
}

// BackupCronEnabled reports whether scheduled backups should run.
func (c *Config) BackupCronEnabled() bool {
	return c.BackupCron != "" && !strings.EqualFold(c.BackupCron, BackupCronDisabled)
}

// SchedulePath is the JSON document used when no other store is configured.
func (c *Config) SchedulePath() string {
	return filepath.Join(c.DataDir, constants.ScheduleFileName)
}

// OutlinesDir is where uploaded outlines are stored.
func (c *Config) OutlinesDir() string {
	return filepath.Join(c.DataDir, constants.OutlinesDirName)
}

// BackupDir is where schedule snapshots are written.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, constants.BackupDirName)
}

// MaxUploadBytes is MaxUploadMB in bytes; 0 means no limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write a default config with 0600 perms
//     and return it.
//   - If the file exists, read YAML, unmarshal and normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically,
// with 0600 permissions on the final file.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+constants.AppName+"-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
