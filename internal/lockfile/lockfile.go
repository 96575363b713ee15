package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

// ErrAlreadyRunning is returned when a live server already owns the data directory.
var ErrAlreadyRunning = errors.New("server already running")

// Info is the content of a serve lockfile.
type Info struct {
	Listen string
	PID    int
}

// Lock is a held lockfile.
type Lock struct {
	path string
	pid  int
}

// Path returns the lockfile path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

func parse(content string) (Info, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 2 {
		return Info{}, errors.New("lockfile is malformed")
	}
	if strings.TrimSpace(parts[0]) == "" {
		return Info{}, errors.New("listen address in lockfile is empty")
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid <= 0 {
		return Info{}, errors.New("invalid process ID in lockfile")
	}
	return Info{Listen: parts[0], PID: pid}, nil
}

// alive reports whether pid belongs to a running confsched process.
func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}

// Running returns the lockfile content if a live server holds dir.
func Running(dir string) (Info, bool) {
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		return Info{}, false
	}
	info, err := parse(string(content))
	if err != nil {
		return Info{}, false
	}
	if !alive(info.PID) {
		return Info{}, false
	}
	return info, true
}

// Acquire claims dir for a server listening on listen. A lockfile left by a
// dead or unrelated process is replaced.
func Acquire(dir, listen string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lockfile directory: %w", err)
	}

	path := Path(dir)
	if info, ok := Running(dir); ok {
		return nil, fmt.Errorf("%w: pid %d is serving on %s", ErrAlreadyRunning, info.PID, info.Listen)
	}
	if _, err := os.Stat(path); err == nil {
		logger.Warn("Removing stale lockfile", "path", path)
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: lockfile %s appeared concurrently", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}

	pid := getpidFunc()
	if _, err := fmt.Fprintf(f, "%s|%d", listen, pid); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return &Lock{path: path, pid: pid}, nil
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	info, err := parse(string(content))
	if err == nil && info.PID != l.pid {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lockfile: %w", err)
	}
	return nil
}
