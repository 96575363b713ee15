package lockfile

import (
	"errors"
	"os"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

// Mock Process
type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int {
	return m.pid
}

func (m *mockProcess) PPid() int {
	return 0
}

func (m *mockProcess) Executable() string {
	return m.executable
}

func mockProcesses(t *testing.T, procs map[int]string) {
	t.Helper()
	oldFind := findProcessFunc
	t.Cleanup(func() { findProcessFunc = oldFind })
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := procs[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func mockPid(t *testing.T, pid int) {
	t.Helper()
	oldPid := getpidFunc
	t.Cleanup(func() { getpidFunc = oldPid })
	getpidFunc = func() int { return pid }
}

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	mockPid(t, 4242)
	mockProcesses(t, map[int]string{4242: "confsched"})

	lock, err := Acquire(dir, "127.0.0.1:8000")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	content, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatalf("lockfile not written: %v", err)
	}
	if string(content) != "127.0.0.1:8000|4242" {
		t.Errorf("unexpected lockfile content %q", content)
	}

	info, ok := Running(dir)
	if !ok || info.PID != 4242 || info.Listen != "127.0.0.1:8000" {
		t.Errorf("Running() = %#v, %v", info, ok)
	}

	if _, err := Acquire(dir, "127.0.0.1:9000"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(Path(dir)); !os.IsNotExist(err) {
		t.Error("lockfile still exists after release")
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	tests := []struct {
		name    string
		content string
		procs   map[int]string
	}{
		{"dead process", "127.0.0.1:8000|999", map[int]string{}},
		{"pid reused by other program", "127.0.0.1:8000|999", map[int]string{999: "bash"}},
		{"malformed", "garbage", map[int]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			mockPid(t, 1234)
			mockProcesses(t, tt.procs)

			if err := os.WriteFile(Path(dir), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			lock, err := Acquire(dir, "0.0.0.0:8080")
			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			defer lock.Release()

			content, _ := os.ReadFile(Path(dir))
			if string(content) != "0.0.0.0:8080|1234" {
				t.Errorf("unexpected lockfile content %q", content)
			}
		})
	}
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	dir := t.TempDir()
	mockPid(t, 1)
	mockProcesses(t, map[int]string{})

	lock, err := Acquire(dir, "127.0.0.1:8000")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// another server took over after this one was presumed dead
	if err := os.WriteFile(Path(dir), []byte("127.0.0.1:8001|77"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(Path(dir)); err != nil {
		t.Error("foreign lockfile should not be removed")
	}
}

func TestRunningWithoutLockfile(t *testing.T) {
	if _, ok := Running(t.TempDir()); ok {
		t.Error("expected no running server")
	}
}
