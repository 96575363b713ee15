package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/storage"
	"github.com/julianstephens/confsched/internal/validation"
)

func newTestModel(t *testing.T) (Model, *schedule.Service, *attachments.Manager) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewJSONStore(filepath.Join(dir, "schedule.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	files := attachments.NewManager(filepath.Join(dir, "outlines"))
	svc := schedule.NewService(store, files)
	if _, err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return NewModel(svc, validation.New(files)), svc, files
}

// run feeds msg to the model and then every message its commands produce.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m = run(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return run(t, m, m.Init()())
}

func TestModelLoadsSchedule(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = loaded(t, m)

	if m.err != nil {
		t.Fatalf("Unexpected error: %v", m.err)
	}
	if len(m.schedule) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(m.schedule))
	}
	if got := len(m.days.Rows()); got != 3 {
		t.Errorf("Expected 3 day rows, got %d", got)
	}
	if got := len(m.events.Rows()); got != 2 {
		t.Errorf("Expected 2 event rows for the first day, got %d", got)
	}
	if m.warning != "" {
		t.Errorf("Expected no validation warning for the sample, got %q", m.warning)
	}

	view := m.View()
	if !strings.Contains(view, "Day 1") {
		t.Errorf("Expected view to list Day 1, got:\n%s", view)
	}
}

func TestModelWarnsOnMissingOutline(t *testing.T) {
	m, svc, files := newTestModel(t)
	if _, err := svc.AttachOutline(context.Background(), "2", "2-bible-study", "outline.pdf", strings.NewReader("%PDF")); err != nil {
		t.Fatalf("AttachOutline failed: %v", err)
	}
	if err := os.RemoveAll(files.Dir()); err != nil {
		t.Fatalf("failed to remove outlines: %v", err)
	}

	m = loaded(t, m)
	if !strings.Contains(m.warning, "1 schedule conflict") {
		t.Errorf("Expected missing outline warning, got %q", m.warning)
	}
	if !strings.Contains(m.View(), "confsched validate") {
		t.Error("Expected warning in view")
	}
}

func TestModelNavigation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = loaded(t, m)

	m = run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	day, ok := m.selectedDay()
	if !ok || day.ID != "2" {
		t.Fatalf("Expected day 2 selected, got %q (ok=%v)", day.ID, ok)
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != paneEvents {
		t.Fatal("Expected focus on events after tab")
	}
	m = run(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, ev, ok := m.selectedEvent()
	if !ok || ev.ID != "2-bible-study" {
		t.Errorf("Expected 2-bible-study selected, got %q", ev.ID)
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != paneDays {
		t.Error("Expected focus back on days")
	}
}

func TestModelDeleteEvent(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = loaded(t, m)

	m = run(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = run(t, m, keyRunes("d"))
	if m.pending == nil || m.pending.eventID != "1-arrival-of-participants" {
		t.Fatalf("Expected pending delete of first event, got %+v", m.pending)
	}
	if !strings.Contains(m.View(), "Delete event 'Arrival of Participants'?") {
		t.Error("Expected confirmation prompt in view")
	}

	m = run(t, m, keyRunes("y"))
	if m.pending != nil {
		t.Error("Expected pending delete cleared")
	}
	if m.err != nil {
		t.Fatalf("Unexpected error: %v", m.err)
	}

	day, err := svc.GetDay(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if len(day.Events) != 1 {
		t.Errorf("Expected 1 remaining event, got %d", len(day.Events))
	}
	if got := len(m.events.Rows()); got != 1 {
		t.Errorf("Expected table to reload with 1 event, got %d", got)
	}
}

func TestModelDeleteCancelled(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = loaded(t, m)

	m = run(t, m, keyRunes("d"))
	if m.pending == nil || m.pending.eventID != "" || m.pending.dayID != "1" {
		t.Fatalf("Expected pending delete of day 1, got %+v", m.pending)
	}
	m = run(t, m, keyRunes("n"))
	if m.pending != nil {
		t.Error("Expected pending delete cleared")
	}

	s, err := svc.Schedule(context.Background())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(s) != 3 {
		t.Errorf("Expected 3 days after cancel, got %d", len(s))
	}
}

func TestModelReloadPicksUpExternalChanges(t *testing.T) {
	m, svc, _ := newTestModel(t)
	m = loaded(t, m)

	if _, err := svc.AddDay(context.Background(), models.DayInput{Day: "Day 4", Date: "SATURDAY, 30TH DECEMBER 2023"}); err != nil {
		t.Fatalf("AddDay failed: %v", err)
	}
	m = run(t, m, keyRunes("r"))
	if len(m.schedule) != 4 {
		t.Errorf("Expected 4 days after reload, got %d", len(m.schedule))
	}
}

func TestModelQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = loaded(t, m)

	next, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Error("Expected empty view after quitting")
	}
}

func TestRenderSchedule(t *testing.T) {
	out := RenderSchedule(schedule.SampleSchedule())
	for _, want := range []string{"Day 1", "Bible Study", "2-bible-study", "outline: pending upload", "youtube.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	if out := RenderSchedule(nil); !strings.Contains(out, "No days scheduled") {
		t.Errorf("Expected empty message, got %q", out)
	}
}
