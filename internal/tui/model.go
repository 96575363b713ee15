package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/validation"
)

type pane int

const (
	paneDays pane = iota
	paneEvents
)

type scheduleLoadedMsg struct {
	schedule models.Schedule
	err      error
}

type mutationDoneMsg struct {
	status string
	err    error
}

type pendingDelete struct {
	dayID   string
	eventID string
	label   string
}

type Model struct {
	svc       *schedule.Service
	validator *validation.Validator
	keys      KeyMap
	help      help.Model
	days      table.Model
	events    table.Model
	detail    viewport.Model
	focus     pane
	schedule  models.Schedule
	pending   *pendingDelete
	status    string
	err       error
	warning   string
	width     int
	height    int
	quitting  bool
}

// NewModel builds the schedule browser. validator may be nil.
func NewModel(svc *schedule.Service, validator *validation.Validator) Model {
	days := table.New(
		table.WithColumns(dayColumns(0)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	events := table.New(
		table.WithColumns(eventColumns(0)),
		table.WithHeight(8),
	)
	return Model{
		svc:       svc,
		validator: validator,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		days:      days,
		events:    events,
		detail:    viewport.New(0, 6),
	}
}

func (m Model) Init() tea.Cmd {
	return loadSchedule(m.svc)
}

func loadSchedule(svc *schedule.Service) tea.Cmd {
	return func() tea.Msg {
		s, err := svc.Schedule(context.Background())
		return scheduleLoadedMsg{schedule: s, err: err}
	}
}

func deleteCmd(svc *schedule.Service, p pendingDelete) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if p.eventID == "" {
			_, err = svc.DeleteDay(ctx, p.dayID)
		} else {
			_, err = svc.DeleteEvent(ctx, p.dayID, p.eventID)
		}
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("Deleted %s", p.label)}
	}
}

func dayColumns(width int) []table.Column {
	w := max(width-40, 16)
	return []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Day", Width: w},
		{Title: "Date", Width: 12},
		{Title: "Events", Width: 6},
	}
}

func eventColumns(width int) []table.Column {
	w := max(width-60, 20)
	return []table.Column{
		{Title: "Time", Width: 26},
		{Title: "Name", Width: w},
		{Title: "Outline", Width: 8},
	}
}

func (m Model) selectedDay() (models.Day, bool) {
	i := m.days.Cursor()
	if i < 0 || i >= len(m.schedule) {
		return models.Day{}, false
	}
	return m.schedule[i], true
}

func (m Model) selectedEvent() (models.Day, models.Event, bool) {
	day, ok := m.selectedDay()
	if !ok {
		return models.Day{}, models.Event{}, false
	}
	i := m.events.Cursor()
	if i < 0 || i >= len(day.Events) {
		return day, models.Event{}, false
	}
	return day, day.Events[i], true
}

// setSchedule refreshes both tables, keeping the day cursor in range.
func (m *Model) setSchedule(s models.Schedule) {
	m.schedule = s
	rows := make([]table.Row, 0, len(s))
	for _, d := range s {
		rows = append(rows, table.Row{d.ID, d.Day, d.Date, fmt.Sprint(len(d.Events))})
	}
	m.days.SetRows(rows)
	if c := m.days.Cursor(); c >= len(rows) {
		m.days.SetCursor(max(len(rows)-1, 0))
	}
	m.refreshEvents()
	m.updateValidationStatus()
}

func (m *Model) refreshEvents() {
	day, ok := m.selectedDay()
	var rows []table.Row
	if ok {
		rows = make([]table.Row, 0, len(day.Events))
		for _, ev := range day.Events {
			outline := ""
			switch {
			case ev.OutlineFile != "":
				outline = "yes"
			case ev.HasOutline:
				outline = "pending"
			}
			rows = append(rows, table.Row{ev.Time, ev.Name, outline})
		}
	}
	m.events.SetRows(rows)
	if c := m.events.Cursor(); c >= len(rows) {
		m.events.SetCursor(max(len(rows)-1, 0))
	}
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	day, ev, ok := m.selectedEvent()
	if !ok {
		if d, dayOK := m.selectedDay(); dayOK {
			m.detail.SetContent(RenderDay(models.Day{ID: d.ID, Day: d.Day, Date: d.Date}))
		} else {
			m.detail.SetContent("")
		}
		return
	}
	m.detail.SetContent(RenderDay(models.Day{ID: day.ID, Day: day.Day, Date: day.Date, Events: []models.Event{ev}}))
}

func (m *Model) updateValidationStatus() {
	m.warning = ""
	if m.validator == nil {
		return
	}
	result := m.validator.ValidateSchedule(m.schedule)
	if result.HasConflicts() {
		m.warning = fmt.Sprintf("⚠ %d schedule conflict(s). Run '%s validate' for details.",
			len(result.Conflicts), constants.AppName)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	tableHeight := max((height-16)/2, 3)
	m.days.SetColumns(dayColumns(width))
	m.days.SetHeight(tableHeight)
	m.events.SetColumns(eventColumns(width))
	m.events.SetHeight(tableHeight)
	m.detail.Width = max(width-6, 20)
	m.detail.Height = 6
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneDays {
		m.days.Focus()
		m.events.Blur()
		return
	}
	m.days.Blur()
	m.events.Focus()
}
