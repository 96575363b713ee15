package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case scheduleLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setSchedule(msg.schedule)
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		return m, loadSchedule(m.svc)

	case tea.KeyMsg:
		if m.pending != nil {
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		p := *m.pending
		m.pending = nil
		return m, deleteCmd(m.svc, p)
	case key.Matches(msg, m.keys.No):
		m.pending = nil
		m.status = "Delete cancelled"
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Switch):
		if m.focus == paneDays {
			if day, ok := m.selectedDay(); ok && len(day.Events) > 0 {
				m.setFocus(paneEvents)
			}
		} else {
			m.setFocus(paneDays)
		}
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.status = "Reloaded"
		return m, loadSchedule(m.svc)

	case key.Matches(msg, m.keys.Delete):
		m.pending = m.deleteTarget()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == paneDays {
		prev := m.days.Cursor()
		m.days, cmd = m.days.Update(msg)
		if m.days.Cursor() != prev {
			m.events.SetCursor(0)
			m.refreshEvents()
		}
		return m, cmd
	}
	m.events, cmd = m.events.Update(msg)
	m.refreshDetail()
	return m, cmd
}

func (m Model) deleteTarget() *pendingDelete {
	if m.focus == paneEvents {
		day, ev, ok := m.selectedEvent()
		if !ok {
			return nil
		}
		return &pendingDelete{dayID: day.ID, eventID: ev.ID, label: "event '" + ev.Name + "'"}
	}
	day, ok := m.selectedDay()
	if !ok {
		return nil
	}
	return &pendingDelete{dayID: day.ID, label: "day '" + day.Day + "'"}
}
