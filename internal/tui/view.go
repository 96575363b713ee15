package tui

import (
	"fmt"
	"strings"

	"github.com/julianstephens/confsched/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(constants.AppTitle))
	b.WriteString("\n\n")

	if len(m.schedule) == 0 && m.err == nil {
		b.WriteString(emptyStyle.Render("No days scheduled. Press r to reload."))
		b.WriteString("\n")
	} else {
		daysPane, eventsPane := paneStyle, paneStyle
		if m.focus == paneDays {
			daysPane = focusedPaneStyle
		} else {
			eventsPane = focusedPaneStyle
		}
		b.WriteString(daysPane.Render(m.days.View()))
		b.WriteString("\n")
		b.WriteString(eventsPane.Render(m.events.View()))
		b.WriteString("\n")
		b.WriteString(m.detail.View())
		b.WriteString("\n")
	}

	if m.pending != nil {
		b.WriteString(dangerStyle.Render(fmt.Sprintf("Delete %s? (y/n)", m.pending.label)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(dangerStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.warning != "" {
		b.WriteString(warningStyle.Render(m.warning))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return docStyle.Render(b.String())
}
