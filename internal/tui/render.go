package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/confsched/internal/models"
)

// RenderDay formats one day and its events.
func RenderDay(day models.Day) string {
	var b strings.Builder
	b.WriteString(dayTitleStyle.Render(day.Day))
	b.WriteString("  ")
	b.WriteString(dateStyle.Render(day.Date))
	b.WriteString(dateStyle.Render(fmt.Sprintf("  [%s]", day.ID)))
	b.WriteString("\n")

	if len(day.Events) == 0 {
		b.WriteString(emptyStyle.Render("  No events"))
		return daySectionStyle.Render(b.String())
	}

	for _, ev := range day.Events {
		b.WriteString("  ")
		b.WriteString(timeStyle.Render(ev.Time))
		b.WriteString(eventNameStyle.Render(ev.Name))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("id: " + ev.ID))
		b.WriteString("\n")
		if ev.Link != "" {
			b.WriteString(metaStyle.Render("link: " + ev.Link))
			b.WriteString("\n")
		}
		switch {
		case ev.OutlineFile != "":
			b.WriteString(metaStyle.Render("outline: " + ev.OutlineFile))
			b.WriteString("\n")
		case ev.HasOutline:
			b.WriteString(metaStyle.Render("outline: pending upload"))
			b.WriteString("\n")
		}
	}
	return daySectionStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderSchedule formats every day in display order.
func RenderSchedule(schedule models.Schedule) string {
	if len(schedule) == 0 {
		return emptyStyle.Render("No days scheduled. Add one with 'confsched day add' or load the sample with 'confsched init --sample'.")
	}
	parts := make([]string, 0, len(schedule))
	for _, day := range schedule {
		parts = append(parts, RenderDay(day))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
