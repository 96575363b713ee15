package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/constants"
	"github.com/julianstephens/confsched/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateDayLabel  ConflictType = "duplicate_day_label"
	ConflictDuplicateDate      ConflictType = "duplicate_date"
	ConflictDuplicateDayID     ConflictType = "duplicate_day_id"
	ConflictDuplicateEventName ConflictType = "duplicate_event_name"
	ConflictDuplicateEventID   ConflictType = "duplicate_event_id"
	ConflictMissingField       ConflictType = "missing_field"
	ConflictMissingOutline     ConflictType = "missing_outline"
)

// Conflict represents a detected problem in a schedule document
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
	DayID       string       `json:"day_id,omitempty"`
	Items       []string     `json:"items,omitempty"`
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks schedule documents for states the service would refuse
// to create, such as hand edits that duplicate labels or identifiers.
type Validator struct {
	files *attachments.Manager
}

// New creates a new Validator. When files is non-nil, recorded outlines are
// checked against the attachment directory as well.
func New(files *attachments.Manager) *Validator {
	return &Validator{files: files}
}

// ValidateSchedule checks the whole document.
func (v *Validator) ValidateSchedule(schedule models.Schedule) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	labels := make(map[string][]string)
	dates := make(map[string][]string)
	dayIDs := make(map[string]int)
	for _, day := range schedule {
		if day.ID == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingField,
				Description: fmt.Sprintf("Day %q has no id", day.Day),
				Items:       []string{day.Day},
			})
		} else {
			dayIDs[day.ID]++
		}
		if day.Day != "" {
			labels[day.Day] = append(labels[day.Day], day.ID)
		}
		if day.Date != "" {
			dates[day.Date] = append(dates[day.Date], day.ID)
		}
	}

	for _, label := range sortedKeys(labels) {
		if ids := labels[label]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateDayLabel,
				Description: fmt.Sprintf("Duplicate day label: %q (IDs: %v)", label, ids),
				Items:       ids,
			})
		}
	}
	for _, date := range sortedKeys(dates) {
		if ids := dates[date]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateDate,
				Description: fmt.Sprintf("Duplicate date: %q (IDs: %v)", date, ids),
				Items:       ids,
			})
		}
	}
	for _, id := range sortedKeys(dayIDs) {
		if dayIDs[id] > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateDayID,
				Description: fmt.Sprintf("Day id %q is used %d times", id, dayIDs[id]),
				DayID:       id,
				Items:       []string{id},
			})
		}
	}

	// Outline directories are keyed by event id alone, so ids must be unique
	// across the whole document, not just within a day.
	eventIDs := make(map[string][]string)
	for _, day := range schedule {
		names := make(map[string]int)
		for _, ev := range day.Events {
			if ev.ID == "" || ev.Name == "" || ev.Time == "" {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingField,
					Description: fmt.Sprintf("Event %q in %s is missing an id, name or time", ev.Name, day.Day),
					DayID:       day.ID,
					Items:       []string{ev.ID},
				})
			}
			if ev.Name != "" {
				names[ev.Name]++
			}
			if ev.ID != "" {
				eventIDs[ev.ID] = append(eventIDs[ev.ID], day.ID)
			}
			v.checkOutline(&result, day, ev)
		}
		for _, name := range sortedKeys(names) {
			if names[name] > 1 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateEventName,
					Description: fmt.Sprintf("Duplicate event name %q in %s", name, day.Day),
					DayID:       day.ID,
					Items:       []string{name},
				})
			}
		}
	}
	for _, id := range sortedKeys(eventIDs) {
		if days := eventIDs[id]; len(days) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateEventID,
				Description: fmt.Sprintf("Event id %q is used %d times (days: %v)", id, len(days), days),
				Items:       []string{id},
			})
		}
	}

	return result
}

func (v *Validator) checkOutline(result *ValidationResult, day models.Day, ev models.Event) {
	if v.files == nil || ev.OutlineFile == "" {
		return
	}
	if !strings.HasPrefix(ev.OutlineFile, constants.OutlinesURLPrefix) {
		return
	}
	if !v.files.Exists(ev.ID) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMissingOutline,
			Description: fmt.Sprintf("Outline %s for event %q has no stored file", ev.OutlineFile, ev.ID),
			DayID:       day.ID,
			Items:       []string{ev.ID},
		})
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
