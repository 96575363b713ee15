package validation

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/confsched/internal/attachments"
	"github.com/julianstephens/confsched/internal/models"
)

func conflictTypes(result ValidationResult) []ConflictType {
	types := make([]ConflictType, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		types = append(types, c.Type)
	}
	return types
}

func TestValidateSchedule_Clean(t *testing.T) {
	schedule := models.Schedule{
		{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{
			{ID: "1-opening", Time: "9am", Name: "Opening"},
		}},
		{ID: "2", Day: "Day 2", Date: "d2", Events: []models.Event{
			{ID: "2-opening", Time: "9am", Name: "Opening"},
		}},
	}

	result := New(nil).ValidateSchedule(schedule)
	if result.HasConflicts() {
		t.Errorf("Expected no conflicts, got: %s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("Unexpected report %q", result.FormatReport())
	}
}

func TestValidateSchedule_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		schedule models.Schedule
		want     ConflictType
	}{
		{
			name: "duplicate label",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{}},
				{ID: "1b", Day: "Day 1", Date: "d2", Events: []models.Event{}},
			},
			want: ConflictDuplicateDayLabel,
		},
		{
			name: "duplicate date",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{}},
				{ID: "2", Day: "Day 2", Date: "d1", Events: []models.Event{}},
			},
			want: ConflictDuplicateDate,
		},
		{
			name: "duplicate day id",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{}},
				{ID: "1", Day: "Session 1", Date: "d2", Events: []models.Event{}},
			},
			want: ConflictDuplicateDayID,
		},
		{
			name: "duplicate event name",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{
					{ID: "1-a", Time: "1", Name: "A"},
					{ID: "1-a-2", Time: "2", Name: "A"},
				}},
			},
			want: ConflictDuplicateEventName,
		},
		{
			name: "duplicate event id across days",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{{ID: "x", Time: "1", Name: "A"}}},
				{ID: "2", Day: "Day 2", Date: "d2", Events: []models.Event{{ID: "x", Time: "1", Name: "B"}}},
			},
			want: ConflictDuplicateEventID,
		},
		{
			name: "missing event time",
			schedule: models.Schedule{
				{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{{ID: "1-a", Name: "A"}}},
			},
			want: ConflictMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New(nil).ValidateSchedule(tt.schedule)
			types := conflictTypes(result)
			if len(types) != 1 || types[0] != tt.want {
				t.Errorf("Expected [%s], got %v", tt.want, types)
			}
			if !strings.HasPrefix(result.FormatReport(), "Conflicts detected:\n- ") {
				t.Errorf("Unexpected report %q", result.FormatReport())
			}
		})
	}
}

func TestValidateSchedule_MissingOutline(t *testing.T) {
	files := attachments.NewManager(filepath.Join(t.TempDir(), "outlines"))
	if _, err := files.Save("1-present", "a.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	schedule := models.Schedule{
		{ID: "1", Day: "Day 1", Date: "d1", Events: []models.Event{
			{ID: "1-present", Time: "1", Name: "Present", HasOutline: true, OutlineFile: "/outlines/1-present/a.pdf"},
			{ID: "1-missing", Time: "2", Name: "Missing", HasOutline: true, OutlineFile: "/outlines/1-missing/b.pdf"},
			{ID: "1-external", Time: "3", Name: "External", HasOutline: true, OutlineFile: "https://example.com/c.pdf"},
		}},
	}

	result := New(files).ValidateSchedule(schedule)
	if len(result.Conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got: %s", result.FormatReport())
	}
	c := result.Conflicts[0]
	if c.Type != ConflictMissingOutline || c.Items[0] != "1-missing" {
		t.Errorf("Unexpected conflict %#v", c)
	}
}
