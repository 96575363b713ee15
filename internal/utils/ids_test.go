package utils

import "testing"

func TestDayID(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{name: "trailing number", label: "Day 1", expected: "1"},
		{name: "multi digit", label: "Day 12", expected: "12"},
		{name: "number only at end counts", label: "2 Day 3", expected: "3"},
		{name: "no number", label: "Opening Night!", expected: "openingnight"},
		{name: "number not trailing", label: "Day 1 Extra", expected: "day1extra"},
		{name: "trailing newline", label: "Day 1\n", expected: "1"},
		{name: "empty", label: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayID(tt.label); got != tt.expected {
				t.Errorf("DayID(%q) = %q, want %q", tt.label, got, tt.expected)
			}
		})
	}
}

func TestEventID(t *testing.T) {
	tests := []struct {
		name     string
		dayID    string
		event    string
		expected string
	}{
		{name: "simple", dayID: "2", event: "Bible Study", expected: "2-bible-study"},
		{name: "punctuation", dayID: "2", event: "P.U.S.H", expected: "2-p-u-s-h"},
		{name: "runs collapse", dayID: "1", event: "Welcome programme / Movie Premiere", expected: "1-welcome-programme-movie-premiere"},
		{name: "trim hyphens", dayID: "3", event: "  -Symposium - ASPIRE- ", expected: "3-symposium-aspire"},
		{name: "word day id", dayID: "openingnight", event: "Worship", expected: "openingnight-worship"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EventID(tt.dayID, tt.event); got != tt.expected {
				t.Errorf("EventID(%q, %q) = %q, want %q", tt.dayID, tt.event, got, tt.expected)
			}
		})
	}
}

func TestIdentifiersAreDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if DayID("Day 7") != "7" {
			t.Fatal("DayID is not deterministic")
		}
		if EventID("7", "Closing Ceremony") != "7-closing-ceremony" {
			t.Fatal("EventID is not deterministic")
		}
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("---"); got != "" {
		t.Errorf("Slugify(%q) = %q, want empty", "---", got)
	}
	if got := Slugify("Q&A Session"); got != "q-a-session" {
		t.Errorf("Slugify(%q) = %q, want %q", "Q&A Session", got, "q-a-session")
	}
}
