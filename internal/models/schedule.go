package models

// Event is a scheduled activity nested under a Day. Optional fields are
// omitted from the persisted document when empty.
type Event struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
	HasOutline  bool   `json:"hasOutline,omitempty"`
	OutlineFile string `json:"outlineFile,omitempty"`
}

// Day is one calendar day of the conference.
type Day struct {
	ID     string  `json:"id"`
	Day    string  `json:"day"`
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}

// Schedule is the whole persisted document. Order is display order.
type Schedule []Day

// DayInput carries the fields accepted when creating a day.
type DayInput struct {
	Day  string `json:"day"`
	Date string `json:"date"`
}

// EventInput carries the fields accepted when creating or replacing an event.
// DayID is only read on creation.
type EventInput struct {
	DayID      string `json:"day_id,omitempty"`
	Time       string `json:"time"`
	Name       string `json:"name"`
	Link       string `json:"link,omitempty"`
	HasOutline bool   `json:"hasOutline,omitempty"`
}

// FindDay returns the index of the day with the given id, or -1.
func (s Schedule) FindDay(id string) int {
	for i := range s {
		if s[i].ID == id {
			return i
		}
	}
	return -1
}

// FindEvent returns the index of the event with the given id, or -1.
func (d *Day) FindEvent(id string) int {
	for i := range d.Events {
		if d.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return Schedule{}
	}
	out := make(Schedule, len(s))
	for i, d := range s {
		out[i] = d
		out[i].Events = append([]Event(nil), d.Events...)
		if out[i].Events == nil {
			out[i].Events = []Event{}
		}
	}
	return out
}

// EventCount returns the total number of events across all days.
func (s Schedule) EventCount() int {
	n := 0
	for _, d := range s {
		n += len(d.Events)
	}
	return n
}
