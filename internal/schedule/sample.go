package schedule

import (
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/utils"
)

type sampleDay struct {
	day    string
	date   string
	events []models.EventInput
}

var sampleDays = []sampleDay{
	{
		day:  "Day 1",
		date: "WEDNESDAY, 27TH DECEMBER 2023",
		events: []models.EventInput{
			{Time: "12:00pm - 4:00pm (GMT +1)", Name: "Arrival of Participants"},
			{Time: "7:30pm - 10:30pm (GMT +1)", Name: "Welcome programme / Movie Premiere", Link: "https://www.youtube.com/live/kbTISnzSoeA?feature=shared"},
		},
	},
	{
		day:  "Day 2",
		date: "THURSDAY, 28TH DECEMBER 2023",
		events: []models.EventInput{
			{Time: "5:30am - 7:00am (GMT +1)", Name: "P.U.S.H", Link: "https://www.youtube.com/live/rnCSGMtxhSc?feature=shared"},
			{Time: "9:30pm - 12:00pm (GMT +1)", Name: "Bible Study", Link: "https://www.youtube.com/live/dE3PmH2-JHg?feature=shared", HasOutline: true},
		},
	},
	{
		day:  "Day 3",
		date: "FRIDAY, 29TH DECEMBER 2023",
		events: []models.EventInput{
			{Time: "5:30 - 7:00 (GMT +1)", Name: "P.U.S.H", Link: "https://www.youtube.com/live/Sr5SvTBszlI?feature=shared"},
			{Time: "09:30am - 12:00pm (GMT +1)", Name: "Symposium - ASPIRE", Link: "https://www.youtube.com/live/ZrHCG-1KUjo?feature=shared", HasOutline: true},
		},
	},
}

// SampleSchedule builds the conference sample data with generated identifiers.
func SampleSchedule() models.Schedule {
	schedule := make(models.Schedule, 0, len(sampleDays))
	for _, sd := range sampleDays {
		day := models.Day{
			ID:     utils.DayID(sd.day),
			Day:    sd.day,
			Date:   sd.date,
			Events: make([]models.Event, 0, len(sd.events)),
		}
		for _, in := range sd.events {
			day.Events = append(day.Events, newEvent(utils.EventID(day.ID, in.Name), in))
		}
		schedule = append(schedule, day)
	}
	return schedule
}
