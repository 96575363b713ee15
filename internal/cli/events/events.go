package events

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/utils"
)

type EventAddCmd struct {
	DayID      string `arg:"" name:"day-id" help:"ID of the day to add the event to."`
	Name       string `arg:"" help:"Event name."`
	Time       string `short:"t" required:"" help:"Time range as displayed, e.g. '9:30am - 12:00pm (GMT +1)'."`
	Link       string `short:"l" help:"Stream or meeting link."`
	HasOutline bool   `help:"Mark the event as expecting an outline upload."`
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Service.AddEvent(context.Background(), models.EventInput{
		DayID:      c.DayID,
		Time:       c.Time,
		Name:       c.Name,
		Link:       c.Link,
		HasOutline: c.HasOutline,
	})
	if err != nil {
		return err
	}

	day := result[result.FindDay(c.DayID)]
	added := day.Events[len(day.Events)-1]
	ctx.Printf("✓ Added '%s' to %s with ID %s\n", added.Name, day.Day, added.ID)
	return nil
}

// EventEditCmd changes only the fields that were passed.
type EventEditCmd struct {
	DayID     string `arg:"" name:"day-id" help:"Day ID."`
	EventID   string `arg:"" name:"event-id" help:"Event ID."`
	Name      string `short:"n" help:"New name. Renaming changes the event ID."`
	Time      string `short:"t" help:"New time range."`
	Link      string `short:"l" help:"New link."`
	ClearLink bool   `help:"Remove the link."`
	Outline   bool   `name:"has-outline" help:"Mark the event as expecting an outline." xor:"outline"`
	NoOutline bool   `help:"Clear the outline flag. Ignored while an outline file is attached." xor:"outline"`
}

func (c *EventEditCmd) Run(ctx *cli.Context) error {
	if c.Link != "" && c.ClearLink {
		return errors.New("--link and --clear-link cannot be used together")
	}

	_, current, err := ctx.Service.GetEvent(context.Background(), c.DayID, c.EventID)
	if err != nil {
		return err
	}

	in := models.EventInput{
		Time:       current.Time,
		Name:       current.Name,
		Link:       current.Link,
		HasOutline: current.HasOutline,
	}
	if c.Name != "" {
		in.Name = c.Name
	}
	if c.Time != "" {
		in.Time = c.Time
	}
	switch {
	case c.Link != "":
		in.Link = c.Link
	case c.ClearLink:
		in.Link = ""
	}
	switch {
	case c.Outline:
		in.HasOutline = true
	case c.NoOutline:
		in.HasOutline = false
	}

	if _, err := ctx.Service.UpdateEvent(context.Background(), c.DayID, c.EventID, in); err != nil {
		return err
	}

	if newID := utils.EventID(c.DayID, in.Name); newID != current.ID {
		ctx.Printf("✓ Updated event, ID changed from %s to %s\n", current.ID, newID)
		return nil
	}
	ctx.Printf("✓ Updated event %s\n", current.ID)
	return nil
}

type EventDeleteCmd struct {
	DayID   string `arg:"" name:"day-id" help:"Day ID."`
	EventID string `arg:"" name:"event-id" help:"Event ID."`
	Yes     bool   `short:"y" help:"Skip confirmation."`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	day, ev, err := ctx.Service.GetEvent(context.Background(), c.DayID, c.EventID)
	if err != nil {
		return err
	}

	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete '%s'?", ev.Name),
		fmt.Sprintf("The event will be removed from %s along with any uploaded outline.", day.Day))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if _, err := ctx.Service.DeleteEvent(context.Background(), c.DayID, c.EventID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted '%s'\n", ev.Name)
	return nil
}

type EventAttachCmd struct {
	DayID   string `arg:"" name:"day-id" help:"Day ID."`
	EventID string `arg:"" name:"event-id" help:"Event ID."`
	File    string `arg:"" type:"existingfile" help:"Outline file to upload."`
}

func (c *EventAttachCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open outline: %w", err)
	}
	defer f.Close()

	ev, err := ctx.Service.AttachOutline(context.Background(), c.DayID, c.EventID, filepath.Base(c.File), f)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Attached outline to '%s': %s\n", ev.Name, ev.OutlineFile)
	return nil
}
