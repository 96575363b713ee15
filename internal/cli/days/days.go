package days

import (
	"context"
	"fmt"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/models"
)

type DayAddCmd struct {
	Day  string `arg:"" help:"Day label, e.g. 'Day 4'."`
	Date string `arg:"" help:"Date as displayed, e.g. 'SATURDAY, 30TH DECEMBER 2023'."`
}

func (c *DayAddCmd) Run(ctx *cli.Context) error {
	result, err := ctx.Service.AddDay(context.Background(), models.DayInput{Day: c.Day, Date: c.Date})
	if err != nil {
		return err
	}

	// New days are appended.
	added := result[len(result)-1]
	ctx.Printf("✓ Added %s (%s) with ID %s\n", added.Day, added.Date, added.ID)
	return nil
}

type DayDeleteCmd struct {
	ID  string `arg:"" help:"Day ID."`
	Yes bool   `short:"y" help:"Skip confirmation."`
}

func (c *DayDeleteCmd) Run(ctx *cli.Context) error {
	day, err := ctx.Service.GetDay(context.Background(), c.ID)
	if err != nil {
		return err
	}

	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete %s?", day.Day),
		fmt.Sprintf("%s and its %d event(s) will be removed along with their outlines.", day.Date, len(day.Events)))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if _, err := ctx.Service.DeleteDay(context.Background(), c.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted %s\n", day.Day)
	return nil
}
