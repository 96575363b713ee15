package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/tui"
)

type ShowCmd struct {
	Day  string `short:"d" help:"Only show the day with this ID."`
	JSON bool   `name:"json" help:"Print the schedule document as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Service.Schedule(context.Background())
	if err != nil {
		return err
	}

	var out any = current
	if c.Day != "" {
		day, err := ctx.Service.GetDay(context.Background(), c.Day)
		if err != nil {
			return err
		}
		out = day
		current = models.Schedule{day}
	}

	if c.JSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		ctx.Println(string(data))
		return nil
	}

	ctx.Println(tui.RenderSchedule(current))
	return nil
}
