package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/models"
)

type InitCmd struct {
	Sample bool `help:"Load the conference sample schedule."`
	Force  bool `help:"Replace an existing schedule without asking. Without --sample the schedule is reset to empty."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath())

	current, err := ctx.Store.Load()
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	if !c.Sample && !c.Force {
		ctx.Printf("Schedule has %d days and %d events\n", len(current), current.EventCount())
		return nil
	}

	if len(current) > 0 {
		ok, err := ctx.Confirmed(c.Force, "Replace the existing schedule?",
			fmt.Sprintf("%d days and %d events will be replaced. A backup is taken first.", len(current), current.EventCount()))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Init cancelled.")
			return nil
		}
	}

	if c.Sample {
		result, err := ctx.Service.Initialize(context.Background())
		if err != nil {
			return err
		}
		ctx.Printf("Loaded sample schedule: %d days, %d events\n", len(result), result.EventCount())
		return nil
	}

	if len(current) > 0 {
		if err := ctx.Backups.Snapshot(current); err != nil {
			return fmt.Errorf("failed to back up schedule before reset: %w", err)
		}
	}
	if err := ctx.Service.Replace(context.Background(), models.Schedule{}); err != nil {
		return err
	}
	ctx.Println("Schedule reset to empty")
	return nil
}
