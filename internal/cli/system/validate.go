package system

import (
	"context"
	"errors"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/validation"
)

// ErrConflictsFound makes the command exit non-zero when the report is not clean.
var ErrConflictsFound = errors.New("schedule has conflicts")

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Service.Schedule(context.Background())
	if err != nil {
		return err
	}

	result := validation.New(ctx.Files).ValidateSchedule(current)
	ctx.Println(result.FormatReport())
	if result.HasConflicts() {
		return ErrConflictsFound
	}
	return nil
}
