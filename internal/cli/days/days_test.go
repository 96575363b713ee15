package days

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/config"
	"github.com/julianstephens/confsched/internal/schedule"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	ctx, err := cli.NewContext(cfg)
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })

	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.Confirm = func(string, string) (bool, error) { return true, nil }
	return ctx, out
}

func TestDayAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &DayAddCmd{Day: "Day 4", Date: "SATURDAY, 30TH DECEMBER 2023"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("day add failed: %v", err)
	}
	if !strings.Contains(out.String(), "with ID 4") {
		t.Errorf("unexpected output: %q", out.String())
	}

	err := cmd.Run(ctx)
	if !errors.Is(err, schedule.ErrConflict) {
		t.Errorf("expected ErrConflict on duplicate, got %v", err)
	}

	if err := (&DayAddCmd{Day: "Day 5"}).Run(ctx); !errors.Is(err, schedule.ErrValidation) {
		t.Errorf("expected ErrValidation without a date, got %v", err)
	}
}

func TestDayDeleteCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&DayAddCmd{Day: "Day 1", Date: "WEDNESDAY, 27TH DECEMBER 2023"}).Run(ctx); err != nil {
		t.Fatalf("day add failed: %v", err)
	}

	var asked string
	ctx.Confirm = func(title, _ string) (bool, error) {
		asked = title
		return false, nil
	}
	out.Reset()
	if err := (&DayDeleteCmd{ID: "1"}).Run(ctx); err != nil {
		t.Fatalf("day delete failed: %v", err)
	}
	if asked != "Delete Day 1?" {
		t.Errorf("unexpected prompt %q", asked)
	}
	if !strings.Contains(out.String(), "Delete cancelled.") {
		t.Errorf("expected cancellation, got %q", out.String())
	}

	if err := (&DayDeleteCmd{ID: "1", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("day delete --yes failed: %v", err)
	}
	s, err := ctx.Service.Schedule(context.Background())
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("expected empty schedule, got %d days", len(s))
	}

	if err := (&DayDeleteCmd{ID: "1", Yes: true}).Run(ctx); !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
