package system

import (
	"bytes"
	"context"
	"testing"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/config"
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
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.Confirm = func(string, string) (bool, error) { return true, nil }
	return ctx, out
}

func loadSample(t *testing.T, ctx *cli.Context) {
	t.Helper()
	if _, err := ctx.Service.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
}
