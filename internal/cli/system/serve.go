package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/lockfile"
	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/schedule"
	"github.com/julianstephens/confsched/internal/server"
	"github.com/julianstephens/confsched/internal/watcher"
)

type ServeCmd struct {
	Listen  string `help:"Listen address, overrides the config file." env:"CONFSCHED_LISTEN"`
	NoWatch bool   `help:"Do not watch schedule.json for external edits."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(cfg.DataDir, cfg.Listen)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "error", err)
		}
	}()

	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer ctx.Store.Close()

	hub := server.NewHub()
	hub.Start()
	defer hub.Stop()

	reloads := server.NewReloadNotifier(hub, nil)
	svc := ctx.NewService(
		schedule.WithListener(hub.Listener()),
		schedule.WithListener(reloads.Listener()),
	)
	ctx.Service = svc
	reloads.SetService(svc)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ctx.Store.Kind() == "json" && !c.NoWatch {
		if err := reloads.Prime(runCtx); err != nil {
			return err
		}
		w, err := watcher.New(ctx.Store.GetConfigPath(), watcher.DefaultDebounce, func() {
			reloads.Check(runCtx)
		})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	if cfg.BackupCronEnabled() {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.BackupCron, ctx.PerformAutomaticBackup); err != nil {
			return fmt.Errorf("invalid backup_cron %q: %w", cfg.BackupCron, err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("Scheduled backups enabled", "cron", cfg.BackupCron, "dir", ctx.Backups.GetBackupDir())
	}

	fmt.Fprintf(os.Stderr, "Serving %s schedule from %s on http://%s\n", ctx.Store.Kind(), ctx.Store.GetConfigPath(), cfg.Listen)
	srv := server.NewServer(cfg, svc, ctx.Files, hub)
	return srv.ListenAndServe(runCtx)
}
