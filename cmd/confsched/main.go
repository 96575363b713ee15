package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/cli/backups"
	"github.com/julianstephens/confsched/internal/cli/days"
	"github.com/julianstephens/confsched/internal/cli/events"
	"github.com/julianstephens/confsched/internal/cli/system"
	"github.com/julianstephens/confsched/internal/config"
	"github.com/julianstephens/confsched/internal/constants"
	apperrors "github.com/julianstephens/confsched/internal/errors"
	"github.com/julianstephens/confsched/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"YAML config file. Created with defaults on first run." type:"path" default:"${config_path}" env:"CONFSCHED_CONFIG"`
	DataDir string `name:"data-dir" help:"Directory for schedule.json, outlines, backups and logs. Overrides the config file." type:"path" env:"CONFSCHED_DATA_DIR"`
	Store   string `help:"Storage backend: a .json path, a .db/.sqlite path, 'postgres' (connection from ${env_db} or the keyring), or a postgres:// URL without a password." env:"CONFSCHED_STORE"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Serve    system.ServeCmd    `cmd:"" help:"Run the HTTP and WebSocket API." default:"1"`
	Init     system.InitCmd     `cmd:"" help:"Initialize schedule storage."`
	Show     system.ShowCmd     `cmd:"" help:"Print the schedule."`
	Validate system.ValidateCmd `cmd:"" help:"Check the schedule for conflicts."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive schedule browser."`
	Day      struct {
		Add    days.DayAddCmd    `cmd:"" help:"Add a day."`
		Delete days.DayDeleteCmd `cmd:"" help:"Delete a day and its events."`
	} `cmd:"" help:"Manage days."`
	Event struct {
		Add    events.EventAddCmd    `cmd:"" help:"Add an event to a day."`
		Edit   events.EventEditCmd   `cmd:"" help:"Edit an event."`
		Delete events.EventDeleteCmd `cmd:"" help:"Delete an event."`
		Attach events.EventAttachCmd `cmd:"" help:"Upload an outline for an event."`
	} `cmd:"" help:"Manage events."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage schedule backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage PostgreSQL credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description(constants.AppTitle),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
			"env_db":      constants.EnvDBConnection,
		},
	)
	command := ctx.Command()

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatalf("failed to load config: %w", err)
	}
	if CLI.DataDir != "" {
		cfg.DataDir = CLI.DataDir
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	// Hosting platforms hand out the port through $PORT.
	if port := os.Getenv("PORT"); port != "" {
		cfg.Listen = net.JoinHostPort("0.0.0.0", port)
	}

	if err := logger.Init(logger.Config{
		Debug:   CLI.Debug,
		DataDir: cfg.DataDir,
		Console: command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	// Keyring commands manage the credentials a Postgres store would need,
	// so they run without opening one.
	if strings.HasPrefix(command, "keyring") {
		apperrors.Fatal(ctx.Run(&cli.Context{Config: cfg, Out: os.Stdout}))
		return
	}

	appCtx, err := cli.NewContext(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	defer appCtx.Close()

	// These commands open storage themselves.
	switch command {
	case "init", "serve", "doctor":
	default:
		if err := appCtx.Store.Init(); err != nil {
			appCtx.Close()
			apperrors.Fatalf("failed to open storage: %w", err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		appCtx.Close()
		apperrors.Fatal(err)
	}
}
