package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/cli/habits"
	"github.com/julianstephens/tracklit/internal/cli/reminders"
	"github.com/julianstephens/tracklit/internal/cli/system"
	"github.com/julianstephens/tracklit/internal/config"
	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/errors"
	"github.com/julianstephens/tracklit/internal/logger"
	"github.com/julianstephens/tracklit/internal/notifier"
)

type CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `name:"config-file" help:"Path to config.yaml." type:"path" default:"~/.config/tracklit/config.yaml"`
	Config     string `help:"Storage path, ':memory:' or PostgreSQL connection string. Overrides the storage section of the config file. Credentials must NOT be embedded in connection strings; use 'tracklit keyring set' instead." type:"string"`
	User       string `help:"User to act as. Overrides user_id from the config file."`
	DebugLog   bool   `name:"debug" help:"Log debug output to stderr."`

	Init         system.InitCmd         `cmd:"" help:"Initialize tracklit config and storage."`
	Reminder     reminders.ReminderCmd  `cmd:"" help:"Manage reminders."`
	Habit        habits.HabitCmd        `cmd:"" help:"Manage habits and habit tracking."`
	Stats        system.StatsCmd        `cmd:"" help:"Show today's reminder statistics."`
	Achievements system.AchievementsCmd `cmd:"" help:"Show achievement progress."`
	Notify       system.NotifyCmd       `cmd:"" help:"Send notifications for reminders due soon."`
	Keyring      system.KeyringCmd      `cmd:"" help:"Manage database credentials in the OS keyring."`
	Backup       system.BackupCmd       `cmd:"" help:"Snapshot and restore the SQLite database."`
	Debug        system.DebugCmd        `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var root CLI
	exitCode := -1
	parser, err := kong.New(&root,
		kong.Name(constants.AppName),
		kong.Description("Reminders and habit tracking with daily statistics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		return errors.Report(stderr, err)
	}
	ctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help and --version exit before a command is selected.
		return exitCode
	}
	if err != nil {
		parser.Errorf("%s", err)
		return errors.ExitInvalidInput
	}

	cfg, err := config.Load(root.ConfigFile)
	if err != nil {
		return errors.Report(stderr, err)
	}
	if root.DebugLog {
		cfg.Log.Debug = true
	}
	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, LogDir: cfg.Log.Dir, Stderr: stderr}); err != nil {
		fmt.Fprintf(stderr, "Warning: file logging disabled: %v\n", err)
	}

	store, err := cli.OpenStore(cfg, root.Config)
	if err != nil {
		return errors.Report(stderr, err)
	}
	logger.Debug("Opened store", "location", store.GetConfigPath())

	appCtx := &cli.Context{
		Store:      store,
		Config:     cfg,
		ConfigPath: root.ConfigFile,
		UserID:     root.User,
		Out:        stdout,
		Notifier:   notifier.New(notifier.WithLocation(configLocation(cfg))),
		Registry:   prometheus.NewRegistry(),
	}

	runErr := ctx.Run(appCtx)
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
	return errors.Report(stderr, runErr)
}

func configLocation(cfg config.Config) *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}
