package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/tracklit/internal/backup"
	"github.com/julianstephens/tracklit/internal/config"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/logger"
	"github.com/julianstephens/tracklit/internal/metrics"
	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
	"github.com/julianstephens/tracklit/internal/storage/sqlite"
)

// Sender delivers a due reminder to the user.
type Sender interface {
	NotifyReminder(ctx context.Context, r models.Reminder) error
}

type Context struct {
	Store      storage.Provider
	Config     config.Config
	ConfigPath string
	// UserID overrides Config.UserID when set.
	UserID   string
	Out      io.Writer
	Notifier Sender
	Registry *prometheus.Registry
	Clock    lifecycle.Clock
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)

	engine *lifecycle.Engine
}

func (c *Context) User() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Config.UserID
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.stdout(), args...)
}

func (c *Context) stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// Engine loads the store and builds the lifecycle engine on first use.
func (c *Context) Engine() (*lifecycle.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	store, err := lifecycle.Load(c.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}
	loc, err := c.Config.Location()
	if err != nil {
		return nil, err
	}
	var m *metrics.Metrics
	if c.Registry != nil {
		if m, err = metrics.New(c.Registry); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	c.engine = lifecycle.New(store,
		lifecycle.WithClock(c.Clock),
		lifecycle.WithLocation(loc),
		lifecycle.WithLogger(logger.Get()),
		lifecycle.WithMetrics(m),
	)
	return c.engine, nil
}

// Run executes op against the engine and then persists whatever changed,
// including reconciliation side effects of a failed op.
func (c *Context) Run(op func(*lifecycle.Engine) error) error {
	e, err := c.Engine()
	if err != nil {
		return err
	}
	opErr := op(e)
	if err := e.Sync(c.Store); err != nil {
		return errors.Join(opErr, err)
	}
	return opErr
}

// Confirmed asks title through Confirm unless yes is already set.
func (c *Context) Confirmed(yes bool, title string) (bool, error) {
	if yes {
		return true, nil
	}
	confirm := c.Confirm
	if confirm == nil {
		confirm = Prompt
	}
	return confirm(title)
}

// Now reads the context clock.
func (c *Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Location returns the configured timezone, falling back to local time.
func (c *Context) Location() *time.Location {
	loc, err := c.Config.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// BackupManager returns a snapshot manager when the store is a SQLite file.
func (c *Context) BackupManager() (*backup.Manager, bool) {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return nil, false
	}
	return backup.NewManager(s.GetConfigPath()), true
}

// PerformAutomaticBackup snapshots the database before destructive edits.
// Failures are logged and never block the caller.
func (c *Context) PerformAutomaticBackup() {
	mgr, ok := c.BackupManager()
	if !ok {
		return
	}
	path, err := mgr.Create()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	logger.Debug("Automatic backup created", "path", path)
}
