package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/logger"
	"github.com/julianstephens/tracklit/internal/notifier"
)

type NotifyCmd struct {
	Window time.Duration `help:"Look-ahead window. Defaults to notify.window from the config."`
	All    bool          `help:"Notify for every user, not only the current one."`
	DryRun bool          `help:"Print due reminders instead of sending them. Nothing is marked as notified."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	window := c.Window
	if window == 0 {
		window = ctx.Config.Notify.Window.Std()
	}
	owner := ctx.User()
	if c.All {
		owner = ""
	}

	if c.DryRun {
		e, err := ctx.Engine()
		if err != nil {
			return err
		}
		due, err := e.UpcomingReminders(owner, window)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			ctx.Println("No reminders due.")
		}
		for _, r := range due {
			ctx.Println("Would notify: " + notifier.Message(r, ctx.Location()))
		}
		return nil
	}

	if ctx.Notifier == nil {
		return errors.New("no notifier configured")
	}
	return ctx.Run(func(e *lifecycle.Engine) error {
		due, err := e.DueReminders(owner, window)
		if err != nil {
			return err
		}
		var errs []error
		sent := 0
		for _, r := range due {
			if err := ctx.Notifier.NotifyReminder(context.Background(), r); err != nil {
				logger.Warn("Failed to deliver notification", "reminder", r.ID, "error", err)
				errs = append(errs, fmt.Errorf("reminder %s: %w", r.ID, err))
				continue
			}
			sent++
		}
		ctx.Printf("Sent %d of %d notifications\n", sent, len(due))
		return errors.Join(errs...)
	})
}
