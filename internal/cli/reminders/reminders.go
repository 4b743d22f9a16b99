package reminders

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/models"
)

type ReminderCmd struct {
	Add      AddCmd      `cmd:"" help:"Add a reminder."`
	List     ListCmd     `cmd:"" help:"List reminders."`
	Complete CompleteCmd `cmd:"" help:"Set a reminder's status."`
	Edit     EditCmd     `cmd:"" help:"Edit a reminder's text or due time."`
	Tag      TagCmd      `cmd:"" help:"Replace a reminder's tags."`
	Remove   RemoveCmd   `cmd:"" help:"Move a reminder to the trash."`
	Restore  RestoreCmd  `cmd:"" help:"Restore a reminder from the trash."`
	Trash    TrashCmd    `cmd:"" help:"List trashed reminders."`
	Delete   DeleteCmd   `cmd:"" help:"Delete a reminder permanently."`
}

type AddCmd struct {
	Text string        `arg:"" help:"Reminder text."`
	At   string        `help:"Due time (RFC 3339, e.g. 2024-05-01T09:00:00Z)." xor:"due"`
	In   time.Duration `help:"Due after this long from now (e.g. 30m)." xor:"due"`
	Tags []string      `name:"tag" short:"t" help:"Tag to attach (repeatable)."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	at := c.At
	if c.In > 0 {
		at = ctx.Now().Add(c.In).Format(constants.InstantFormat)
	}
	if at == "" {
		return errors.New("one of --at or --in is required")
	}

	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.CreateReminder(lifecycle.CreateReminderInput{
			UserID: ctx.User(),
			Text:   c.Text,
			Time:   at,
			Tags:   c.Tags,
		})
		if err != nil {
			return err
		}
		ctx.Printf("Added reminder: %s (ID: %s)\n", r.Text, r.ID)
		return nil
	})
}

type ListCmd struct {
	All     bool `help:"List reminders of every user."`
	ShowIDs bool `help:"Show reminder IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		printReminders(ctx, e.ListReminders(c.owner(ctx)), "No reminders found", c.ShowIDs)
		return nil
	})
}

func (c *ListCmd) owner(ctx *cli.Context) string {
	if c.All {
		return ""
	}
	return ctx.User()
}

func printReminders(ctx *cli.Context, reminders []models.Reminder, empty string, showIDs bool) {
	if len(reminders) == 0 {
		ctx.Println(empty)
		return
	}
	loc := ctx.Location()
	for _, r := range reminders {
		ctx.Println("  " + cli.FormatReminder(r, loc, showIDs))
	}
}

type CompleteCmd struct {
	ID     string `arg:"" help:"Reminder ID."`
	Status string `arg:"" optional:"" default:"completed" enum:"active,completed,forgotten" help:"New status (active, completed or forgotten)."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.CompleteReminder(c.ID, c.Status)
		if err != nil {
			return err
		}
		ctx.Printf("Reminder %q is now %s\n", r.Text, cli.StatusLabel(string(r.Status)))
		return nil
	})
}

type EditCmd struct {
	ID   string `arg:"" help:"Reminder ID."`
	Text string `help:"New text."`
	At   string `help:"New due time (RFC 3339)."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	if c.Text == "" && c.At == "" {
		return errors.New("nothing to change: pass --text or --at")
	}
	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.UpdateReminder(c.ID, lifecycle.ReminderPatch{Text: c.Text, Time: c.At})
		if err != nil {
			return err
		}
		ctx.Println("Updated: " + cli.FormatReminder(r, ctx.Location(), false))
		return nil
	})
}

type TagCmd struct {
	ID   string   `arg:"" help:"Reminder ID."`
	Tags []string `arg:"" optional:"" help:"New tags. Omit to clear."`
}

func (c *TagCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.SetReminderTags(c.ID, c.Tags)
		if err != nil {
			return err
		}
		if len(r.Tags) == 0 {
			ctx.Printf("Cleared tags on %q\n", r.Text)
			return nil
		}
		ctx.Printf("Tagged %q: %v\n", r.Text, r.Tags)
		return nil
	})
}

type RemoveCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.RemoveReminder(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("Moved %q to the trash\n", r.Text)
		return nil
	})
}

type RestoreCmd struct {
	ID string `arg:"" help:"Reminder ID."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		r, err := e.RestoreReminder(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("Restored %q\n", r.Text)
		return nil
	})
}

type TrashCmd struct {
	All     bool `help:"List trashed reminders of every user."`
	ShowIDs bool `help:"Show reminder IDs." name:"show-ids"`
}

func (c *TrashCmd) Run(ctx *cli.Context) error {
	owner := ctx.User()
	if c.All {
		owner = ""
	}
	return ctx.Run(func(e *lifecycle.Engine) error {
		printReminders(ctx, e.ListRemovedReminders(owner), "Trash is empty", c.ShowIDs)
		return nil
	})
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Reminder ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete reminder %s permanently?", c.ID))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Cancelled")
		return nil
	}
	ctx.PerformAutomaticBackup()
	return ctx.Run(func(e *lifecycle.Engine) error {
		if err := e.DeleteReminder(c.ID); err != nil {
			return err
		}
		ctx.Printf("Deleted reminder %s\n", c.ID)
		return nil
	})
}
