package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Show    HabitShowCmd    `cmd:"" help:"Show a habit and its recent progress."`
	Done    HabitDoneCmd    `cmd:"" help:"Mark a habit as done today."`
	Undo    HabitUndoCmd    `cmd:"" help:"Drop the most recent progress entry."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Remove  HabitRemoveCmd  `cmd:"" help:"Move a habit to the trash."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a habit from the trash."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit permanently."`
}

type HabitAddCmd struct {
	Text     string `arg:"" help:"Habit description."`
	Period   string `default:"daily" enum:"daily,custom" help:"Recurrence period."`
	Interval string `help:"Free-form interval for custom habits (e.g. weekdays)."`
	Start    string `help:"First day (YYYY-MM-DD). Defaults to today."`
	End      string `help:"Last day (YYYY-MM-DD). Open-ended when omitted."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.CreateHabit(lifecycle.CreateHabitInput{
			UserID:         ctx.User(),
			Text:           c.Text,
			Period:         c.Period,
			CustomInterval: c.Interval,
			StartDate:      c.Start,
			EndDate:        c.End,
		})
		if err != nil {
			return err
		}
		ctx.Printf("Added habit: %s (ID: %s)\n", h.Text, h.ID)
		return nil
	})
}

type HabitListCmd struct {
	Removed bool `help:"List trashed habits instead."`
	All     bool `help:"List habits of every user."`
	ShowIDs bool `help:"Show habit IDs." name:"show-ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	owner := ctx.User()
	if c.All {
		owner = ""
	}
	return ctx.Run(func(e *lifecycle.Engine) error {
		habits := e.ListHabits(owner)
		if c.Removed {
			habits = e.ListRemovedHabits(owner)
		}
		if len(habits) == 0 {
			ctx.Println("No habits found.")
			return nil
		}
		today := utils.DayOf(ctx.Now(), ctx.Location())
		for _, h := range habits {
			mark := "[ ]"
			if i := h.EntryFor(today); i >= 0 && h.Progress[i].Completed {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s %s %s streak %d (best %d)",
				mark, h.Text, cli.StatusLabel(string(h.Status)), h.CurrentStreak, h.BestStreak)
			if c.ShowIDs {
				line += " " + cli.Dim("(ID: "+h.ID+")")
			}
			ctx.Println(line)
		}
		return nil
	})
}

type HabitShowCmd struct {
	ID   string `arg:"" help:"Habit ID."`
	Days int    `default:"14" help:"Number of progress days to show."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.GetHabit(c.ID)
		if err != nil {
			return err
		}
		printHabit(ctx, h, c.Days)
		return nil
	})
}

func printHabit(ctx *cli.Context, h models.Habit, days int) {
	ctx.Println(cli.HeaderStyle.Render(h.Text))
	ctx.Printf("  Status:  %s\n", cli.StatusLabel(string(h.Status)))
	period := string(h.Period)
	if h.CustomInterval != "" {
		period += " (" + h.CustomInterval + ")"
	}
	ctx.Printf("  Period:  %s\n", period)
	end := h.EndDate
	if end == "" {
		end = "open"
	}
	ctx.Printf("  Range:   %s .. %s\n", h.StartDate, end)
	ctx.Printf("  Streak:  %d (best %d)\n", h.CurrentStreak, h.BestStreak)

	progress := h.Progress
	if days > 0 && len(progress) > days {
		progress = progress[len(progress)-days:]
	}
	if len(progress) == 0 {
		ctx.Println("  No progress recorded.")
		return
	}
	var b strings.Builder
	for _, p := range progress {
		if p.Completed {
			b.WriteString("■")
		} else {
			b.WriteString("□")
		}
	}
	ctx.Printf("  History: %s (%s .. %s)\n", b.String(), progress[0].Day, progress[len(progress)-1].Day)
}

type HabitDoneCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.CompleteHabitToday(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("✓ %s done today. Streak %d (best %d)\n", h.Text, h.CurrentStreak, h.BestStreak)
		return nil
	})
}

type HabitUndoCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (c *HabitUndoCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.UndoHabitProgress(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("Undid last entry for %s. Streak %d\n", h.Text, h.CurrentStreak)
		return nil
	})
}

type HabitEditCmd struct {
	ID       string `arg:"" help:"Habit ID."`
	Text     string `help:"New description."`
	Period   string `help:"New period (daily or custom)."`
	Interval string `help:"New custom interval."`
	End      string `help:"New last day (YYYY-MM-DD)."`
	Status   string `help:"New status (active, paused or removed)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.UpdateHabit(c.ID, lifecycle.HabitPatch{
			Text:           c.Text,
			Period:         c.Period,
			CustomInterval: c.Interval,
			EndDate:        c.End,
			Status:         c.Status,
		})
		if err != nil {
			return err
		}
		ctx.Printf("Updated habit: %s [%s]\n", h.Text, cli.StatusLabel(string(h.Status)))
		return nil
	})
}

type HabitRemoveCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (c *HabitRemoveCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.RemoveHabit(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("Moved habit %q to the trash\n", h.Text)
		return nil
	})
}

type HabitRestoreCmd struct {
	ID string `arg:"" help:"Habit ID."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		h, err := e.RestoreHabit(c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("Restored habit %q\n", h.Text)
		return nil
	})
}

type HabitDeleteCmd struct {
	ID  string `arg:"" help:"Habit ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete habit %s and all its progress?", c.ID))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Cancelled")
		return nil
	}
	ctx.PerformAutomaticBackup()
	return ctx.Run(func(e *lifecycle.Engine) error {
		if err := e.DeleteHabit(c.ID); err != nil {
			return err
		}
		ctx.Printf("Deleted habit %s\n", c.ID)
		return nil
	})
}
