package system

import (
	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/models"
)

type AchievementsCmd struct {
	Unlocked bool `help:"Only show unlocked achievements."`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		list, err := e.ListAchievements(ctx.User())
		if err != nil {
			return err
		}

		ctx.Println(cli.HeaderStyle.Render("Achievements for " + ctx.User()))
		shown := 0
		for _, a := range list {
			if c.Unlocked && !a.Unlocked {
				continue
			}
			tmpl, ok := models.AchievementTemplateByID(a.TemplateID)
			if !ok {
				continue
			}
			mark := " "
			if a.Unlocked {
				mark = "✓"
			}
			ctx.Printf("  [%s] %-18s %d/%d", mark, tmpl.Name, a.Progress, tmpl.Threshold)
			if a.UnlockedAt != nil {
				ctx.Printf("  unlocked %s", a.UnlockedAt.In(ctx.Location()).Format(constants.DateFormat))
			}
			ctx.Println()
			ctx.Println(cli.Dim("      " + tmpl.Description))
			shown++
		}
		if shown == 0 {
			ctx.Println("No achievements unlocked yet.")
		}
		return nil
	})
}
