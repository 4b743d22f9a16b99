package system

import (
	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/lifecycle"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	return ctx.Run(func(e *lifecycle.Engine) error {
		st, err := e.GetStatistics(ctx.User())
		if err != nil {
			return err
		}
		ctx.Println(cli.HeaderStyle.Render("Today for " + st.UserID))
		ctx.Printf("  %s  %d\n", cli.StatusLabel("completed"), st.RemindersCompleted)
		ctx.Printf("  %s  %d\n", cli.StatusLabel("forgotten"), st.RemindersForgotten)
		ctx.Printf("  total      %d\n", st.Total())
		ctx.Println(cli.Dim("  counters reset " + st.LastResetDate))
		return nil
	})
}
