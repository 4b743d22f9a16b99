package cli

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/models"
)

var (
	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	forgottenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// StatusLabel renders a reminder or habit status word.
func StatusLabel(status string) string {
	switch status {
	case string(models.ReminderActive):
		return activeStyle.Render(status)
	case string(models.ReminderCompleted):
		return completedStyle.Render(status)
	case string(models.ReminderForgotten):
		return forgottenStyle.Render(status)
	case string(models.HabitPaused):
		return pausedStyle.Render(status)
	default:
		return dimStyle.Render(status)
	}
}

func Dim(s string) string {
	return dimStyle.Render(s)
}

// FormatReminder renders one list line for r, with due time shown in loc.
func FormatReminder(r models.Reminder, loc *time.Location, showIDs bool) string {
	line := "[" + StatusLabel(string(r.Status)) + "] " + r.Text +
		" " + Dim("due "+r.Time.In(loc).Format(constants.DefaultListTimeLayout))
	if len(r.Tags) > 0 {
		line += " " + Dim("#"+strings.Join(r.Tags, " #"))
	}
	if showIDs {
		line += " " + Dim("(ID: "+r.ID+")")
	}
	return line
}
