package models

// UserStatistics holds one user's reminder outcome counters for the current day
type UserStatistics struct {
	UserID             string `json:"user_id"`
	RemindersCompleted int    `json:"reminders_completed"`
	RemindersForgotten int    `json:"reminders_forgotten"`
	LastResetDate      string `json:"last_reset_date"` // YYYY-MM-DD format
}

// Total returns the number of outcomes counted since the last reset.
func (s UserStatistics) Total() int {
	return s.RemindersCompleted + s.RemindersForgotten
}
