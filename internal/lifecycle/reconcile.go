package lifecycle

import (
	"time"

	"github.com/julianstephens/tracklit/internal/metrics"
	"github.com/julianstephens/tracklit/internal/models"
)

// reconcile brings derived reminder state and statistics up to date for the
// given users. userIDs must be ascending. Callers hold e.mu.
func (e *Engine) reconcile(now time.Time, today string, userIDs []string) {
	for _, userID := range userIDs {
		st := e.store.statsFor(userID)
		statsChanged := e.resetStatistics(st, today)

		for _, r := range e.store.userReminders(userID) {
			changed := e.applyForgottenRule(r, now)
			counted := e.countOutcome(st, r, now)
			if changed || counted {
				e.store.markReminder(r.ID)
			}
			statsChanged = statsChanged || counted
		}

		if statsChanged {
			e.store.markStats(userID)
		}
	}
	e.metrics.ObserveReconcile()
}

// resetStatistics zeroes the counters when the last reset happened on a
// different day.
func (e *Engine) resetStatistics(st *models.UserStatistics, today string) bool {
	if st.LastResetDate == today {
		return false
	}
	e.log.Debug("resetting statistics", "user", st.UserID, "last_reset", st.LastResetDate, "today", today)
	st.RemindersCompleted = 0
	st.RemindersForgotten = 0
	st.LastResetDate = today
	e.metrics.ObserveReset()
	return true
}

// applyForgottenRule moves an overdue active reminder to forgotten.
func (e *Engine) applyForgottenRule(r *models.Reminder, now time.Time) bool {
	if !r.IsOverdue(now) {
		return false
	}
	r.Status = models.ReminderForgotten
	r.UpdatedAt = now
	e.log.Debug("reminder forgotten", "id", r.ID, "user", r.UserID, "due", r.Time)
	e.metrics.ObserveTransition(string(models.ReminderForgotten))
	return true
}

// countOutcome records a terminal outcome into st at most once per reminder.
// It is the only writer of CountedInStats, so completion achievements advance
// exactly once per reminder as well.
func (e *Engine) countOutcome(st *models.UserStatistics, r *models.Reminder, now time.Time) bool {
	if r.CountedInStats || !r.Status.Terminal() {
		return false
	}
	if r.Status == models.ReminderCompleted {
		st.RemindersCompleted++
		e.metrics.ObserveCounted(metrics.OutcomeCompleted)
		e.advanceAchievements(r.UserID, models.MetricRemindersCompleted, now, increment)
	} else {
		st.RemindersForgotten++
		e.metrics.ObserveCounted(metrics.OutcomeForgotten)
	}
	r.CountedInStats = true
	return true
}
