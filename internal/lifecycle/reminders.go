package lifecycle

import (
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/utils"
)

type CreateReminderInput struct {
	UserID string   `json:"user_id" validate:"required"`
	Text   string   `json:"text" validate:"required"`
	Time   string   `json:"time" validate:"required"`
	Tags   []string `json:"tags"`
}

// ReminderPatch carries optional edits. An empty field keeps its prior value.
type ReminderPatch struct {
	Text string
	Time string
}

func (e *Engine) CreateReminder(input CreateReminderInput) (models.Reminder, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Text = strings.TrimSpace(input.Text)
	input.Time = strings.TrimSpace(input.Time)
	if err := e.checkInput(entityReminder, input); err != nil {
		return models.Reminder{}, err
	}
	due, err := utils.ParseInstant(input.Time)
	if err != nil {
		return models.Reminder{}, invalidInput(entityReminder, "", "%v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now, _ := e.now()

	r := &models.Reminder{
		ID:        e.newID(),
		UserID:    input.UserID,
		Text:      input.Text,
		Tags:      models.NormalizeTags(input.Tags),
		Time:      due,
		Status:    models.ReminderActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.store.putReminder(r)
	e.store.markReminder(r.ID)
	e.advanceAchievements(r.UserID, models.MetricRemindersCreated, now, increment)
	e.log.Debug("reminder created", "id", r.ID, "user", r.UserID, "due", r.Time)
	return r.Clone(), nil
}

// ListReminders reconciles and returns the non-trashed reminders of userID,
// or of every user when userID is empty, ordered by (time, id).
func (e *Engine) ListReminders(userID string) []models.Reminder {
	return e.listReminders(userID, false)
}

// ListRemovedReminders is ListReminders for trashed reminders.
func (e *Engine) ListRemovedReminders(userID string) []models.Reminder {
	return e.listReminders(userID, true)
}

func (e *Engine) listReminders(userID string, removed bool) []models.Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	now, today := e.now()

	users := e.store.reminderUsers()
	if userID != "" {
		users = []string{userID}
	}
	e.reconcile(now, today, users)

	out := []models.Reminder{}
	for _, uid := range users {
		for _, r := range e.store.userReminders(uid) {
			if r.Removed == removed {
				out = append(out, r.Clone())
			}
		}
	}
	if userID == "" {
		slices.SortFunc(out, func(a, b models.Reminder) int {
			return compareReminders(&a, &b)
		})
	}
	return out
}

// CompleteReminder writes an explicit status. Explicit writes may set any
// status, including moving a reminder out of a terminal one.
func (e *Engine) CompleteReminder(id, status string) (models.Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.reminders[id]
	if !ok {
		return models.Reminder{}, notFound(entityReminder, id)
	}
	next, err := models.ParseReminderStatus(status)
	if err != nil {
		return models.Reminder{}, invalidInput(entityReminder, id, "unknown status %q", status)
	}
	now, _ := e.now()

	prev := r.Status
	r.Status = next
	r.UpdatedAt = now
	if next == models.ReminderCompleted {
		t := now
		r.CompletedAt = &t
	} else {
		r.CompletedAt = nil
	}
	e.store.markReminder(id)
	if prev != next {
		e.metrics.ObserveTransition(string(next))
	}
	e.log.Debug("reminder status set", "id", id, "from", prev, "to", next)
	return r.Clone(), nil
}

// UpdateReminder applies the supplied fields of patch. Changing the due time
// re-arms the due-soon notification.
func (e *Engine) UpdateReminder(id string, patch ReminderPatch) (models.Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.reminders[id]
	if !ok {
		return models.Reminder{}, notFound(entityReminder, id)
	}

	text := strings.TrimSpace(patch.Text)
	var due time.Time
	if tm := strings.TrimSpace(patch.Time); tm != "" {
		parsed, err := utils.ParseInstant(tm)
		if err != nil {
			return models.Reminder{}, invalidInput(entityReminder, id, "%v", err)
		}
		due = parsed
	}
	if text == "" && due.IsZero() {
		return r.Clone(), nil
	}

	now, _ := e.now()
	if text != "" {
		r.Text = text
	}
	if !due.IsZero() {
		r.Time = due
		r.NotificationSent = false
	}
	r.UpdatedAt = now
	e.store.markReminder(id)
	return r.Clone(), nil
}

// SetReminderTags replaces the reminder's tag set.
func (e *Engine) SetReminderTags(id string, tags []string) (models.Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.reminders[id]
	if !ok {
		return models.Reminder{}, notFound(entityReminder, id)
	}
	now, _ := e.now()
	r.Tags = models.NormalizeTags(tags)
	r.UpdatedAt = now
	e.store.markReminder(id)
	return r.Clone(), nil
}

// RemoveReminder moves a reminder to the trash.
func (e *Engine) RemoveReminder(id string) (models.Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.reminders[id]
	if !ok {
		return models.Reminder{}, notFound(entityReminder, id)
	}
	now, _ := e.now()
	r.Removed = true
	r.UpdatedAt = now
	e.store.markReminder(id)
	return r.Clone(), nil
}

// RestoreReminder takes a reminder out of the trash and re-activates it.
// CountedInStats is kept, so an outcome already recorded is never recorded again.
func (e *Engine) RestoreReminder(id string) (models.Reminder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.store.reminders[id]
	if !ok {
		return models.Reminder{}, notFound(entityReminder, id)
	}
	now, _ := e.now()
	r.Removed = false
	r.Status = models.ReminderActive
	r.CompletedAt = nil
	r.UpdatedAt = now
	e.store.markReminder(id)
	return r.Clone(), nil
}

// DeleteReminder removes a reminder permanently.
func (e *Engine) DeleteReminder(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.reminders[id]; !ok {
		return notFound(entityReminder, id)
	}
	e.store.removeReminder(id)
	e.log.Debug("reminder deleted", "id", id)
	return nil
}

// DueReminders returns active, non-trashed reminders of userID (every user
// when empty) falling in [now, now+window) that have not been announced yet,
// and marks them announced.
func (e *Engine) DueReminders(userID string, window time.Duration) ([]models.Reminder, error) {
	return e.collectDue(userID, window, true)
}

// UpcomingReminders reports what DueReminders would return without marking
// anything announced.
func (e *Engine) UpcomingReminders(userID string, window time.Duration) ([]models.Reminder, error) {
	return e.collectDue(userID, window, false)
}

func (e *Engine) collectDue(userID string, window time.Duration, announce bool) ([]models.Reminder, error) {
	if window <= 0 {
		return nil, invalidInput(entityReminder, "", "notification window must be positive, got %s", window)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now, _ := e.now()
	until := now.Add(window)

	users := e.store.reminderUsers()
	if userID != "" {
		users = []string{userID}
	}

	due := []models.Reminder{}
	for _, uid := range users {
		for _, r := range e.store.userReminders(uid) {
			if r.Status != models.ReminderActive || r.Removed || r.NotificationSent {
				continue
			}
			if r.Time.Before(now) || !r.Time.Before(until) {
				continue
			}
			if announce {
				r.NotificationSent = true
				e.store.markReminder(r.ID)
			}
			due = append(due, r.Clone())
		}
	}
	slices.SortFunc(due, func(a, b models.Reminder) int {
		return compareReminders(&a, &b)
	})
	return due, nil
}
