package lifecycle

import (
	"slices"
	"strings"

	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/utils"
)

type CreateHabitInput struct {
	UserID         string `json:"user_id" validate:"required"`
	Text           string `json:"text" validate:"required"`
	Period         string `json:"period" validate:"omitempty,oneof=daily custom"`
	CustomInterval string `json:"custom_interval"`
	StartDate      string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// HabitPatch carries optional edits. An empty field keeps its prior value.
type HabitPatch struct {
	Text           string
	Period         string
	CustomInterval string
	EndDate        string
	Status         string
}

func (e *Engine) CreateHabit(input CreateHabitInput) (models.Habit, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Text = strings.TrimSpace(input.Text)
	input.Period = strings.ToLower(strings.TrimSpace(input.Period))
	input.StartDate = strings.TrimSpace(input.StartDate)
	input.EndDate = strings.TrimSpace(input.EndDate)
	if err := e.checkInput(entityHabit, input); err != nil {
		return models.Habit{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now, today := e.now()

	h := &models.Habit{
		ID:             e.newID(),
		UserID:         input.UserID,
		Text:           input.Text,
		Period:         models.HabitDaily,
		CustomInterval: strings.TrimSpace(input.CustomInterval),
		Status:         models.HabitActive,
		Progress:       []models.ProgressEntry{},
		StartDate:      today,
		EndDate:        input.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.Period != "" {
		h.Period = models.HabitPeriod(input.Period)
	}
	if h.Period != models.HabitCustom {
		h.CustomInterval = ""
	}
	if input.StartDate != "" {
		h.StartDate = input.StartDate
	}
	if h.EndDate != "" && h.EndDate < h.StartDate {
		return models.Habit{}, invalidInput(entityHabit, "", "end date %s is before start date %s", h.EndDate, h.StartDate)
	}

	e.store.putHabit(h)
	e.store.markHabit(h.ID)
	e.advanceAchievements(h.UserID, models.MetricHabitsCreated, now, increment)
	e.log.Debug("habit created", "id", h.ID, "user", h.UserID, "start", h.StartDate)
	return h.Clone(), nil
}

// ListHabits returns the habits of userID, or of every user when userID is
// empty, excluding removed ones. It does not reconcile.
func (e *Engine) ListHabits(userID string) []models.Habit {
	return e.listHabits(userID, func(h *models.Habit) bool { return h.Status != models.HabitRemoved })
}

// ListRemovedHabits returns habits whose status is removed.
func (e *Engine) ListRemovedHabits(userID string) []models.Habit {
	return e.listHabits(userID, func(h *models.Habit) bool { return h.Status == models.HabitRemoved })
}

func (e *Engine) listHabits(userID string, keep func(*models.Habit) bool) []models.Habit {
	e.mu.Lock()
	defer e.mu.Unlock()

	users := e.store.habitUsers()
	if userID != "" {
		users = []string{userID}
	}

	out := []models.Habit{}
	for _, uid := range users {
		for _, h := range e.store.userHabits(uid) {
			if keep(h) {
				out = append(out, h.Clone())
			}
		}
	}
	if userID == "" {
		slices.SortFunc(out, func(a, b models.Habit) int {
			return compareHabits(&a, &b)
		})
	}
	return out
}

func (e *Engine) GetHabit(id string) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.store.habits[id]
	if !ok {
		return models.Habit{}, notFound(entityHabit, id)
	}
	return h.Clone(), nil
}

// CompleteHabitToday marks today's progress entry completed, filling any
// missing days before it as not completed, then recomputes the streaks.
// It never turns a completed day back to not completed.
func (e *Engine) CompleteHabitToday(id string) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.store.habits[id]
	if !ok {
		return models.Habit{}, notFound(entityHabit, id)
	}
	now, today := e.now()

	if h.Status != models.HabitActive {
		return models.Habit{}, invalidInput(entityHabit, id, "habit is %s", h.Status)
	}
	if !h.ActiveOn(today) {
		return models.Habit{}, invalidInput(entityHabit, id, "%s is outside the habit's date range", today)
	}

	e.reconcile(now, today, []string{h.UserID})

	i := h.EntryFor(today)
	if i < 0 {
		filled, err := models.FillProgress(h.Progress, h.StartDate, today)
		if err != nil {
			return models.Habit{}, invalidInput(entityHabit, id, "%v", err)
		}
		h.Progress = filled
		i = h.EntryFor(today)
	}
	if h.Progress[i].Completed {
		return h.Clone(), nil
	}

	h.Progress[i].Completed = true
	e.updateStreaks(h, today)
	h.UpdatedAt = now
	e.store.markHabit(id)
	e.metrics.ObserveHabitCompletion()
	if h.Period == models.HabitDaily {
		streak := h.CurrentStreak
		e.advanceAchievements(h.UserID, models.MetricDailyHabitStreak, now, func(int) int { return streak })
	}
	e.log.Debug("habit completed", "id", id, "day", today, "streak", h.CurrentStreak, "best", h.BestStreak)
	return h.Clone(), nil
}

// UndoHabitProgress drops the most recent progress entry. The best streak is
// kept as it was.
func (e *Engine) UndoHabitProgress(id string) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.store.habits[id]
	if !ok {
		return models.Habit{}, notFound(entityHabit, id)
	}
	if h.Status == models.HabitRemoved {
		return models.Habit{}, invalidInput(entityHabit, id, "habit is %s", h.Status)
	}
	if len(h.Progress) == 0 {
		return models.Habit{}, invalidInput(entityHabit, id, "habit has no progress to undo")
	}
	now, today := e.now()

	h.Progress = h.Progress[:len(h.Progress)-1]
	e.updateStreaks(h, today)
	h.UpdatedAt = now
	e.store.markHabit(id)
	return h.Clone(), nil
}

func (e *Engine) updateStreaks(h *models.Habit, today string) {
	current, longest := models.ComputeStreaks(h.Progress, today)
	h.CurrentStreak = current
	h.BestStreak = max(h.BestStreak, longest)
}

func (e *Engine) UpdateHabit(id string, patch HabitPatch) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.store.habits[id]
	if !ok {
		return models.Habit{}, notFound(entityHabit, id)
	}

	next := h.Clone()
	changed := false
	if text := strings.TrimSpace(patch.Text); text != "" {
		next.Text = text
		changed = true
	}
	if p := strings.TrimSpace(patch.Period); p != "" {
		period, err := models.ParseHabitPeriod(p)
		if err != nil {
			return models.Habit{}, invalidInput(entityHabit, id, "%v", err)
		}
		next.Period = period
		changed = true
	}
	if ci := strings.TrimSpace(patch.CustomInterval); ci != "" {
		next.CustomInterval = ci
		changed = true
	}
	if next.Period != models.HabitCustom {
		next.CustomInterval = ""
	}
	if end := strings.TrimSpace(patch.EndDate); end != "" {
		if !utils.ValidateDay(end) {
			return models.Habit{}, invalidInput(entityHabit, id, "invalid end date %q (expected %s)", end, constants.DateFormat)
		}
		if end < next.StartDate {
			return models.Habit{}, invalidInput(entityHabit, id, "end date %s is before start date %s", end, next.StartDate)
		}
		next.EndDate = end
		changed = true
	}
	if s := strings.TrimSpace(patch.Status); s != "" {
		status, err := models.ParseHabitStatus(s)
		if err != nil {
			return models.Habit{}, invalidInput(entityHabit, id, "%v", err)
		}
		next.Status = status
		changed = true
	}
	if !changed {
		return h.Clone(), nil
	}

	now, _ := e.now()
	next.UpdatedAt = now
	*h = next
	e.store.markHabit(id)
	return h.Clone(), nil
}

// RemoveHabit moves a habit to the trash by setting its status to removed.
func (e *Engine) RemoveHabit(id string) (models.Habit, error) {
	return e.setHabitStatus(id, models.HabitRemoved)
}

// RestoreHabit re-activates a removed or paused habit.
func (e *Engine) RestoreHabit(id string) (models.Habit, error) {
	return e.setHabitStatus(id, models.HabitActive)
}

func (e *Engine) setHabitStatus(id string, status models.HabitStatus) (models.Habit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.store.habits[id]
	if !ok {
		return models.Habit{}, notFound(entityHabit, id)
	}
	if h.Status == status {
		return h.Clone(), nil
	}
	now, _ := e.now()
	h.Status = status
	h.UpdatedAt = now
	e.store.markHabit(id)
	return h.Clone(), nil
}

// DeleteHabit removes a habit and its progress permanently.
func (e *Engine) DeleteHabit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.store.habits[id]; !ok {
		return notFound(entityHabit, id)
	}
	e.store.removeHabit(id)
	e.log.Debug("habit deleted", "id", id)
	return nil
}
