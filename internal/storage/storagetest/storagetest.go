// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

// Factory returns an initialized provider and a cleanup func.
type Factory func(t *testing.T) (storage.Provider, func())

// Run exercises p against the provider contract.
func Run(t *testing.T, newProvider Factory) {
	t.Run("reminders", func(t *testing.T) { testReminders(t, newProvider) })
	t.Run("habits", func(t *testing.T) { testHabits(t, newProvider) })
	t.Run("statistics", func(t *testing.T) { testStatistics(t, newProvider) })
	t.Run("achievements", func(t *testing.T) { testAchievements(t, newProvider) })
	t.Run("empty", func(t *testing.T) { testEmpty(t, newProvider) })
}

var base = time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

func sampleReminder(id string) models.Reminder {
	completed := base.Add(30 * time.Minute)
	return models.Reminder{
		ID:               id,
		UserID:           "alice",
		Text:             "Call the dentist",
		Tags:             []string{"calls", "health"},
		Time:             base.Add(time.Hour),
		Status:           models.ReminderCompleted,
		CreatedAt:        base,
		UpdatedAt:        completed,
		CompletedAt:      &completed,
		NotificationSent: true,
		CountedInStats:   true,
	}
}

func sampleHabit(id string) models.Habit {
	return models.Habit{
		ID:             id,
		UserID:         "alice",
		Text:           "Read",
		Period:         models.HabitCustom,
		CustomInterval: "weekdays",
		Status:         models.HabitActive,
		Progress: []models.ProgressEntry{
			{Day: "2023-12-01", Completed: true},
			{Day: "2023-12-02", Completed: false},
			{Day: "2023-12-03", Completed: true},
		},
		CurrentStreak: 1,
		BestStreak:    1,
		StartDate:     "2023-12-01",
		EndDate:       "2023-12-31",
		CreatedAt:     base,
		UpdatedAt:     base,
	}
}

func testReminders(t *testing.T, newProvider Factory) {
	p, cleanup := newProvider(t)
	defer cleanup()

	r := sampleReminder("r1")
	if err := p.SaveReminder(r); err != nil {
		t.Fatalf("SaveReminder failed: %v", err)
	}
	got, err := p.GetReminder("r1")
	if err != nil {
		t.Fatalf("GetReminder failed: %v", err)
	}
	assertReminder(t, got, r)

	// Saving again updates in place.
	r.Status = models.ReminderActive
	r.CompletedAt = nil
	r.Tags = nil
	r.Removed = true
	r.Text = "Call the dentist again"
	if err := p.SaveReminder(r); err != nil {
		t.Fatalf("SaveReminder (update) failed: %v", err)
	}
	other := sampleReminder("r2")
	other.UserID = "bob"
	if err := p.SaveReminder(other); err != nil {
		t.Fatalf("SaveReminder failed: %v", err)
	}

	all, err := p.GetAllReminders()
	if err != nil {
		t.Fatalf("GetAllReminders failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(all))
	}
	byID := map[string]models.Reminder{}
	for _, x := range all {
		byID[x.ID] = x
	}
	assertReminder(t, byID["r1"], r)
	assertReminder(t, byID["r2"], other)

	if err := p.DeleteReminder("r1"); err != nil {
		t.Fatalf("DeleteReminder failed: %v", err)
	}
	if _, err := p.GetReminder("r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := p.DeleteReminder("r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting a missing reminder, got %v", err)
	}
}

func testHabits(t *testing.T, newProvider Factory) {
	p, cleanup := newProvider(t)
	defer cleanup()

	h := sampleHabit("h1")
	if err := p.SaveHabit(h); err != nil {
		t.Fatalf("SaveHabit failed: %v", err)
	}
	got, err := p.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	assertHabit(t, got, h)

	// Progress is replaced as a whole.
	h.Progress = h.Progress[:1]
	h.EndDate = ""
	h.Period = models.HabitDaily
	h.CustomInterval = ""
	h.Status = models.HabitPaused
	if err := p.SaveHabit(h); err != nil {
		t.Fatalf("SaveHabit (update) failed: %v", err)
	}
	all, err := p.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(all))
	}
	assertHabit(t, all[0], h)

	if err := p.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := p.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := p.DeleteHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting a missing habit, got %v", err)
	}
}

func testStatistics(t *testing.T, newProvider Factory) {
	p, cleanup := newProvider(t)
	defer cleanup()

	if _, err := p.GetStatistics("alice"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing statistics, got %v", err)
	}

	st := models.UserStatistics{UserID: "alice", RemindersCompleted: 2, RemindersForgotten: 1, LastResetDate: "2023-12-01"}
	if err := p.SaveStatistics(st); err != nil {
		t.Fatalf("SaveStatistics failed: %v", err)
	}
	st.RemindersCompleted = 3
	st.LastResetDate = "2023-12-02"
	if err := p.SaveStatistics(st); err != nil {
		t.Fatalf("SaveStatistics (update) failed: %v", err)
	}

	got, err := p.GetStatistics("alice")
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if got != st {
		t.Errorf("GetStatistics = %+v, want %+v", got, st)
	}

	all, err := p.GetAllStatistics()
	if err != nil {
		t.Fatalf("GetAllStatistics failed: %v", err)
	}
	if len(all) != 1 || all[0] != st {
		t.Errorf("GetAllStatistics = %+v, want [%+v]", all, st)
	}
}

func testAchievements(t *testing.T, newProvider Factory) {
	p, cleanup := newProvider(t)
	defer cleanup()

	a := models.UserAchievement{UserID: "alice", TemplateID: "finisher_beginner", Progress: 4, UpdatedAt: base}
	if err := p.SaveAchievement(a); err != nil {
		t.Fatalf("SaveAchievement failed: %v", err)
	}

	// Saving the same user and template updates in place.
	unlocked := base.Add(time.Hour)
	a.Progress = 10
	a.Unlocked = true
	a.UnlockedAt = &unlocked
	a.UpdatedAt = unlocked
	if err := p.SaveAchievement(a); err != nil {
		t.Fatalf("SaveAchievement (update) failed: %v", err)
	}
	other := models.UserAchievement{UserID: "bob", TemplateID: "finisher_beginner", Progress: 1, UpdatedAt: base}
	if err := p.SaveAchievement(other); err != nil {
		t.Fatalf("SaveAchievement failed: %v", err)
	}

	all, err := p.GetAllAchievements()
	if err != nil {
		t.Fatalf("GetAllAchievements failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 achievements, got %d", len(all))
	}
	byKey := map[string]models.UserAchievement{}
	for _, x := range all {
		byKey[x.Key()] = x
	}
	assertAchievement(t, byKey[a.Key()], a)
	assertAchievement(t, byKey[other.Key()], other)
}

func testEmpty(t *testing.T, newProvider Factory) {
	p, cleanup := newProvider(t)
	defer cleanup()

	reminders, err := p.GetAllReminders()
	if err != nil || len(reminders) != 0 {
		t.Errorf("expected no reminders, got %v, %v", reminders, err)
	}
	habits, err := p.GetAllHabits()
	if err != nil || len(habits) != 0 {
		t.Errorf("expected no habits, got %v, %v", habits, err)
	}
	stats, err := p.GetAllStatistics()
	if err != nil || len(stats) != 0 {
		t.Errorf("expected no statistics, got %v, %v", stats, err)
	}
	achievements, err := p.GetAllAchievements()
	if err != nil || len(achievements) != 0 {
		t.Errorf("expected no achievements, got %v, %v", achievements, err)
	}
	if p.GetConfigPath() == "" {
		t.Error("expected a non-empty config path")
	}
}

func assertReminder(t *testing.T, got, want models.Reminder) {
	t.Helper()
	if got.ID != want.ID || got.UserID != want.UserID || got.Text != want.Text ||
		got.Status != want.Status || got.Removed != want.Removed ||
		got.NotificationSent != want.NotificationSent || got.CountedInStats != want.CountedInStats {
		t.Errorf("reminder mismatch:\n got  %+v\n want %+v", got, want)
	}
	if len(got.Tags) != len(want.Tags) || (len(want.Tags) > 0 && !reflect.DeepEqual(got.Tags, want.Tags)) {
		t.Errorf("tags = %v, want %v", got.Tags, want.Tags)
	}
	if !got.Time.Equal(want.Time) || !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps mismatch:\n got  %v %v %v\n want %v %v %v",
			got.Time, got.CreatedAt, got.UpdatedAt, want.Time, want.CreatedAt, want.UpdatedAt)
	}
	switch {
	case got.CompletedAt == nil && want.CompletedAt == nil:
	case got.CompletedAt == nil || want.CompletedAt == nil || !got.CompletedAt.Equal(*want.CompletedAt):
		t.Errorf("completed_at = %v, want %v", got.CompletedAt, want.CompletedAt)
	}
}

func assertHabit(t *testing.T, got, want models.Habit) {
	t.Helper()
	if got.ID != want.ID || got.UserID != want.UserID || got.Text != want.Text ||
		got.Period != want.Period || got.CustomInterval != want.CustomInterval || got.Status != want.Status ||
		got.CurrentStreak != want.CurrentStreak || got.BestStreak != want.BestStreak ||
		got.StartDate != want.StartDate || got.EndDate != want.EndDate {
		t.Errorf("habit mismatch:\n got  %+v\n want %+v", got, want)
	}
	if !reflect.DeepEqual(got.Progress, want.Progress) {
		t.Errorf("progress = %+v, want %+v", got.Progress, want.Progress)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps mismatch: got %v %v, want %v %v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
}

func assertAchievement(t *testing.T, got, want models.UserAchievement) {
	t.Helper()
	if got.UserID != want.UserID || got.TemplateID != want.TemplateID ||
		got.Progress != want.Progress || got.Unlocked != want.Unlocked {
		t.Errorf("achievement mismatch:\n got  %+v\n want %+v", got, want)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, want.UpdatedAt)
	}
	switch {
	case got.UnlockedAt == nil && want.UnlockedAt == nil:
	case got.UnlockedAt == nil || want.UnlockedAt == nil || !got.UnlockedAt.Equal(*want.UnlockedAt):
		t.Errorf("unlocked_at = %v, want %v", got.UnlockedAt, want.UnlockedAt)
	}
}
