package models

import (
	"fmt"
	"time"
)

type AchievementCategory string

const (
	AchievementReminder AchievementCategory = "reminder"
	AchievementHabit    AchievementCategory = "habit"
)

// AchievementMetric names the counter an achievement template measures.
// MetricDailyHabitStreak is a high-water mark, not a running count.
type AchievementMetric string

const (
	MetricRemindersCreated   AchievementMetric = "reminders_created"
	MetricRemindersCompleted AchievementMetric = "reminders_completed"
	MetricHabitsCreated      AchievementMetric = "habits_created"
	MetricDailyHabitStreak   AchievementMetric = "daily_habit_streak"
)

// AchievementTemplate is a fixed unlock rule: reach Threshold on Metric.
type AchievementTemplate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Metric      AchievementMetric   `json:"metric"`
	Threshold   int                 `json:"threshold"`
}

var achievementTemplates = []AchievementTemplate{
	{ID: "creator_beginner", Name: "Organizer", Description: "Create 5 reminders", Category: AchievementReminder, Metric: MetricRemindersCreated, Threshold: 5},
	{ID: "creator_intermediate", Name: "Planner", Description: "Create 25 reminders", Category: AchievementReminder, Metric: MetricRemindersCreated, Threshold: 25},
	{ID: "creator_master", Name: "Master planner", Description: "Create 100 reminders", Category: AchievementReminder, Metric: MetricRemindersCreated, Threshold: 100},
	{ID: "finisher_beginner", Name: "Doer", Description: "Complete 10 reminders", Category: AchievementReminder, Metric: MetricRemindersCompleted, Threshold: 10},
	{ID: "finisher_intermediate", Name: "Reliable", Description: "Complete 50 reminders", Category: AchievementReminder, Metric: MetricRemindersCompleted, Threshold: 50},
	{ID: "finisher_master", Name: "Productivity hero", Description: "Complete 200 reminders", Category: AchievementReminder, Metric: MetricRemindersCompleted, Threshold: 200},
	{ID: "habit_beginner", Name: "Beginner", Description: "Create 3 habits", Category: AchievementHabit, Metric: MetricHabitsCreated, Threshold: 3},
	{ID: "habit_intermediate", Name: "Transformer", Description: "Create 10 habits", Category: AchievementHabit, Metric: MetricHabitsCreated, Threshold: 10},
	{ID: "habit_master", Name: "Habit master", Description: "Create 20 habits", Category: AchievementHabit, Metric: MetricHabitsCreated, Threshold: 20},
	{ID: "daily_streak", Name: "Daily routine", Description: "Keep a daily habit for 14 days in a row", Category: AchievementHabit, Metric: MetricDailyHabitStreak, Threshold: 14},
}

// AchievementTemplates returns every template in display order.
func AchievementTemplates() []AchievementTemplate {
	out := make([]AchievementTemplate, len(achievementTemplates))
	copy(out, achievementTemplates)
	return out
}

func AchievementTemplateByID(id string) (AchievementTemplate, bool) {
	for _, t := range achievementTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return AchievementTemplate{}, false
}

// UserAchievement is one user's progress toward one template. Progress never
// exceeds the template threshold and an unlock is permanent.
type UserAchievement struct {
	UserID     string     `json:"user_id"`
	TemplateID string     `json:"template_id"`
	Progress   int        `json:"progress"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AchievementKey identifies a UserAchievement within a store.
func AchievementKey(userID, templateID string) string {
	return userID + "/" + templateID
}

func (a UserAchievement) Key() string {
	return AchievementKey(a.UserID, a.TemplateID)
}

func (a *UserAchievement) Validate() error {
	if a.UserID == "" {
		return fmt.Errorf("achievement user id cannot be empty")
	}
	tmpl, ok := AchievementTemplateByID(a.TemplateID)
	if !ok {
		return fmt.Errorf("unknown achievement template %q", a.TemplateID)
	}
	if a.Progress < 0 || a.Progress > tmpl.Threshold {
		return fmt.Errorf("achievement progress %d outside [0, %d]", a.Progress, tmpl.Threshold)
	}
	if (a.UnlockedAt != nil) != a.Unlocked {
		return fmt.Errorf("unlocked_at must be set if and only if the achievement is unlocked")
	}
	return nil
}

func (a UserAchievement) Clone() UserAchievement {
	c := a
	if a.UnlockedAt != nil {
		t := *a.UnlockedAt
		c.UnlockedAt = &t
	}
	return c
}
