package lifecycle

import (
	"strings"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
)

func increment(progress int) int { return progress + 1 }

// advanceAchievements moves every locked template that measures metric to
// next(progress), capped at its threshold. Progress never goes down, so a
// streak metric behaves as a high-water mark. Callers hold e.mu.
func (e *Engine) advanceAchievements(userID string, metric models.AchievementMetric, now time.Time, next func(int) int) {
	for _, tmpl := range models.AchievementTemplates() {
		if tmpl.Metric != metric {
			continue
		}
		a := e.store.achievementFor(userID, tmpl.ID)
		if a.Unlocked {
			continue
		}
		progress := min(next(a.Progress), tmpl.Threshold)
		if progress <= a.Progress {
			continue
		}
		a.Progress = progress
		a.UpdatedAt = now
		if progress == tmpl.Threshold {
			t := now
			a.Unlocked = true
			a.UnlockedAt = &t
			e.log.Info("achievement unlocked", "user", userID, "achievement", tmpl.ID)
			e.metrics.ObserveAchievementUnlocked(tmpl.ID)
		}
		e.store.markAchievement(a.Key())
	}
}

// ListAchievements reconciles userID and returns its progress for every
// template in template order. Templates the user has not started come back
// with zero progress.
func (e *Engine) ListAchievements(userID string) ([]models.UserAchievement, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidInput(entityAchievement, "", "user_id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now, today := e.now()

	e.reconcile(now, today, []string{userID})

	templates := models.AchievementTemplates()
	out := make([]models.UserAchievement, 0, len(templates))
	for _, tmpl := range templates {
		if a, ok := e.store.achievements[models.AchievementKey(userID, tmpl.ID)]; ok {
			out = append(out, a.Clone())
			continue
		}
		out = append(out, models.UserAchievement{UserID: userID, TemplateID: tmpl.ID})
	}
	return out, nil
}
