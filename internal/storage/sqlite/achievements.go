package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
)

func (s *Store) GetAllAchievements() ([]models.UserAchievement, error) {
	rows, err := s.db.Query(`
		SELECT user_id, template_id, progress, unlocked, unlocked_at, updated_at
		FROM user_achievements ORDER BY user_id, template_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.UserAchievement{}
	for rows.Next() {
		var a models.UserAchievement
		var unlocked int
		var unlockedAt sql.NullString
		var updatedAt string
		if err := rows.Scan(&a.UserID, &a.TemplateID, &a.Progress, &unlocked, &unlockedAt, &updatedAt); err != nil {
			return nil, err
		}
		a.Unlocked = unlocked != 0
		if a.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		if unlockedAt.Valid {
			t, err := time.Parse(timeLayout, unlockedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse unlocked_at: %w", err)
			}
			a.UnlockedAt = &t
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *Store) SaveAchievement(a models.UserAchievement) error {
	var unlockedAt sql.NullString
	if a.UnlockedAt != nil {
		unlockedAt = sql.NullString{String: a.UnlockedAt.UTC().Format(timeLayout), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO user_achievements (user_id, template_id, progress, unlocked, unlocked_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, template_id) DO UPDATE SET
			progress = excluded.progress,
			unlocked = excluded.unlocked,
			unlocked_at = excluded.unlocked_at,
			updated_at = excluded.updated_at`,
		a.UserID, a.TemplateID, a.Progress, boolToInt(a.Unlocked), unlockedAt, a.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save achievement %s: %w", a.Key(), err)
	}
	return nil
}
