package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/julianstephens/tracklit/internal/models"
)

func (s *Store) GetAllAchievements() ([]models.UserAchievement, error) {
	ctx, cancel := opContext()
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT user_id, template_id, progress, unlocked, unlocked_at, updated_at
		FROM user_achievements ORDER BY user_id, template_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	achievements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserAchievement, error) {
		var a models.UserAchievement
		err := row.Scan(&a.UserID, &a.TemplateID, &a.Progress, &a.Unlocked, &a.UnlockedAt, &a.UpdatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read achievements: %w", err)
	}
	return achievements, nil
}

func (s *Store) SaveAchievement(a models.UserAchievement) error {
	ctx, cancel := opContext()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_achievements (user_id, template_id, progress, unlocked, unlocked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, template_id) DO UPDATE SET
			progress = EXCLUDED.progress,
			unlocked = EXCLUDED.unlocked,
			unlocked_at = EXCLUDED.unlocked_at,
			updated_at = EXCLUDED.updated_at`,
		a.UserID, a.TemplateID, a.Progress, a.Unlocked, a.UnlockedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save achievement %s: %w", a.Key(), err)
	}
	return nil
}
