package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

func (s *Store) GetStatistics(userID string) (models.UserStatistics, error) {
	ctx, cancel := opContext()
	defer cancel()

	var st models.UserStatistics
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, reminders_completed, reminders_forgotten, last_reset_date
		FROM user_statistics WHERE user_id = $1`, userID).
		Scan(&st.UserID, &st.RemindersCompleted, &st.RemindersForgotten, &st.LastResetDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.UserStatistics{}, fmt.Errorf("statistics for %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return models.UserStatistics{}, fmt.Errorf("failed to get statistics for %s: %w", userID, err)
	}
	return st, nil
}

func (s *Store) GetAllStatistics() ([]models.UserStatistics, error) {
	ctx, cancel := opContext()
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT user_id, reminders_completed, reminders_forgotten, last_reset_date
		FROM user_statistics ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserStatistics, error) {
		var st models.UserStatistics
		err := row.Scan(&st.UserID, &st.RemindersCompleted, &st.RemindersForgotten, &st.LastResetDate)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return stats, nil
}

func (s *Store) SaveStatistics(st models.UserStatistics) error {
	ctx, cancel := opContext()
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_statistics (user_id, reminders_completed, reminders_forgotten, last_reset_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			reminders_completed = EXCLUDED.reminders_completed,
			reminders_forgotten = EXCLUDED.reminders_forgotten,
			last_reset_date = EXCLUDED.last_reset_date`,
		st.UserID, st.RemindersCompleted, st.RemindersForgotten, st.LastResetDate)
	if err != nil {
		return fmt.Errorf("failed to save statistics for %s: %w", st.UserID, err)
	}
	return nil
}
