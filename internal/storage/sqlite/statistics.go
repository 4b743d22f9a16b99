package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

func (s *Store) GetStatistics(userID string) (models.UserStatistics, error) {
	var st models.UserStatistics
	err := s.db.QueryRow(`
		SELECT user_id, reminders_completed, reminders_forgotten, last_reset_date
		FROM user_statistics WHERE user_id = ?`, userID).
		Scan(&st.UserID, &st.RemindersCompleted, &st.RemindersForgotten, &st.LastResetDate)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserStatistics{}, fmt.Errorf("statistics for %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return models.UserStatistics{}, fmt.Errorf("failed to get statistics for %s: %w", userID, err)
	}
	return st, nil
}

func (s *Store) GetAllStatistics() ([]models.UserStatistics, error) {
	rows, err := s.db.Query(`
		SELECT user_id, reminders_completed, reminders_forgotten, last_reset_date
		FROM user_statistics ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	stats := []models.UserStatistics{}
	for rows.Next() {
		var st models.UserStatistics
		if err := rows.Scan(&st.UserID, &st.RemindersCompleted, &st.RemindersForgotten, &st.LastResetDate); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Store) SaveStatistics(st models.UserStatistics) error {
	_, err := s.db.Exec(`
		INSERT INTO user_statistics (user_id, reminders_completed, reminders_forgotten, last_reset_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			reminders_completed = excluded.reminders_completed,
			reminders_forgotten = excluded.reminders_forgotten,
			last_reset_date = excluded.last_reset_date`,
		st.UserID, st.RemindersCompleted, st.RemindersForgotten, st.LastResetDate)
	if err != nil {
		return fmt.Errorf("failed to save statistics for %s: %w", st.UserID, err)
	}
	return nil
}
