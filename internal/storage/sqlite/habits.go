package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

const habitColumns = `id, user_id, text, period, custom_interval, status, current_streak, best_streak,
	start_date, end_date, created_at, updated_at`

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var endDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&h.ID, &h.UserID, &h.Text, &h.Period, &h.CustomInterval, &h.Status,
		&h.CurrentStreak, &h.BestStreak, &h.StartDate, &endDate, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	if endDate.Valid {
		h.EndDate = endDate.String
	}
	if h.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if h.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	h.Progress = []models.ProgressEntry{}
	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit %s: %w", id, err)
	}

	rows, err := s.db.Query(`SELECT day, completed FROM habit_progress WHERE habit_id = ? ORDER BY day`, id)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to query habit progress: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e models.ProgressEntry
		var completed int
		if err := rows.Scan(&e.Day, &completed); err != nil {
			return models.Habit{}, err
		}
		e.Completed = completed != 0
		h.Progress = append(h.Progress, e)
	}
	return h, rows.Err()
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`SELECT ` + habitColumns + ` FROM habits ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	progress, err := s.db.Query(`SELECT habit_id, day, completed FROM habit_progress ORDER BY habit_id, day`)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit progress: %w", err)
	}
	defer progress.Close()
	for progress.Next() {
		var habitID string
		var e models.ProgressEntry
		var completed int
		if err := progress.Scan(&habitID, &e.Day, &completed); err != nil {
			return nil, err
		}
		i, ok := index[habitID]
		if !ok {
			continue
		}
		e.Completed = completed != 0
		habits[i].Progress = append(habits[i].Progress, e)
	}
	return habits, progress.Err()
}

// SaveHabit upserts the habit row and replaces its progress in one transaction.
func (s *Store) SaveHabit(h models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var endDate sql.NullString
	if h.EndDate != "" {
		endDate = sql.NullString{String: h.EndDate, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			text = excluded.text,
			period = excluded.period,
			custom_interval = excluded.custom_interval,
			status = excluded.status,
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		h.ID, h.UserID, h.Text, string(h.Period), h.CustomInterval, string(h.Status),
		h.CurrentStreak, h.BestStreak, h.StartDate, endDate,
		h.CreatedAt.UTC().Format(timeLayout), h.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
	}

	if _, err := tx.Exec(`DELETE FROM habit_progress WHERE habit_id = ?`, h.ID); err != nil {
		return fmt.Errorf("failed to clear habit progress: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO habit_progress (habit_id, day, completed) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare progress insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range h.Progress {
		if _, err := stmt.Exec(h.ID, e.Day, boolToInt(e.Completed)); err != nil {
			return fmt.Errorf("failed to save progress for %s: %w", e.Day, err)
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM habit_progress WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete habit progress: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return tx.Commit()
}
