package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/julianstephens/tracklit/internal/constants"
	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
	"github.com/julianstephens/tracklit/internal/utils"
)

const habitColumns = `id, user_id, text, period, custom_interval, status, current_streak, best_streak,
	start_date, end_date, created_at, updated_at`

func scanHabit(row pgx.Row) (models.Habit, error) {
	var h models.Habit
	var period, status string
	var startDate time.Time
	var endDate *time.Time
	err := row.Scan(&h.ID, &h.UserID, &h.Text, &period, &h.CustomInterval, &status,
		&h.CurrentStreak, &h.BestStreak, &startDate, &endDate, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.Period = models.HabitPeriod(period)
	h.Status = models.HabitStatus(status)
	h.StartDate = startDate.Format(constants.DateFormat)
	if endDate != nil {
		h.EndDate = endDate.Format(constants.DateFormat)
	}
	h.Progress = []models.ProgressEntry{}
	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	ctx, cancel := opContext()
	defer cancel()

	h, err := scanHabit(s.pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT habit_id, day, completed FROM habit_progress WHERE habit_id = $1 ORDER BY day`, id)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to query habit progress: %w", err)
	}
	habits := []models.Habit{h}
	if err := collectProgress(rows, habits, map[string]int{id: 0}); err != nil {
		return models.Habit{}, err
	}
	return habits[0], nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	ctx, cancel := opContext()
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	habits := []models.Habit{}
	index := make(map[string]int)
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	progress, err := s.pool.Query(ctx, `SELECT habit_id, day, completed FROM habit_progress ORDER BY habit_id, day`)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit progress: %w", err)
	}
	if err := collectProgress(progress, habits, index); err != nil {
		return nil, err
	}
	return habits, nil
}

func collectProgress(rows pgx.Rows, habits []models.Habit, index map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var habitID string
		var day time.Time
		var completed bool
		if err := rows.Scan(&habitID, &day, &completed); err != nil {
			return err
		}
		i, ok := index[habitID]
		if !ok {
			continue
		}
		habits[i].Progress = append(habits[i].Progress, models.ProgressEntry{
			Day:       day.Format(constants.DateFormat),
			Completed: completed,
		})
	}
	return rows.Err()
}

// SaveHabit upserts the habit row and replaces its progress in one transaction.
func (s *Store) SaveHabit(h models.Habit) error {
	ctx, cancel := opContext()
	defer cancel()

	startDate, err := utils.ParseDay(h.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date for habit %s: %w", h.ID, err)
	}
	var endDate *time.Time
	if h.EndDate != "" {
		d, err := utils.ParseDay(h.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end date for habit %s: %w", h.ID, err)
		}
		endDate = &d
	}
	progress := make([][]any, 0, len(h.Progress))
	for _, e := range h.Progress {
		day, err := utils.ParseDay(e.Day)
		if err != nil {
			return fmt.Errorf("invalid progress day for habit %s: %w", h.ID, err)
		}
		progress = append(progress, []any{h.ID, day, e.Completed})
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO habits (`+habitColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				user_id = EXCLUDED.user_id,
				text = EXCLUDED.text,
				period = EXCLUDED.period,
				custom_interval = EXCLUDED.custom_interval,
				status = EXCLUDED.status,
				current_streak = EXCLUDED.current_streak,
				best_streak = EXCLUDED.best_streak,
				start_date = EXCLUDED.start_date,
				end_date = EXCLUDED.end_date,
				created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at`,
			h.ID, h.UserID, h.Text, string(h.Period), h.CustomInterval, string(h.Status),
			h.CurrentStreak, h.BestStreak, startDate, endDate, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
		}
		return replaceProgress(ctx, tx, h.ID, progress)
	})
}

func replaceProgress(ctx context.Context, tx pgx.Tx, habitID string, rows [][]any) error {
	if _, err := tx.Exec(ctx, `DELETE FROM habit_progress WHERE habit_id = $1`, habitID); err != nil {
		return fmt.Errorf("failed to clear habit progress: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"habit_progress"},
		[]string{"habit_id", "day", "completed"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to save habit progress: %w", err)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	ctx, cancel := opContext()
	defer cancel()

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM habit_progress WHERE habit_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete habit progress: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete habit %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
		}
		return nil
	})
}
