package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

const reminderColumns = `id, user_id, text, tags, due_at, status, removed, created_at, updated_at,
	completed_at, notification_sent, counted_in_stats`

func scanReminder(row pgx.Row) (models.Reminder, error) {
	var r models.Reminder
	var status string
	var completedAt *time.Time
	err := row.Scan(&r.ID, &r.UserID, &r.Text, &r.Tags, &r.Time, &status, &r.Removed,
		&r.CreatedAt, &r.UpdatedAt, &completedAt, &r.NotificationSent, &r.CountedInStats)
	if err != nil {
		return models.Reminder{}, err
	}
	r.Status = models.ReminderStatus(status)
	r.CompletedAt = completedAt
	return r, nil
}

func (s *Store) GetReminder(id string) (models.Reminder, error) {
	ctx, cancel := opContext()
	defer cancel()

	r, err := scanReminder(s.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Reminder{}, fmt.Errorf("reminder %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	ctx, cancel := opContext()
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+reminderColumns+` FROM reminders ORDER BY user_id, due_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) SaveReminder(r models.Reminder) error {
	ctx, cancel := opContext()
	defer cancel()

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			text = EXCLUDED.text,
			tags = EXCLUDED.tags,
			due_at = EXCLUDED.due_at,
			status = EXCLUDED.status,
			removed = EXCLUDED.removed,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at,
			notification_sent = EXCLUDED.notification_sent,
			counted_in_stats = EXCLUDED.counted_in_stats`,
		r.ID, r.UserID, r.Text, tags, r.Time, string(r.Status), r.Removed,
		r.CreatedAt, r.UpdatedAt, r.CompletedAt, r.NotificationSent, r.CountedInStats)
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteReminder(id string) error {
	ctx, cancel := opContext()
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminder %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
