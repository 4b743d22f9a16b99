package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

const reminderColumns = `id, user_id, text, tags, due_at, status, removed, created_at, updated_at,
	completed_at, notification_sent, counted_in_stats`

func scanReminder(row scanner) (models.Reminder, error) {
	var r models.Reminder
	var tags, dueAt, createdAt, updatedAt string
	var completedAt sql.NullString
	var removed, notificationSent, counted int

	err := row.Scan(&r.ID, &r.UserID, &r.Text, &tags, &dueAt, &r.Status, &removed,
		&createdAt, &updatedAt, &completedAt, &notificationSent, &counted)
	if err != nil {
		return models.Reminder{}, err
	}

	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse tags: %w", err)
	}
	if r.Time, err = time.Parse(timeLayout, dueAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse due_at: %w", err)
	}
	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return models.Reminder{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(timeLayout, completedAt.String)
		if err != nil {
			return models.Reminder{}, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		r.CompletedAt = &t
	}
	r.Removed = removed != 0
	r.NotificationSent = notificationSent != 0
	r.CountedInStats = counted != 0
	return r, nil
}

func (s *Store) GetReminder(id string) (models.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reminder{}, fmt.Errorf("reminder %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Reminder{}, fmt.Errorf("failed to get reminder %s: %w", id, err)
	}
	return r, nil
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	rows, err := s.db.Query(`SELECT ` + reminderColumns + ` FROM reminders ORDER BY user_id, due_at, id`)
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
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}

	var completedAt sql.NullString
	if r.CompletedAt != nil {
		completedAt = sql.NullString{String: r.CompletedAt.UTC().Format(timeLayout), Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			text = excluded.text,
			tags = excluded.tags,
			due_at = excluded.due_at,
			status = excluded.status,
			removed = excluded.removed,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			completed_at = excluded.completed_at,
			notification_sent = excluded.notification_sent,
			counted_in_stats = excluded.counted_in_stats`,
		r.ID, r.UserID, r.Text, string(tagsJSON), r.Time.UTC().Format(timeLayout), string(r.Status),
		boolToInt(r.Removed), r.CreatedAt.UTC().Format(timeLayout), r.UpdatedAt.UTC().Format(timeLayout),
		completedAt, boolToInt(r.NotificationSent), boolToInt(r.CountedInStats))
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) DeleteReminder(id string) error {
	res, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reminder %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
