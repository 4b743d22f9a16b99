package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type ReminderStatus string

const (
	ReminderActive    ReminderStatus = "active"
	ReminderCompleted ReminderStatus = "completed"
	ReminderForgotten ReminderStatus = "forgotten"
)

// ParseReminderStatus accepts a status name in any case.
func ParseReminderStatus(s string) (ReminderStatus, error) {
	status := ReminderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid reminder status %q (expected active|completed|forgotten)", s)
	}
	return status, nil
}

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderActive, ReminderCompleted, ReminderForgotten:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is an outcome recorded into statistics.
func (s ReminderStatus) Terminal() bool {
	return s == ReminderCompleted || s == ReminderForgotten
}

type Reminder struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id"`
	Text             string         `json:"text"`
	Tags             []string       `json:"tags"`
	Time             time.Time      `json:"time"`
	Status           ReminderStatus `json:"status"`
	Removed          bool           `json:"removed"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	NotificationSent bool           `json:"notification_sent"`
	CountedInStats   bool           `json:"counted_in_stats"`
}

func (r *Reminder) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reminder id cannot be empty")
	}
	if r.UserID == "" {
		return fmt.Errorf("reminder user id cannot be empty")
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("reminder text cannot be empty")
	}
	if r.Time.IsZero() {
		return fmt.Errorf("reminder time cannot be empty")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid reminder status %q", r.Status)
	}
	if (r.CompletedAt != nil) != (r.Status == ReminderCompleted) {
		return fmt.Errorf("completed_at must be set if and only if status is %s", ReminderCompleted)
	}
	return nil
}

// IsOverdue reports whether an active reminder has reached its due time.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return r.Status == ReminderActive && !r.Removed && !now.Before(r.Time)
}

// Clone returns a deep copy so callers cannot alias engine state.
func (r Reminder) Clone() Reminder {
	c := r
	c.Tags = slices.Clone(r.Tags)
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

// NormalizeTags trims, drops empties, de-duplicates and sorts a tag list.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
