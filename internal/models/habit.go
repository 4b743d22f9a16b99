package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/tracklit/internal/utils"
)

type HabitPeriod string

const (
	HabitDaily  HabitPeriod = "daily"
	HabitCustom HabitPeriod = "custom"
)

func (p HabitPeriod) Valid() bool {
	return p == HabitDaily || p == HabitCustom
}

// ParseHabitPeriod accepts a period name in any case.
func ParseHabitPeriod(s string) (HabitPeriod, error) {
	p := HabitPeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid habit period %q (expected daily|custom)", s)
	}
	return p, nil
}

type HabitStatus string

const (
	HabitActive  HabitStatus = "active"
	HabitPaused  HabitStatus = "paused"
	HabitRemoved HabitStatus = "removed"
)

func (s HabitStatus) Valid() bool {
	switch s {
	case HabitActive, HabitPaused, HabitRemoved:
		return true
	default:
		return false
	}
}

// ParseHabitStatus accepts a status name in any case.
func ParseHabitStatus(s string) (HabitStatus, error) {
	status := HabitStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid habit status %q (expected active|paused|removed)", s)
	}
	return status, nil
}

// ProgressEntry is a single day's completion mark
type ProgressEntry struct {
	Day       string `json:"day"` // YYYY-MM-DD format
	Completed bool   `json:"completed"`
}

// Habit represents a recurring practice to track
type Habit struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Text           string          `json:"text"`
	Period         HabitPeriod     `json:"period"`
	CustomInterval string          `json:"custom_interval,omitempty"`
	Status         HabitStatus     `json:"status"`
	Progress       []ProgressEntry `json:"progress"`
	CurrentStreak  int             `json:"current_streak"`
	BestStreak     int             `json:"best_streak"`
	StartDate      string          `json:"start_date"`         // YYYY-MM-DD format
	EndDate        string          `json:"end_date,omitempty"` // YYYY-MM-DD format, open-ended when empty
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (h *Habit) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("habit id cannot be empty")
	}
	if h.UserID == "" {
		return fmt.Errorf("habit user id cannot be empty")
	}
	if strings.TrimSpace(h.Text) == "" {
		return fmt.Errorf("habit text cannot be empty")
	}
	if !h.Period.Valid() {
		return fmt.Errorf("invalid habit period %q", h.Period)
	}
	if !h.Status.Valid() {
		return fmt.Errorf("invalid habit status %q", h.Status)
	}
	if _, err := utils.ParseDay(h.StartDate); err != nil {
		return fmt.Errorf("invalid start date (expected YYYY-MM-DD): %w", err)
	}
	if h.EndDate != "" {
		if _, err := utils.ParseDay(h.EndDate); err != nil {
			return fmt.Errorf("invalid end date (expected YYYY-MM-DD): %w", err)
		}
		if h.EndDate < h.StartDate {
			return fmt.Errorf("end date %s is before start date %s", h.EndDate, h.StartDate)
		}
	}
	for i := 1; i < len(h.Progress); i++ {
		if h.Progress[i].Day <= h.Progress[i-1].Day {
			return fmt.Errorf("progress dates must be strictly increasing (%s after %s)", h.Progress[i].Day, h.Progress[i-1].Day)
		}
	}
	return nil
}

// ActiveOn reports whether day falls inside [StartDate, EndDate].
// YYYY-MM-DD strings order lexically, so plain comparison is enough.
func (h *Habit) ActiveOn(day string) bool {
	if day < h.StartDate {
		return false
	}
	return h.EndDate == "" || day <= h.EndDate
}

// EntryFor returns the index of the progress entry for day, or -1.
func (h *Habit) EntryFor(day string) int {
	i, found := slices.BinarySearchFunc(h.Progress, day, func(e ProgressEntry, d string) int {
		return strings.Compare(e.Day, d)
	})
	if !found {
		return -1
	}
	return i
}

// Clone returns a deep copy so callers cannot alias engine state.
func (h Habit) Clone() Habit {
	c := h
	c.Progress = slices.Clone(h.Progress)
	return c
}

// FillProgress returns progress as a dense day-by-day sequence from
// min(from, first entry) through `through`. Missing days are added as not
// completed. Entries after `through` are kept unchanged.
func FillProgress(progress []ProgressEntry, from, through string) ([]ProgressEntry, error) {
	start := from
	if len(progress) > 0 && progress[0].Day < start {
		start = progress[0].Day
	}
	if _, err := utils.ParseDay(start); err != nil {
		return nil, fmt.Errorf("invalid progress start: %w", err)
	}
	if _, err := utils.ParseDay(through); err != nil {
		return nil, fmt.Errorf("invalid progress end: %w", err)
	}
	span, err := utils.DaysBetween(start, through)
	if err != nil {
		return nil, err
	}

	filled := make([]ProgressEntry, 0, max(span+1, len(progress)))
	i := 0
	for n := 0; n <= span; n++ {
		day, err := utils.AddDays(start, n)
		if err != nil {
			return nil, err
		}
		for i < len(progress) && progress[i].Day < day {
			i++
		}
		if i < len(progress) && progress[i].Day == day {
			filled = append(filled, progress[i])
			i++
		} else {
			filled = append(filled, ProgressEntry{Day: day})
		}
	}
	for ; i < len(progress); i++ {
		if progress[i].Day > through {
			filled = append(filled, progress[i])
		}
	}
	return filled, nil
}

// ComputeStreaks scans progress entries dated on or before today.
// current is the run of completed consecutive days ending at the latest such
// entry; longest is the longest run anywhere in that history.
func ComputeStreaks(progress []ProgressEntry, today string) (current, longest int) {
	run := 0
	prev := ""
	for _, entry := range progress {
		if entry.Day > today {
			break
		}
		if !entry.Completed {
			run = 0
		} else if prev != "" && run > 0 && isNextDay(prev, entry.Day) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = entry.Day
	}
	return run, longest
}

func isNextDay(prev, day string) bool {
	next, err := utils.AddDays(prev, 1)
	return err == nil && next == day
}
