package storage

import (
	"errors"

	"github.com/julianstephens/tracklit/internal/models"
)

// ErrNotFound is wrapped by every provider when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Reminders
	GetReminder(id string) (models.Reminder, error)
	GetAllReminders() ([]models.Reminder, error)
	SaveReminder(models.Reminder) error
	DeleteReminder(id string) error

	// Habits, including their progress entries
	GetHabit(id string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	SaveHabit(models.Habit) error
	DeleteHabit(id string) error

	// Statistics
	GetStatistics(userID string) (models.UserStatistics, error)
	GetAllStatistics() ([]models.UserStatistics, error)
	SaveStatistics(models.UserStatistics) error

	// Achievements, one row per user and template
	GetAllAchievements() ([]models.UserAchievement, error)
	SaveAchievement(models.UserAchievement) error

	// Utils
	GetConfigPath() string
}
