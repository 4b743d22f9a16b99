package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/julianstephens/tracklit/internal/models"
)

const jsonStoreVersion = 1

type document struct {
	Version      int                               `json:"version"`
	Reminders    map[string]models.Reminder        `json:"reminders"`
	Habits       map[string]models.Habit           `json:"habits"`
	Statistics   map[string]models.UserStatistics  `json:"statistics"`
	Achievements map[string]models.UserAchievement `json:"achievements"` // keyed by models.AchievementKey
}

func newDocument() *document {
	return &document{
		Version:      jsonStoreVersion,
		Reminders:    make(map[string]models.Reminder),
		Habits:       make(map[string]models.Habit),
		Statistics:   make(map[string]models.UserStatistics),
		Achievements: make(map[string]models.UserAchievement),
	}
}

// JSONStore keeps everything in a single JSON document and rewrites it on
// every save.
type JSONStore struct {
	path   string
	doc    *document
	memory bool
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	if s.memory {
		if s.doc == nil {
			s.doc = newDocument()
		}
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.doc = newDocument()
	return s.save()
}

func (s *JSONStore) Load() error {
	if s.memory {
		return s.Init()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'tracklit init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > jsonStoreVersion {
		return fmt.Errorf("storage version %d is newer than supported version %d", doc.Version, jsonStoreVersion)
	}

	// Maps may be null in hand-edited documents, and achievements are absent
	// from documents written before they existed.
	if doc.Reminders == nil {
		doc.Reminders = make(map[string]models.Reminder)
	}
	if doc.Habits == nil {
		doc.Habits = make(map[string]models.Habit)
	}
	if doc.Statistics == nil {
		doc.Statistics = make(map[string]models.UserStatistics)
	}
	if doc.Achievements == nil {
		doc.Achievements = make(map[string]models.UserAchievement)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes to a temp file and renames it over the document.
func (s *JSONStore) save() error {
	if s.memory {
		return nil
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetReminder(id string) (models.Reminder, error) {
	if err := s.loaded(); err != nil {
		return models.Reminder{}, err
	}
	r, ok := s.doc.Reminders[id]
	if !ok {
		return models.Reminder{}, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *JSONStore) GetAllReminders() ([]models.Reminder, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.Reminder, 0, len(s.doc.Reminders))
	for _, r := range s.doc.Reminders {
		out = append(out, r.Clone())
	}
	slices.SortFunc(out, func(a, b models.Reminder) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *JSONStore) SaveReminder(r models.Reminder) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Reminders[r.ID] = r.Clone()
	return s.save()
}

func (s *JSONStore) DeleteReminder(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if _, ok := s.doc.Reminders[id]; !ok {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	delete(s.doc.Reminders, id)
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	h, ok := s.doc.Habits[id]
	if !ok {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return h.Clone(), nil
}

func (s *JSONStore) GetAllHabits() ([]models.Habit, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.Habit, 0, len(s.doc.Habits))
	for _, h := range s.doc.Habits {
		out = append(out, h.Clone())
	}
	slices.SortFunc(out, func(a, b models.Habit) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *JSONStore) SaveHabit(h models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Habits[h.ID] = h.Clone()
	return s.save()
}

func (s *JSONStore) DeleteHabit(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if _, ok := s.doc.Habits[id]; !ok {
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	delete(s.doc.Habits, id)
	return s.save()
}

func (s *JSONStore) GetStatistics(userID string) (models.UserStatistics, error) {
	if err := s.loaded(); err != nil {
		return models.UserStatistics{}, err
	}
	st, ok := s.doc.Statistics[userID]
	if !ok {
		return models.UserStatistics{}, fmt.Errorf("statistics for %s: %w", userID, ErrNotFound)
	}
	return st, nil
}

func (s *JSONStore) GetAllStatistics() ([]models.UserStatistics, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.UserStatistics, 0, len(s.doc.Statistics))
	for _, st := range s.doc.Statistics {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b models.UserStatistics) int { return strings.Compare(a.UserID, b.UserID) })
	return out, nil
}

func (s *JSONStore) SaveStatistics(st models.UserStatistics) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Statistics[st.UserID] = st
	return s.save()
}

func (s *JSONStore) GetAllAchievements() ([]models.UserAchievement, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	out := make([]models.UserAchievement, 0, len(s.doc.Achievements))
	for _, a := range s.doc.Achievements {
		out = append(out, a.Clone())
	}
	slices.SortFunc(out, func(a, b models.UserAchievement) int { return strings.Compare(a.Key(), b.Key()) })
	return out, nil
}

func (s *JSONStore) SaveAchievement(a models.UserAchievement) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.doc.Achievements[a.Key()] = a.Clone()
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
