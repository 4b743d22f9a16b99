package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/tracklit/internal/models"
)

// Source is the read side of a storage provider used to hydrate a Store.
type Source interface {
	GetAllReminders() ([]models.Reminder, error)
	GetAllHabits() ([]models.Habit, error)
	GetAllStatistics() ([]models.UserStatistics, error)
	GetAllAchievements() ([]models.UserAchievement, error)
}

// Sink is the write side of a storage provider that journaled changes are flushed to.
type Sink interface {
	SaveReminder(models.Reminder) error
	DeleteReminder(id string) error
	SaveHabit(models.Habit) error
	DeleteHabit(id string) error
	SaveStatistics(models.UserStatistics) error
	SaveAchievement(models.UserAchievement) error
}

type change int

const (
	changeUpsert change = iota + 1
	changeDelete
)

// journal records which entities changed since the last flush.
type journal struct {
	reminders    map[string]change
	habits       map[string]change
	stats        map[string]struct{}
	achievements map[string]struct{}
}

func newJournal() journal {
	return journal{
		reminders:    make(map[string]change),
		habits:       make(map[string]change),
		stats:        make(map[string]struct{}),
		achievements: make(map[string]struct{}),
	}
}

func (j journal) empty() bool {
	return len(j.reminders) == 0 && len(j.habits) == 0 && len(j.stats) == 0 && len(j.achievements) == 0
}

// Store is the in-memory state owned by one Engine. It indexes entities by id
// and by owner, and journals every mutation until it is flushed.
type Store struct {
	reminders       map[string]*models.Reminder
	habits          map[string]*models.Habit
	stats           map[string]*models.UserStatistics
	// achievements is keyed by models.AchievementKey.
	achievements    map[string]*models.UserAchievement
	remindersByUser map[string]map[string]struct{}
	habitsByUser    map[string]map[string]struct{}

	// persisted tracks ids known to the backing provider, so deleting an
	// entity that was never flushed does not reach the provider.
	persistedReminders map[string]struct{}
	persistedHabits    map[string]struct{}

	journal journal
}

func NewStore() *Store {
	return &Store{
		reminders:          make(map[string]*models.Reminder),
		habits:             make(map[string]*models.Habit),
		stats:              make(map[string]*models.UserStatistics),
		achievements:       make(map[string]*models.UserAchievement),
		remindersByUser:    make(map[string]map[string]struct{}),
		habitsByUser:       make(map[string]map[string]struct{}),
		persistedReminders: make(map[string]struct{}),
		persistedHabits:    make(map[string]struct{}),
		journal:            newJournal(),
	}
}

// Load builds a Store from everything src holds. The returned store has an
// empty journal.
func Load(src Source) (*Store, error) {
	s := NewStore()

	reminders, err := src.GetAllReminders()
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stored reminder %s: %w", r.ID, err)
		}
		r := r.Clone()
		s.putReminder(&r)
		s.persistedReminders[r.ID] = struct{}{}
	}

	habits, err := src.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	for _, h := range habits {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stored habit %s: %w", h.ID, err)
		}
		h := h.Clone()
		s.putHabit(&h)
		s.persistedHabits[h.ID] = struct{}{}
	}

	stats, err := src.GetAllStatistics()
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	for _, st := range stats {
		s.stats[st.UserID] = &st
	}

	achievements, err := src.GetAllAchievements()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	for _, a := range achievements {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid stored achievement %s: %w", a.Key(), err)
		}
		a := a.Clone()
		s.achievements[a.Key()] = &a
	}

	return s, nil
}

func (s *Store) putReminder(r *models.Reminder) {
	s.reminders[r.ID] = r
	addIndex(s.remindersByUser, r.UserID, r.ID)
}

func (s *Store) putHabit(h *models.Habit) {
	s.habits[h.ID] = h
	addIndex(s.habitsByUser, h.UserID, h.ID)
}

func (s *Store) removeReminder(id string) {
	r, ok := s.reminders[id]
	if !ok {
		return
	}
	delete(s.reminders, id)
	dropIndex(s.remindersByUser, r.UserID, id)
	s.markReminderDeleted(id)
}

func (s *Store) removeHabit(id string) {
	h, ok := s.habits[id]
	if !ok {
		return
	}
	delete(s.habits, id)
	dropIndex(s.habitsByUser, h.UserID, id)
	s.markHabitDeleted(id)
}

func (s *Store) markReminder(id string) { s.journal.reminders[id] = changeUpsert }
func (s *Store) markHabit(id string)    { s.journal.habits[id] = changeUpsert }
func (s *Store) markStats(userID string) {
	s.journal.stats[userID] = struct{}{}
}

func (s *Store) markAchievement(key string) {
	s.journal.achievements[key] = struct{}{}
}

func (s *Store) markReminderDeleted(id string) {
	if _, ok := s.persistedReminders[id]; ok {
		s.journal.reminders[id] = changeDelete
		return
	}
	delete(s.journal.reminders, id)
}

func (s *Store) markHabitDeleted(id string) {
	if _, ok := s.persistedHabits[id]; ok {
		s.journal.habits[id] = changeDelete
		return
	}
	delete(s.journal.habits, id)
}

// userReminders returns the user's reminders ordered by (time, id).
func (s *Store) userReminders(userID string) []*models.Reminder {
	ids := s.remindersByUser[userID]
	out := make([]*models.Reminder, 0, len(ids))
	for id := range ids {
		out = append(out, s.reminders[id])
	}
	slices.SortFunc(out, compareReminders)
	return out
}

// userHabits returns the user's habits ordered by (createdAt, id).
func (s *Store) userHabits(userID string) []*models.Habit {
	ids := s.habitsByUser[userID]
	out := make([]*models.Habit, 0, len(ids))
	for id := range ids {
		out = append(out, s.habits[id])
	}
	slices.SortFunc(out, compareHabits)
	return out
}

// reminderUsers returns the ids of every user owning at least one reminder, ascending.
func (s *Store) reminderUsers() []string {
	return sortedKeys(s.remindersByUser)
}

func (s *Store) habitUsers() []string {
	return sortedKeys(s.habitsByUser)
}

func (s *Store) statsFor(userID string) *models.UserStatistics {
	st, ok := s.stats[userID]
	if !ok {
		st = &models.UserStatistics{UserID: userID}
		s.stats[userID] = st
	}
	return st
}

// achievementFor returns the user's progress row for templateID, creating an
// empty one when none exists. A new row is not journaled until it changes.
func (s *Store) achievementFor(userID, templateID string) *models.UserAchievement {
	key := models.AchievementKey(userID, templateID)
	a, ok := s.achievements[key]
	if !ok {
		a = &models.UserAchievement{UserID: userID, TemplateID: templateID}
		s.achievements[key] = a
	}
	return a
}

// Pending reports whether the store holds changes that have not been flushed.
func (s *Store) Pending() bool {
	return !s.journal.empty()
}

// flush writes every journaled change to sink in a deterministic order.
// Entries are cleared as they succeed, so a failed flush can be retried.
func (s *Store) flush(sink Sink) error {
	var errs []error

	for _, id := range sortedKeys(s.journal.reminders) {
		var err error
		switch s.journal.reminders[id] {
		case changeUpsert:
			if r, ok := s.reminders[id]; ok {
				err = sink.SaveReminder(r.Clone())
				if err == nil {
					s.persistedReminders[id] = struct{}{}
				}
			}
		case changeDelete:
			err = sink.DeleteReminder(id)
			if err == nil {
				delete(s.persistedReminders, id)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder %s: %w", id, err))
			continue
		}
		delete(s.journal.reminders, id)
	}

	for _, id := range sortedKeys(s.journal.habits) {
		var err error
		switch s.journal.habits[id] {
		case changeUpsert:
			if h, ok := s.habits[id]; ok {
				err = sink.SaveHabit(h.Clone())
				if err == nil {
					s.persistedHabits[id] = struct{}{}
				}
			}
		case changeDelete:
			err = sink.DeleteHabit(id)
			if err == nil {
				delete(s.persistedHabits, id)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("habit %s: %w", id, err))
			continue
		}
		delete(s.journal.habits, id)
	}

	for _, userID := range sortedKeys(s.journal.stats) {
		st, ok := s.stats[userID]
		if ok {
			if err := sink.SaveStatistics(*st); err != nil {
				errs = append(errs, fmt.Errorf("statistics %s: %w", userID, err))
				continue
			}
		}
		delete(s.journal.stats, userID)
	}

	for _, key := range sortedKeys(s.journal.achievements) {
		if a, ok := s.achievements[key]; ok {
			if err := sink.SaveAchievement(a.Clone()); err != nil {
				errs = append(errs, fmt.Errorf("achievement %s: %w", key, err))
				continue
			}
		}
		delete(s.journal.achievements, key)
	}

	return errors.Join(errs...)
}

func compareReminders(a, b *models.Reminder) int {
	if c := a.Time.Compare(b.Time); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareHabits(a, b *models.Habit) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func addIndex(index map[string]map[string]struct{}, userID, id string) {
	ids, ok := index[userID]
	if !ok {
		ids = make(map[string]struct{})
		index[userID] = ids
	}
	ids[id] = struct{}{}
}

func dropIndex(index map[string]map[string]struct{}, userID, id string) {
	ids, ok := index[userID]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(index, userID)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
