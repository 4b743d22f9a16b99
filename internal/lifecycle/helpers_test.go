package lifecycle

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", s, err)
	}
	return tm
}

func setupTestEngine(t *testing.T, now string, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: mustTime(t, now)}
	base := []Option{
		WithClock(clock.Now),
		WithLocation(time.UTC),
		WithIDGenerator(sequentialIDs("id")),
	}
	return New(NewStore(), append(base, opts...)...), clock
}

func mustCreateReminder(t *testing.T, e *Engine, userID, text, due string) models.Reminder {
	t.Helper()
	r, err := e.CreateReminder(CreateReminderInput{UserID: userID, Text: text, Time: due})
	if err != nil {
		t.Fatalf("CreateReminder failed: %v", err)
	}
	return r
}

func mustCreateHabit(t *testing.T, e *Engine, input CreateHabitInput) models.Habit {
	t.Helper()
	h, err := e.CreateHabit(input)
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return h
}

// memorySink records flushed state the way a provider would.
type memorySink struct {
	reminders    map[string]models.Reminder
	habits       map[string]models.Habit
	stats        map[string]models.UserStatistics
	achievements map[string]models.UserAchievement

	reminderDeletes []string
	habitDeletes    []string
	failReminders   bool
}

func newMemorySink() *memorySink {
	return &memorySink{
		reminders:    make(map[string]models.Reminder),
		habits:       make(map[string]models.Habit),
		stats:        make(map[string]models.UserStatistics),
		achievements: make(map[string]models.UserAchievement),
	}
}

func (m *memorySink) SaveReminder(r models.Reminder) error {
	if m.failReminders {
		return fmt.Errorf("disk full")
	}
	m.reminders[r.ID] = r
	return nil
}

func (m *memorySink) DeleteReminder(id string) error {
	m.reminderDeletes = append(m.reminderDeletes, id)
	delete(m.reminders, id)
	return nil
}

func (m *memorySink) SaveHabit(h models.Habit) error {
	m.habits[h.ID] = h
	return nil
}

func (m *memorySink) DeleteHabit(id string) error {
	m.habitDeletes = append(m.habitDeletes, id)
	delete(m.habits, id)
	return nil
}

func (m *memorySink) SaveStatistics(st models.UserStatistics) error {
	m.stats[st.UserID] = st
	return nil
}

func (m *memorySink) GetAllReminders() ([]models.Reminder, error) {
	out := make([]models.Reminder, 0, len(m.reminders))
	for _, r := range m.reminders {
		out = append(out, r)
	}
	return out, nil
}

func (m *memorySink) GetAllHabits() ([]models.Habit, error) {
	out := make([]models.Habit, 0, len(m.habits))
	for _, h := range m.habits {
		out = append(out, h)
	}
	return out, nil
}

func (m *memorySink) GetAllStatistics() ([]models.UserStatistics, error) {
	out := make([]models.UserStatistics, 0, len(m.stats))
	for _, st := range m.stats {
		out = append(out, st)
	}
	return out, nil
}

func (m *memorySink) SaveAchievement(a models.UserAchievement) error {
	m.achievements[a.Key()] = a
	return nil
}

func (m *memorySink) GetAllAchievements() ([]models.UserAchievement, error) {
	out := make([]models.UserAchievement, 0, len(m.achievements))
	for _, a := range m.achievements {
		out = append(out, a)
	}
	return out, nil
}
