package lifecycle

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/julianstephens/tracklit/internal/models"
)

func TestLoad_RejectsInvalidEntities(t *testing.T) {
	sink := newMemorySink()
	sink.reminders["bad"] = models.Reminder{ID: "bad", UserID: "alice", Text: "x", Status: models.ReminderActive}

	if _, err := Load(sink); err == nil {
		t.Error("expected Load to reject a reminder without a due time")
	}
}

func TestSync_RoundTrip(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T08:00:00Z")
	r := mustCreateReminder(t, e, "alice", "x", "2023-12-01T09:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})
	if _, err := e.CompleteHabitToday(h.ID); err != nil {
		t.Fatal(err)
	}
	clock.Set(mustTime(t, "2023-12-01T10:00:00Z"))
	e.ListReminders("alice")

	sink := newMemorySink()
	if err := e.Sync(sink); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if e.Pending() {
		t.Error("expected empty journal after sync")
	}

	store, err := Load(sink)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reloaded := New(store, WithClock(clock.Now), WithLocation(time.UTC))

	got := reloaded.ListReminders("alice")
	if len(got) != 1 || got[0].ID != r.ID || got[0].Status != models.ReminderForgotten || !got[0].CountedInStats {
		t.Errorf("unexpected reloaded reminders: %+v", got)
	}
	habit, err := reloaded.GetHabit(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := e.GetHabit(h.ID)
	if !reflect.DeepEqual(habit, want) {
		t.Errorf("reloaded habit = %+v, want %+v", habit, want)
	}
	if st, _ := reloaded.GetStatistics("alice"); st.RemindersForgotten != 1 {
		t.Errorf("unexpected reloaded statistics: %+v", st)
	}
}

func TestSync_Deletes(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")
	kept := mustCreateReminder(t, e, "alice", "kept", "2023-12-01T09:00:00Z")
	gone := mustCreateReminder(t, e, "alice", "gone", "2023-12-01T09:00:00Z")
	ephemeral := mustCreateReminder(t, e, "alice", "never stored", "2023-12-01T09:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	sink := newMemorySink()
	if err := e.DeleteReminder(ephemeral.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.Sync(sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.reminderDeletes) != 0 {
		t.Errorf("unsynced reminder must not reach the provider, got deletes %v", sink.reminderDeletes)
	}

	if err := e.DeleteReminder(gone.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.DeleteHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.Sync(sink); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(sink.reminderDeletes, []string{gone.ID}) {
		t.Errorf("reminder deletes = %v, want [%s]", sink.reminderDeletes, gone.ID)
	}
	if !reflect.DeepEqual(sink.habitDeletes, []string{h.ID}) {
		t.Errorf("habit deletes = %v, want [%s]", sink.habitDeletes, h.ID)
	}
	if _, ok := sink.reminders[kept.ID]; !ok || len(sink.reminders) != 1 {
		t.Errorf("expected only %s stored, got %v", kept.ID, sink.reminders)
	}
}

func TestSync_FailureKeepsJournal(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")
	r := mustCreateReminder(t, e, "alice", "x", "2023-12-01T09:00:00Z")
	mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	sink := newMemorySink()
	sink.failReminders = true
	if err := e.Sync(sink); err == nil {
		t.Fatal("expected Sync to report the failed write")
	}
	if !e.Pending() {
		t.Fatal("expected failed changes to stay journaled")
	}
	if len(sink.habits) != 1 {
		t.Errorf("expected other changes to be flushed, got %d habits", len(sink.habits))
	}

	sink.failReminders = false
	if err := e.Sync(sink); err != nil {
		t.Fatalf("retry Sync failed: %v", err)
	}
	if _, ok := sink.reminders[r.ID]; !ok {
		t.Error("expected reminder written on retry")
	}
}

func TestSync_NothingPending(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")
	if err := e.Sync(failingSink{}); err != nil {
		t.Errorf("Sync with nothing pending must not touch the sink: %v", err)
	}
}

type failingSink struct{}

var errSink = errors.New("sink unavailable")

func (failingSink) SaveReminder(models.Reminder) error           { return errSink }
func (failingSink) DeleteReminder(string) error                  { return errSink }
func (failingSink) SaveHabit(models.Habit) error                 { return errSink }
func (failingSink) DeleteHabit(string) error                     { return errSink }
func (failingSink) SaveStatistics(models.UserStatistics) error   { return errSink }
func (failingSink) SaveAchievement(models.UserAchievement) error { return errSink }
