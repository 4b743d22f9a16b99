package lifecycle

import (
	"errors"
	"reflect"
	"testing"

	"github.com/julianstephens/tracklit/internal/models"
)

func TestCreateHabit(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")

	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: " Read "})
	if h.Text != "Read" || h.Period != models.HabitDaily || h.Status != models.HabitActive {
		t.Errorf("unexpected habit defaults: %+v", h)
	}
	if h.StartDate != "2023-12-01" {
		t.Errorf("expected start date to default to today, got %q", h.StartDate)
	}
	if h.CurrentStreak != 0 || h.BestStreak != 0 || len(h.Progress) != 0 {
		t.Errorf("expected empty progress, got %+v", h)
	}

	custom := mustCreateHabit(t, e, CreateHabitInput{
		UserID:         "alice",
		Text:           "Run",
		Period:         "custom",
		CustomInterval: "every other day",
		StartDate:      "2023-11-01",
		EndDate:        "2023-12-31",
	})
	if custom.Period != models.HabitCustom || custom.CustomInterval != "every other day" {
		t.Errorf("unexpected custom habit: %+v", custom)
	}

	daily := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Walk", CustomInterval: "ignored"})
	if daily.CustomInterval != "" {
		t.Errorf("custom interval must be dropped for daily habits, got %q", daily.CustomInterval)
	}
}

func TestCreateHabit_InvalidInput(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")

	tests := []struct {
		name  string
		input CreateHabitInput
	}{
		{"empty text", CreateHabitInput{UserID: "alice", Text: "  "}},
		{"missing user", CreateHabitInput{Text: "Read"}},
		{"bad period", CreateHabitInput{UserID: "alice", Text: "Read", Period: "weekly"}},
		{"bad start date", CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "01/12/2023"}},
		{"bad end date", CreateHabitInput{UserID: "alice", Text: "Read", EndDate: "2023-13-40"}},
		{"end before start", CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "2023-12-10", EndDate: "2023-12-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.CreateHabit(tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if len(e.ListHabits("alice")) != 0 {
		t.Error("failed creates must not add habits")
	}
}

func TestCompleteHabitToday_FlipsExistingEntry(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-03T12:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "2023-12-01"})
	stored := e.store.habits[h.ID]
	stored.Progress = []models.ProgressEntry{
		{Day: "2023-12-01", Completed: true},
		{Day: "2023-12-02", Completed: true},
		{Day: "2023-12-03", Completed: false},
	}
	stored.BestStreak = 2

	got, err := e.CompleteHabitToday(h.ID)
	if err != nil {
		t.Fatalf("CompleteHabitToday failed: %v", err)
	}
	if len(got.Progress) != 3 || got.Progress[2] != (models.ProgressEntry{Day: "2023-12-03", Completed: true}) {
		t.Errorf("unexpected progress: %+v", got.Progress)
	}
	if got.CurrentStreak != 3 || got.BestStreak != 3 {
		t.Errorf("expected streaks 3/3, got %d/%d", got.CurrentStreak, got.BestStreak)
	}
}

func TestCompleteHabitToday_FillsGaps(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T12:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "2023-11-29"})

	got, err := e.CompleteHabitToday(h.ID)
	if err != nil {
		t.Fatalf("CompleteHabitToday failed: %v", err)
	}
	want := []models.ProgressEntry{
		{Day: "2023-11-29"},
		{Day: "2023-11-30"},
		{Day: "2023-12-01", Completed: true},
	}
	if !reflect.DeepEqual(got.Progress, want) {
		t.Errorf("progress = %+v, want %+v", got.Progress, want)
	}

	clock.Set(mustTime(t, "2023-12-04T12:00:00Z"))
	got, err = e.CompleteHabitToday(h.ID)
	if err != nil {
		t.Fatalf("CompleteHabitToday failed: %v", err)
	}
	if len(got.Progress) != 6 {
		t.Fatalf("expected 6 dense entries, got %+v", got.Progress)
	}
	for i := 1; i < len(got.Progress); i++ {
		if !isNextDay(t, got.Progress[i-1].Day, got.Progress[i].Day) {
			t.Errorf("gap between %s and %s", got.Progress[i-1].Day, got.Progress[i].Day)
		}
	}
	if got.CurrentStreak != 1 || got.BestStreak != 1 {
		t.Errorf("expected streaks 1/1, got %d/%d", got.CurrentStreak, got.BestStreak)
	}
}

func isNextDay(t *testing.T, prev, day string) bool {
	t.Helper()
	p := mustTime(t, prev+"T00:00:00Z")
	return p.AddDate(0, 0, 1).Format("2006-01-02") == day
}

func TestCompleteHabitToday_Idempotent(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T12:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	first, err := e.CompleteHabitToday(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.CompleteHabitToday(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second completion changed the habit:\n%+v\n%+v", first, second)
	}
}

func TestCompleteHabitToday_BestStreakNeverDecreases(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-05T12:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "2023-12-01"})
	e.store.habits[h.ID].BestStreak = 10

	best := 10
	for _, day := range []string{"2023-12-05", "2023-12-06", "2023-12-08", "2023-12-09"} {
		clock.Set(mustTime(t, day+"T12:00:00Z"))
		got, err := e.CompleteHabitToday(h.ID)
		if err != nil {
			t.Fatalf("CompleteHabitToday on %s failed: %v", day, err)
		}
		if got.BestStreak < best {
			t.Fatalf("best streak decreased on %s: %d -> %d", day, best, got.BestStreak)
		}
		best = got.BestStreak
	}
	if best != 10 {
		t.Errorf("expected preserved best streak 10, got %d", best)
	}
	got, _ := e.GetHabit(h.ID)
	if got.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", got.CurrentStreak)
	}
}

func TestCompleteHabitToday_Errors(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-10T12:00:00Z")

	if _, err := e.CompleteHabitToday("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	future := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Later", StartDate: "2023-12-11"})
	ended := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Over", StartDate: "2023-12-01", EndDate: "2023-12-09"})
	paused := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Paused"})
	removed := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Removed"})
	if _, err := e.UpdateHabit(paused.ID, HabitPatch{Status: "paused"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.RemoveHabit(removed.ID); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{future.ID, ended.ID, paused.ID, removed.ID} {
		if _, err := e.CompleteHabitToday(id); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("habit %s: expected ErrInvalidInput, got %v", id, err)
		}
		if got, _ := e.GetHabit(id); len(got.Progress) != 0 {
			t.Errorf("habit %s: progress changed by failed completion", id)
		}
	}
}

func TestCompleteHabitToday_ReconcilesOwner(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T08:00:00Z")
	mustCreateReminder(t, e, "alice", "x", "2023-12-01T09:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	clock.Set(mustTime(t, "2023-12-01T10:00:00Z"))
	if _, err := e.CompleteHabitToday(h.ID); err != nil {
		t.Fatal(err)
	}
	if e.store.stats["alice"].RemindersForgotten != 1 {
		t.Errorf("expected the completion to run a reconciliation pass, got %+v", e.store.stats["alice"])
	}
}

func TestUndoHabitProgress(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T12:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})
	if _, err := e.UndoHabitProgress(h.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput with no progress, got %v", err)
	}

	for _, day := range []string{"2023-12-01", "2023-12-02"} {
		clock.Set(mustTime(t, day+"T12:00:00Z"))
		if _, err := e.CompleteHabitToday(h.ID); err != nil {
			t.Fatal(err)
		}
	}

	got, err := e.UndoHabitProgress(h.ID)
	if err != nil {
		t.Fatalf("UndoHabitProgress failed: %v", err)
	}
	if len(got.Progress) != 1 || got.CurrentStreak != 1 || got.BestStreak != 2 {
		t.Errorf("unexpected habit after undo: %+v", got)
	}
	if _, err := e.UndoHabitProgress("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateHabit(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T08:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	clock.Advance(1)
	got, err := e.UpdateHabit(h.ID, HabitPatch{Period: "custom", CustomInterval: "weekdays", EndDate: "2023-12-31"})
	if err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	if got.Text != "Read" || got.Period != models.HabitCustom || got.CustomInterval != "weekdays" || got.EndDate != "2023-12-31" {
		t.Errorf("unexpected habit after update: %+v", got)
	}
	if !got.UpdatedAt.After(h.UpdatedAt) {
		t.Error("expected updatedAt bumped")
	}

	got, err = e.UpdateHabit(h.ID, HabitPatch{Period: "daily"})
	if err != nil {
		t.Fatal(err)
	}
	if got.CustomInterval != "" {
		t.Errorf("expected custom interval cleared for daily, got %q", got.CustomInterval)
	}

	unchanged, err := e.UpdateHabit(h.ID, HabitPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(unchanged, got) {
		t.Error("empty patch must not change the habit")
	}
}

func TestUpdateHabit_Errors(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read", StartDate: "2023-12-01"})

	if _, err := e.UpdateHabit("missing", HabitPatch{Text: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	patches := []HabitPatch{
		{Text: "New", Period: "hourly"},
		{Text: "New", EndDate: "someday"},
		{Text: "New", EndDate: "2023-11-30"},
		{Text: "New", Status: "archived"},
	}
	for _, p := range patches {
		if _, err := e.UpdateHabit(h.ID, p); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("patch %+v: expected ErrInvalidInput, got %v", p, err)
		}
	}
	if got, _ := e.GetHabit(h.ID); got.Text != "Read" {
		t.Errorf("failed patches must not apply partially, got text %q", got.Text)
	}
}

func TestRemoveRestoreDeleteHabit(t *testing.T) {
	e, _ := setupTestEngine(t, "2023-12-01T08:00:00Z")
	keep := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Keep"})
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Trash"})

	if _, err := e.RemoveHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if list := e.ListHabits("alice"); len(list) != 1 || list[0].ID != keep.ID {
		t.Errorf("expected removed habit hidden, got %+v", list)
	}
	if trash := e.ListRemovedHabits("alice"); len(trash) != 1 || trash[0].ID != h.ID {
		t.Errorf("expected removed habit in trash, got %+v", trash)
	}

	restored, err := e.RestoreHabit(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Status != models.HabitActive {
		t.Errorf("expected active after restore, got %s", restored.Status)
	}
	if list := e.ListHabits(""); len(list) != 2 || list[0].ID != keep.ID {
		t.Errorf("expected both habits ordered by creation, got %+v", list)
	}

	if err := e.DeleteHabit(h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := e.GetHabit(h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := e.DeleteHabit(h.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	for _, op := range []func(string) (models.Habit, error){e.RemoveHabit, e.RestoreHabit} {
		if _, err := op("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	}
}

func TestListHabits_DoesNotReconcile(t *testing.T) {
	e, clock := setupTestEngine(t, "2023-12-01T08:00:00Z")
	mustCreateReminder(t, e, "alice", "x", "2023-12-01T09:00:00Z")
	h := mustCreateHabit(t, e, CreateHabitInput{UserID: "alice", Text: "Read"})

	clock.Set(mustTime(t, "2023-12-02T10:00:00Z"))
	e.ListHabits("alice")
	if _, err := e.GetHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.store.stats["alice"]; ok {
		t.Error("habit reads must not run a reconciliation pass")
	}
	if e.store.reminders["id-001"].Status != models.ReminderActive {
		t.Error("habit reads must not transition reminders")
	}
}
