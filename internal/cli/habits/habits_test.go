package habits

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tracklit/internal/cli"
	"github.com/julianstephens/tracklit/internal/config"
	"github.com/julianstephens/tracklit/internal/lifecycle"
	"github.com/julianstephens/tracklit/internal/models"
	"github.com/julianstephens/tracklit/internal/storage"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, *testClock) {
	t.Helper()
	cfg := config.Default()
	cfg.UserID = "alice"
	cfg.Timezone = "UTC"

	clock := &testClock{now: time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)}
	var out bytes.Buffer
	ctx := &cli.Context{
		Store:  storage.NewMemoryStore(),
		Config: cfg,
		Out:    &out,
		Clock:  clock.Now,
	}
	return ctx, &out, clock
}

func onlyHabit(t *testing.T, ctx *cli.Context) models.Habit {
	t.Helper()
	all, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 stored habit, got %d", len(all))
	}
	return all[0]
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out, _ := setupTestContext(t)

	if err := (&HabitAddCmd{Text: "Meditate", Period: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	h := onlyHabit(t, ctx)
	if h.StartDate != "2023-12-01" || h.Status != models.HabitActive {
		t.Errorf("unexpected habit: %+v", h)
	}
	if !strings.Contains(out.String(), "Added habit: Meditate") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitAddCmd_InvalidDates(t *testing.T) {
	ctx, _, _ := setupTestContext(t)

	err := (&HabitAddCmd{Text: "Run", Period: "daily", Start: "2023-12-10", End: "2023-12-01"}).Run(ctx)
	if !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestHabitDoneAcrossDays(t *testing.T) {
	ctx, out, clock := setupTestContext(t)
	if err := (&HabitAddCmd{Text: "Read", Period: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyHabit(t, ctx).ID

	for i := 0; i < 3; i++ {
		if err := (&HabitDoneCmd{ID: id}).Run(ctx); err != nil {
			t.Fatalf("done on day %d failed: %v", i, err)
		}
		clock.now = clock.now.AddDate(0, 0, 1)
	}

	h := onlyHabit(t, ctx)
	if h.CurrentStreak != 3 || h.BestStreak != 3 {
		t.Errorf("streaks = %d/%d, want 3/3", h.CurrentStreak, h.BestStreak)
	}
	if len(h.Progress) != 3 {
		t.Errorf("progress entries = %d, want 3", len(h.Progress))
	}

	out.Reset()
	if err := (&HabitShowCmd{ID: id, Days: 14}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out.String(), "■■■") {
		t.Errorf("history not rendered: %q", out.String())
	}
}

func TestHabitUndoCmd(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	if err := (&HabitAddCmd{Text: "Stretch", Period: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyHabit(t, ctx).ID

	if err := (&HabitUndoCmd{ID: id}).Run(ctx); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("undo with no progress: expected invalid input, got %v", err)
	}
	if err := (&HabitDoneCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("done failed: %v", err)
	}
	if err := (&HabitUndoCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	h := onlyHabit(t, ctx)
	if h.CurrentStreak != 0 || len(h.Progress) != 0 {
		t.Errorf("undo left streak %d and %d entries", h.CurrentStreak, len(h.Progress))
	}
	if h.BestStreak != 1 {
		t.Errorf("BestStreak = %d, want 1 kept after undo", h.BestStreak)
	}
}

func TestHabitEditAndTrash(t *testing.T) {
	ctx, out, _ := setupTestContext(t)
	if err := (&HabitAddCmd{Text: "Journal", Period: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyHabit(t, ctx).ID

	if err := (&HabitEditCmd{ID: id, Period: "custom", Interval: "weekdays", Status: "paused"}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	h := onlyHabit(t, ctx)
	if h.Period != models.HabitCustom || h.CustomInterval != "weekdays" || h.Status != models.HabitPaused {
		t.Errorf("edit not applied: %+v", h)
	}
	if err := (&HabitDoneCmd{ID: id}).Run(ctx); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Errorf("done on paused habit: expected invalid input, got %v", err)
	}

	if err := (&HabitRemoveCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	out.Reset()
	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No habits found.") {
		t.Errorf("removed habit still listed: %q", out.String())
	}
	out.Reset()
	if err := (&HabitListCmd{Removed: true}).Run(ctx); err != nil {
		t.Fatalf("list --removed failed: %v", err)
	}
	if !strings.Contains(out.String(), "Journal") {
		t.Errorf("trashed habit missing: %q", out.String())
	}

	if err := (&HabitRestoreCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if onlyHabit(t, ctx).Status != models.HabitActive {
		t.Error("restore did not reactivate habit")
	}
}

func TestHabitDeleteCmd(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	if err := (&HabitAddCmd{Text: "Floss", Period: "daily"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyHabit(t, ctx).ID

	if err := (&HabitDeleteCmd{ID: id, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	all, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("expected no habits, got %d", len(all))
	}
	if err := (&HabitShowCmd{ID: id}).Run(ctx); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Errorf("show after delete: expected not found, got %v", err)
	}
}
