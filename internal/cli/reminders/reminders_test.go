package reminders

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

var testNow = time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.UserID = "alice"
	cfg.Timezone = "UTC"

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:  storage.NewMemoryStore(),
		Config: cfg,
		Out:    &out,
		Clock:  func() time.Time { return testNow },
	}
	return ctx, &out
}

func onlyReminder(t *testing.T, ctx *cli.Context) models.Reminder {
	t.Helper()
	all, err := ctx.Store.GetAllReminders()
	if err != nil {
		t.Fatalf("GetAllReminders failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 stored reminder, got %d", len(all))
	}
	return all[0]
}

func TestAddCmd_PersistsReminder(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &AddCmd{Text: "Call mom", In: time.Hour, Tags: []string{"family", " calls "}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	r := onlyReminder(t, ctx)
	if r.UserID != "alice" || r.Text != "Call mom" {
		t.Errorf("unexpected reminder: %+v", r)
	}
	if !r.Time.Equal(testNow.Add(time.Hour)) {
		t.Errorf("due time = %s, want %s", r.Time, testNow.Add(time.Hour))
	}
	if strings.Join(r.Tags, ",") != "calls,family" {
		t.Errorf("tags = %v, want normalized", r.Tags)
	}
	if !strings.Contains(out.String(), "Added reminder: Call mom") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestAddCmd_RequiresDueTime(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&AddCmd{Text: "Nothing"}).Run(ctx); err == nil {
		t.Fatal("expected error when neither --at nor --in is given")
	}
}

func TestAddCmd_InvalidTime(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&AddCmd{Text: "Bad", At: "tomorrow"}).Run(ctx)
	if !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListCmd_ShowsOverdueAsForgotten(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&AddCmd{Text: "Past due", At: "2023-12-01T08:00:00Z"}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	out.Reset()

	if err := (&ListCmd{ShowIDs: true}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	r := onlyReminder(t, ctx)
	if r.Status != models.ReminderForgotten {
		t.Errorf("stored status = %s, want forgotten", r.Status)
	}
	if !strings.Contains(out.String(), "forgotten") || !strings.Contains(out.String(), r.ID) {
		t.Errorf("list output missing status or ID: %q", out.String())
	}
}

func TestListCmd_Empty(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No reminders found") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestCompleteCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&AddCmd{Text: "Water plants", In: time.Hour}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyReminder(t, ctx).ID

	if err := (&CompleteCmd{ID: id, Status: "completed"}).Run(ctx); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	r := onlyReminder(t, ctx)
	if r.Status != models.ReminderCompleted || r.CompletedAt == nil {
		t.Errorf("expected completed reminder, got %+v", r)
	}

	// Outcomes are counted on the next reconciling read.
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	stats, err := ctx.Store.GetStatistics("alice")
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}
	if stats.RemindersCompleted != 1 {
		t.Errorf("RemindersCompleted = %d, want 1", stats.RemindersCompleted)
	}
}

func TestCompleteCmd_UnknownID(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&CompleteCmd{ID: "missing", Status: "completed"}).Run(ctx)
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEditAndTagCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&AddCmd{Text: "Draft", In: time.Hour, Tags: []string{"old"}}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyReminder(t, ctx).ID

	if err := (&EditCmd{ID: id}).Run(ctx); err == nil {
		t.Error("expected error for edit without fields")
	}
	if err := (&EditCmd{ID: id, Text: "Final", At: "2023-12-02T10:00:00Z"}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if err := (&TagCmd{ID: id, Tags: []string{"new"}}).Run(ctx); err != nil {
		t.Fatalf("tag failed: %v", err)
	}

	r := onlyReminder(t, ctx)
	if r.Text != "Final" || !r.Time.Equal(time.Date(2023, 12, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("edit not applied: %+v", r)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "new" {
		t.Errorf("tags = %v, want [new]", r.Tags)
	}
}

func TestTrashLifecycle(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&AddCmd{Text: "Disposable", In: time.Hour}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyReminder(t, ctx).ID

	if err := (&RemoveCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	out.Reset()
	if err := (&TrashCmd{}).Run(ctx); err != nil {
		t.Fatalf("trash failed: %v", err)
	}
	if !strings.Contains(out.String(), "Disposable") {
		t.Errorf("trash output missing reminder: %q", out.String())
	}

	if err := (&RestoreCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if onlyReminder(t, ctx).Removed {
		t.Error("reminder still removed after restore")
	}
}

func TestDeleteCmd_Confirmation(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&AddCmd{Text: "Keep me?", In: time.Hour}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	id := onlyReminder(t, ctx).ID

	ctx.Confirm = func(string) (bool, error) { return false, nil }
	if err := (&DeleteCmd{ID: id}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out.String(), "Cancelled") {
		t.Errorf("expected cancellation, got %q", out.String())
	}
	onlyReminder(t, ctx)

	ctx.Confirm = func(string) (bool, error) {
		t.Fatal("prompt shown despite --yes")
		return false, nil
	}
	if err := (&DeleteCmd{ID: id, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	all, err := ctx.Store.GetAllReminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("expected no reminders after delete, got %d", len(all))
	}
}
