package file_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"placement-reminder/internal/event/repository"
	eventFile "placement-reminder/internal/event/repository/file"
	"placement-reminder/internal/model"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Info(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...any)   {}
func (m *mockLogger) Error(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...any)                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...any) {}
func (m *mockLogger) Panic(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...any)                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...any)  {}

func newTestLedger(t *testing.T) (string, string, context.Context, repository.LedgerRepository) {
	t.Helper()
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed_ids.json")
	pending := filepath.Join(dir, "pending_events.json")
	repo := eventFile.New(&mockLogger{}, processed, pending)
	return processed, pending, context.Background(), repo
}

func TestLoadMissingFiles(t *testing.T) {
	_, _, ctx, repo := newTestLedger(t)

	ids, err := repo.LoadProcessed(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("got %v, want empty", ids)
	}

	pending, err := repo.LoadPending(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("got %v, want empty", pending)
	}
}

func TestProcessedRoundTrip(t *testing.T) {
	_, _, ctx, repo := newTestLedger(t)

	want := []string{"msg-1", "msg-2", "msg-3"}
	if err := repo.SaveProcessed(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadProcessed(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPendingRoundTrip(t *testing.T) {
	_, _, ctx, repo := newTestLedger(t)

	want := map[string]model.PendingEvent{
		"token-1": {
			SourceID:   "msg-1",
			Subject:    "Interview call",
			Sender:     "hr@example.com",
			Snippet:    "Interview on 25 March",
			Body:       "Interview scheduled on 25 March 2025 at 3pm",
			ParsedTime: "2025-03-25T15:00:00+05:30",
		},
		"token-2": {
			SourceID: "msg-2",
			Subject:  "No date here",
			Sender:   "noreply@example.com",
		},
	}
	if err := repo.SavePending(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadPending(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCorruptFilesStartEmpty(t *testing.T) {
	processed, pending, ctx, repo := newTestLedger(t)

	if err := os.WriteFile(processed, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := os.WriteFile(pending, []byte("[1,2,3]"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ids, err := repo.LoadProcessed(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("got %v, want empty after corrupt file", ids)
	}

	p, err := repo.LoadPending(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 0 {
		t.Errorf("got %v, want empty after corrupt file", p)
	}
}

func TestSaveNilMeansEmpty(t *testing.T) {
	processed, pending, ctx, repo := newTestLedger(t)

	if err := repo.SaveProcessed(ctx, nil); err != nil {
		t.Fatalf("save processed: %v", err)
	}
	if err := repo.SavePending(ctx, nil); err != nil {
		t.Fatalf("save pending: %v", err)
	}

	for _, path := range []string{processed, pending} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}

	ids, err := repo.LoadProcessed(ctx)
	if err != nil || len(ids) != 0 {
		t.Errorf("got %v, %v, want empty slice", ids, err)
	}
	p, err := repo.LoadPending(ctx)
	if err != nil || len(p) != 0 {
		t.Errorf("got %v, %v, want empty map", p, err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	processed, _, ctx, repo := newTestLedger(t)

	if err := repo.SaveProcessed(ctx, []string{"msg-1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(processed))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("got %v, want only the ledger file", names)
	}
}
