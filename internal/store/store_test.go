package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/store"
)

func openSQLite(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "quizdrill.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s store.Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, openSQLite(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, store.NewMemory()) })
}

func TestStore_EmptyBlobsNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		if _, err := s.LoadBank(ctx); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound for bank, got %v", err)
		}
		if _, err := s.LoadExamConfig(ctx); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound for config, got %v", err)
		}
		records, err := s.ListSessionResults(ctx, 0)
		if err != nil || len(records) != 0 {
			t.Errorf("expected empty history, got %d (%v)", len(records), err)
		}
	})
}

func TestStore_BankRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		seed := questionbank.Seed()
		seen := time.UnixMilli(1_700_000_000_000)
		seed[0].Attempts = 4
		seed[0].Correct = 3
		seed[0].LastSeen = &seen
		seed[1].Bookmarked = true

		if err := s.SaveBank(ctx, seed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := s.LoadBank(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(seed) {
			t.Fatalf("expected %d questions, got %d", len(seed), len(got))
		}
		for i := range seed {
			if got[i].ID != seed[i].ID || got[i].AnswerID != seed[i].AnswerID || got[i].Prompt != seed[i].Prompt {
				t.Errorf("question %d differs after round trip", i)
			}
		}
		if got[0].Attempts != 4 || got[0].Correct != 3 || got[0].LastSeen == nil || !got[0].LastSeen.Equal(seen) {
			t.Errorf("expected stats to survive, got %+v", got[0])
		}
		if !got[1].Bookmarked {
			t.Error("expected bookmark to survive")
		}

		// Saving again replaces the blob.
		if err := s.SaveBank(ctx, seed[:2]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, _ = s.LoadBank(ctx)
		if len(got) != 2 {
			t.Errorf("expected 2 questions after overwrite, got %d", len(got))
		}
	})
}

func TestStore_ExamConfig(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		cfg := examconfig.Config{MockQuestionCount: 40, MockDurationMinutes: 50, PassScorePercent: 70}
		if err := s.SaveExamConfig(ctx, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := s.LoadExamConfig(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != cfg {
			t.Errorf("expected %+v, got %+v", cfg, got)
		}
	})
}

func TestStore_SessionHistory(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		base := time.UnixMilli(1_700_000_000_000)

		for i, id := range []string{"first", "second", "third"} {
			rec := store.SessionRecord{
				ID:         id,
				Mode:       "mock",
				Total:      10,
				Correct:    i * 3,
				Percent:    i * 30,
				Passed:     i == 2,
				WrongIDs:   []string{"q1", "q2"},
				StartedAt:  base.Add(time.Duration(i) * time.Hour),
				FinishedAt: base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			}
			if err := s.SaveSessionResult(ctx, rec); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		all, err := s.ListSessionResults(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
			t.Fatalf("expected newest first, got %+v", all)
		}
		if !all[0].Passed || all[1].Passed {
			t.Error("expected passed flag to survive")
		}
		if len(all[0].WrongIDs) != 2 || all[0].WrongIDs[1] != "q2" {
			t.Errorf("unexpected wrong ids %v", all[0].WrongIDs)
		}
		if !all[0].FinishedAt.Equal(base.Add(2*time.Hour + 10*time.Minute)) {
			t.Errorf("unexpected finish time %v", all[0].FinishedAt)
		}

		limited, _ := s.ListSessionResults(ctx, 2)
		if len(limited) != 2 {
			t.Errorf("expected limit to apply, got %d", len(limited))
		}
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := store.Open(context.Background(), store.Driver("oracle"), ""); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
