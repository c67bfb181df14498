package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ramitgoyal/zensync/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserStore(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	t.Run("Create and GetByEmail", func(t *testing.T) {
		u, err := users.Create("Ramit", "Ramit@Example.com", "hash")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if u.Email != "ramit@example.com" {
			t.Fatalf("expected lowercased email, got %s", u.Email)
		}

		got, err := users.GetByEmail("RAMIT@example.COM")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.ID != u.ID {
			t.Fatalf("expected user %s, got %+v", u.ID, got)
		}
	})

	t.Run("duplicate email returns ErrEmailTaken", func(t *testing.T) {
		_, err := users.Create("Other", "ramit@example.com", "hash2")
		if !errors.Is(err, ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("GetByID unknown returns nil", func(t *testing.T) {
		got, err := users.GetByID("nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})
}

func TestSessionStore(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionStore(db)

	goal := 1500
	recA := &models.SessionRecord{
		ID: 1700000000000, Subject: "Math", Type: models.SessionTypeStudy,
		Duration: 600, GoalDuration: &goal, Date: "2024-01-10",
	}
	recB := &models.SessionRecord{
		ID: 1700000001000, Subject: "Physics", Type: models.SessionTypeReview,
		Duration: 300, Date: "2024-01-10",
	}

	t.Run("AppendRecord also bumps daily time", func(t *testing.T) {
		if err := sessions.AppendRecord(recA); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := sessions.AppendRecord(recB); err != nil {
			t.Fatalf("append: %v", err)
		}

		daily, err := sessions.DailyTime()
		if err != nil {
			t.Fatalf("daily time: %v", err)
		}
		if daily["2024-01-10"] != 900 {
			t.Fatalf("expected 900s accumulated, got %d", daily["2024-01-10"])
		}
	})

	t.Run("ListRecords newest first with filters", func(t *testing.T) {
		all, err := sessions.ListRecords("", "")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 2 || all[0].ID != recB.ID {
			t.Fatalf("expected newest first, got %+v", all)
		}
		if all[1].GoalDuration == nil || *all[1].GoalDuration != 1500 {
			t.Fatalf("expected goal round-tripped, got %v", all[1].GoalDuration)
		}

		byType, err := sessions.ListRecords(models.SessionTypeReview, "")
		if err != nil {
			t.Fatalf("list by type: %v", err)
		}
		if len(byType) != 1 || byType[0].Subject != "Physics" {
			t.Fatalf("expected only Physics review, got %+v", byType)
		}

		bySubject, err := sessions.ListRecords("", "mat")
		if err != nil {
			t.Fatalf("list by subject: %v", err)
		}
		if len(bySubject) != 1 || bySubject[0].Subject != "Math" {
			t.Fatalf("expected subject match, got %+v", bySubject)
		}
	})

	t.Run("DeleteRecord leaves daily time alone", func(t *testing.T) {
		deleted, err := sessions.DeleteRecord(recB.ID)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if !deleted {
			t.Fatal("expected record deleted")
		}

		daily, _ := sessions.DailyTime()
		if daily["2024-01-10"] != 900 {
			t.Fatalf("daily time must not decrement on delete, got %d", daily["2024-01-10"])
		}

		deleted, err = sessions.DeleteRecord(recB.ID)
		if err != nil {
			t.Fatalf("delete again: %v", err)
		}
		if deleted {
			t.Fatal("expected no-op on missing record")
		}
	})

	t.Run("active slot save, load, clear", func(t *testing.T) {
		start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
		a := &models.ActiveSession{
			Subject: "Math", Type: models.SessionTypeStudy,
			StartTime: start, PausedSeconds: 5,
		}
		if err := sessions.SaveActive(a); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := sessions.LoadActive()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got == nil || !got.StartTime.Equal(start) || got.PausedSeconds != 5 {
			t.Fatalf("slot did not round-trip: %+v", got)
		}

		// Saving again overwrites, never duplicates.
		a.IsPaused = true
		if err := sessions.SaveActive(a); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, _ = sessions.LoadActive()
		if !got.IsPaused {
			t.Fatal("expected overwritten slot to be paused")
		}

		if err := sessions.ClearActive(); err != nil {
			t.Fatalf("clear: %v", err)
		}
		got, err = sessions.LoadActive()
		if err != nil {
			t.Fatalf("load after clear: %v", err)
		}
		if got != nil {
			t.Fatalf("expected empty slot, got %+v", got)
		}
	})

	t.Run("malformed persisted state treated as absent", func(t *testing.T) {
		if _, err := db.Exec(`INSERT INTO active_session (slot, state) VALUES (1, 'not json')`); err != nil {
			t.Fatalf("seed bad state: %v", err)
		}
		got, err := sessions.LoadActive()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got != nil {
			t.Fatalf("expected malformed slot to read as absent, got %+v", got)
		}
		_ = sessions.ClearActive()
	})

	t.Run("ReplaceAll and Wipe", func(t *testing.T) {
		replacement := []*models.SessionRecord{
			{ID: 42, Subject: "Chem", Type: models.SessionTypeProject, Duration: 120, Date: "2024-02-01"},
		}
		daily := models.DailyTimeMap{"2024-02-01": 120}

		if err := sessions.ReplaceAll(replacement, daily); err != nil {
			t.Fatalf("replace: %v", err)
		}
		all, _ := sessions.ListRecords("", "")
		if len(all) != 1 || all[0].ID != 42 {
			t.Fatalf("expected replaced records, got %+v", all)
		}
		gotDaily, _ := sessions.DailyTime()
		if gotDaily["2024-01-10"] != 0 || gotDaily["2024-02-01"] != 120 {
			t.Fatalf("expected replaced daily map, got %+v", gotDaily)
		}

		if err := sessions.Wipe(); err != nil {
			t.Fatalf("wipe: %v", err)
		}
		all, _ = sessions.ListRecords("", "")
		if len(all) != 0 {
			t.Fatalf("expected no records after wipe, got %d", len(all))
		}
		count, err := db.SessionCount()
		if err != nil || count != 0 {
			t.Fatalf("expected count 0, got %d (err %v)", count, err)
		}
	})
}
