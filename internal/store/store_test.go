package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/luislealdev/nine-minutes-bot-api/internal/survey"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	s, err := New(db)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return s
}

func TestCreateAndFindLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.FindLatest(ctx, "A"); !errors.Is(err, survey.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unseen address, got %v", err)
	}

	created, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Stage != survey.StageAge || created.Completed {
		t.Fatalf("expected fresh record at age stage, got %+v", created)
	}

	found, err := s.FindLatest(ctx, "A")
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if found.ID != created.ID || found.Address != "A" || found.Stage != survey.StageAge {
		t.Fatalf("round trip mismatch: %+v vs %+v", found, created)
	}
	if found.Selection.Kind != survey.SelectionNone {
		t.Fatalf("expected empty selection, got %+v", found.Selection)
	}
}

func TestCreateRefusesSecondActiveRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "A"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, "A"); !errors.Is(err, survey.ErrActiveExists) {
		t.Fatalf("expected ErrActiveExists, got %v", err)
	}
}

func TestCreateAllowedAfterCompletion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := *first
	done.Completed = true
	done.Outcome = survey.OutcomeRejected
	if _, err := s.Update(ctx, &done, survey.StageAge); err != nil {
		t.Fatalf("Update: %v", err)
	}

	second, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create after completion: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a brand-new record")
	}

	// History is retained: the latest record is the new one.
	latest, err := s.FindLatest(ctx, "A")
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if latest.ID != second.ID || latest.Completed {
		t.Fatalf("expected the fresh record, got %+v", latest)
	}
}

func TestUpdatePersistsSelectionAndOutcome(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p.Stage = survey.StageShift
	p.Selection = survey.Selection{Kind: survey.SelectionBranch, Value: "Sucursal Jaral"}
	if _, err := s.Update(ctx, p, survey.StageAge); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := s.FindLatest(ctx, "A")
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if found.Stage != survey.StageShift {
		t.Fatalf("expected shift stage, got %q", found.Stage)
	}
	if found.Selection.Kind != survey.SelectionBranch || found.Selection.Value != "Sucursal Jaral" {
		t.Fatalf("unexpected selection: %+v", found.Selection)
	}
	if found.UpdatedAt.Before(found.CreatedAt) {
		t.Fatalf("updated_at must not precede created_at")
	}

	found.Completed = true
	found.Outcome = survey.OutcomeAccepted
	if _, err := s.Update(ctx, found, survey.StageShift); err != nil {
		t.Fatalf("Update to completed: %v", err)
	}

	final, err := s.FindLatest(ctx, "A")
	if err != nil {
		t.Fatalf("FindLatest: %v", err)
	}
	if !final.Completed || final.Outcome != survey.OutcomeAccepted {
		t.Fatalf("expected accepted completion, got %+v", final)
	}
}

func TestUpdateConflictsOnStaleStage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A racing duplicate webhook moved the record first.
	moved := *p
	moved.Stage = survey.StageLocation
	if _, err := s.Update(ctx, &moved, survey.StageAge); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stale := *p
	stale.Stage = survey.StageLocation
	if _, err := s.Update(ctx, &stale, survey.StageAge); !errors.Is(err, survey.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale stage, got %v", err)
	}
}

func TestUpdateConflictsOnCompletedRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.Create(ctx, "A")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := *p
	done.Completed = true
	done.Outcome = survey.OutcomeRejected
	if _, err := s.Update(ctx, &done, survey.StageAge); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// completed is monotonic: the row is immutable from here on.
	late := *p
	late.Stage = survey.StageLocation
	if _, err := s.Update(ctx, &late, survey.StageAge); !errors.Is(err, survey.ErrConflict) {
		t.Fatalf("expected ErrConflict for completed record, got %v", err)
	}
}
