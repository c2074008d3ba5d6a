// Package store persists screening progress records in SQLite. Records are
// append-only per address: completed rows stay around as history so the
// reentry cooldown can be enforced.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/luislealdev/nine-minutes-bot-api/internal/survey"
)

// Store provides SQLite-backed persistence for progress records.
type Store struct {
	db *sql.DB
}

// New returns a Store bound to an existing database handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db}, nil
}

// FindLatest returns the newest progress record for the address, completed or
// not. survey.ErrNotFound is returned for an unseen address.
func (s *Store) FindLatest(ctx context.Context, address string) (*survey.Progress, error) {
	if address == "" {
		return nil, fmt.Errorf("find latest: address is empty")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, address, stage, selection_kind, selection_value, completed, outcome, created_at, updated_at
		FROM progress
		WHERE address = ?
		ORDER BY id DESC
		LIMIT 1`, address)

	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, survey.ErrNotFound
		}
		return nil, fmt.Errorf("find latest: %w", err)
	}

	return p, nil
}

// Create inserts a fresh record at the first question. It refuses to create a
// second active record for the same address: that invariant is enforced here,
// inside a transaction, rather than trusted to callers.
func (s *Store) Create(ctx context.Context, address string) (*survey.Progress, error) {
	if address == "" {
		return nil, fmt.Errorf("create: address is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var active int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM progress WHERE address = ? AND completed = 0`, address,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("create: count active: %w", err)
	}
	if active > 0 {
		return nil, survey.ErrActiveExists
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339Nano)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO progress (address, stage, selection_kind, selection_value, completed, outcome, created_at, updated_at)
		VALUES (?, ?, ?, '', 0, NULL, ?, ?)`,
		address, string(survey.StageAge), string(survey.SelectionNone), nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("create: insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create: commit: %w", err)
	}

	return &survey.Progress{
		ID:        id,
		Address:   address,
		Stage:     survey.StageAge,
		Selection: survey.Selection{Kind: survey.SelectionNone},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update writes the record's stage, selection and completion, conditioned on
// the stage the caller read. When the row moved on since that read (a
// duplicate webhook racing this one) no row matches and survey.ErrConflict is
// returned so the caller can re-read.
func (s *Store) Update(ctx context.Context, p *survey.Progress, expected survey.Stage) (*survey.Progress, error) {
	if p == nil {
		return nil, fmt.Errorf("update: progress is nil")
	}
	if p.ID <= 0 {
		return nil, fmt.Errorf("update: invalid progress ID")
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339Nano)

	var outcome any
	if p.Outcome != "" {
		outcome = string(p.Outcome)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE progress
		SET stage = ?,
		    selection_kind = ?,
		    selection_value = ?,
		    completed = ?,
		    outcome = ?,
		    updated_at = ?
		WHERE id = ? AND stage = ? AND completed = 0`,
		string(p.Stage), string(p.Selection.Kind), p.Selection.Value,
		boolToInt(p.Completed), outcome, nowStr,
		p.ID, string(expected))
	if err != nil {
		return nil, fmt.Errorf("update: exec: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update: rows affected: %w", err)
	}
	if rows == 0 {
		return nil, survey.ErrConflict
	}

	updated := *p
	updated.UpdatedAt = now
	return &updated, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*survey.Progress, error) {
	var p survey.Progress
	var stageStr, kindStr string
	var completed int
	var outcome sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(&p.ID, &p.Address, &stageStr, &kindStr, &p.Selection.Value,
		&completed, &outcome, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}

	p.Stage = survey.Stage(stageStr)
	p.Selection.Kind = survey.SelectionKind(kindStr)
	p.Completed = completed != 0
	if outcome.Valid {
		p.Outcome = survey.Outcome(outcome.String)
	}

	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
