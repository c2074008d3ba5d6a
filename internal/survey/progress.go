package survey

import (
	"context"
	"errors"
	"time"
)

// Stage is the position of a conversation in the question sequence. The
// branch disambiguation step is a stage of its own rather than a marker
// squeezed between two question numbers.
type Stage string

const (
	StageAge      Stage = "age"
	StageLocation Stage = "location"
	StageBranch   Stage = "branch"
	StageShift    Stage = "shift"
	StageWeekends Stage = "weekends"
)

// Outcome is the terminal result of a completed conversation.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// SelectionKind tags what the selection value holds, so its interpretation
// no longer depends on the current stage.
type SelectionKind string

const (
	SelectionNone     SelectionKind = "none"
	SelectionLocation SelectionKind = "location"
	SelectionBranch   SelectionKind = "branch"
)

// Selection is the applicant's resolved choice of hiring site so far: a
// location key while branches are being disambiguated, then a branch name.
type Selection struct {
	Kind  SelectionKind
	Value string
}

// Progress is the persisted state of one applicant's screening conversation.
// The address is the record key; a new record is only created for an unseen
// address or after the reentry cooldown of a completed one.
type Progress struct {
	ID        int64
	Address   string
	Stage     Stage
	Selection Selection
	Completed bool
	Outcome   Outcome
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Anchor is the reference time for the reentry policy: the last update,
// falling back to creation time.
func (p *Progress) Anchor() time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

var (
	// ErrNotFound is returned by repositories when an address has no record.
	ErrNotFound = errors.New("progress record not found")
	// ErrActiveExists is returned by Create when the address already has a
	// non-completed record.
	ErrActiveExists = errors.New("an active progress record already exists")
	// ErrConflict is returned by Update when the record changed since it was
	// read, typically under duplicate webhook delivery.
	ErrConflict = errors.New("progress record was modified concurrently")
)

// Repository persists progress records. Update is conditional on the stage
// the caller read: a stale read must surface ErrConflict instead of silently
// overwriting a concurrent transition.
type Repository interface {
	FindLatest(ctx context.Context, address string) (*Progress, error)
	Create(ctx context.Context, address string) (*Progress, error)
	Update(ctx context.Context, p *Progress, expected Stage) (*Progress, error)
}

// Notifier delivers outbound text to an applicant's address.
type Notifier interface {
	Send(ctx context.Context, address, text string) error
}
