package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luislealdev/nine-minutes-bot-api/internal/catalog"
)

// Yes/no answers are matched by exact equality on the folded text, never by
// containment: "si quiero por la tarde" must not count as an affirmative.
// This is deliberately stricter than the catalog matcher.
const (
	affirmativeWord = "si"
	negativeWord    = "no"
)

// Engine is the conversation state machine. Each inbound message is turned
// into at most one persisted mutation and one outbound reply; the mutation is
// persisted before the reply is sent so a crash never loses progress that the
// applicant was told about.
type Engine struct {
	source   catalog.Source
	repo     Repository
	notifier Notifier
	reentry  ReentryPolicy
	logger   *zap.Logger

	now func() time.Time
}

// New creates an engine over the given collaborators.
func New(source catalog.Source, repo Repository, notifier Notifier, reentry ReentryPolicy, logger *zap.Logger) *Engine {
	return &Engine{
		source:   source,
		repo:     repo,
		notifier: notifier,
		reentry:  reentry,
		logger:   logger,
		now:      time.Now,
	}
}

// step is the outcome of one transition: the record to persist (nil when the
// turn mutates nothing) and the reply to send.
type step struct {
	next  *Progress
	reply string
}

// HandleMessage advances the applicant's conversation with one inbound text.
func (e *Engine) HandleMessage(ctx context.Context, address, text string) error {
	c := e.source.Catalog()

	p, err := e.repo.FindLatest(ctx, address)
	if errors.Is(err, ErrNotFound) {
		return e.begin(ctx, c, address)
	}
	if err != nil {
		return fmt.Errorf("loading progress for %q: %w", address, err)
	}

	if p.Completed {
		if !e.reentry.CanReapply(p.Anchor(), e.now()) {
			e.logger.Info("applicant on cooldown",
				zap.String("address", address),
				zap.Time("completed_at", p.Anchor()),
			)
			e.deliver(ctx, address, msgCooldown)
			return nil
		}
		return e.begin(ctx, c, address)
	}

	st := transition(c, p, text)
	if st.next == nil {
		e.deliver(ctx, address, st.reply)
		return nil
	}

	if _, err := e.repo.Update(ctx, st.next, p.Stage); err != nil {
		if !errors.Is(err, ErrConflict) {
			return fmt.Errorf("updating progress for %q: %w", address, err)
		}
		return e.retryAfterConflict(ctx, c, address, text)
	}

	e.logger.Info("conversation advanced",
		zap.String("address", address),
		zap.String("from", string(p.Stage)),
		zap.String("to", string(st.next.Stage)),
		zap.Bool("completed", st.next.Completed),
	)

	e.deliver(ctx, address, st.reply)
	return nil
}

// retryAfterConflict re-reads the record once and retries the transition. A
// second conflict degrades the turn to a re-prompt with no mutation rather
// than risking a lost or doubled transition.
func (e *Engine) retryAfterConflict(ctx context.Context, c *catalog.Catalog, address, text string) error {
	fresh, err := e.repo.FindLatest(ctx, address)
	if err != nil {
		return fmt.Errorf("re-reading progress for %q after conflict: %w", address, err)
	}

	if fresh.Completed {
		e.deliver(ctx, address, msgCooldown)
		return nil
	}

	st := transition(c, fresh, text)
	if st.next == nil {
		e.deliver(ctx, address, st.reply)
		return nil
	}

	if _, err := e.repo.Update(ctx, st.next, fresh.Stage); err != nil {
		e.logger.Warn("conflict persisted after retry, re-prompting",
			zap.String("address", address),
			zap.String("stage", string(fresh.Stage)),
			zap.Error(err),
		)
		e.deliver(ctx, address, reprompt(c, fresh))
		return nil
	}

	e.deliver(ctx, address, st.reply)
	return nil
}

// Start implements the manual-start contract: create a record for a bare
// address and send the first question. When an active record exists the call
// is a no-op signalled with ErrActiveExists.
func (e *Engine) Start(ctx context.Context, address string) error {
	c := e.source.Catalog()

	p, err := e.repo.FindLatest(ctx, address)
	if err == nil && p.Completed && !e.reentry.CanReapply(p.Anchor(), e.now()) {
		return ErrActiveExists
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("loading progress for %q: %w", address, err)
	}

	if _, err := e.repo.Create(ctx, address); err != nil {
		if errors.Is(err, ErrActiveExists) {
			return ErrActiveExists
		}
		return fmt.Errorf("creating progress for %q: %w", address, err)
	}

	e.logger.Info("screening started manually", zap.String("address", address))
	e.deliver(ctx, address, firstQuestion(c))
	return nil
}

// begin creates a fresh record and sends the first question. A concurrent
// duplicate delivery may have created the record already; in that case the
// first question is simply sent again.
func (e *Engine) begin(ctx context.Context, c *catalog.Catalog, address string) error {
	if _, err := e.repo.Create(ctx, address); err != nil && !errors.Is(err, ErrActiveExists) {
		return fmt.Errorf("creating progress for %q: %w", address, err)
	}

	e.logger.Info("screening started", zap.String("address", address))
	e.deliver(ctx, address, firstQuestion(c))
	return nil
}

// deliver sends the reply. Delivery failures are logged and swallowed: the
// state change is already durable and the applicant's next message will
// re-prompt from the persisted stage.
func (e *Engine) deliver(ctx context.Context, address, text string) {
	if text == "" {
		return
	}
	if err := e.notifier.Send(ctx, address, text); err != nil {
		e.logger.Warn("outbound delivery failed",
			zap.String("address", address),
			zap.Error(err),
		)
	}
}

// transition is the pure state machine: (record, inbound text) -> step.
func transition(c *catalog.Catalog, p *Progress, text string) step {
	folded := catalog.Fold(text)

	if folded == negativeWord {
		return step{next: p.complete(OutcomeRejected), reply: msgRejected}
	}

	switch p.Stage {
	case StageAge:
		if folded == affirmativeWord {
			return step{next: p.with(StageLocation, p.Selection), reply: locationQuestion(c)}
		}
		return step{reply: msgYesNo}

	case StageLocation:
		return resolveLocationStep(c, p, text)

	case StageBranch:
		loc := c.LocationByKey(p.Selection.Value)
		if loc == nil {
			// The stored location disappeared from the catalog mid
			// conversation; resolve the text as a location again.
			return resolveLocationStep(c, p, text)
		}
		br := loc.ResolveBranch(text)
		if br == nil {
			return step{reply: branchRetry(loc)}
		}
		return step{next: p.with(StageShift, Selection{Kind: SelectionBranch, Value: br.Name}), reply: branchConfirmed(c, br)}

	case StageShift:
		if folded == affirmativeWord {
			return step{next: p.with(StageWeekends, p.Selection), reply: shiftAdvance(c)}
		}
		return step{reply: msgYesNo}

	case StageWeekends:
		if folded == affirmativeWord {
			var br *catalog.Branch
			if p.Selection.Kind == SelectionBranch {
				br = c.FindBranch(p.Selection.Value)
			}
			return step{next: p.complete(OutcomeAccepted), reply: accepted(br)}
		}
		return step{reply: msgYesNo}
	}

	return step{reply: msgYesNo}
}

// resolveLocationStep handles free-text location resolution. A single-branch
// location skips disambiguation entirely; a multi-branch one parks the
// location key in the selection and asks which branch.
func resolveLocationStep(c *catalog.Catalog, p *Progress, text string) step {
	loc := c.ResolveLocation(text)
	if loc == nil {
		return step{reply: locationRetry(c)}
	}

	if len(loc.Branches) == 1 {
		br := &loc.Branches[0]
		return step{next: p.with(StageShift, Selection{Kind: SelectionBranch, Value: br.Name}), reply: branchConfirmed(c, br)}
	}

	return step{next: p.with(StageBranch, Selection{Kind: SelectionLocation, Value: loc.Key}), reply: branchQuestion(loc)}
}

// reprompt repeats the question for the record's current stage without
// consuming the inbound text.
func reprompt(c *catalog.Catalog, p *Progress) string {
	switch p.Stage {
	case StageLocation:
		return locationRetry(c)
	case StageBranch:
		if loc := c.LocationByKey(p.Selection.Value); loc != nil {
			return branchRetry(loc)
		}
		return locationRetry(c)
	default:
		return msgYesNo
	}
}

func (p *Progress) with(stage Stage, sel Selection) *Progress {
	next := *p
	next.Stage = stage
	next.Selection = sel
	return &next
}

func (p *Progress) complete(outcome Outcome) *Progress {
	next := *p
	next.Completed = true
	next.Outcome = outcome
	return &next
}
