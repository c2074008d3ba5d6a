package survey

import "time"

// DefaultCooldown is how long a completed applicant waits before a new
// application is accepted: 90 elapsed days, not calendar months.
const DefaultCooldown = 90 * 24 * time.Hour

// ReentryPolicy decides whether a completed record is old enough for the
// applicant to start over.
type ReentryPolicy struct {
	Cooldown time.Duration
}

// NewReentryPolicy returns a policy with the given cooldown, defaulting to
// DefaultCooldown when the duration is not positive.
func NewReentryPolicy(cooldown time.Duration) ReentryPolicy {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return ReentryPolicy{Cooldown: cooldown}
}

// CanReapply reports whether enough wall-clock time has elapsed since the
// completed record's anchor timestamp.
func (r ReentryPolicy) CanReapply(anchor, now time.Time) bool {
	return now.Sub(anchor) >= r.Cooldown
}
