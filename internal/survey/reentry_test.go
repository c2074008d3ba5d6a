package survey

import (
	"testing"
	"time"
)

func TestCanReapplyBoundary(t *testing.T) {
	policy := NewReentryPolicy(0)
	if policy.Cooldown != DefaultCooldown {
		t.Fatalf("expected default cooldown, got %s", policy.Cooldown)
	}

	anchor := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    bool
	}{
		{0, false},
		{89 * 24 * time.Hour, false},
		{90*24*time.Hour - time.Second, false},
		{90 * 24 * time.Hour, true},
		{120 * 24 * time.Hour, true},
	}

	for _, tc := range cases {
		if got := policy.CanReapply(anchor, anchor.Add(tc.elapsed)); got != tc.want {
			t.Fatalf("CanReapply after %s = %v, want %v", tc.elapsed, got, tc.want)
		}
	}
}

func TestAnchorFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	p := &Progress{CreatedAt: created}
	if got := p.Anchor(); !got.Equal(created) {
		t.Fatalf("expected created_at anchor, got %s", got)
	}

	updated := created.Add(time.Hour)
	p.UpdatedAt = updated
	if got := p.Anchor(); !got.Equal(updated) {
		t.Fatalf("expected updated_at anchor, got %s", got)
	}
}
