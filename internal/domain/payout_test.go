package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewPayout_RejectsNonPositiveAmounts(t *testing.T) {
	sellerID := uuid.New()

	for _, amount := range []int64{0, -1, -5000} {
		if _, err := NewPayout(sellerID, amount); !errors.Is(err, ErrSchemaViolation) {
			t.Fatalf("NewPayout(%d): expected ErrSchemaViolation, got %v", amount, err)
		}
	}

	p, err := NewPayout(sellerID, 5000)
	if err != nil {
		t.Fatalf("NewPayout(5000): %v", err)
	}
	if p.Status != PayoutStatusHold {
		t.Fatalf("new payout status = %q, want hold", p.Status)
	}
}

func TestPayoutStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PayoutStatus
		to      PayoutStatus
		allowed bool
	}{
		{PayoutStatusHold, PayoutStatusPending, true},
		{PayoutStatusHold, PayoutStatusApproved, false},
		{PayoutStatusHold, PayoutStatusPaid, false},
		{PayoutStatusHold, PayoutStatusRejected, false},
		{PayoutStatusPending, PayoutStatusApproved, true},
		{PayoutStatusPending, PayoutStatusRejected, true},
		{PayoutStatusPending, PayoutStatusPaid, false},
		{PayoutStatusPending, PayoutStatusHold, false},
		{PayoutStatusApproved, PayoutStatusPaid, true},
		{PayoutStatusApproved, PayoutStatusRejected, true},
		{PayoutStatusPaid, PayoutStatusRejected, false},
		{PayoutStatusRejected, PayoutStatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestSourceStatuses(t *testing.T) {
	sources := SourceStatuses(PayoutStatusRejected)
	if len(sources) != 2 {
		t.Fatalf("rejected reachable from %d statuses, want 2", len(sources))
	}
	seen := map[PayoutStatus]bool{}
	for _, s := range sources {
		seen[s] = true
	}
	if !seen[PayoutStatusPending] || !seen[PayoutStatusApproved] {
		t.Fatalf("rejected sources = %v, want pending and approved", sources)
	}

	if got := SourceStatuses(PayoutStatusHold); len(got) != 0 {
		t.Fatalf("hold must be unreachable, got sources %v", got)
	}
}
