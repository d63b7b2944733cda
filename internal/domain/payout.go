/**
 * @description
 * This file defines the payout ledger entity and its lifecycle state
 * machine. Amounts are stored as int64 in the smallest currency unit to
 * avoid floating-point inaccuracies with financial data.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the lifecycle state of a payout.
type PayoutStatus string

const (
	PayoutStatusHold     PayoutStatus = "hold"
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusPaid     PayoutStatus = "paid"
	PayoutStatusRejected PayoutStatus = "rejected"
)

// payoutTransitions maps each status to the statuses it may move to.
// The scheduler only ever performs hold -> pending; the rest belong to the
// admin approval flow.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusHold:     {PayoutStatusPending},
	PayoutStatusPending:  {PayoutStatusApproved, PayoutStatusRejected},
	PayoutStatusApproved: {PayoutStatusPaid, PayoutStatusRejected},
	PayoutStatusPaid:     {},
	PayoutStatusRejected: {},
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s PayoutStatus) CanTransitionTo(next PayoutStatus) bool {
	for _, allowed := range payoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourceStatuses returns every status from which next is reachable. The
// store uses this to build conditional updates so illegal transitions never
// commit.
func SourceStatuses(next PayoutStatus) []PayoutStatus {
	var sources []PayoutStatus
	for from, allowed := range payoutTransitions {
		for _, to := range allowed {
			if to == next {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// Payout is one accrued obligation owed to a seller. Rows are never
// deleted, only state-transitioned, so the table doubles as an audit trail.
type Payout struct {
	ID         uuid.UUID    `json:"id"`
	SellerID   uuid.UUID    `json:"seller_id"`
	Amount     int64        `json:"amount"` // minor currency units
	Status     PayoutStatus `json:"status"`
	ReleasedAt *time.Time   `json:"released_at,omitempty"` // set on hold -> pending
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewPayout builds a held payout for a seller. Amount must be positive.
func NewPayout(sellerID uuid.UUID, amount int64) (*Payout, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payout amount must be positive", ErrSchemaViolation)
	}
	return &Payout{
		ID:       uuid.New(),
		SellerID: sellerID,
		Amount:   amount,
		Status:   PayoutStatusHold,
	}, nil
}

// PayoutRunAggregate summarizes one bulk hold -> pending pass.
type PayoutRunAggregate struct {
	TotalProcessed  int   `json:"total_processed"`
	SellersAffected int   `json:"sellers_affected"`
	TotalAmount     int64 `json:"total_amount"`
}

// PayoutRunResult is what a scheduler invocation reports to its trigger.
type PayoutRunResult struct {
	Skipped          bool            `json:"skipped"`
	Reason           string          `json:"reason,omitempty"`
	Frequency        PayoutFrequency `json:"frequency"`
	DaysSinceLastRun *int            `json:"days_since_last_run,omitempty"`
	TotalProcessed   int             `json:"total_processed"`
	SellersAffected  int             `json:"sellers_affected"`
	TotalAmount      int64           `json:"total_amount"`
}
