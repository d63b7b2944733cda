/**
 * @description
 * This file defines the domain models for events published by the
 * settlement service to the message broker (RabbitMQ). They are the
 * contract other services consume; fields are stable once published.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys on the settlement events exchange.
const (
	EventsExchange            = "settlement.events"
	RoutingKeyPayoutRun       = "payout.run.completed"
	RoutingKeyChannelAssigned = "seller.channel.assigned"
)

// PayoutRunCompletedEvent is published after a non-skipped scheduler pass.
type PayoutRunCompletedEvent struct {
	RanAt           time.Time       `json:"ran_at"`
	Frequency       PayoutFrequency `json:"frequency"`
	TotalProcessed  int             `json:"total_processed"`
	SellersAffected int             `json:"sellers_affected"`
	TotalAmount     int64           `json:"total_amount"`
}

// ChannelAssignedEvent is published when a seller receives a routing channel.
type ChannelAssignedEvent struct {
	SellerID  uuid.UUID `json:"seller_id"`
	ChannelID int64     `json:"channel_id"`
}
