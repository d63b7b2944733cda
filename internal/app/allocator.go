/**
 * @description
 * Channel allocation logic. Every active seller gets exactly one dedicated
 * order-routing channel; allocation is idempotent, and the allocation
 * itself (create + link) is serialized per seller inside the repository.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// ChannelRepository defines the database operations the allocator needs.
type ChannelRepository interface {
	AssignChannel(ctx context.Context, sellerID uuid.UUID) (channelID int64, created bool, err error)
	DeleteChannel(ctx context.Context, channelID int64) error
}

// EventPublisher is the broker-side contract for domain events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// ChannelAllocator assigns routing channels to sellers.
type ChannelAllocator struct {
	repo      ChannelRepository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewChannelAllocator creates a new channel allocator.
func NewChannelAllocator(repo ChannelRepository, publisher EventPublisher, logger *slog.Logger) ChannelAllocator {
	return ChannelAllocator{repo: repo, publisher: publisher, logger: logger}
}

// Allocate gives a seller its dedicated channel. If one is already linked
// the existing reference is returned and nothing changes; an inactive
// seller fails the precondition inside the repository. A fresh assignment
// is announced on the broker best-effort.
func (a ChannelAllocator) Allocate(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	channelID, created, err := a.repo.AssignChannel(ctx, sellerID)
	if err != nil {
		a.logger.Error("channel allocation failed", "seller_id", sellerID, "error", err)
		return 0, err
	}

	if !created {
		return channelID, nil
	}

	a.logger.Info("channel allocated", "seller_id", sellerID, "channel_id", channelID)

	event := domain.ChannelAssignedEvent{SellerID: sellerID, ChannelID: channelID}
	if err := a.publisher.Publish(ctx, domain.EventsExchange, domain.RoutingKeyChannelAssigned, event); err != nil {
		// The assignment is already durable; a lost notification is not
		// worth failing the call over.
		a.logger.Error("failed to publish channel assignment", "seller_id", sellerID, "error", err)
	}

	return channelID, nil
}

// ReleaseChannel deletes a channel row. The sellers table declares the
// channel foreign key ON DELETE SET NULL, so the owning seller becomes
// unassigned without any application-level cleanup racing the delete.
func (a ChannelAllocator) ReleaseChannel(ctx context.Context, channelID int64) error {
	if err := a.repo.DeleteChannel(ctx, channelID); err != nil {
		a.logger.Error("channel release failed", "channel_id", channelID, "error", err)
		return err
	}
	a.logger.Info("channel released", "channel_id", channelID)
	return nil
}
