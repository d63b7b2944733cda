/**
 * @description
 * This file contains the core business logic for seller identity
 * management: registration of the two seller variants, the verification
 * workflow, and soft deactivation. The Service layer validates domain rules
 * before anything reaches the repository.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// SellerRepository defines the database operations the seller service needs.
type SellerRepository interface {
	CreateSeller(ctx context.Context, seller *domain.Seller) error
	GetSellerByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
	SetVerification(ctx context.Context, id uuid.UUID, status string, active bool) (*domain.Seller, error)
	DeactivateSeller(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
}

// RegisterSellerInput carries the registration payload for either variant.
type RegisterSellerInput struct {
	SellerType domain.SellerType         `json:"seller_type"`
	Name       string                    `json:"name"`
	Email      string                    `json:"email"`
	Individual *domain.IndividualDetails `json:"individual,omitempty"`
	Company    *domain.CompanyDetails    `json:"company,omitempty"`
}

// SellerService provides the business logic for seller lifecycle management.
type SellerService struct {
	repo   SellerRepository
	logger *slog.Logger
}

// NewSellerService creates a new seller service.
func NewSellerService(repo SellerRepository, logger *slog.Logger) SellerService {
	return SellerService{repo: repo, logger: logger}
}

// Register validates and persists a new seller. New sellers start
// unverified, inactive, and without a routing channel.
func (s SellerService) Register(ctx context.Context, input RegisterSellerInput) (*domain.Seller, error) {
	seller := domain.NewSeller(input.SellerType, input.Name, input.Email)
	seller.Individual = input.Individual
	seller.Company = input.Company

	if err := seller.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateSeller(ctx, seller); err != nil {
		s.logger.Error("failed to register seller", "email", seller.Email, "error", err)
		return nil, err
	}

	s.logger.Info("seller registered", "seller_id", seller.ID, "seller_type", seller.SellerType)
	return seller, nil
}

// Get returns the polymorphic seller view.
func (s SellerService) Get(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	return s.repo.GetSellerByID(ctx, id)
}

// Verify records the verification outcome. Approval activates the seller;
// rejection leaves it inactive.
func (s SellerService) Verify(ctx context.Context, id uuid.UUID, approved bool) (*domain.Seller, error) {
	status := domain.VerificationVerified
	if !approved {
		status = domain.VerificationRejected
	}

	seller, err := s.repo.SetVerification(ctx, id, status, approved)
	if err != nil {
		s.logger.Error("failed to update verification", "seller_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("seller verification updated", "seller_id", id, "status", status)
	return seller, nil
}

// Deactivate soft-deactivates a seller. Seller rows are never deleted; an
// inactive seller simply stops being eligible for channel allocation.
func (s SellerService) Deactivate(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	seller, err := s.repo.DeactivateSeller(ctx, id)
	if err != nil {
		s.logger.Error("failed to deactivate seller", "seller_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("seller deactivated", "seller_id", id)
	return seller, nil
}
