/**
 * @description
 * This file defines the polymorphic seller model for the settlement service.
 * A seller is either an individual or a company; both share a common base
 * record (name, email, verification status, channel link) and carry a
 * type-selected payload with the variant-specific fields.
 *
 * @notes
 * - The variant is represented as a tag plus one populated payload pointer
 *   rather than inheritance; validation and persistence switch on the tag.
 * - `channel_id` is nullable: unset until the channel allocator runs, and
 *   reset to null by the storage layer if the channel is deleted.
 */

package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SellerType discriminates the two seller variants.
type SellerType string

const (
	SellerTypeIndividual SellerType = "individual"
	SellerTypeCompany    SellerType = "company"
)

// Verification statuses for a seller.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// IndividualDetails holds the individual-only fields.
type IndividualDetails struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// CompanyDetails holds the company-only fields.
type CompanyDetails struct {
	CompanyName string  `json:"company_name"`
	VATNumber   *string `json:"vat_number,omitempty"`
	LegalForm   *string `json:"legal_form,omitempty"`
}

// Seller is the central marketplace participant record. It maps to the
// `sellers` table, which stores both variants in one row shape with the
// unused variant's columns null.
type Seller struct {
	ID                 uuid.UUID          `json:"id"`
	SellerType         SellerType         `json:"seller_type"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	VerificationStatus string             `json:"verification_status"`
	IsActive           bool               `json:"is_active"`
	ChannelID          *int64             `json:"channel_id,omitempty"`
	Individual         *IndividualDetails `json:"individual,omitempty"`
	Company            *CompanyDetails    `json:"company,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewSeller builds an unverified, unchanneled seller with a fresh ID.
func NewSeller(sellerType SellerType, name, email string) *Seller {
	return &Seller{
		ID:                 uuid.New(),
		SellerType:         sellerType,
		Name:               strings.TrimSpace(name),
		Email:              strings.TrimSpace(email),
		VerificationStatus: VerificationPending,
		IsActive:           false,
	}
}

// Validate enforces the base contract and the variant rules. It returns an
// error wrapping ErrSchemaViolation with a field-level message; the record
// must not be persisted when validation fails.
func (s *Seller) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrSchemaViolation)
	}
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrSchemaViolation)
	}

	switch s.SellerType {
	case SellerTypeIndividual:
		if s.Company != nil {
			return fmt.Errorf("%w: individual seller must not carry company details", ErrSchemaViolation)
		}
		if s.Individual == nil {
			return fmt.Errorf("%w: individual details are required", ErrSchemaViolation)
		}
		if strings.TrimSpace(s.Individual.FirstName) == "" {
			return fmt.Errorf("%w: first_name is required", ErrSchemaViolation)
		}
		if strings.TrimSpace(s.Individual.LastName) == "" {
			return fmt.Errorf("%w: last_name is required", ErrSchemaViolation)
		}
	case SellerTypeCompany:
		if s.Individual != nil {
			return fmt.Errorf("%w: company seller must not carry individual details", ErrSchemaViolation)
		}
		if s.Company == nil {
			return fmt.Errorf("%w: company details are required", ErrSchemaViolation)
		}
		if strings.TrimSpace(s.Company.CompanyName) == "" {
			return fmt.Errorf("%w: company_name is required", ErrSchemaViolation)
		}
	default:
		return fmt.Errorf("%w: unknown seller type %q", ErrSchemaViolation, s.SellerType)
	}

	return nil
}
