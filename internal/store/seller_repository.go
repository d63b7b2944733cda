/**
 * @description
 * PostgreSQL repository for sellers and their routing channels. Both seller
 * variants live in one `sellers` table with the unused variant's columns
 * null; a partial unique index enforces VAT uniqueness among company sellers
 * only. The channel foreign key is declared ON DELETE SET NULL, so a deleted
 * channel unassigns its seller at the storage boundary without application
 * cleanup.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/domain: seller model and error taxonomy.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// PostgreSQL error codes for unique_violation and foreign_key_violation.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// SellerRepository is the pgx-backed seller store.
type SellerRepository struct {
	db *pgxpool.Pool
}

// NewSellerRepository creates a new seller repository.
func NewSellerRepository(db *pgxpool.Pool) *SellerRepository {
	return &SellerRepository{db: db}
}

const sellerColumns = `
	id, seller_type, name, email, verification_status, is_active, channel_id,
	first_name, last_name, birth_date,
	company_name, vat_number, legal_form,
	created_at, updated_at
`

// scanSeller assembles the tagged variant from one flat row.
func scanSeller(row pgx.Row) (*domain.Seller, error) {
	var (
		s           domain.Seller
		firstName   *string
		lastName    *string
		birthDate   *time.Time
		companyName *string
		vatNumber   *string
		legalForm   *string
	)
	err := row.Scan(
		&s.ID, &s.SellerType, &s.Name, &s.Email, &s.VerificationStatus, &s.IsActive, &s.ChannelID,
		&firstName, &lastName, &birthDate,
		&companyName, &vatNumber, &legalForm,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch s.SellerType {
	case domain.SellerTypeIndividual:
		s.Individual = &domain.IndividualDetails{}
		if firstName != nil {
			s.Individual.FirstName = *firstName
		}
		if lastName != nil {
			s.Individual.LastName = *lastName
		}
		s.Individual.BirthDate = birthDate
	case domain.SellerTypeCompany:
		s.Company = &domain.CompanyDetails{
			VATNumber: vatNumber,
			LegalForm: legalForm,
		}
		if companyName != nil {
			s.Company.CompanyName = *companyName
		}
	}

	return &s, nil
}

// CreateSeller inserts a validated seller. A duplicate VAT number among
// company sellers surfaces as domain.ErrConflict.
func (r *SellerRepository) CreateSeller(ctx context.Context, seller *domain.Seller) error {
	var (
		firstName, lastName    *string
		birthDate              *time.Time
		companyName, vatNumber *string
		legalForm              *string
	)
	if seller.Individual != nil {
		firstName = &seller.Individual.FirstName
		lastName = &seller.Individual.LastName
		birthDate = seller.Individual.BirthDate
	}
	if seller.Company != nil {
		companyName = &seller.Company.CompanyName
		vatNumber = seller.Company.VATNumber
		legalForm = seller.Company.LegalForm
	}

	query := `
		INSERT INTO sellers (
			id, seller_type, name, email, verification_status, is_active,
			first_name, last_name, birth_date,
			company_name, vat_number, legal_form
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		seller.ID, seller.SellerType, seller.Name, seller.Email,
		seller.VerificationStatus, seller.IsActive,
		firstName, lastName, birthDate,
		companyName, vatNumber, legalForm,
	).Scan(&seller.CreatedAt, &seller.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: vat number already registered", domain.ErrConflict)
		}
		return fmt.Errorf("%w: insert seller: %v", domain.ErrStorage, err)
	}
	return nil
}

// GetSellerByID retrieves one seller with its variant payload.
func (r *SellerRepository) GetSellerByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = $1`
	seller, err := scanSeller(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("%w: get seller: %v", domain.ErrStorage, err)
	}
	return seller, nil
}

// SetVerification records the outcome of the verification workflow. A
// verified seller becomes active; a rejected one stays inactive.
func (r *SellerRepository) SetVerification(ctx context.Context, id uuid.UUID, status string, active bool) (*domain.Seller, error) {
	query := `
		UPDATE sellers
		SET verification_status = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + sellerColumns
	seller, err := scanSeller(r.db.QueryRow(ctx, query, status, active, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("%w: set verification: %v", domain.ErrStorage, err)
	}
	return seller, nil
}

// DeactivateSeller soft-deactivates a seller. Rows are never hard-deleted.
func (r *SellerRepository) DeactivateSeller(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	query := `
		UPDATE sellers
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sellerColumns
	seller, err := scanSeller(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}
		return nil, fmt.Errorf("%w: deactivate seller: %v", domain.ErrStorage, err)
	}
	return seller, nil
}

// AssignChannel creates a dedicated routing channel for a seller and links
// it, all in one transaction. The seller row is locked so two concurrent
// allocations cannot both create a channel; if a channel is already linked
// its id is returned unchanged.
func (r *SellerRepository) AssignChannel(ctx context.Context, sellerID uuid.UUID) (int64, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("%w: begin: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	var (
		isActive  bool
		channelID *int64
	)
	// Lock the row to serialize concurrent allocation attempts.
	err = tx.QueryRow(ctx,
		`SELECT is_active, channel_id FROM sellers WHERE id = $1 FOR UPDATE`,
		sellerID,
	).Scan(&isActive, &channelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, domain.ErrSellerNotFound
		}
		return 0, false, fmt.Errorf("%w: lock seller: %v", domain.ErrStorage, err)
	}

	if channelID != nil {
		return *channelID, false, nil
	}
	if !isActive {
		return 0, false, fmt.Errorf("%w: seller is not active", domain.ErrPrecondition)
	}

	var newChannelID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO channels (name) VALUES ($1) RETURNING id`,
		fmt.Sprintf("seller-%s", sellerID),
	).Scan(&newChannelID)
	if err != nil {
		return 0, false, fmt.Errorf("%w: create channel: %v", domain.ErrStorage, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE sellers SET channel_id = $1, updated_at = NOW() WHERE id = $2`,
		newChannelID, sellerID,
	)
	if err != nil {
		return 0, false, fmt.Errorf("%w: link channel: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return newChannelID, true, nil
}

// DeleteChannel removes a channel row. The seller foreign key is declared
// ON DELETE SET NULL, so the linked seller ends up unassigned, not deleted.
func (r *SellerRepository) DeleteChannel(ctx context.Context, channelID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM channels WHERE id = $1`, channelID)
	if err != nil {
		return fmt.Errorf("%w: delete channel: %v", domain.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: channel %d", domain.ErrChannelNotFound, channelID)
	}
	return nil
}
