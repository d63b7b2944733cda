/**
 * @description
 * PostgreSQL repository for the settlement ledger. Owns payout rows and the
 * bulk hold -> pending transition the scheduler runs. The bulk run, the
 * mutual-exclusion check against a racing invocation, and the last-run
 * write-back all happen inside one transaction, so a partial pass can never
 * commit.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/domain: payout model, run aggregate, error taxonomy.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// PayoutRepository is the pgx-backed settlement ledger store.
type PayoutRepository struct {
	db *pgxpool.Pool
}

// NewPayoutRepository creates a new payout repository.
func NewPayoutRepository(db *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// CreatePayout inserts a held payout for a seller.
func (r *PayoutRepository) CreatePayout(ctx context.Context, payout *domain.Payout) error {
	query := `
		INSERT INTO payouts (id, seller_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		payout.ID, payout.SellerID, payout.Amount, payout.Status,
	).Scan(&payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: %s", domain.ErrSellerNotFound, payout.SellerID)
		}
		return fmt.Errorf("%w: insert payout: %v", domain.ErrStorage, err)
	}
	return nil
}

// GetPayoutByID retrieves one payout.
func (r *PayoutRepository) GetPayoutByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	var p domain.Payout
	query := `
		SELECT id, seller_id, amount, status, released_at, created_at, updated_at
		FROM payouts WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SellerID, &p.Amount, &p.Status, &p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPayoutNotFound
		}
		return nil, fmt.Errorf("%w: get payout: %v", domain.ErrStorage, err)
	}
	return &p, nil
}

// ListPayoutsBySeller returns a seller's full ledger, newest first.
func (r *PayoutRepository) ListPayoutsBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Payout, error) {
	query := `
		SELECT id, seller_id, amount, status, released_at, created_at, updated_at
		FROM payouts
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list payouts: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Amount, &p.Status, &p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan payout: %v", domain.ErrStorage, err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list payouts: %v", domain.ErrStorage, err)
	}
	return payouts, nil
}

// UpdatePayoutStatus advances one payout through the approval flow. The
// update is conditional on the current status being a legal source for the
// target, so an illegal transition never commits and surfaces as
// domain.ErrPrecondition.
func (r *PayoutRepository) UpdatePayoutStatus(ctx context.Context, id uuid.UUID, next domain.PayoutStatus) (*domain.Payout, error) {
	sources := domain.SourceStatuses(next)
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %q is not a reachable status", domain.ErrPrecondition, next)
	}
	sourceStrings := make([]string, len(sources))
	for i, s := range sources {
		sourceStrings[i] = string(s)
	}

	var p domain.Payout
	query := `
		UPDATE payouts
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
		RETURNING id, seller_id, amount, status, released_at, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, next, id, sourceStrings).Scan(
		&p.ID, &p.SellerID, &p.Amount, &p.Status, &p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the payout does not exist or it is not in a legal
			// source state; disambiguate for the caller.
			if _, lookupErr := r.GetPayoutByID(ctx, id); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, fmt.Errorf("%w: payout is not in a state that allows %q", domain.ErrPrecondition, next)
		}
		return nil, fmt.Errorf("%w: update payout status: %v", domain.ErrStorage, err)
	}
	return &p, nil
}

// ProcessScheduledPayouts performs the scheduler's bulk hold -> pending
// pass. In a single transaction it:
//
//  1. locks the administrative settings row (FOR UPDATE), serializing
//     concurrent invocations;
//  2. re-checks the stored last-run timestamp against the one the caller
//     observed; a mismatch means another invocation already claimed this
//     interval, and the pass is abandoned (claimed=false, nothing changes);
//  3. transitions every held payout to pending, collecting the aggregate;
//  4. merges the new last-run timestamp into the settings document, leaving
//     sibling keys owned by other features untouched.
//
// Zero eligible payouts is a valid pass and still records the run.
func (r *PayoutRepository) ProcessScheduledPayouts(ctx context.Context, expectedLastRun *time.Time, now time.Time) (domain.PayoutRunAggregate, bool, error) {
	var agg domain.PayoutRunAggregate

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return agg, false, fmt.Errorf("%w: begin: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	// First-ever run on a fresh database: make sure the settings row exists
	// so the lock below has something to take.
	_, err = tx.Exec(ctx, `
		INSERT INTO admin_settings (scope, settings)
		VALUES ($1, '{}'::jsonb)
		ON CONFLICT (scope) DO NOTHING
	`, SettingsScopePlatform)
	if err != nil {
		return agg, false, fmt.Errorf("%w: ensure settings row: %v", domain.ErrStorage, err)
	}

	var storedLastRun *string
	err = tx.QueryRow(ctx, `
		SELECT settings->>$1
		FROM admin_settings
		WHERE scope = $2
		FOR UPDATE
	`, domain.SettingsKeyLastRun, SettingsScopePlatform).Scan(&storedLastRun)
	if err != nil {
		return agg, false, fmt.Errorf("%w: lock settings: %v", domain.ErrStorage, err)
	}

	if !lastRunMatches(storedLastRun, expectedLastRun) {
		return agg, false, nil
	}

	rows, err := tx.Query(ctx, `
		UPDATE payouts
		SET status = $1, released_at = $2, updated_at = NOW()
		WHERE status = $3
		RETURNING seller_id, amount
	`, domain.PayoutStatusPending, now, domain.PayoutStatusHold)
	if err != nil {
		return agg, false, fmt.Errorf("%w: bulk transition: %v", domain.ErrStorage, err)
	}
	agg, err = aggregateRun(rows)
	if err != nil {
		return domain.PayoutRunAggregate{}, false, fmt.Errorf("%w: aggregate run: %v", domain.ErrStorage, err)
	}

	patch, err := json.Marshal(domain.LastRunPatch(now))
	if err != nil {
		return domain.PayoutRunAggregate{}, false, fmt.Errorf("%w: encode last-run patch: %v", domain.ErrStorage, err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE admin_settings
		SET settings = settings || $1::jsonb, updated_at = NOW()
		WHERE scope = $2
	`, patch, SettingsScopePlatform)
	if err != nil {
		return domain.PayoutRunAggregate{}, false, fmt.Errorf("%w: record last run: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PayoutRunAggregate{}, false, fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return agg, true, nil
}

// aggregateRun folds the RETURNING rows of the bulk transition into the run
// aggregate. A seller with several held payouts counts once.
func aggregateRun(rows pgx.Rows) (domain.PayoutRunAggregate, error) {
	defer rows.Close()

	var agg domain.PayoutRunAggregate
	sellers := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var (
			sellerID uuid.UUID
			amount   int64
		)
		if err := rows.Scan(&sellerID, &amount); err != nil {
			return domain.PayoutRunAggregate{}, err
		}
		agg.TotalProcessed++
		agg.TotalAmount += amount
		sellers[sellerID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return domain.PayoutRunAggregate{}, err
	}
	agg.SellersAffected = len(sellers)
	return agg, nil
}

// lastRunMatches compares the stored last-run value with the one the caller
// read before deciding the run was due. Both absent counts as a match.
func lastRunMatches(stored *string, expected *time.Time) bool {
	if stored == nil || *stored == "" {
		return expected == nil
	}
	if expected == nil {
		return false
	}
	storedTime, err := time.Parse(time.RFC3339, *stored)
	if err != nil {
		return false
	}
	return storedTime.Equal(*expected)
}
