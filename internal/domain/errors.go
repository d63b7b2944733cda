/**
 * @description
 * Shared error taxonomy for the settlement service. Repositories and
 * services wrap these sentinels with context; the API layer maps them to
 * HTTP status codes with errors.Is.
 */
package domain

import "errors"

var (
	// ErrSchemaViolation means an entity failed required-field or variant
	// validation and was never persisted.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrConflict means a uniqueness rule was violated at write time,
	// e.g. a duplicate VAT number among company sellers.
	ErrConflict = errors.New("conflict")

	// ErrPrecondition means the target entity is not in the state the
	// operation requires, e.g. channel allocation on an inactive seller.
	ErrPrecondition = errors.New("precondition failed")

	// ErrStorage means a storage round trip failed. It is never retried
	// internally; the invoking trigger re-invokes on its next cadence.
	ErrStorage = errors.New("storage unavailable")

	// Lookup misses.
	ErrSellerNotFound  = errors.New("seller not found")
	ErrPayoutNotFound  = errors.New("payout not found")
	ErrChannelNotFound = errors.New("channel not found")
)
