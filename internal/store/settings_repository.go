/**
 * @description
 * PostgreSQL repository for the shared administrative settings record. The
 * record is one jsonb document per scope and carries keys owned by several
 * unrelated features, so every write here is a jsonb merge of a patch that
 * names only the keys being changed; the whole document is never replaced.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/domain: scheduler settings view and error taxonomy.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// SettingsScopePlatform is the administrative scope the scheduler reads.
// Scheduler settings are platform-wide, not per-seller.
const SettingsScopePlatform = "platform"

// SettingsRepository is the pgx-backed settings store.
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSchedulerSettings reads the scheduler-owned keys out of the platform
// settings document. A missing row, missing frequency, or unrecognized
// frequency all fall back to the weekly default; a missing last-run means
// the scheduler has never completed a pass.
func (r *SettingsRepository) GetSchedulerSettings(ctx context.Context) (domain.SchedulerSettings, error) {
	var (
		rawFrequency *string
		rawLastRun   *string
	)
	query := `
		SELECT settings->>$1, settings->>$2
		FROM admin_settings
		WHERE scope = $3
	`
	err := r.db.QueryRow(ctx, query,
		domain.SettingsKeyFrequency, domain.SettingsKeyLastRun, SettingsScopePlatform,
	).Scan(&rawFrequency, &rawLastRun)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SchedulerSettings{Frequency: domain.FrequencyWeekly}, nil
		}
		return domain.SchedulerSettings{}, fmt.Errorf("%w: read settings: %v", domain.ErrStorage, err)
	}

	settings := domain.SchedulerSettings{Frequency: domain.FrequencyWeekly}
	if rawFrequency != nil {
		settings.Frequency = domain.ParsePayoutFrequency(*rawFrequency)
	}
	if rawLastRun != nil && *rawLastRun != "" {
		lastRun, err := time.Parse(time.RFC3339, *rawLastRun)
		if err != nil {
			return domain.SchedulerSettings{}, fmt.Errorf("%w: malformed last-run timestamp %q: %v", domain.ErrStorage, *rawLastRun, err)
		}
		settings.LastRun = &lastRun
	}
	return settings, nil
}

// MergeSettings merges a patch into the platform settings document,
// creating the row on first write. Keys absent from the patch are left
// exactly as they were.
func (r *SettingsRepository) MergeSettings(ctx context.Context, patch map[string]string) error {
	encoded, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%w: encode settings patch: %v", domain.ErrStorage, err)
	}
	query := `
		INSERT INTO admin_settings (scope, settings)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (scope) DO UPDATE
		SET settings = admin_settings.settings || EXCLUDED.settings,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, SettingsScopePlatform, encoded); err != nil {
		return fmt.Errorf("%w: merge settings: %v", domain.ErrStorage, err)
	}
	return nil
}
