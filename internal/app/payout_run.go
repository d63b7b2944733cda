/**
 * @description
 * The payout runner: decides whether a scheduler invocation is due for the
 * configured frequency and, when it is, drives the settlement ledger's bulk
 * hold -> pending transition. The frequency gate is separated from the cron
 * trigger so it can be tested against any clock without a real timer.
 *
 * @notes
 * - Storage errors propagate to the caller uncaught; the runner never
 *   retries. The triggering scheduler simply invokes again on its next
 *   cadence.
 * - Two racing "due" invocations are arbitrated inside the ledger
 *   repository (settings row lock + last-run re-check); the loser reports
 *   skipped rather than a duplicate aggregate.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/briandchristian/settlement-service/internal/domain"
)

// LedgerRepository defines the settlement ledger operations the runner needs.
type LedgerRepository interface {
	ProcessScheduledPayouts(ctx context.Context, expectedLastRun *time.Time, now time.Time) (domain.PayoutRunAggregate, bool, error)
}

// SettingsRepository defines the settings reads the runner needs.
type SettingsRepository interface {
	GetSchedulerSettings(ctx context.Context) (domain.SchedulerSettings, error)
}

// PayoutRunner owns the frequency gate and run orchestration.
type PayoutRunner struct {
	ledger    LedgerRepository
	settings  SettingsRepository
	publisher EventPublisher
	logger    *slog.Logger
}

// NewPayoutRunner creates a new payout runner.
func NewPayoutRunner(ledger LedgerRepository, settings SettingsRepository, publisher EventPublisher, logger *slog.Logger) PayoutRunner {
	return PayoutRunner{ledger: ledger, settings: settings, publisher: publisher, logger: logger}
}

// ShouldRun reports whether a run at now would process rather than skip,
// given the currently stored settings.
func (r PayoutRunner) ShouldRun(ctx context.Context, now time.Time) (bool, error) {
	settings, err := r.settings.GetSchedulerSettings(ctx)
	if err != nil {
		return false, err
	}
	return settings.ShouldRun(now), nil
}

// Run executes one scheduler invocation at now and reports the outcome.
// Skips (frequency not elapsed, or a concurrent invocation claimed the
// interval) are successful results; every failure is returned as an error.
func (r PayoutRunner) Run(ctx context.Context, now time.Time) (*domain.PayoutRunResult, error) {
	settings, err := r.settings.GetSchedulerSettings(ctx)
	if err != nil {
		r.logger.Error("failed to read scheduler settings", "error", err)
		return nil, err
	}

	result := &domain.PayoutRunResult{Frequency: settings.Frequency}
	if days, ran := settings.DaysSinceLastRun(now); ran {
		result.DaysSinceLastRun = &days
	}

	if !settings.ShouldRun(now) {
		result.Skipped = true
		result.Reason = "payout frequency interval has not elapsed"
		r.logger.Info("payout run skipped",
			"frequency", settings.Frequency,
			"days_since_last_run", *result.DaysSinceLastRun,
			"required_days", settings.Frequency.RequiredIntervalDays())
		return result, nil
	}

	agg, claimed, err := r.ledger.ProcessScheduledPayouts(ctx, settings.LastRun, now)
	if err != nil {
		r.logger.Error("payout run failed", "frequency", settings.Frequency, "error", err)
		return nil, err
	}
	if !claimed {
		result.Skipped = true
		result.Reason = "a concurrent invocation already processed this interval"
		r.logger.Info("payout run already claimed by a concurrent invocation")
		return result, nil
	}

	result.TotalProcessed = agg.TotalProcessed
	result.SellersAffected = agg.SellersAffected
	result.TotalAmount = agg.TotalAmount

	r.logger.Info("payout run completed",
		"frequency", settings.Frequency,
		"total_processed", agg.TotalProcessed,
		"sellers_affected", agg.SellersAffected,
		"total_amount", agg.TotalAmount)

	if agg.TotalProcessed > 0 {
		event := domain.PayoutRunCompletedEvent{
			RanAt:           now.UTC(),
			Frequency:       settings.Frequency,
			TotalProcessed:  agg.TotalProcessed,
			SellersAffected: agg.SellersAffected,
			TotalAmount:     agg.TotalAmount,
		}
		if err := r.publisher.Publish(ctx, domain.EventsExchange, domain.RoutingKeyPayoutRun, event); err != nil {
			// The run is committed; the event is advisory.
			r.logger.Error("failed to publish payout run event", "error", err)
		}
	}

	return result, nil
}
