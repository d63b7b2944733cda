/**
 * @description
 * Scheduled job implementations. The cron trigger invokes these on its
 * fixed daily cadence; the frequency gate inside the payout runner decides
 * whether a given day actually processes anything.
 */
package app

import (
	"context"
	"log/slog"
	"time"
)

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	runner PayoutRunner
	logger *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(runner PayoutRunner, logger *slog.Logger) *Jobs {
	return &Jobs{runner: runner, logger: logger}
}

// RunScheduledPayouts is the daily payout release job. Failures are logged
// and dropped here; the fixed cadence is the retry mechanism, so the next
// day's invocation picks the work back up.
func (j *Jobs) RunScheduledPayouts() {
	j.logger.Info("starting scheduled payout run")
	ctx := context.Background()

	result, err := j.runner.Run(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("scheduled payout run failed", "error", err)
		return
	}

	if result.Skipped {
		j.logger.Info("scheduled payout run skipped", "reason", result.Reason)
		return
	}

	j.logger.Info("scheduled payout run finished",
		"total_processed", result.TotalProcessed,
		"sellers_affected", result.SellersAffected,
		"total_amount", result.TotalAmount)
}
