package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/briandchristian/settlement-service/internal/domain"
)

type ledgerStub struct {
	agg      domain.PayoutRunAggregate
	claimed  bool
	err      error
	calls    int
	seenNow  time.Time
	seenLast *time.Time
}

func (s *ledgerStub) ProcessScheduledPayouts(ctx context.Context, expectedLastRun *time.Time, now time.Time) (domain.PayoutRunAggregate, bool, error) {
	s.calls++
	s.seenNow = now
	s.seenLast = expectedLastRun
	if s.err != nil {
		return domain.PayoutRunAggregate{}, false, s.err
	}
	return s.agg, s.claimed, nil
}

type settingsStub struct {
	settings domain.SchedulerSettings
	err      error
}

func (s *settingsStub) GetSchedulerSettings(ctx context.Context) (domain.SchedulerSettings, error) {
	if s.err != nil {
		return domain.SchedulerSettings{}, s.err
	}
	return s.settings, nil
}

type publisherStub struct {
	published  []string
	publishErr error
}

func (s *publisherStub) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	s.published = append(s.published, routingKey)
	return s.publishErr
}

func newTestRunner(ledger *ledgerStub, settings *settingsStub, publisher *publisherStub) PayoutRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPayoutRunner(ledger, settings, publisher, logger)
}

func daysAgo(now time.Time, d int) *time.Time {
	ts := now.AddDate(0, 0, -d)
	return &ts
}

func TestRun_WeeklyDueProcessesAndReportsAggregate(t *testing.T) {
	// Scenario: weekly frequency, last run 8 days ago, three held payouts
	// (5000 + 7000 for one seller, 3000 for another).
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	ledger := &ledgerStub{
		agg:     domain.PayoutRunAggregate{TotalProcessed: 3, SellersAffected: 2, TotalAmount: 15000},
		claimed: true,
	}
	settings := &settingsStub{settings: domain.SchedulerSettings{
		Frequency: domain.FrequencyWeekly,
		LastRun:   daysAgo(now, 8),
	}}
	publisher := &publisherStub{}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Skipped {
		t.Fatalf("expected a processing run, got skipped (%s)", result.Reason)
	}
	if result.TotalProcessed != 3 || result.SellersAffected != 2 || result.TotalAmount != 15000 {
		t.Fatalf("aggregate = {%d %d %d}, want {3 2 15000}",
			result.TotalProcessed, result.SellersAffected, result.TotalAmount)
	}
	if result.DaysSinceLastRun == nil || *result.DaysSinceLastRun != 8 {
		t.Fatalf("days since last run = %v, want 8", result.DaysSinceLastRun)
	}
	if ledger.calls != 1 {
		t.Fatalf("ledger invoked %d times, want 1", ledger.calls)
	}
	if !ledger.seenNow.Equal(now) {
		t.Fatalf("ledger saw now=%v, want %v", ledger.seenNow, now)
	}
	if len(publisher.published) != 1 || publisher.published[0] != domain.RoutingKeyPayoutRun {
		t.Fatalf("published = %v, want one payout.run.completed", publisher.published)
	}
}

func TestRun_MonthlyNotDueSkipsWithoutTouchingLedger(t *testing.T) {
	// Scenario: monthly frequency, last run 15 days ago.
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	ledger := &ledgerStub{claimed: true}
	settings := &settingsStub{settings: domain.SchedulerSettings{
		Frequency: domain.FrequencyMonthly,
		LastRun:   daysAgo(now, 15),
	}}
	publisher := &publisherStub{}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Skipped {
		t.Fatal("expected skipped result")
	}
	if result.Reason == "" {
		t.Fatal("skipped result must carry a reason")
	}
	if ledger.calls != 0 {
		t.Fatal("ledger must not be touched when the interval has not elapsed")
	}
	if len(publisher.published) != 0 {
		t.Fatal("no event must be published on a skip")
	}
}

func TestRun_NeverRunAlwaysProcesses(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	ledger := &ledgerStub{claimed: true}
	settings := &settingsStub{settings: domain.SchedulerSettings{Frequency: domain.FrequencyMonthly}}
	publisher := &publisherStub{}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Skipped {
		t.Fatal("never-run must always process")
	}
	if result.DaysSinceLastRun != nil {
		t.Fatal("days since last run must be absent when the scheduler never ran")
	}
	if ledger.seenLast != nil {
		t.Fatal("ledger must see a nil expected last run on the first pass")
	}
}

func TestRun_ConcurrentClaimReportsSkipped(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	ledger := &ledgerStub{claimed: false}
	settings := &settingsStub{settings: domain.SchedulerSettings{
		Frequency: domain.FrequencyWeekly,
		LastRun:   daysAgo(now, 8),
	}}
	publisher := &publisherStub{}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !result.Skipped {
		t.Fatal("the losing invocation must report skipped, not a duplicate aggregate")
	}
	if result.TotalProcessed != 0 {
		t.Fatalf("losing invocation reported totalProcessed=%d, want 0", result.TotalProcessed)
	}
	if len(publisher.published) != 0 {
		t.Fatal("losing invocation must not publish an event")
	}
}

func TestRun_SettingsErrorPropagates(t *testing.T) {
	ledger := &ledgerStub{claimed: true}
	settings := &settingsStub{err: errors.New("settings store unavailable")}
	publisher := &publisherStub{}

	if _, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected settings error to propagate")
	}
	if ledger.calls != 0 {
		t.Fatal("ledger must not run when settings cannot be read")
	}
}

func TestRun_LedgerErrorPropagates(t *testing.T) {
	ledger := &ledgerStub{err: errors.New("lock timeout")}
	settings := &settingsStub{settings: domain.SchedulerSettings{Frequency: domain.FrequencyWeekly}}
	publisher := &publisherStub{}

	if _, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected ledger error to propagate")
	}
	if len(publisher.published) != 0 {
		t.Fatal("no event must be published on a failed run")
	}
}

func TestRun_EmptyPassPublishesNothing(t *testing.T) {
	// Zero eligible payouts is a valid run with all-zero counts.
	ledger := &ledgerStub{agg: domain.PayoutRunAggregate{}, claimed: true}
	settings := &settingsStub{settings: domain.SchedulerSettings{Frequency: domain.FrequencyWeekly}}
	publisher := &publisherStub{}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Skipped {
		t.Fatal("an empty pass is a processing run, not a skip")
	}
	if result.TotalProcessed != 0 || result.SellersAffected != 0 || result.TotalAmount != 0 {
		t.Fatalf("empty pass aggregate = %+v, want zeros", result)
	}
	if len(publisher.published) != 0 {
		t.Fatal("empty pass must not publish an event")
	}
}

func TestRun_PublishFailureDoesNotFailTheRun(t *testing.T) {
	ledger := &ledgerStub{
		agg:     domain.PayoutRunAggregate{TotalProcessed: 1, SellersAffected: 1, TotalAmount: 2500},
		claimed: true,
	}
	settings := &settingsStub{settings: domain.SchedulerSettings{Frequency: domain.FrequencyWeekly}}
	publisher := &publisherStub{publishErr: errors.New("broker down")}

	result, err := newTestRunner(ledger, settings, publisher).Run(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("a committed run must not fail on a lost event: %v", err)
	}
	if result.TotalProcessed != 1 {
		t.Fatalf("totalProcessed = %d, want 1", result.TotalProcessed)
	}
}

func TestShouldRun_ReflectsStoredSettings(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	settings := &settingsStub{settings: domain.SchedulerSettings{
		Frequency: domain.FrequencyWeekly,
		LastRun:   daysAgo(now, 6),
	}}
	runner := newTestRunner(&ledgerStub{claimed: true}, settings, &publisherStub{})

	due, err := runner.ShouldRun(context.Background(), now)
	if err != nil {
		t.Fatalf("ShouldRun returned error: %v", err)
	}
	if due {
		t.Fatal("6 days into a weekly interval must not be due")
	}
}
