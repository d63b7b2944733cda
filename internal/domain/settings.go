/**
 * @description
 * This file defines the scheduler's view over the shared administrative
 * settings record. The record co-resides with configuration owned by other
 * features, so the scheduler only ever merges its own keys into it; the
 * patch builders here are the single place those keys are named.
 */

package domain

import "time"

// Settings keys owned by the payout scheduler.
const (
	SettingsKeyFrequency = "payoutScheduleFrequency"
	SettingsKeyLastRun   = "payoutSchedulerLastRun"
)

// PayoutFrequency is how often held payouts are released.
type PayoutFrequency string

const (
	FrequencyWeekly  PayoutFrequency = "weekly"
	FrequencyMonthly PayoutFrequency = "monthly"
)

// ParsePayoutFrequency maps a raw settings value to a frequency. Absent or
// unrecognized values default to weekly.
func ParsePayoutFrequency(raw string) PayoutFrequency {
	switch PayoutFrequency(raw) {
	case FrequencyMonthly:
		return FrequencyMonthly
	case FrequencyWeekly:
		return FrequencyWeekly
	default:
		return FrequencyWeekly
	}
}

// RequiredIntervalDays returns the fixed day window for a frequency.
// "monthly" is a fixed 30-day window, not a calendar month.
func (f PayoutFrequency) RequiredIntervalDays() int {
	if f == FrequencyMonthly {
		return 30
	}
	return 7
}

// SchedulerSettings is the scheduler-owned slice of the settings record.
// A nil LastRun means the scheduler has never completed a run.
type SchedulerSettings struct {
	Frequency PayoutFrequency `json:"frequency"`
	LastRun   *time.Time      `json:"last_run,omitempty"`
}

// DaysSinceLastRun returns whole days elapsed since the last run, truncated
// (hour 23 of day 7 is 7 days, not 8). The second return is false when the
// scheduler has never run, which callers must treat as unbounded elapsed.
func (s SchedulerSettings) DaysSinceLastRun(now time.Time) (int, bool) {
	if s.LastRun == nil {
		return 0, false
	}
	elapsed := now.Sub(*s.LastRun)
	if elapsed < 0 {
		elapsed = 0
	}
	return int(elapsed / (24 * time.Hour)), true
}

// ShouldRun reports whether enough whole days have elapsed for the
// configured frequency. Never-run is always due.
func (s SchedulerSettings) ShouldRun(now time.Time) bool {
	days, ran := s.DaysSinceLastRun(now)
	if !ran {
		return true
	}
	return days >= s.Frequency.RequiredIntervalDays()
}

// LastRunPatch builds the merge patch recording a completed run. Only the
// scheduler-owned last-run key appears, so a storage-level merge leaves
// every sibling key untouched.
func LastRunPatch(ranAt time.Time) map[string]string {
	return map[string]string{
		SettingsKeyLastRun: ranAt.UTC().Format(time.RFC3339),
	}
}

// FrequencyPatch builds the merge patch for an external frequency edit.
func FrequencyPatch(f PayoutFrequency) map[string]string {
	return map[string]string{
		SettingsKeyFrequency: string(f),
	}
}
