// Package schedule decides when recurring audit runs are due.
package schedule

import (
	"fmt"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

// CalculateNextRun computes the next occurrence of the configured
// schedule strictly after now (or at the configured time today, if that
// slot has not passed yet).
func CalculateNextRun(settings models.ScheduleSettings, now time.Time) (time.Time, error) {
	hour, minute, err := parseTimeOfDay(settings.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	switch settings.Frequency {
	case models.FrequencyDaily:
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil

	case models.FrequencyWeekly:
		target := time.Sunday
		if settings.DayOfWeek != nil {
			if *settings.DayOfWeek < 0 || *settings.DayOfWeek > 6 {
				return time.Time{}, fmt.Errorf("invalid day_of_week %d", *settings.DayOfWeek)
			}
			target = time.Weekday(*settings.DayOfWeek)
		}
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, daysAhead)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate, nil

	case models.FrequencyMonthly:
		day := 1
		if settings.DayOfMonth != nil {
			if *settings.DayOfMonth < 1 || *settings.DayOfMonth > 31 {
				return time.Time{}, fmt.Errorf("invalid day_of_month %d", *settings.DayOfMonth)
			}
			day = *settings.DayOfMonth
		}
		// Roll forward month by month until the target day exists and the
		// slot is in the future (e.g. day 31 skips short months).
		for offset := 0; offset < 13; offset++ {
			base := time.Date(now.Year(), now.Month(), 1, hour, minute, 0, 0, now.Location()).AddDate(0, offset, 0)
			candidate := time.Date(base.Year(), base.Month(), day, hour, minute, 0, 0, now.Location())
			if candidate.Month() != base.Month() {
				continue // day overflowed into the next month
			}
			if candidate.After(now) {
				return candidate, nil
			}
		}
		return time.Time{}, fmt.Errorf("no valid monthly slot for day %d", day)

	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", settings.Frequency)
	}
}

// ShouldRunCheck reports whether a scheduled run is due. A missing
// NextRun is recomputed in place so callers can persist it.
func ShouldRunCheck(settings *models.ScheduleSettings, now time.Time) bool {
	if settings == nil || !settings.Enabled {
		return false
	}
	if settings.NextRun == nil {
		next, err := CalculateNextRun(*settings, now)
		if err != nil {
			return false
		}
		settings.NextRun = &next
	}
	return !now.Before(*settings.NextRun)
}

// legal transitions for a ScheduledCheck; completed and failed are
// terminal, and nothing auto-retries.
var transitions = map[models.CheckStatus][]models.CheckStatus{
	models.CheckPending: {models.CheckRunning},
	models.CheckRunning: {models.CheckCompleted, models.CheckFailed},
}

// Transition moves a scheduled check to a new status, rejecting anything
// outside pending -> running -> {completed | failed}.
func Transition(check *models.ScheduledCheck, to models.CheckStatus) error {
	for _, allowed := range transitions[check.Status] {
		if allowed == to {
			check.Status = to
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", check.Status, to)
}

// NewScheduledCheck enqueues one execution instance in the pending state
// with a snapshot of the settings it will run under.
func NewScheduledCheck(id string, settings models.ScheduleSettings, now time.Time) models.ScheduledCheck {
	return models.ScheduledCheck{
		ID:        id,
		CreatedAt: now,
		Status:    models.CheckPending,
		Settings:  settings,
	}
}

func parseTimeOfDay(value string) (hour, minute int, err error) {
	if value == "" {
		return 0, 0, nil
	}
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid time_of_day %q: %w", value, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time_of_day %q", value)
	}
	return hour, minute, nil
}
