package models

import "time"

// Frequency is how often a scheduled audit recurs.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ScheduleSettings is the user-configured recurrence for automatic runs.
// Persisted as a JSON blob under a fixed key; LastRun/NextRun are computed
// fields, with NextRun recomputed before every save.
type ScheduleSettings struct {
	Enabled      bool       `json:"enabled"`
	Frequency    Frequency  `json:"frequency"`
	TimeOfDay    string     `json:"time_of_day"` // "HH:MM", local time
	DayOfWeek    *int       `json:"day_of_week,omitempty"`  // 0 = Sunday
	DayOfMonth   *int       `json:"day_of_month,omitempty"` // 1-31
	PostsToCheck int        `json:"posts_to_check"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}

// CheckStatus is the lifecycle state of a scheduled execution.
type CheckStatus string

const (
	CheckPending   CheckStatus = "pending"
	CheckRunning   CheckStatus = "running"
	CheckCompleted CheckStatus = "completed"
	CheckFailed    CheckStatus = "failed"
)

// ScheduledCheck is one scheduled execution instance. It carries a
// snapshot of the settings it was enqueued under, and eventually the run
// result. Completed and failed are terminal states.
type ScheduledCheck struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Status    CheckStatus      `json:"status"`
	Settings  ScheduleSettings `json:"settings"`
	Result    *LinkCheckResult `json:"result,omitempty"`
}
