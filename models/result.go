package models

import "time"

// LinkCheckResult is the aggregate outcome of one batch run. Counters are
// additive and order-independent; DeadLinks is unordered but complete.
type LinkCheckResult struct {
	TotalLinks      int           `json:"total_links"`
	CheckedLinks    int           `json:"checked_links"`
	WorkingLinks    int           `json:"working_links"`
	SkippedLinks    int           `json:"skipped_links"`
	DeadLinks       []DeadLink    `json:"dead_links"`
	ProcessingTime  time.Duration `json:"processing_time"`
	RetryableErrors int           `json:"retryable_errors"`
	ForbiddenErrors int           `json:"forbidden_errors"`
	TimeoutErrors   int           `json:"timeout_errors"`
}

// Progress statuses emitted on the orchestrator's progress channel.
// Complete and cancelled are terminal; a cancelled run's final event
// carries the percentage actually reached, never a fabricated 100%.
const (
	ProgressChecking  = "checking"
	ProgressComplete  = "complete"
	ProgressCancelled = "cancelled"
)

// Progress is one progress event. Current increases strictly
// monotonically across events of a run.
type Progress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	Percentage  int    `json:"percentage"`
	CurrentItem string `json:"current_item,omitempty"`
	Status      string `json:"status"`
}
