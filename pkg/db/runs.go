package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

// Run triggers recorded alongside each run.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// RunRecord is one persisted batch run.
type RunRecord struct {
	RunID     int64
	CreatedAt time.Time
	Trigger   string
	DeadCount int
	Result    models.LinkCheckResult
}

// InsertRun stores a finished run and its dead links, returning the run ID.
func (db *DB) InsertRun(result *models.LinkCheckResult, trigger string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (trigger_type, total_links, checked_links, working_links,
			skipped_links, dead_count, retryable_errors, forbidden_errors,
			timeout_errors, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trigger, result.TotalLinks, result.CheckedLinks, result.WorkingLinks,
		result.SkippedLinks, len(result.DeadLinks), result.RetryableErrors,
		result.ForbiddenErrors, result.TimeoutErrors, result.ProcessingTime.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, dl := range result.DeadLinks {
		suggestions, err := json.Marshal(dl.Suggestions)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal suggestions: %w", err)
		}

		var status sql.NullInt64
		if dl.Status != nil {
			status = sql.NullInt64{Int64: int64(*dl.Status), Valid: true}
		}

		_, err = tx.Exec(`
			INSERT INTO dead_links (run_id, url, status_code, error, context,
				post_id, post_title, post_slug, archive_url, suggestions,
				retryable, checked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, dl.URL, status, dl.Error, dl.Context, dl.PostID, dl.PostTitle,
			dl.PostSlug, dl.ArchiveURL, string(suggestions), dl.Retryable,
			dl.CheckedAt.UTC())
		if err != nil {
			return 0, fmt.Errorf("failed to insert dead link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun loads one run with its dead links.
func (db *DB) GetRun(runID int64) (*RunRecord, error) {
	record := &RunRecord{RunID: runID}
	var durationMs int64
	err := db.QueryRow(`
		SELECT created_at, trigger_type, total_links, checked_links,
			working_links, skipped_links, retryable_errors, forbidden_errors,
			timeout_errors, duration_ms
		FROM runs WHERE run_id = ?
	`, runID).Scan(&record.CreatedAt, &record.Trigger, &record.Result.TotalLinks,
		&record.Result.CheckedLinks, &record.Result.WorkingLinks,
		&record.Result.SkippedLinks, &record.Result.RetryableErrors,
		&record.Result.ForbiddenErrors, &record.Result.TimeoutErrors, &durationMs)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	record.Result.ProcessingTime = time.Duration(durationMs) * time.Millisecond

	rows, err := db.Query(`
		SELECT url, status_code, error, context, post_id, post_title,
			post_slug, archive_url, suggestions, retryable, checked_at
		FROM dead_links WHERE run_id = ? ORDER BY link_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dead links for run %d: %w", runID, err)
	}
	defer rows.Close()

	record.Result.DeadLinks = []models.DeadLink{}
	for rows.Next() {
		var dl models.DeadLink
		var status sql.NullInt64
		var suggestions string
		if err := rows.Scan(&dl.URL, &status, &dl.Error, &dl.Context, &dl.PostID,
			&dl.PostTitle, &dl.PostSlug, &dl.ArchiveURL, &suggestions,
			&dl.Retryable, &dl.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dead link: %w", err)
		}
		if status.Valid {
			code := int(status.Int64)
			dl.Status = &code
		}
		if suggestions != "" {
			if err := json.Unmarshal([]byte(suggestions), &dl.Suggestions); err != nil {
				return nil, fmt.Errorf("failed to decode suggestions: %w", err)
			}
		}
		record.Result.DeadLinks = append(record.Result.DeadLinks, dl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dead links: %w", err)
	}
	record.DeadCount = len(record.Result.DeadLinks)

	return record, nil
}

// ListRuns returns the most recent runs, newest first, without their
// dead-link details.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, created_at, trigger_type, total_links, checked_links,
			working_links, skipped_links, dead_count, retryable_errors,
			forbidden_errors, timeout_errors, duration_ms
		FROM runs ORDER BY run_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		var durationMs int64
		if err := rows.Scan(&record.RunID, &record.CreatedAt, &record.Trigger,
			&record.Result.TotalLinks, &record.Result.CheckedLinks,
			&record.Result.WorkingLinks, &record.Result.SkippedLinks,
			&record.DeadCount, &record.Result.RetryableErrors,
			&record.Result.ForbiddenErrors, &record.Result.TimeoutErrors,
			&durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.Result.ProcessingTime = time.Duration(durationMs) * time.Millisecond
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return records, nil
}
