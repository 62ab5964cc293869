package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dtnitsch/dead-link-audit/models"
)

// scheduleSettingsKey is the fixed key the schedule blob lives under.
const scheduleSettingsKey = "schedule_settings"

// GetScheduleSettings loads the persisted schedule settings. Returns
// (nil, nil) when none have been saved yet.
func (db *DB) GetScheduleSettings() (*models.ScheduleSettings, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", scheduleSettingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule settings: %w", err)
	}

	settings := &models.ScheduleSettings{}
	if err := json.Unmarshal([]byte(value), settings); err != nil {
		return nil, fmt.Errorf("failed to decode schedule settings: %w", err)
	}
	return settings, nil
}

// SaveScheduleSettings upserts the schedule settings blob. Callers are
// expected to recompute NextRun before saving.
func (db *DB) SaveScheduleSettings(settings *models.ScheduleSettings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode schedule settings: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, scheduleSettingsKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to save schedule settings: %w", err)
	}
	return nil
}
