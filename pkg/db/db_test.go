package db

import (
	"testing"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func intPtr(n int) *int { return &n }

func sampleRun() *models.LinkCheckResult {
	checkedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	return &models.LinkCheckResult{
		TotalLinks:      20,
		CheckedLinks:    19,
		WorkingLinks:    17,
		SkippedLinks:    1,
		RetryableErrors: 1,
		TimeoutErrors:   1,
		ProcessingTime:  42 * time.Second,
		DeadLinks: []models.DeadLink{
			{
				URL:         "https://gone.example/a",
				Status:      intPtr(404),
				Error:       "HTTP 404 Not Found",
				Context:     "some surrounding text",
				PostID:      "p1",
				PostTitle:   "First Post",
				PostSlug:    "first-post",
				ArchiveURL:  "https://web.archive.org/web/*/https://gone.example/a",
				Suggestions: []string{"check the site root"},
				CheckedAt:   checkedAt,
			},
			{
				URL:       "https://slow.example/b",
				Status:    nil,
				Error:     "Request timeout",
				PostID:    "p2",
				PostTitle: "Second Post",
				PostSlug:  "second-post",
				Retryable: true,
				CheckedAt: checkedAt,
			},
		},
	}
}

func TestOpenInitializesSchema(t *testing.T) {
	database := testDB(t)

	// A second init must be a no-op, not an error.
	if err := database.ensureSchemaExists(); err != nil {
		t.Fatalf("schema check on initialized database: %v", err)
	}
	if database.Path() != ":memory:" {
		t.Errorf("Path() = %q", database.Path())
	}
}

func TestInsertAndGetRun(t *testing.T) {
	database := testDB(t)

	runID, err := database.InsertRun(sampleRun(), TriggerManual)
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if runID == 0 {
		t.Fatal("InsertRun returned zero ID")
	}

	record, err := database.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}

	if record.Trigger != TriggerManual {
		t.Errorf("Trigger = %q, want manual", record.Trigger)
	}
	if record.Result.TotalLinks != 20 || record.Result.CheckedLinks != 19 {
		t.Errorf("counters = %d/%d, want 19/20", record.Result.CheckedLinks, record.Result.TotalLinks)
	}
	if record.Result.ProcessingTime != 42*time.Second {
		t.Errorf("ProcessingTime = %v, want 42s", record.Result.ProcessingTime)
	}
	if record.DeadCount != 2 || len(record.Result.DeadLinks) != 2 {
		t.Fatalf("DeadCount = %d with %d links, want 2/2", record.DeadCount, len(record.Result.DeadLinks))
	}

	first := record.Result.DeadLinks[0]
	if first.Status == nil || *first.Status != 404 {
		t.Errorf("first link status = %v, want 404", first.Status)
	}
	if len(first.Suggestions) != 1 || first.Suggestions[0] != "check the site root" {
		t.Errorf("suggestions = %v", first.Suggestions)
	}

	second := record.Result.DeadLinks[1]
	if second.Status != nil {
		t.Errorf("nil status came back as %d", *second.Status)
	}
	if !second.Retryable || second.Error != "Request timeout" {
		t.Errorf("second link = %+v", second)
	}
}

func TestGetRunMissing(t *testing.T) {
	database := testDB(t)
	if _, err := database.GetRun(999); err == nil {
		t.Error("GetRun on missing ID must fail")
	}
}

func TestListRuns(t *testing.T) {
	database := testDB(t)

	for i := 0; i < 3; i++ {
		trigger := TriggerManual
		if i == 2 {
			trigger = TriggerScheduled
		}
		if _, err := database.InsertRun(sampleRun(), trigger); err != nil {
			t.Fatalf("InsertRun %d: %v", i, err)
		}
	}

	records, err := database.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want limit of 2", len(records))
	}
	// Newest first.
	if records[0].RunID <= records[1].RunID {
		t.Errorf("run order: %d then %d, want descending", records[0].RunID, records[1].RunID)
	}
	if records[0].Trigger != TriggerScheduled {
		t.Errorf("newest trigger = %q, want scheduled", records[0].Trigger)
	}
	if records[0].DeadCount != 2 {
		t.Errorf("DeadCount = %d, want 2", records[0].DeadCount)
	}
	// Listing omits the per-link details.
	if len(records[0].Result.DeadLinks) != 0 {
		t.Errorf("ListRuns loaded %d dead links, want none", len(records[0].Result.DeadLinks))
	}
}

func TestListRunsEmpty(t *testing.T) {
	database := testDB(t)
	records, err := database.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from an empty database", len(records))
	}
}

func TestScheduleSettingsRoundTrip(t *testing.T) {
	database := testDB(t)

	settings, err := database.GetScheduleSettings()
	if err != nil {
		t.Fatalf("GetScheduleSettings: %v", err)
	}
	if settings != nil {
		t.Fatalf("unsaved settings = %+v, want nil", settings)
	}

	nextRun := time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC)
	saved := &models.ScheduleSettings{
		Enabled:      true,
		Frequency:    models.FrequencyWeekly,
		TimeOfDay:    "03:00",
		DayOfWeek:    intPtr(1),
		PostsToCheck: 50,
		NextRun:      &nextRun,
	}
	if err := database.SaveScheduleSettings(saved); err != nil {
		t.Fatalf("SaveScheduleSettings: %v", err)
	}

	loaded, err := database.GetScheduleSettings()
	if err != nil {
		t.Fatalf("GetScheduleSettings after save: %v", err)
	}
	if loaded == nil {
		t.Fatal("saved settings not found")
	}
	if !loaded.Enabled || loaded.Frequency != models.FrequencyWeekly || loaded.TimeOfDay != "03:00" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.DayOfWeek == nil || *loaded.DayOfWeek != 1 {
		t.Errorf("DayOfWeek = %v, want 1", loaded.DayOfWeek)
	}
	if loaded.NextRun == nil || !loaded.NextRun.Equal(nextRun) {
		t.Errorf("NextRun = %v, want %v", loaded.NextRun, nextRun)
	}

	// Upsert replaces, never duplicates.
	saved.Enabled = false
	if err := database.SaveScheduleSettings(saved); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err = database.GetScheduleSettings()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Enabled {
		t.Error("upsert did not replace the settings blob")
	}
}
