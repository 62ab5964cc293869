// Package schedule implements the `dla schedule` commands for managing
// recurring audit settings.
package schedule

import (
	"fmt"
	"os"
	"time"

	"github.com/dtnitsch/dead-link-audit/internal/common"
	"github.com/dtnitsch/dead-link-audit/models"
	"github.com/dtnitsch/dead-link-audit/pkg/db"
	schedulepkg "github.com/dtnitsch/dead-link-audit/pkg/schedule"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func openDatabase(c *cli.Context) (*db.DB, error) {
	config, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	return db.Open(config.DBPath)
}

// SetAction creates or updates the schedule settings, recomputing
// NextRun before persisting.
func SetAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	settings, err := database.GetScheduleSettings()
	if err != nil {
		return err
	}
	if settings == nil {
		settings = &models.ScheduleSettings{
			Frequency:    models.FrequencyDaily,
			TimeOfDay:    "03:00",
			PostsToCheck: models.DefaultPostsToCheck,
		}
	}

	if c.IsSet("enabled") {
		settings.Enabled = c.Bool("enabled")
	}
	if c.IsSet("frequency") {
		frequency := models.Frequency(c.String("frequency"))
		switch frequency {
		case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
			settings.Frequency = frequency
		default:
			return fmt.Errorf("invalid frequency %q (want daily, weekly, or monthly)", frequency)
		}
	}
	if c.IsSet("time") {
		settings.TimeOfDay = c.String("time")
	}
	if c.IsSet("day-of-week") {
		day := c.Int("day-of-week")
		settings.DayOfWeek = &day
	}
	if c.IsSet("day-of-month") {
		day := c.Int("day-of-month")
		settings.DayOfMonth = &day
	}
	if c.IsSet("posts") {
		settings.PostsToCheck = c.Int("posts")
	}

	next, err := schedulepkg.CalculateNextRun(*settings, time.Now())
	if err != nil {
		return err
	}
	settings.NextRun = &next

	if err := database.SaveScheduleSettings(settings); err != nil {
		return err
	}

	logger.Info("Schedule saved", "enabled", settings.Enabled, "frequency", string(settings.Frequency), "next_run", next)
	fmt.Printf("Schedule saved. Next run: %s\n", next.Format(time.RFC1123))
	return nil
}

// ShowAction prints the persisted schedule settings as YAML.
func ShowAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	settings, err := database.GetScheduleSettings()
	if err != nil {
		return err
	}
	if settings == nil {
		fmt.Println("No schedule configured. Run: dla schedule set --frequency daily --time 03:00 --enabled")
		return nil
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	fmt.Print(string(data))

	if schedulepkg.ShouldRunCheck(settings, time.Now()) {
		fmt.Println("\nA check is due now. Run: dla audit --if-due")
	}
	return nil
}
