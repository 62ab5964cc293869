// Package audit implements the `dla audit` command: one end-to-end batch
// run from content fetch to exported report.
package audit

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dtnitsch/dead-link-audit/internal/common"
	"github.com/dtnitsch/dead-link-audit/models"
	"github.com/dtnitsch/dead-link-audit/pkg/archive"
	auditpkg "github.com/dtnitsch/dead-link-audit/pkg/audit"
	"github.com/dtnitsch/dead-link-audit/pkg/contentstore"
	"github.com/dtnitsch/dead-link-audit/pkg/db"
	"github.com/dtnitsch/dead-link-audit/pkg/extract"
	"github.com/dtnitsch/dead-link-audit/pkg/probe"
	"github.com/dtnitsch/dead-link-audit/pkg/report"
	"github.com/dtnitsch/dead-link-audit/pkg/schedule"
	"github.com/urfave/cli/v2"
)

func Action(c *cli.Context) error {
	quiet := c.Bool("quiet")
	logger := common.NewLogger(quiet)

	config, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	delay, err := config.RequestDelayDuration()
	if err != nil {
		return err
	}
	timeout, err := config.ProbeTimeoutDuration()
	if err != nil {
		return err
	}

	if config.ContentStoreURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no content store URL configured")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Set content_store_url in the config file or pass --store-url.")
		os.Exit(1)
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	// Ctrl-C cancels cooperatively; the run returns partial results.
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	trigger := db.TriggerManual
	postsToCheck := config.PostsToCheck
	var check models.ScheduledCheck

	if c.Bool("if-due") {
		settings, err := database.GetScheduleSettings()
		if err != nil {
			logger.Error("failed to load schedule settings", "error", err)
			os.Exit(2)
		}
		if settings == nil {
			fmt.Println("No schedule configured; nothing to do")
			return nil
		}
		if !schedule.ShouldRunCheck(settings, time.Now()) {
			next := "unknown"
			if settings.NextRun != nil {
				next = settings.NextRun.Format(time.RFC3339)
			}
			fmt.Printf("Scheduled check not due (next run: %s)\n", next)
			return nil
		}

		trigger = db.TriggerScheduled
		if settings.PostsToCheck > 0 {
			postsToCheck = settings.PostsToCheck
		}
		check = schedule.NewScheduledCheck(time.Now().Format("20060102-150405"), *settings, time.Now())
		logger.Info("Scheduled check due", "check_id", check.ID)
	}

	store := contentstore.NewClient(config.ContentStoreURL)
	articles, err := store.FetchAll(ctx, postsToCheck, config.PageSize)
	if err != nil {
		// The one hard-error case: without articles there is nothing to probe.
		if check.ID != "" {
			_ = schedule.Transition(&check, models.CheckRunning)
			_ = schedule.Transition(&check, models.CheckFailed)
		}
		return fmt.Errorf("failed to fetch articles: %w", err)
	}
	logger.Info("Fetched articles", "count", len(articles))

	orchestrator := auditpkg.New(
		extract.NewExtractor(config.SiteDomains...),
		probe.NewProber(timeout),
		probe.NewCache(),
		archive.NewResolver(config.ArchiveEndpoint),
		auditpkg.Options{
			Workers:      config.Workers,
			RequestDelay: delay,
			Logger:       logger,
		},
	)

	progress := make(chan models.Progress, 64)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range progress {
			if quiet {
				continue
			}
			switch event.Status {
			case models.ProgressComplete:
				fmt.Fprintf(os.Stderr, "\r[%d/%d] 100%% done%s\n", event.Current, event.Total, strings.Repeat(" ", 50))
			case models.ProgressCancelled:
				fmt.Fprintf(os.Stderr, "\r[%d/%d] %3d%% interrupted%s\n", event.Current, event.Total, event.Percentage, strings.Repeat(" ", 42))
			default:
				fmt.Fprintf(os.Stderr, "\r[%d/%d] %3d%% %-53s", event.Current, event.Total, event.Percentage, event.CurrentItem)
			}
		}
	}()

	if check.ID != "" {
		_ = schedule.Transition(&check, models.CheckRunning)
	}

	result := orchestrator.Run(ctx, articles, progress)
	<-drained

	if check.ID != "" {
		check.Result = result
		target := models.CheckCompleted
		if ctx.Err() != nil {
			target = models.CheckFailed
		}
		_ = schedule.Transition(&check, target)
		logger.Info("Scheduled check finished", "check_id", check.ID, "status", string(check.Status))
	}

	runID, err := database.InsertRun(result, trigger)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
	} else {
		logger.Info("Run recorded", "run_id", runID)
	}

	if trigger == db.TriggerScheduled {
		if err := updateScheduleAfterRun(database); err != nil {
			logger.Warn("failed to update schedule after run", "error", err)
		}
	}

	if err := exportResult(c, result); err != nil {
		return err
	}

	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Run interrupted; partial results reported")
		os.Exit(1)
	}
	return nil
}

// updateScheduleAfterRun stamps LastRun and recomputes NextRun so the
// next `audit --if-due` waits for the following slot.
func updateScheduleAfterRun(database *db.DB) error {
	settings, err := database.GetScheduleSettings()
	if err != nil || settings == nil {
		return err
	}

	now := time.Now()
	settings.LastRun = &now
	next, err := schedule.CalculateNextRun(*settings, now)
	if err != nil {
		return err
	}
	settings.NextRun = &next
	return database.SaveScheduleSettings(settings)
}

// exportResult writes the run result in the requested format. With no
// --export flag the JSON report goes to stdout.
func exportResult(c *cli.Context, result *models.LinkCheckResult) error {
	opts := report.Options{
		IncludeContext:     c.Bool("with-context"),
		IncludeArchive:     c.Bool("with-archive"),
		IncludeSuggestions: c.Bool("with-suggestions"),
		GroupByPost:        c.Bool("group-by-post"),
	}

	w, closeFn, err := common.OutputWriter(c.String("out"))
	if err != nil {
		return err
	}
	defer closeFn()

	format := strings.ToLower(c.String("export"))
	switch format {
	case "csv":
		return report.WriteCSV(w, result, opts)
	case "html":
		return report.WriteHTML(w, result)
	case "", "json":
		return report.WriteJSON(w, result, opts)
	default:
		return fmt.Errorf("unknown export format %q (want csv, json, or html)", format)
	}
}

// WriteExport re-serializes a stored run; shared with `dla runs export`.
func WriteExport(c *cli.Context, result *models.LinkCheckResult) error {
	return exportResult(c, result)
}
