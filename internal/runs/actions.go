// Package runs implements the `dla runs` commands for browsing and
// re-exporting recorded audit runs.
package runs

import (
	"fmt"
	"os"
	"strconv"

	auditcmd "github.com/dtnitsch/dead-link-audit/internal/audit"
	"github.com/dtnitsch/dead-link-audit/internal/common"
	"github.com/dtnitsch/dead-link-audit/pkg/db"
	"github.com/urfave/cli/v2"
)

func openDatabase(c *cli.Context) (*db.DB, error) {
	config, err := common.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	return db.Open(config.DBPath)
}

// runIDFromArgs parses the required run ID argument, defaulting to the
// most recent run when omitted.
func runIDFromArgs(c *cli.Context, database *db.DB) (int64, error) {
	if c.NArg() == 0 {
		records, err := database.ListRuns(1)
		if err != nil {
			return 0, err
		}
		if len(records) == 0 {
			return 0, fmt.Errorf("no recorded runs. Run 'dla audit' first")
		}
		return records[0].RunID, nil
	}

	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}

// ListAction prints the most recent runs, newest first.
func ListAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	records, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded runs. Run 'dla audit' first.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-10s %8s %8s %8s %8s %10s\n",
		"ID", "CREATED", "TRIGGER", "TOTAL", "WORKING", "DEAD", "SKIPPED", "DURATION")
	for _, record := range records {
		fmt.Printf("%-5d %-20s %-10s %8d %8d %8d %8d %10s\n",
			record.RunID,
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			record.Trigger,
			record.Result.TotalLinks,
			record.Result.WorkingLinks,
			record.DeadCount,
			record.Result.SkippedLinks,
			record.Result.ProcessingTime)
	}
	return nil
}

// ExportAction re-serializes a stored run in the requested format.
func ExportAction(c *cli.Context) error {
	logger := common.NewLogger(c.Bool("quiet"))

	database, err := openDatabase(c)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runID, err := runIDFromArgs(c, database)
	if err != nil {
		return err
	}

	record, err := database.GetRun(runID)
	if err != nil {
		return err
	}

	return auditcmd.WriteExport(c, &record.Result)
}
