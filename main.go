// dla audits published articles for dead outbound links: it extracts
// every external URL, probes liveness with bounded concurrency, proposes
// web-archive recovery paths, and exports the results.
package main

import (
	"fmt"
	"os"

	auditcmd "github.com/dtnitsch/dead-link-audit/internal/audit"
	runscmd "github.com/dtnitsch/dead-link-audit/internal/runs"
	schedulecmd "github.com/dtnitsch/dead-link-audit/internal/schedule"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dla",
		Usage: "dead link audit engine for published articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "dla.yaml",
				Usage: "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to the SQLite database (default: dead-link-audit.db)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress progress output and info logs",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "audit",
				Usage:  "run a dead-link audit over the published articles",
				Action: auditcmd.Action,
				Flags: append(exportFlags(),
					&cli.IntFlag{
						Name:  "posts",
						Usage: "number of most recent posts to audit",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "articles processed concurrently",
					},
					&cli.StringFlag{
						Name:  "delay",
						Usage: "inter-request delay within an article, e.g. 1s",
					},
					&cli.StringFlag{
						Name:  "timeout",
						Usage: "per-probe timeout, e.g. 10s",
					},
					&cli.StringFlag{
						Name:  "store-url",
						Usage: "content store base URL (overrides config)",
					},
					&cli.StringSliceFlag{
						Name:  "site-domain",
						Usage: "own domain treated as internal (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "if-due",
						Usage: "only run when the configured schedule says a check is due",
					},
				),
			},
			{
				Name:  "schedule",
				Usage: "manage the recurring audit schedule",
				Subcommands: []*cli.Command{
					{
						Name:   "set",
						Usage:  "create or update the schedule",
						Action: schedulecmd.SetAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "enabled", Usage: "enable or disable scheduled runs"},
							&cli.StringFlag{Name: "frequency", Usage: "daily, weekly, or monthly"},
							&cli.StringFlag{Name: "time", Usage: "time of day, HH:MM"},
							&cli.IntFlag{Name: "day-of-week", Usage: "0 (Sunday) to 6 (Saturday), weekly only"},
							&cli.IntFlag{Name: "day-of-month", Usage: "1 to 31, monthly only"},
							&cli.IntFlag{Name: "posts", Usage: "posts to check per scheduled run"},
						},
					},
					{
						Name:   "show",
						Usage:  "print the persisted schedule",
						Action: schedulecmd.ShowAction,
					},
				},
			},
			{
				Name:  "runs",
				Usage: "browse and re-export recorded runs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "list recent runs",
						Action: runscmd.ListAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum runs to list"},
						},
					},
					{
						Name:      "export",
						Usage:     "export a stored run (defaults to the most recent)",
						ArgsUsage: "[run-id]",
						Action:    runscmd.ExportAction,
						Flags:     exportFlags(),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// exportFlags are shared between `audit` and `runs export`.
func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "export",
			Usage: "output format: csv, json, or html (default json)",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "write the export to a file instead of stdout",
		},
		&cli.BoolFlag{Name: "with-context", Usage: "include the surrounding text column (csv)"},
		&cli.BoolFlag{Name: "with-archive", Usage: "include the archive URL column (csv)"},
		&cli.BoolFlag{Name: "with-suggestions", Usage: "include the suggestions column (csv)"},
		&cli.BoolFlag{Name: "group-by-post", Usage: "group dead links by source post (json)"},
	}
}
