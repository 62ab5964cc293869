// Package common holds small helpers shared by the CLI actions.
package common

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/dead-link-audit/models"
	"github.com/urfave/cli/v2"
)

// NewLogger builds the standard JSON logger writing to stderr. Quiet mode
// suppresses everything below Error.
func NewLogger(quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the config file named by the --config flag and applies
// flag overrides for the knobs the audit command exposes.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	config, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("workers") {
		config.Workers = c.Int("workers")
	}
	if c.IsSet("posts") {
		config.PostsToCheck = c.Int("posts")
	}
	if c.IsSet("delay") {
		config.RequestDelay = c.String("delay")
	}
	if c.IsSet("timeout") {
		config.ProbeTimeout = c.String("timeout")
	}
	if c.IsSet("store-url") {
		config.ContentStoreURL = c.String("store-url")
	}
	if c.IsSet("db") {
		config.DBPath = c.String("db")
	}
	if c.IsSet("site-domain") {
		config.SiteDomains = c.StringSlice("site-domain")
	}

	return config, nil
}

// OutputWriter resolves the --out flag to a writer; empty means stdout.
// The returned close func is a no-op for stdout.
func OutputWriter(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
