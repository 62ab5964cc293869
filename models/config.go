// Package models defines data structures shared across the audit engine.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is absent or fields are unset.
const (
	DefaultWorkers      = 2
	DefaultPageSize     = 20
	DefaultPostsToCheck = 50
	DefaultRequestDelay = "1s"
	DefaultProbeTimeout = "10s"
)

// Config holds runtime configuration for the audit engine. Values come
// from an optional YAML file and may be overridden by CLI flags.
type Config struct {
	ContentStoreURL string   `yaml:"content_store_url"`
	ArchiveEndpoint string   `yaml:"archive_endpoint"`
	SiteDomains     []string `yaml:"site_domains"` // own domains, never probed
	Workers         int      `yaml:"workers"`      // concurrent articles per batch
	RequestDelay    string   `yaml:"request_delay"`
	ProbeTimeout    string   `yaml:"probe_timeout"`
	PostsToCheck    int      `yaml:"posts_to_check"`
	PageSize        int      `yaml:"page_size"`
	DBPath          string   `yaml:"db_path"`
}

// LoadConfig reads a YAML config file. A missing file is not an error;
// defaults are returned instead.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyDefaults()
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PostsToCheck <= 0 {
		c.PostsToCheck = DefaultPostsToCheck
	}
	if c.RequestDelay == "" {
		c.RequestDelay = DefaultRequestDelay
	}
	if c.ProbeTimeout == "" {
		c.ProbeTimeout = DefaultProbeTimeout
	}
}

// RequestDelayDuration parses the configured inter-request delay.
func (c *Config) RequestDelayDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.RequestDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid request_delay %q: %w", c.RequestDelay, err)
	}
	return d, nil
}

// ProbeTimeoutDuration parses the configured per-probe timeout.
func (c *Config) ProbeTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid probe_timeout %q: %w", c.ProbeTimeout, err)
	}
	return d, nil
}
