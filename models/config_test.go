package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if config.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", config.Workers, DefaultWorkers)
	}
	if config.PostsToCheck != DefaultPostsToCheck {
		t.Errorf("PostsToCheck = %d, want %d", config.PostsToCheck, DefaultPostsToCheck)
	}
	if config.RequestDelay != DefaultRequestDelay || config.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("durations = %q/%q, want defaults", config.RequestDelay, config.ProbeTimeout)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dla.yaml")
	content := `
content_store_url: https://dashboard.example.com/api
site_domains:
  - example.com
  - www.example.com
workers: 4
request_delay: 250ms
posts_to_check: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if config.ContentStoreURL != "https://dashboard.example.com/api" {
		t.Errorf("ContentStoreURL = %q", config.ContentStoreURL)
	}
	if len(config.SiteDomains) != 2 {
		t.Errorf("SiteDomains = %v", config.SiteDomains)
	}
	if config.Workers != 4 || config.PostsToCheck != 10 {
		t.Errorf("workers/posts = %d/%d, want 4/10", config.Workers, config.PostsToCheck)
	}
	// Unset fields still get defaults.
	if config.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want default %d", config.PageSize, DefaultPageSize)
	}
	if config.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("ProbeTimeout = %q, want default", config.ProbeTimeout)
	}

	delay, err := config.RequestDelayDuration()
	if err != nil {
		t.Fatal(err)
	}
	if delay != 250*time.Millisecond {
		t.Errorf("delay = %v, want 250ms", delay)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dla.yaml")
	if err := os.WriteFile(path, []byte("workers: [not an int"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML must fail loudly")
	}
}

func TestDurationParsing(t *testing.T) {
	config := &Config{RequestDelay: "oops", ProbeTimeout: "5s"}
	if _, err := config.RequestDelayDuration(); err == nil {
		t.Error("invalid request_delay accepted")
	}
	timeout, err := config.ProbeTimeoutDuration()
	if err != nil {
		t.Fatal(err)
	}
	if timeout != 5*time.Second {
		t.Errorf("timeout = %v", timeout)
	}
}

func TestProbeOutcomeAlive(t *testing.T) {
	code := func(n int) *int { return &n }
	tests := []struct {
		name    string
		outcome ProbeOutcome
		alive   bool
	}{
		{"200", ProbeOutcome{Status: code(200)}, true},
		{"301", ProbeOutcome{Status: code(301)}, true},
		{"399", ProbeOutcome{Status: code(399)}, true},
		{"404", ProbeOutcome{Status: code(404)}, false},
		{"500", ProbeOutcome{Status: code(500)}, false},
		{"no response", ProbeOutcome{Error: "connection refused"}, false},
	}
	for _, tt := range tests {
		if got := tt.outcome.Alive(); got != tt.alive {
			t.Errorf("%s: Alive() = %v, want %v", tt.name, got, tt.alive)
		}
	}
}
