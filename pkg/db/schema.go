package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs: one row per completed batch run
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    trigger_type TEXT NOT NULL,         -- manual, scheduled
    total_links INTEGER NOT NULL,
    checked_links INTEGER NOT NULL,
    working_links INTEGER NOT NULL,
    skipped_links INTEGER NOT NULL,
    dead_count INTEGER NOT NULL,
    retryable_errors INTEGER DEFAULT 0,
    forbidden_errors INTEGER DEFAULT 0,
    timeout_errors INTEGER DEFAULT 0,
    duration_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Dead links: per-run terminal records
CREATE TABLE IF NOT EXISTS dead_links (
    link_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    url TEXT NOT NULL,
    status_code INTEGER,                -- NULL when no HTTP response
    error TEXT,
    context TEXT,
    post_id TEXT NOT NULL,
    post_title TEXT,
    post_slug TEXT,
    archive_url TEXT,
    suggestions TEXT,                   -- JSON array
    retryable BOOLEAN NOT NULL,
    checked_at TIMESTAMP NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_dead_links_run ON dead_links(run_id);
CREATE INDEX IF NOT EXISTS idx_dead_links_url ON dead_links(url);

-- Settings: JSON blobs under fixed keys (schedule settings live here)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
