package store

// Schema v1 - run history
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per fix or reset invocation
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  started_at DATETIME NOT NULL,
  completed_at DATETIME,
  mode TEXT NOT NULL,
  provider TEXT,
  steam_path TEXT,
  total INTEGER DEFAULT 0,
  succeeded INTEGER DEFAULT 0,
  failed INTEGER DEFAULT 0,
  shortcuts_changed INTEGER DEFAULT 0,
  cache_flushed INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

-- Icon acquisition outcome per game per run
CREATE TABLE IF NOT EXISTS acquisitions (
  run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
  app_id TEXT NOT NULL,
  name TEXT,
  status TEXT NOT NULL,
  success INTEGER DEFAULT 0,
  icon_path TEXT,
  source_url TEXT,
  bytes INTEGER DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (run_id, app_id)
);

CREATE INDEX IF NOT EXISTS idx_acquisitions_success ON acquisitions(run_id, success);
`

// Schema v2 - status lookups for the report command
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_acquisitions_status ON acquisitions(status);
CREATE INDEX IF NOT EXISTS idx_acquisitions_app_id ON acquisitions(app_id);
`
