package db

// SchemaSQL is the single source of truth for the run-history schema.
// Tests load it via GetSchemaSQL so test and production schemas cannot
// drift.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	operation TEXT NOT NULL CHECK(operation IN ('bootstrap', 'sync', 'dispatch')),
	external_form_id TEXT NOT NULL,
	form_title TEXT,
	count INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL CHECK(outcome IN ('ok', 'degraded', 'error')),
	detail TEXT,
	dry_run BOOLEAN NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_form ON runs(external_form_id);
`

// GetSchemaSQL returns the authoritative schema for tests and tools.
func GetSchemaSQL() string {
	return SchemaSQL
}
