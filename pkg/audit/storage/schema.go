package storage

// schemaVersion is the current audit schema version. Bump when the table
// layout changes and add a migration step in migrate().
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_info (
	version    INTEGER PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_records (
	id                     TEXT PRIMARY KEY,
	recorded_at            TIMESTAMP NOT NULL,
	data_type              TEXT NOT NULL,
	data_subject           TEXT NOT NULL,
	data_sender            TEXT NOT NULL,
	data_recipient         TEXT NOT NULL,
	transmission_principle TEXT NOT NULL,
	situation              TEXT,
	temporal_role          TEXT,
	emergency_override     INTEGER NOT NULL DEFAULT 0,
	action                 TEXT NOT NULL,
	matched_rule_id        TEXT,
	reasons                TEXT NOT NULL,
	confidence_score       REAL NOT NULL,
	risk_level             TEXT NOT NULL,
	expires_at             TIMESTAMP,
	next_review            TIMESTAMP NOT NULL,
	audit_required         INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_data_subject ON audit_records(data_subject);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_records(action);
`
