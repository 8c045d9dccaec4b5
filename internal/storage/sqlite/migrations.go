package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Raw dataset snapshots, one row per fetch
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset TEXT NOT NULL,
	resource_id TEXT NOT NULL,
	fetched_at TIMESTAMP NOT NULL,
	records_json TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_snapshots_dataset ON snapshots(dataset, fetched_at DESC);
`
