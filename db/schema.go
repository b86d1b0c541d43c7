// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS opportunities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	counterparty TEXT NOT NULL,
	industry TEXT,
	stage TEXT NOT NULL,
	value INTEGER,
	currency TEXT NOT NULL DEFAULT 'USD',
	stage_history TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_opportunities_stage ON opportunities(stage);
CREATE INDEX IF NOT EXISTS idx_opportunities_counterparty ON opportunities(counterparty);

CREATE TABLE IF NOT EXISTS stakeholders (
	id TEXT PRIMARY KEY,
	opportunity_id TEXT NOT NULL,
	name TEXT NOT NULL,
	title TEXT,
	email TEXT,
	role TEXT NOT NULL,
	sentiment TEXT NOT NULL CHECK(sentiment IN ('positive', 'neutral', 'negative')),
	key_quotes TEXT,
	concerns TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_stakeholders_opportunity ON stakeholders(opportunity_id);

CREATE TABLE IF NOT EXISTS communications (
	id TEXT PRIMARY KEY,
	opportunity_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('meeting', 'call', 'email', 'message')),
	subject TEXT,
	content TEXT,
	participants TEXT,
	timestamp DATETIME NOT NULL,
	processed INTEGER NOT NULL DEFAULT 0,
	insights TEXT,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_communications_opportunity ON communications(opportunity_id);
CREATE INDEX IF NOT EXISTS idx_communications_timestamp ON communications(timestamp DESC);

CREATE TABLE IF NOT EXISTS intelligence (
	opportunity_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE TABLE IF NOT EXISTS scores (
	opportunity_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	intel_version INTEGER NOT NULL DEFAULT 0,
	computed_at DATETIME NOT NULL,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE TABLE IF NOT EXISTS recommendations (
	opportunity_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	intel_version INTEGER NOT NULL DEFAULT 0,
	generated_at DATETIME NOT NULL,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE TABLE IF NOT EXISTS pipeline_index (
	opportunity_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	counterparty TEXT NOT NULL,
	stage TEXT NOT NULL,
	value INTEGER NOT NULL DEFAULT 0,
	confidence REAL NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (opportunity_id) REFERENCES opportunities(id)
);

CREATE INDEX IF NOT EXISTS idx_pipeline_index_stage ON pipeline_index(stage);
CREATE INDEX IF NOT EXISTS idx_pipeline_index_confidence ON pipeline_index(confidence DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
