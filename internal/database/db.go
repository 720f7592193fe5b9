package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"linkmon/internal/models"
)

var _ models.Archive = (*DB)(nil)

// DB wraps sql.DB with archive methods
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// archive writes come from several goroutines; sqlite takes one writer
	db.SetMaxOpenConns(1)

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")
	db.Exec("PRAGMA busy_timeout=5000")

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS samples (
        untimesec INTEGER PRIMARY KEY,
        latencies TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS link_events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        link TEXT NOT NULL,
        online BOOLEAN NOT NULL,
        off_requested_at INTEGER,
        off_until INTEGER,
        observed_at INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_link_events_observed ON link_events(observed_at);

    -- the backend log has no ids, rows are deduplicated on their content
    CREATE TABLE IF NOT EXISTS activity_log (
        uxtimesec INTEGER NOT NULL,
        isp_id TEXT NOT NULL,
        reason TEXT NOT NULL,
        isp_name TEXT,
        restart_type TEXT,
        duration_minutes INTEGER,
        client_ip TEXT,
        UNIQUE (uxtimesec, isp_id, reason)
    );
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
