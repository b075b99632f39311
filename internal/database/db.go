package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection with pooling and migrations.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the sqlite database under dataDir
// and runs migrations.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "execmeter.db")
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Daily batch plus a handful of read endpoints; a small pool is
	// plenty and keeps sqlite write contention down.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{DB: db}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)

	return database, nil
}

// migrate creates the necessary tables.
func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			ticker TEXT,
			logo_url TEXT,
			industry TEXT NOT NULL,
			category TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS executives (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT NOT NULL,
			company_id TEXT NOT NULL,
			github_username TEXT,
			avatar_url TEXT,
			category TEXT NOT NULL,
			current_score REAL NOT NULL DEFAULT 0,
			last_synced_at DATETIME,
			FOREIGN KEY (company_id) REFERENCES companies(id)
		)`,

		`CREATE TABLE IF NOT EXISTS github_snapshots (
			id TEXT PRIMARY KEY,
			executive_id TEXT NOT NULL,
			snapshot_date DATE NOT NULL,
			push_event_count INTEGER NOT NULL DEFAULT 0,
			commit_count INTEGER NOT NULL DEFAULT 0,
			pr_count INTEGER NOT NULL DEFAULT 0,
			issue_count INTEGER NOT NULL DEFAULT 0,
			total_stars INTEGER NOT NULL DEFAULT 0,
			recent_repo_count INTEGER NOT NULL DEFAULT 0,
			languages TEXT NOT NULL DEFAULT '{}',
			ai_related_activity INTEGER NOT NULL DEFAULT 0,
			days_since_last_event INTEGER,
			cooking_score REAL NOT NULL DEFAULT 0,
			raw_event_summary TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (executive_id) REFERENCES executives(id),
			UNIQUE(executive_id, snapshot_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_executives_score ON executives(current_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_executive ON github_snapshots(executive_id, snapshot_date DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
