// Package database is the sqlite-backed metadata store for document
// records, keyed by id and scoped by owning user.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"docvault/internal/logging"
)

// ErrNotFound is returned when an operation targets a document id that
// does not exist (or belongs to another user).
var ErrNotFound = errors.New("document not found")

// Default timeout for database operations.
const defaultTimeout = 5 * time.Second

// Database manages all metadata operations.
type Database struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath. The parent directory must
// already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode with a busy timeout avoids "database is locked" under
	// concurrent uploads; foreign keys enforce tag cleanup on delete.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Document records
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		file_name TEXT NOT NULL,
		category TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		file_path TEXT NOT NULL,
		thumb_path TEXT,
		thumb_status TEXT NOT NULL DEFAULT 'pending',
		pinned INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_documents_user ON documents(user_id);
	CREATE INDEX IF NOT EXISTS idx_documents_user_order ON documents(user_id, pinned DESC, sort_order);

	-- Tags table
	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL COLLATE NOCASE,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(user_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_tags_user ON tags(user_id);

	-- Document-Tag relationship table
	CREATE TABLE IF NOT EXISTS document_tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		tag_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
		UNIQUE(document_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_document_tags_doc ON document_tags(document_id);
	CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags(tag_id);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}
