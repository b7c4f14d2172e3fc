package legalhold

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore is a durable hold registry backed by SQLite. Holds survive a
// process restart, which matters because a hold that silently disappears is
// a compliance failure, not a cache miss.
//
// The store uses a write-ahead log for concurrent read performance; every
// evaluation issues a read.
type SQLiteStore struct {
	db *sql.DB

	existsStmt  *sql.Stmt
	placeStmt   *sql.Stmt
	releaseStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite hold store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const holdSchema = `
CREATE TABLE IF NOT EXISTS legal_holds (
	kind       TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	placed_at  TIMESTAMP NOT NULL,
	reason     TEXT,
	PRIMARY KEY (kind, subject_id)
);
`

// NewSQLiteStore opens (and if needed initializes) the hold database.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(holdSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.existsStmt, err = s.db.Prepare(
		`SELECT 1 FROM legal_holds WHERE kind = ? AND subject_id = ? LIMIT 1`)
	if err != nil {
		return fmt.Errorf("failed to prepare exists statement: %w", err)
	}

	s.placeStmt, err = s.db.Prepare(
		`INSERT OR REPLACE INTO legal_holds (kind, subject_id, placed_at, reason) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare place statement: %w", err)
	}

	s.releaseStmt, err = s.db.Prepare(
		`DELETE FROM legal_holds WHERE kind = ? AND subject_id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare release statement: %w", err)
	}

	return nil
}

// IsOnHold implements Lookup.
func (s *SQLiteStore) IsOnHold(ctx context.Context, kind Kind, id string) (bool, error) {
	var one int
	err := s.existsStmt.QueryRowContext(ctx, string(kind), id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query hold: %w", err)
	}
	return true, nil
}

// Place registers a hold with an optional reason, replacing any existing
// hold on the same subject.
func (s *SQLiteStore) Place(ctx context.Context, kind Kind, id, reason string) error {
	if _, err := s.placeStmt.ExecContext(ctx, string(kind), id, time.Now().UTC(), reason); err != nil {
		return fmt.Errorf("failed to place hold: %w", err)
	}
	return nil
}

// Release removes a hold if present.
func (s *SQLiteStore) Release(ctx context.Context, kind Kind, id string) error {
	if _, err := s.releaseStmt.ExecContext(ctx, string(kind), id); err != nil {
		return fmt.Errorf("failed to release hold: %w", err)
	}
	return nil
}

// Close releases the prepared statements and closes the database.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.existsStmt, s.placeStmt, s.releaseStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
