package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/saturn/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the audit database, applying the schema and
// pragmas as needed.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 5
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

// initialize applies pragmas and the schema.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return audit.NewStorageError("sqlite", "enable WAL", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", s.config.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError("sqlite", "set busy timeout", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return audit.NewStorageError("sqlite", "create schema", err)
	}
	return s.migrate()
}

// migrate records the schema version, leaving room for future migrations.
func (s *SQLiteStorage) migrate() error {
	var current sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_info").Scan(&current)
	if err != nil {
		return audit.NewStorageError("sqlite", "read schema version", err)
	}
	if current.Valid && current.Int64 >= schemaVersion {
		return nil
	}
	_, err = s.db.Exec(
		"INSERT INTO schema_info (version, applied_at) VALUES (?, ?)",
		schemaVersion, time.Now().UTC())
	if err != nil {
		return audit.NewStorageError("sqlite", "record schema version", err)
	}
	return nil
}

// Store implements audit.Storage.
func (s *SQLiteStorage) Store(ctx context.Context, rec *audit.Record) error {
	reasons, err := json.Marshal(rec.Decision.Reasons)
	if err != nil {
		return audit.NewStorageError("sqlite", "encode reasons", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_records (
			id, recorded_at, data_type, data_subject, data_sender,
			data_recipient, transmission_principle, situation, temporal_role,
			emergency_override, action, matched_rule_id, reasons,
			confidence_score, risk_level, expires_at, next_review, audit_required
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RecordedAt, rec.DataType, rec.DataSubject, rec.DataSender,
		rec.DataRecipient, rec.TransmissionPrinciple, rec.Situation, rec.TemporalRole,
		rec.EmergencyOverride, rec.Decision.Action, rec.Decision.MatchedRuleID, string(reasons),
		rec.Decision.ConfidenceScore, rec.Decision.RiskLevel, rec.Decision.ExpiresAt,
		rec.Decision.NextReview, rec.Decision.AuditRequired)
	if err != nil {
		return audit.NewStorageError("sqlite", "insert", err)
	}
	return nil
}

// Query implements audit.Storage.
func (s *SQLiteStorage) Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Record, error) {
	var (
		conds []string
		args  []any
	)
	if filter.DataSubject != "" {
		conds = append(conds, "data_subject = ?")
		args = append(args, filter.DataSubject)
	}
	if filter.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, filter.Action)
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, filter.Since)
	}

	query := `
		SELECT id, recorded_at, data_type, data_subject, data_sender,
		       data_recipient, transmission_principle, situation, temporal_role,
		       emergency_override, action, matched_rule_id, reasons,
		       confidence_score, risk_level, expires_at, next_review, audit_required
		FROM audit_records`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY recorded_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []*audit.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "iterate", err)
	}
	return out, nil
}

// Count implements audit.Storage.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records").Scan(&n); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteOlderThan implements audit.Storage.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_records WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "rows affected", err)
	}
	return removed, nil
}

// Close implements audit.Storage.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// scanRecord reads one row into a record.
func scanRecord(rows *sql.Rows) (*audit.Record, error) {
	var (
		rec           audit.Record
		matchedRuleID sql.NullString
		situation     sql.NullString
		temporalRole  sql.NullString
		reasonsJSON   string
		expiresAt     sql.NullTime
	)
	err := rows.Scan(
		&rec.ID, &rec.RecordedAt, &rec.DataType, &rec.DataSubject, &rec.DataSender,
		&rec.DataRecipient, &rec.TransmissionPrinciple, &situation, &temporalRole,
		&rec.EmergencyOverride, &rec.Decision.Action, &matchedRuleID, &reasonsJSON,
		&rec.Decision.ConfidenceScore, &rec.Decision.RiskLevel, &expiresAt,
		&rec.Decision.NextReview, &rec.Decision.AuditRequired)
	if err != nil {
		return nil, err
	}

	rec.Situation = situation.String
	rec.TemporalRole = temporalRole.String
	rec.Decision.MatchedRuleID = matchedRuleID.String
	if expiresAt.Valid {
		t := expiresAt.Time
		rec.Decision.ExpiresAt = &t
	}
	if err := json.Unmarshal([]byte(reasonsJSON), &rec.Decision.Reasons); err != nil {
		return nil, fmt.Errorf("decode reasons: %w", err)
	}
	return &rec, nil
}
