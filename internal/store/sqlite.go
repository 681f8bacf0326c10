package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS user_sessions (
		sender_id TEXT PRIMARY KEY,
		employee_id TEXT,
		verified INTEGER NOT NULL DEFAULT 0,
		awaiting_code INTEGER NOT NULL DEFAULT 0,
		provided_cedula TEXT,
		last_active INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON user_sessions(last_active);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves the session for a sender.
func (s *SQLiteStore) GetSession(ctx context.Context, senderID string) (*domain.Session, error) {
	query := `
		SELECT sender_id, employee_id, verified, awaiting_code, provided_cedula,
		       last_active, created_at, updated_at
		FROM user_sessions WHERE sender_id = ?`

	row := s.db.QueryRowContext(ctx, query, senderID)

	var session domain.Session
	var employeeID, providedCedula sql.NullString
	var lastActive, createdAt, updatedAt int64

	err := row.Scan(
		&session.SenderID, &employeeID, &session.Verified, &session.AwaitingCode,
		&providedCedula, &lastActive, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.EmployeeID = employeeID.String
	session.ProvidedCedula = providedCedula.String
	session.LastActive = time.Unix(lastActive, 0)
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO user_sessions (sender_id, employee_id, verified, awaiting_code,
		provided_cedula, last_active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(sender_id) DO UPDATE SET
		employee_id = excluded.employee_id,
		verified = excluded.verified,
		awaiting_code = excluded.awaiting_code,
		provided_cedula = excluded.provided_cedula,
		last_active = excluded.last_active,
		updated_at = excluded.updated_at`

	var employeeID interface{}
	if session.EmployeeID != "" {
		employeeID = session.EmployeeID
	}
	var providedCedula interface{}
	if session.ProvidedCedula != "" {
		providedCedula = session.ProvidedCedula
	}

	now := time.Now()
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	lastActive := session.LastActive
	if lastActive.IsZero() {
		lastActive = now
	}

	// Retry on SQLITE_BUSY: the TTL sweeper and request writes can
	// briefly contend for the write lock.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(50<<uint(attempt-1)) * time.Millisecond)
		}
		_, err = s.db.ExecContext(ctx, query,
			session.SenderID, employeeID, session.Verified, session.AwaitingCode,
			providedCedula, lastActive.Unix(), createdAt.Unix(), now.Unix(),
		)
		if err == nil || !shared.IsSQLiteConflictError(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions idle for longer than ttl.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE last_active < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
