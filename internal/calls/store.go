// Package calls persists callback requests and their lifecycle for the
// call-management service.
package calls

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leosep/bank-chatbot/internal/domain"
	_ "modernc.org/sqlite"
)

// DefaultPerPage is the page size used when the caller doesn't specify one.
const DefaultPerPage = 20

// Filter narrows List results.
type Filter struct {
	Status  string // exact status, empty or "all" for any
	Query   string // case-insensitive substring over name/sender/phone/resolution
	Page    int    // 1-based
	PerPage int
}

// Stats aggregates calls over a time window.
type Stats struct {
	StatusCounts         map[domain.CallStatus]int
	Total                int
	AvgResolutionSeconds float64
}

// Store is a SQLite-backed call repository.
type Store struct {
	db *sql.DB
}

// NewStore opens the calls database.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open calls database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping calls database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize calls schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		sender_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		preferred_time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		resolution TEXT,
		created_at INTEGER NOT NULL,
		resolved_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_calls_created ON calls(created_at);
	CREATE INDEX IF NOT EXISTS idx_calls_status ON calls(status);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create inserts a new pending call and returns it.
func (s *Store) Create(ctx context.Context, senderID, fullName, phone, preferredTime string) (*domain.Call, error) {
	call := &domain.Call{
		ID:            uuid.NewString(),
		SenderID:      senderID,
		FullName:      fullName,
		Phone:         phone,
		PreferredTime: preferredTime,
		Status:        domain.CallPending,
		CreatedAt:     time.Now(),
	}

	query := `
	INSERT INTO calls (id, sender_id, full_name, phone, preferred_time, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		call.ID, call.SenderID, call.FullName, call.Phone,
		call.PreferredTime, string(call.Status), call.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert call: %w", err)
	}
	return call, nil
}

// Get retrieves a single call by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Call, error) {
	query := `
		SELECT id, sender_id, full_name, phone, preferred_time, status, resolution, created_at, resolved_at
		FROM calls WHERE id = ?`
	call, err := scanCall(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan call: %w", err)
	}
	return call, nil
}

// List returns a page of calls, newest first, plus the total match count.
func (s *Store) List(ctx context.Context, filter Filter) ([]*domain.Call, int, error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM calls` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := `
		SELECT id, sender_id, full_name, phone, preferred_time, status, resolution, created_at, resolved_at
		FROM calls` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Call
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan call row: %w", err)
		}
		out = append(out, call)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate calls: %w", err)
	}
	return out, total, nil
}

// UpdateStatus transitions a call through its lifecycle. Backward
// transitions are rejected; resolved_at is stamped exactly once when
// the call first enters Resolved.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.CallStatus, resolution string) (*domain.Call, error) {
	call, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, fmt.Errorf("call %s not found", id)
	}

	if !call.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("invalid transition from %q to %q", call.Status, status)
	}

	call.Status = status
	if resolution != "" {
		call.Resolution = resolution
	}
	if status == domain.CallResolved && call.ResolvedAt == nil {
		now := time.Now()
		call.ResolvedAt = &now
	}

	var resolvedAt interface{}
	if call.ResolvedAt != nil {
		resolvedAt = call.ResolvedAt.Unix()
	}
	var res interface{}
	if call.Resolution != "" {
		res = call.Resolution
	}

	query := `UPDATE calls SET status = ?, resolution = ?, resolved_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, string(call.Status), res, resolvedAt, id); err != nil {
		return nil, fmt.Errorf("update call: %w", err)
	}
	return call, nil
}

// StatsBetween aggregates calls created in [start, end).
func (s *Store) StatsBetween(ctx context.Context, start, end time.Time) (*Stats, error) {
	query := `
		SELECT status, created_at, resolved_at FROM calls
		WHERE created_at >= ? AND created_at < ?`
	rows, err := s.db.QueryContext(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("query call stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &Stats{StatusCounts: map[domain.CallStatus]int{
		domain.CallPending:    0,
		domain.CallInProgress: 0,
		domain.CallResolved:   0,
	}}

	var totalResolution float64
	var resolvedCount int
	for rows.Next() {
		var status string
		var createdAt int64
		var resolvedAt sql.NullInt64
		if err := rows.Scan(&status, &createdAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan call stats row: %w", err)
		}
		stats.Total++
		stats.StatusCounts[domain.CallStatus(status)]++
		if domain.CallStatus(status) == domain.CallResolved && resolvedAt.Valid {
			totalResolution += float64(resolvedAt.Int64 - createdAt)
			resolvedCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call stats: %w", err)
	}

	if resolvedCount > 0 {
		stats.AvgResolutionSeconds = totalResolution / float64(resolvedCount)
	}
	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close calls database: %w", err)
	}
	return nil
}

func buildFilter(filter Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	status := strings.TrimSpace(filter.Status)
	if status != "" && !strings.EqualFold(status, "all") {
		conds = append(conds, "status = ?")
		args = append(args, status)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		conds = append(conds, `(LOWER(full_name) LIKE ? OR LOWER(sender_id) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(COALESCE(resolution, '')) LIKE ?)`)
		args = append(args, like, like, like, like)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanCall(row scannable) (*domain.Call, error) {
	var call domain.Call
	var status string
	var resolution sql.NullString
	var createdAt int64
	var resolvedAt sql.NullInt64

	err := row.Scan(&call.ID, &call.SenderID, &call.FullName, &call.Phone,
		&call.PreferredTime, &status, &resolution, &createdAt, &resolvedAt)
	if err != nil {
		return nil, err
	}

	call.Status = domain.CallStatus(status)
	call.Resolution = resolution.String
	call.CreatedAt = time.Unix(createdAt, 0)
	if resolvedAt.Valid {
		ts := time.Unix(resolvedAt.Int64, 0)
		call.ResolvedAt = &ts
	}
	return &call, nil
}
