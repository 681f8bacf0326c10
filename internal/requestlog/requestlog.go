// Package requestlog records every conversation turn in an append-only
// JSON audit log.
//
// The log is a single JSON array rewritten in full on each append, the
// format the call-management console reads. A missing, empty, or corrupt
// file is treated as an empty log rather than a fatal error so that a
// damaged file can never cost us the entry being appended.
package requestlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Timestamps are recorded in the bank's local zone.
const logTimeZone = "America/Santo_Domingo"

// Entry is one logged conversation turn.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	SenderID   string    `json:"sender_id"`
	EmployeeID string    `json:"employee_id,omitempty"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Category   string    `json:"category"`
}

// Store is a file-backed append-only request log.
// Appends are serialized with a mutex to avoid lost updates when
// concurrent requests finish at the same time.
type Store struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
	now  func() time.Time
}

// NewStore creates a request log store writing to path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	loc, err := time.LoadLocation(logTimeZone)
	if err != nil {
		slog.Warn("failed to load log time zone, falling back to UTC", "zone", logTimeZone, "error", err)
		loc = time.UTC
	}

	return &Store{path: path, loc: loc, now: time.Now}, nil
}

// Append adds one entry to the log, stamping it with the current time
// when the entry carries none.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	entry.Timestamp = entry.Timestamp.In(s.loc)

	entries := s.readAll()
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal log entries: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}

// History returns all entries recorded for a sender.
func (s *Store) History(senderID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []Entry
	for _, entry := range s.readAll() {
		if entry.SenderID == senderID {
			history = append(history, entry)
		}
	}
	return history, nil
}

// CountsByCategory returns the number of logged entries per category.
func (s *Store) CountsByCategory() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, entry := range s.readAll() {
		category := entry.Category
		if category == "" {
			category = "Uncategorized"
		}
		counts[category]++
	}
	return counts, nil
}

// EntriesBetween returns entries with start <= timestamp < end.
func (s *Store) EntriesBetween(start, end time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, entry := range s.readAll() {
		if !entry.Timestamp.Before(start) && entry.Timestamp.Before(end) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// readAll loads the log file, treating any read or decode problem as an
// empty log. Callers must hold s.mu.
func (s *Store) readAll() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read request log, treating as empty", "path", s.path, "error", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("request log is corrupt, resetting to empty", "path", s.path, "error", err)
		return nil
	}
	return entries
}
