// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/leosep/bank-chatbot/internal/domain"
)

// Repository defines the interface for persisting chat session state.
type Repository interface {
	// GetSession retrieves the session for a sender.
	// Returns (nil, nil) if the sender has no session yet.
	GetSession(ctx context.Context, senderID string) (*domain.Session, error)

	// UpsertSession creates or updates a session record.
	// Last write wins for the same sender.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteExpiredSessions removes sessions idle for longer than ttl,
	// forcing those senders to re-verify on their next message.
	DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
