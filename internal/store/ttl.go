package store

import (
	"context"
	"log/slog"
	"time"
)

const ttlWorkerInterval = 15 * time.Minute

// StartTTLWorker runs a background goroutine that periodically deletes
// sessions idle for longer than ttl. Expired senders must verify their
// identity again on the next message.
func StartTTLWorker(ctx context.Context, repo Repository, ttl time.Duration) {
	ticker := time.NewTicker(ttlWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session TTL worker started", "interval", ttlWorkerInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				deleted, err := repo.DeleteExpiredSessions(ctx, ttl)
				if err != nil {
					slog.Error("TTL worker failed to delete expired sessions", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("TTL worker removed expired sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
