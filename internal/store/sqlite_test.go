package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestGetSessionMissingReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	session, err := repo.GetSession(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestUpsertSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := &domain.Session{
		SenderID:       "sender-1",
		AwaitingCode:   true,
		ProvidedCedula: "402-1234567-1",
	}
	require.NoError(t, repo.UpsertSession(ctx, session))

	got, err := repo.GetSession(ctx, "sender-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sender-1", got.SenderID)
	assert.True(t, got.AwaitingCode)
	assert.Equal(t, "402-1234567-1", got.ProvidedCedula)
	assert.False(t, got.Verified)
	assert.False(t, got.LastActive.IsZero())
}

func TestUpsertSessionOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	session := &domain.Session{SenderID: "sender-1", AwaitingCode: true, ProvidedCedula: "402-1234567-1"}
	require.NoError(t, repo.UpsertSession(ctx, session))

	session.Verified = true
	session.EmployeeID = "7789"
	session.AwaitingCode = false
	session.ProvidedCedula = ""
	require.NoError(t, repo.UpsertSession(ctx, session))

	got, err := repo.GetSession(ctx, "sender-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Verified)
	assert.Equal(t, "7789", got.EmployeeID)
	assert.False(t, got.AwaitingCode)
	assert.Empty(t, got.ProvidedCedula)
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stale := &domain.Session{
		SenderID:   "stale",
		LastActive: time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, repo.UpsertSession(ctx, stale))

	fresh := &domain.Session{SenderID: "fresh", LastActive: time.Now()}
	require.NoError(t, repo.UpsertSession(ctx, fresh))

	deleted, err := repo.DeleteExpiredSessions(ctx, 12*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	got, err := repo.GetSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetSession(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
