package calls

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "18095551234@domain", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.CallPending, created.Status)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana Pérez", got.FullName)
	assert.Equal(t, "809-555-1234", got.Phone)
	assert.Equal(t, "Lo antes posible", got.PreferredTime)
	assert.Nil(t, got.ResolvedAt)
}

func TestGetUnknownIDReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)

	inProgress, err := store.UpdateStatus(ctx, created.ID, domain.CallInProgress, "")
	require.NoError(t, err)
	assert.Equal(t, domain.CallInProgress, inProgress.Status)
	assert.Nil(t, inProgress.ResolvedAt)

	resolved, err := store.UpdateStatus(ctx, created.ID, domain.CallResolved, "Se orientó al colaborador.")
	require.NoError(t, err)
	assert.Equal(t, domain.CallResolved, resolved.Status)
	assert.Equal(t, "Se orientó al colaborador.", resolved.Resolution)
	require.NotNil(t, resolved.ResolvedAt)

	// A repeated resolve keeps the first resolution timestamp.
	again, err := store.UpdateStatus(ctx, created.ID, domain.CallResolved, "")
	require.NoError(t, err)
	require.NotNil(t, again.ResolvedAt)
	assert.Equal(t, resolved.ResolvedAt.Unix(), again.ResolvedAt.Unix())
	assert.Equal(t, "Se orientó al colaborador.", again.Resolution)
}

func TestUpdateStatusRejectsBackwardTransition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, created.ID, domain.CallResolved, "listo")
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, created.ID, domain.CallPending, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestUpdateStatusUnknownCall(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateStatus(context.Background(), "missing", domain.CallInProgress, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListFiltersByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)
	_, err = store.Create(ctx, "s2", "Luis Gómez", "809-555-9999", "Lo antes posible")
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, a.ID, domain.CallInProgress, "")
	require.NoError(t, err)

	got, total, err := store.List(ctx, Filter{Status: "In Progress"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, total, err = store.List(ctx, Filter{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, got, 2)
}

func TestListSearchesAcrossFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)
	_, err = store.Create(ctx, "s2", "Luis Gómez", "809-555-9999", "Lo antes posible")
	require.NoError(t, err)

	got, total, err := store.List(ctx, Filter{Query: "gómez"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Luis Gómez", got[0].FullName)

	got, total, err = store.List(ctx, Filter{Query: "1234"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Pérez", got[0].FullName)
}

func TestListPaginates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
		require.NoError(t, err)
	}

	got, total, err := store.List(ctx, Filter{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, got, 2)

	got, _, err = store.List(ctx, Filter{Page: 3, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStatsBetween(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "s1", "Ana Pérez", "809-555-1234", "Lo antes posible")
	require.NoError(t, err)
	_, err = store.Create(ctx, "s2", "Luis Gómez", "809-555-9999", "Lo antes posible")
	require.NoError(t, err)

	_, err = store.UpdateStatus(ctx, a.ID, domain.CallResolved, "listo")
	require.NoError(t, err)

	start := a.CreatedAt.Add(-time.Hour)
	end := a.CreatedAt.Add(time.Hour)
	stats, err := store.StatsBetween(ctx, start, end)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.StatusCounts[domain.CallPending])
	assert.Equal(t, 1, stats.StatusCounts[domain.CallResolved])
	assert.GreaterOrEqual(t, stats.AvgResolutionSeconds, 0.0)
}
