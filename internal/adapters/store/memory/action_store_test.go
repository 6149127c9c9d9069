package memory_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/customizer-engine/internal/adapters/store/memory"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/action"
)

const testShop = "demo.myshopify.com"

func pendingRecord(id string, createdAt time.Time) *action.Record {
	return &action.Record{
		ID:         id,
		Shop:       testShop,
		ActionType: "UPDATE_CONFIG",
		Payload:    map[string]any{"changes": map[string]any{"buttonText": "Customize"}},
		Status:     action.StatusPending,
		CreatedAt:  createdAt,
	}
}

func TestActionStore_GetScopedByShop(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, pendingRecord("act-1", time.Now())))

	_, err := store.Get(ctx, "other.myshopify.com", "act-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.Get(ctx, testShop, "act-1")
	require.NoError(t, err)
	assert.Equal(t, "act-1", got.ID)
}

func TestActionStore_GetReturnsClone(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, pendingRecord("act-1", time.Now())))

	first, err := store.Get(ctx, testShop, "act-1")
	require.NoError(t, err)
	first.Payload["changes"] = "mutated"
	first.Status = action.StatusExecuted

	second, err := store.Get(ctx, testShop, "act-1")
	require.NoError(t, err)
	assert.Equal(t, action.StatusPending, second.Status)
	assert.IsType(t, map[string]any{}, second.Payload["changes"])
}

func TestActionStore_ListMostRecentFirst(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Put(ctx, pendingRecord("act-old", base.Add(-time.Hour))))
	require.NoError(t, store.Put(ctx, pendingRecord("act-new", base)))

	other := pendingRecord("act-other", base)
	other.Shop = "other.myshopify.com"
	require.NoError(t, store.Put(ctx, other))

	records, err := store.List(ctx, testShop)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "act-new", records[0].ID)
	assert.Equal(t, "act-old", records[1].ID)
}

func TestActionStore_MarkExecuted(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, pendingRecord("act-1", time.Now())))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snapshot := map[string]any{"buttonText": "old"}
	require.NoError(t, store.MarkExecuted(ctx, testShop, "act-1", snapshot, now, now))

	got, err := store.Get(ctx, testShop, "act-1")
	require.NoError(t, err)
	assert.Equal(t, action.StatusExecuted, got.Status)
	assert.Equal(t, snapshot, got.Snapshot)
	require.NotNil(t, got.ExecutedAt)
	assert.True(t, got.ExecutedAt.Equal(now))
}

func TestActionStore_MarkExecutedExactlyOnce(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, pendingRecord("act-1", time.Now())))

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.MarkExecuted(ctx, testShop, "act-1", nil, time.Now(), time.Now())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent transition may win")
}

func TestActionStore_MarkRolledBack(t *testing.T) {
	t.Parallel()

	store := memory.NewActionStore()
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, pendingRecord("act-1", time.Now())))

	// Pending records cannot roll back.
	err := store.MarkRolledBack(ctx, testShop, "act-1")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	now := time.Now()
	require.NoError(t, store.MarkExecuted(ctx, testShop, "act-1", nil, now, now))
	require.NoError(t, store.MarkRolledBack(ctx, testShop, "act-1"))

	// Rolled back is terminal.
	err = store.MarkRolledBack(ctx, testShop, "act-1")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := store.Get(ctx, testShop, "act-1")
	require.NoError(t, err)
	assert.Equal(t, action.StatusRolledBack, got.Status)
}
