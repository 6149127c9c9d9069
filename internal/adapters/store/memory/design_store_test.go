package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/customizer-engine/internal/adapters/store/memory"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/design"
)

func storedDesign() *design.Design {
	return &design.Design{
		ID:       "design-1",
		Shop:     testShop,
		TargetID: "prod-1",
		Name:     "Mug design",
		Sides: []design.Side{
			{ID: "front", Name: "Front", Elements: []map[string]any{{"id": "el-1"}}},
		},
	}
}

func TestDesignStore_UpsertThenGet(t *testing.T) {
	t.Parallel()

	store := memory.NewDesignStore()
	ctx := t.Context()
	require.NoError(t, store.Upsert(ctx, storedDesign()))

	got, err := store.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "design-1", got.ID)
	require.Len(t, got.Sides, 1)
	assert.Equal(t, "el-1", got.Sides[0].Elements[0]["id"])

	_, err = store.Get(ctx, testShop, "prod-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDesignStore_GetReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	store := memory.NewDesignStore()
	ctx := t.Context()
	require.NoError(t, store.Upsert(ctx, storedDesign()))

	first, err := store.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	first.Sides[0].Name = "mutated"

	second, err := store.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Front", second.Sides[0].Name)
}

func TestDesignStore_OneDesignPerTarget(t *testing.T) {
	t.Parallel()

	store := memory.NewDesignStore()
	ctx := t.Context()
	require.NoError(t, store.Upsert(ctx, storedDesign()))

	replacement := storedDesign()
	replacement.ID = "design-2"
	require.NoError(t, store.Upsert(ctx, replacement))

	got, err := store.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "design-2", got.ID)
}

func TestDesignStore_Delete(t *testing.T) {
	t.Parallel()

	store := memory.NewDesignStore()
	ctx := t.Context()
	require.NoError(t, store.Upsert(ctx, storedDesign()))

	require.NoError(t, store.Delete(ctx, testShop, "prod-1"))
	require.ErrorIs(t, store.Delete(ctx, testShop, "prod-1"), domain.ErrNotFound)

	_, err := store.Get(ctx, testShop, "prod-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
