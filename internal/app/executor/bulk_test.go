package executor_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/customizer-engine/internal/adapters/store/memory"
	"github.com/printcraft/customizer-engine/internal/app/executor"
	"github.com/printcraft/customizer-engine/internal/domain"
	"github.com/printcraft/customizer-engine/internal/domain/merchant"
	"github.com/printcraft/customizer-engine/internal/ports"
)

// refusingConfigStore rejects writes for one target id and delegates the rest.
type refusingConfigStore struct {
	*memory.ConfigStore
	refuse string
}

func (s *refusingConfigStore) Upsert(ctx context.Context, cfg *merchant.Config) error {
	if cfg.TargetID == s.refuse {
		return errors.New("backend write refused")
	}
	return s.ConfigStore.Upsert(ctx, cfg)
}

func newBulkWithRefusal(t *testing.T, refuse string) (*executor.Bulk, *memory.ConfigStore) {
	t.Helper()
	configs := memory.NewConfigStore()
	store := &refusingConfigStore{ConfigStore: configs, refuse: refuse}
	configExec := executor.NewConfig(store, &spyCache{}, testClock, slog.New(slog.DiscardHandler))
	return executor.NewBulk(configExec, slog.New(slog.DiscardHandler)), configs
}

func TestBulkApply_UpdatesEveryTarget(t *testing.T) {
	t.Parallel()

	configExec, configs, _ := newConfigExec(t)
	bulk := executor.NewBulk(configExec, slog.New(slog.DiscardHandler))
	ctx := t.Context()

	targets := []string{"prod-1", "prod-2", "prod-3"}
	outcome, err := bulk.Apply(ctx, testShop, targets, map[string]any{"buttonText": "Make it yours"})
	require.NoError(t, err)

	result := outcome.Result.(*ports.BulkResult)
	assert.Equal(t, targets, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Len(t, result.Succeeded, len(targets), "every target lands in exactly one list")

	for _, target := range targets {
		cfg, err := configs.Get(ctx, testShop, target)
		require.NoError(t, err)
		assert.Equal(t, "Make it yours", cfg.Fields["buttonText"])
	}

	// Snapshot keys per-target previous fields for rollback.
	previous := outcome.Snapshot["targets"].(map[string]any)
	require.Len(t, previous, len(targets))
	assert.Contains(t, previous, "prod-2")
}

func TestBulkApply_FailedTargetDoesNotStopTheWalk(t *testing.T) {
	t.Parallel()

	bulk, configs := newBulkWithRefusal(t, "prod-2")
	ctx := t.Context()

	seeded := merchant.NewConfig(testShop, "prod-2")
	seeded.Fields["paperSize"] = "Letter"
	require.NoError(t, configs.Upsert(ctx, seeded))

	targets := []string{"prod-1", "prod-2", "prod-3"}
	outcome, err := bulk.Apply(ctx, testShop, targets, map[string]any{"paperSize": "A3"})
	require.NoError(t, err)

	result := outcome.Result.(*ports.BulkResult)
	assert.Equal(t, []string{"prod-1", "prod-3"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "prod-2", result.Failed[0].TargetID)
	assert.NotEmpty(t, result.Failed[0].Message)
	assert.Len(t, targets, len(result.Succeeded)+len(result.Failed),
		"every target lands in exactly one list")

	// The refused target keeps its pre-call value; the others moved on.
	cfg, err := configs.Get(ctx, testShop, "prod-2")
	require.NoError(t, err)
	assert.Equal(t, "Letter", cfg.Fields["paperSize"])

	cfg, err = configs.Get(ctx, testShop, "prod-3")
	require.NoError(t, err)
	assert.Equal(t, "A3", cfg.Fields["paperSize"])

	// Only succeeded targets are snapshotted for rollback.
	previous := outcome.Snapshot["targets"].(map[string]any)
	assert.Len(t, previous, 2)
	assert.NotContains(t, previous, "prod-2")
}

func TestBulkBinding_Validation(t *testing.T) {
	t.Parallel()

	configExec, _, _ := newConfigExec(t)
	bulk := executor.NewBulk(configExec, slog.New(slog.DiscardHandler))
	binding := bulk.Bindings()[executor.TypeBulkUpdateConfig]

	_, err := binding.Execute(t.Context(), testShop, map[string]any{
		"changes": map[string]any{"buttonText": "x"},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = binding.Execute(t.Context(), testShop, map[string]any{
		"productIds": []any{"prod-1"},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestBulkBinding_RollbackRestoresPerTarget(t *testing.T) {
	t.Parallel()

	configExec, configs, _ := newConfigExec(t)
	bulk := executor.NewBulk(configExec, slog.New(slog.DiscardHandler))
	binding := bulk.Bindings()[executor.TypeBulkUpdateConfig]
	ctx := t.Context()

	seeded := merchant.NewConfig(testShop, "prod-1")
	seeded.Fields["buttonText"] = "old one"
	require.NoError(t, configs.Upsert(ctx, seeded))

	payload := map[string]any{
		"productIds": []any{"prod-1", "prod-2"},
		"changes":    map[string]any{"buttonText": "new"},
	}
	outcome, err := binding.Execute(ctx, testShop, payload)
	require.NoError(t, err)

	_, err = binding.Rollback(ctx, testShop, payload, outcome.Snapshot)
	require.NoError(t, err)

	// prod-1 returns to its seeded value; prod-2 never had one, so the key
	// is unset again.
	cfg, err := configs.Get(ctx, testShop, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "old one", cfg.Fields["buttonText"])

	cfg, err = configs.Get(ctx, testShop, "prod-2")
	require.NoError(t, err)
	_, exists := cfg.Fields["buttonText"]
	assert.False(t, exists)
}

func TestBulkRollback_WalksTargetsInSortedOrder(t *testing.T) {
	t.Parallel()

	configExec, _, _ := newConfigExec(t)
	bulk := executor.NewBulk(configExec, slog.New(slog.DiscardHandler))
	binding := bulk.Bindings()[executor.TypeBulkUpdateConfig]

	snapshot := map[string]any{"targets": map[string]any{
		"prod-3": map[string]any{"paperSize": "Letter"},
		"prod-1": map[string]any{"paperSize": "A4"},
		"prod-2": map[string]any{"paperSize": "A5"},
	}}
	outcome, err := binding.Rollback(t.Context(), testShop, nil, snapshot)
	require.NoError(t, err)

	result := outcome.Result.(*ports.BulkResult)
	assert.Equal(t, []string{"prod-1", "prod-2", "prod-3"}, result.Succeeded)
	assert.Empty(t, result.Failed)
}
