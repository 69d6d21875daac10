package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store IIdempotencyStore) {
	ctx := context.Background()

	locked, err := store.TryLock(ctx, "place-order", "k1")
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = store.TryLock(ctx, "place-order", "k1")
	require.NoError(t, err)
	assert.False(t, locked)

	_, found, err := store.Recall(ctx, "place-order", "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Remember(ctx, "place-order", "k1", "order-1"))
	value, found, err := store.Recall(ctx, "place-order", "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order-1", value)

	locked, err = store.TryLock(ctx, "place-order", "k2")
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, store.Forget(ctx, "place-order", "k2"))
	locked, err = store.TryLock(ctx, "place-order", "k2")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestMemoryIdempotencyStore(t *testing.T) {
	exerciseStore(t, NewMemoryIdempotencyStore(time.Minute))
}

func TestMemoryIdempotencyStoreExpiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Minute)
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	locked, _ := store.TryLock(ctx, "s", "k")
	require.True(t, locked)
	require.NoError(t, store.Remember(ctx, "s", "k", "v"))

	current = current.Add(2 * time.Minute)
	locked, _ = store.TryLock(ctx, "s", "k")
	assert.True(t, locked)
	_, found, _ := store.Recall(ctx, "s", "k")
	assert.False(t, found)
}
