package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
	"github.com/loresmith/pdfstore/pkg/pdfstore/records/memory"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Put(ctx, "key", []byte("value"), 0))

	got, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, store.Delete(ctx, "key"))
	_, err = store.Get(ctx, "key")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
}

func TestStoreMissingKey(t *testing.T) {
	store := memory.New()

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
}

func TestStoreDeleteMissingKey(t *testing.T) {
	store := memory.New()

	assert.NoError(t, store.Delete(context.Background(), "absent"))
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "ephemeral", []byte("v"), time.Hour))
	require.NoError(t, store.Put(ctx, "durable", []byte("v"), 0))

	_, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Second)

	_, err = store.Get(ctx, "ephemeral")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
	_, err = store.Get(ctx, "durable")
	assert.NoError(t, err)
}

func TestStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Put(ctx, "pdf:b", []byte("1"), 0))
	require.NoError(t, store.Put(ctx, "pdf:a", []byte("2"), 0))
	require.NoError(t, store.Put(ctx, "pending:c", []byte("3"), 0))

	keys, err := store.List(ctx, "pdf:")
	require.NoError(t, err)
	assert.Equal(t, []string{"pdf:a", "pdf:b"}, keys)
}

func TestStoreListSkipsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "old", []byte("1"), time.Minute))
	require.NoError(t, store.Put(ctx, "live", []byte("2"), 0))

	now = now.Add(2 * time.Minute)

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, keys)
}
