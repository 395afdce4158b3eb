package core_test

import (
	"context"
	"testing"
	"time"

	"invoice-agent/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := core.NewMemoryDraftStore(10, time.Hour)

	_, ok, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	d := sampleDraft()
	require.NoError(t, store.Put(ctx, "c1", d))
	d.LineItems[0].Description = "changed after put"

	got, ok, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hosting", got.LineItems[0].Description)

	got.LineItems[0].Description = "changed after get"
	again, _, _ := store.Get(ctx, "c1")
	assert.Equal(t, "Hosting", again.LineItems[0].Description)

	require.NoError(t, store.Delete(ctx, "c1"))
	require.NoError(t, store.Delete(ctx, "c1"))
	_, ok, _ = store.Get(ctx, "c1")
	assert.False(t, ok)
}

func TestMemoryDraftStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := core.NewMemoryDraftStore(10, 50*time.Millisecond)

	require.NoError(t, store.Put(ctx, "c1", sampleDraft()))
	time.Sleep(150 * time.Millisecond)

	_, ok, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}
