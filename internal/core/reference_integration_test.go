package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"invoice-agent/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_invoice_assistant.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE TABLE clients, inventory_items, invoice_drafts RESTART IDENTITY`); err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func TestReferenceService_SeedSearchAndSave(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := core.NewReferenceService(pool)

	clients, err := store.SearchClients(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, clients, 3, "empty tables are seeded on first read")

	require.NoError(t, store.EnsureSeeded(ctx))
	clients, err = store.SearchClients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, clients, 3, "EnsureSeeded is idempotent")

	items, err := store.SearchItems(ctx, "servers")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hosting Server (Basic)", items[0].Name)
	assert.True(t, items[0].Rate.Equal(dec("5000")))

	_, err = store.SaveClient(ctx, core.Client{Name: "Dup", Email: "ACCOUNTS@ACME.COM", Address: "x"})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	saved, err := store.SaveItem(ctx, core.InventoryItem{Name: "SSL Certificate", Rate: dec("2500")})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultUnit, saved.Unit)

	_, err = store.UpdateItem(ctx, "ssl certificate", core.InventoryItem{Name: "SSL Certificate", Rate: dec("3000"), Unit: "Year"})
	require.NoError(t, err)
	_, err = store.UpdateClient(ctx, "missing@example.com", core.Client{Name: "M", Address: "A"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, store.DeleteClient(ctx, "pepper@stark.com"))
	assert.ErrorIs(t, store.DeleteClient(ctx, "pepper@stark.com"), core.ErrNotFound)

	require.NoError(t, store.ResetToSeed(ctx))
	items, err = store.SearchItems(ctx, "list")
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestPostgresDraftStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := core.NewPostgresDraftStore(pool, time.Hour)

	_, ok, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, ok)

	d := sampleDraft()
	d.CurrentArtifactPath = "temp/DRAFT-1.pdf"
	require.NoError(t, store.Put(ctx, "conv-1", d))

	got, ok, err := store.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "temp/DRAFT-1.pdf", got.CurrentArtifactPath)
	require.Len(t, got.LineItems, 1)
	assert.True(t, got.LineItems[0].Quantity.Equal(dec("10")))

	expired := core.NewPostgresDraftStore(pool, time.Millisecond)
	require.NoError(t, expired.Put(ctx, "conv-2", d))
	time.Sleep(20 * time.Millisecond)
	_, ok, err = store.Get(ctx, "conv-2")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.Delete(ctx, "conv-1"))
	_, ok, err = store.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
