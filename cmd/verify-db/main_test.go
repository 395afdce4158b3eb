package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_more.sql", "001_init.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	got, err := discoverMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_more.sql"}, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_dupe.sql"), []byte(""), 0o644))
	_, err = discoverMigrations(dir)
	assert.ErrorContains(t, err, "duplicate migration version 002")
}

func TestExtractVersion(t *testing.T) {
	v, err := extractVersion("001_invoice_assistant.sql")
	require.NoError(t, err)
	assert.Equal(t, "001", v)

	_, err = extractVersion("schema.sql")
	assert.Error(t, err)
}
