package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRouting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channel_config.json")

	content := `{
		"channels": {
			"-1001234567890": {"style": "archive", "notion_database_id": "db-a"},
			"42": {"style": "agent_reference", "model": "gemini-2.5-pro"}
		},
		"blocked_channels": [-1009999999999]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	routing, err := LoadRouting(path)
	require.NoError(t, err)

	route, ok := routing.Lookup(-1001234567890)
	require.True(t, ok)
	assert.Equal(t, "archive", route.Style)
	assert.Equal(t, "db-a", route.DatabaseID)

	route, ok = routing.Lookup(42)
	require.True(t, ok)
	assert.Equal(t, "agent_reference", route.Style)
	assert.Equal(t, "gemini-2.5-pro", route.Model)

	_, ok = routing.Lookup(7)
	assert.False(t, ok)

	assert.True(t, routing.IsBlocked(-1009999999999))
	assert.False(t, routing.IsBlocked(42))
}

func TestLoadRoutingMissingFile(t *testing.T) {
	routing, err := LoadRouting(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	_, ok := routing.Lookup(1)
	assert.False(t, ok)
	assert.False(t, routing.IsBlocked(1))
}

func TestLoadRoutingInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadRouting(path)
	assert.Error(t, err)
}
