package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultAnkiConnectURL, cfg.Anki.ConnectURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.False(t, cfg.Debug.Enabled)
	assert.Equal(t, DefaultDebugLogPath, cfg.Debug.LogPath)
	assert.Empty(t, cfg.Sync.Schedule)
}

func TestNewConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "secret_abc")
	t.Setenv("NOTION_DATABASE_ID", "db-123")
	t.Setenv("ANKI_CONNECT_URL", "http://127.0.0.1:9999")
	t.Setenv("DEBUG_MODE", "true")
	t.Setenv("SYNC_SCHEDULE", "0 * * * *")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "10")

	cfg := NewConfig()

	assert.Equal(t, "secret_abc", cfg.Notion.APIKey)
	assert.Equal(t, "db-123", cfg.Notion.DatabaseID)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Anki.ConnectURL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, "0 * * * *", cfg.Sync.Schedule)
}

func TestValidate_RequiresToken(t *testing.T) {
	cfg := &Config{}
	require.ErrorIs(t, cfg.Validate(), ErrMissingToken)

	cfg.Notion.APIKey = "secret_abc"
	require.NoError(t, cfg.Validate())
}
