package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned when the required Notion integration token is
// not configured. It is the only fatal configuration error.
var ErrMissingToken = errors.New("NOTION_API_KEY is not set")

type (
	Config struct {
		Notion
		Anki
		HTTP
		Debug
		Sync
	}

	Notion struct {
		APIKey     string
		DatabaseID string // empty selects accessible-pages mode
	}
	Anki struct {
		ConnectURL string
	}
	HTTP struct {
		Timeout time.Duration // applies to both API clients
	}
	Debug struct {
		Enabled bool
		LogPath string
	}
	Sync struct {
		Schedule string // Cron format: "0 * * * *" = hourly. Empty = run once.
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("anki_connect_url", DefaultAnkiConnectURL)
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("debug_mode", false)
	v.SetDefault("debug_log_path", DefaultDebugLogPath)
	v.SetDefault("sync_schedule", "")

	return &Config{
		Notion: Notion{
			APIKey:     v.GetString("NOTION_API_KEY"),
			DatabaseID: v.GetString("NOTION_DATABASE_ID"),
		},
		Anki: Anki{
			ConnectURL: v.GetString("ANKI_CONNECT_URL"),
		},
		HTTP: HTTP{
			Timeout: time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		},
		Debug: Debug{
			Enabled: v.GetBool("DEBUG_MODE"),
			LogPath: v.GetString("DEBUG_LOG_PATH"),
		},
		Sync: Sync{
			Schedule: v.GetString("SYNC_SCHEDULE"),
		},
	}
}

// Validate checks required settings. Called before any network I/O is issued.
func (c *Config) Validate() error {
	if c.Notion.APIKey == "" {
		return ErrMissingToken
	}
	return nil
}
