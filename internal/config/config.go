package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server Server
	Google Google
	AI     AI
	Sync   Sync
	Auth   Auth
}

// Server holds HTTP server settings.
type Server struct {
	Port string
}

// Google holds GCP project settings. An empty ProjectID switches the service
// to the in-memory record store, which is meant for local development only.
type Google struct {
	ProjectID string
	Bucket    string
}

// AI holds extraction model settings.
type AI struct {
	Model string
}

// Sync holds legacy spreadsheet webhook settings.
type Sync struct {
	WebhookURL   string
	RevertDelay  time.Duration
	PushTimeout  time.Duration
}

// Auth holds bearer token settings.
type Auth struct {
	Secret string
}

// Load reads configuration from file and env. Env var overrides use prefix
// RECEIPTS_, e.g. RECEIPTS_GOOGLE_PROJECT_ID.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("google.project_id", "")
	v.SetDefault("google.bucket", "")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("sync.webhook_url", "")
	v.SetDefault("sync.revert_delay", "3s")
	v.SetDefault("sync.push_timeout", "30s")
	v.SetDefault("auth.secret", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/receipt-tracker")

	v.SetEnvPrefix("RECEIPTS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional, env and defaults cover everything
	_ = v.ReadInConfig()

	cfg := Config{
		Server: Server{
			Port: v.GetString("server.port"),
		},
		Google: Google{
			ProjectID: v.GetString("google.project_id"),
			Bucket:    v.GetString("google.bucket"),
		},
		AI: AI{
			Model: v.GetString("ai.model"),
		},
		Sync: Sync{
			WebhookURL:  v.GetString("sync.webhook_url"),
			RevertDelay: v.GetDuration("sync.revert_delay"),
			PushTimeout: v.GetDuration("sync.push_timeout"),
		},
		Auth: Auth{
			Secret: v.GetString("auth.secret"),
		},
	}

	if cfg.Server.Port == "" {
		return Config{}, fmt.Errorf("config: server.port must not be empty")
	}
	if cfg.Sync.RevertDelay <= 0 {
		return Config{}, fmt.Errorf("config: sync.revert_delay must be positive")
	}

	return cfg, nil
}
