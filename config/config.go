// Package config loads server configuration from environment variables.
package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      int    `env:"PORT,       default=3000"`
	DBPath    string `env:"DB_PATH,    default=portal.db"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	// BookmarksSeed is an optional JSON file loaded into an empty
	// bookmarks table at startup.
	BookmarksSeed string `env:"BOOKMARKS_SEED"`

	Health HealthConfig
}

type HealthConfig struct {
	ProbeTimeout  time.Duration `env:"HEALTH_PROBE_TIMEOUT,  default=5s"`
	AlertCooldown time.Duration `env:"HEALTH_ALERT_COOLDOWN, default=1h"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
