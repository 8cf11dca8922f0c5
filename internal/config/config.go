package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the VidLens dashboard service.
type Config struct {
	AppPort        int
	UpstreamURL    string
	StatePath      string
	DatabaseURL    string
	MigrationDir   string
	LogLevel       string
	ClientTimeout  time.Duration
	DetailCacheTTL time.Duration
	DailyQuota     int
	ObjectStore    ObjectStoreConfig
}

// ObjectStoreConfig describes the optional S3-compatible bucket used to
// archive generated export documents. Archival stays disabled while Bucket
// is empty.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible defaults
// for local development while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:        getInt("VIDLENS_PORT", 8080),
		UpstreamURL:    getString("VIDLENS_UPSTREAM_URL", "http://localhost:5000/api"),
		StatePath:      getString("VIDLENS_STATE_PATH", defaultStatePath()),
		DatabaseURL:    getString("VIDLENS_DATABASE_URL", ""),
		MigrationDir:   getString("VIDLENS_MIGRATIONS", "migrations"),
		LogLevel:       getString("VIDLENS_LOG_LEVEL", "info"),
		ClientTimeout:  getDuration("VIDLENS_CLIENT_TIMEOUT", 30*time.Second),
		DetailCacheTTL: getDuration("VIDLENS_DETAIL_CACHE_TTL", 15*time.Minute),
		DailyQuota:     getInt("VIDLENS_DAILY_QUOTA", 100),
		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("VIDLENS_EXPORT_BUCKET", ""),
			Region:        getString("VIDLENS_EXPORT_REGION", "us-east-1"),
			Endpoint:      getString("VIDLENS_EXPORT_ENDPOINT", ""),
			PublicBaseURL: getString("VIDLENS_EXPORT_BASE_URL", ""),
		},
	}

	return cfg, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vidlens_state.json"
	}
	return filepath.Join(dir, "vidlens", "state.json")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
