package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	DatabasePath string

	// PresenceStaleAfter is the maximum silence before a device is presumed
	// disconnected; PresenceSweepInterval is how often the sweep runs.
	PresenceStaleAfter    time.Duration
	PresenceSweepInterval time.Duration

	MaxClientsPerGroup int

	// HotspotSSID/HotspotPassword override the discovered hotspot
	// credentials shown on the display page. Optional.
	HotspotSSID     string
	HotspotPassword string

	// PublicURL overrides the join URL advertised in the QR code. When empty
	// the URL is derived from the local network address and Port.
	PublicURL string
}

func Load() (*Config, error) {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		DatabasePath:    getEnv("DATABASE_PATH", "gamehub.db"),
		HotspotSSID:     getEnv("HOTSPOT_SSID", ""),
		HotspotPassword: getEnv("HOTSPOT_PASSWORD", ""),
		PublicURL:       getEnv("PUBLIC_URL", ""),
	}

	var err error
	if cfg.PresenceStaleAfter, err = getDurationEnv("PRESENCE_STALE_AFTER", 90*time.Second); err != nil {
		return nil, err
	}
	if cfg.PresenceSweepInterval, err = getDurationEnv("PRESENCE_SWEEP_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxClientsPerGroup, err = getIntEnv("MAX_CLIENTS_PER_GROUP", 100); err != nil {
		return nil, err
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH cannot be empty")
	}
	if cfg.PresenceStaleAfter <= 0 {
		return nil, fmt.Errorf("PRESENCE_STALE_AFTER must be positive")
	}
	if cfg.PresenceSweepInterval <= 0 {
		return nil, fmt.Errorf("PRESENCE_SWEEP_INTERVAL must be positive")
	}
	if cfg.PresenceStaleAfter < cfg.PresenceSweepInterval {
		return nil, fmt.Errorf("PRESENCE_STALE_AFTER must not be shorter than PRESENCE_SWEEP_INTERVAL")
	}
	if cfg.MaxClientsPerGroup <= 0 {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_GROUP must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 90s or 2m: %w", key, err)
	}
	return d, nil
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
