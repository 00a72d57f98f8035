// Package config provides configuration for the server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server configuration.
type Config struct {
	// Server settings
	WSPort   int // External WebSocket port
	HTTPPort int // HTTP port for /health and /gamedata

	// Durable cache
	DatabasePath string

	// Steam upstream
	SteamStoreURL string
	FetchTimeout  time.Duration

	// Metadata cache tuning
	CacheTTL        time.Duration
	TokensPerMinute int
	RateBurst       int
	RateQueueWait   time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		WSPort:          getEnvInt("WS_PORT", 8090),
		HTTPPort:        getEnvInt("HTTP_PORT", 8091),
		DatabasePath:    getEnv("DATABASE_PATH", "file:gamecache.db?cache=shared&mode=rwc"),
		SteamStoreURL:   getEnv("STEAM_STORE_URL", "https://store.steampowered.com"),
		FetchTimeout:    time.Duration(getEnvInt("FETCH_TIMEOUT_MS", 15000)) * time.Millisecond,
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_HOURS", 168)) * time.Hour,
		TokensPerMinute: getEnvInt("RATE_TOKENS_PER_MINUTE", 60),
		RateBurst:       getEnvInt("RATE_BURST", 60),
		RateQueueWait:   time.Duration(getEnvInt("RATE_QUEUE_WAIT_MS", 10000)) * time.Millisecond,
		PingInterval:    time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:    time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:     time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:  int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 1048576)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
