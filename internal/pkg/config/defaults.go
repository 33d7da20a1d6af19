package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Mojang profile API defaults
	DefaultMojangBaseURL    = "https://api.mojang.com"
	DefaultMojangTimeout    = 5 * time.Second
	DefaultMojangCacheTTL   = 60 * time.Minute
	DefaultMojangMaxRetries = 3

	// Processing defaults
	DefaultRaidTTL         = 24 * time.Hour
	DefaultCleanupInterval = 1 * time.Hour
	DefaultMaxLineBytes    = 64 * 1024

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultConfigFile = "config.yml"
)
