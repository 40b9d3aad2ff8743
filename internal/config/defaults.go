package config

import "time"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "",
			CORSAllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:8080",
			},
			RecentCards: 8,
		},
		API: APIConfig{
			URL:               "https://goblinbookie-backend.onrender.com/api",
			SampleURL:         "http://localhost:3000/api",
			Timeout:           Duration{10 * time.Second},
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  Duration{5 * time.Minute},
		},
		Database: DatabaseConfig{
			Path: "./goblin_bookie.db",
		},
		Worker: WorkerConfig{
			Enabled:   true,
			Interval:  Duration{15 * time.Minute},
			BatchSize: 25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
