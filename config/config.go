package config

import (
	"os"
	"strings"
)

// Config holds the market-data feed configuration loaded from environment
// variables. Engine tuning lives in sigengine.LoadConfig; this file only
// covers the transport the engine is oblivious to.
type Config struct {
	// Feed connection
	FeedWSURL string

	// Session auth (optional — empty TOTP secret disables the login frame)
	FeedAPIKey     string
	FeedClientCode string
	FeedTOTPSecret string

	// Subscription
	Symbols string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		FeedWSURL: getEnv("FEED_WS_URL", "ws://localhost:9001/ws"),

		FeedAPIKey:     getEnv("FEED_API_KEY", ""),
		FeedClientCode: getEnv("FEED_CLIENT_CODE", ""),
		FeedTOTPSecret: getEnv("FEED_TOTP_SECRET", ""),

		Symbols: getEnv("SYMBOLS", "BTCUSDT,ETHUSDT"),
	}
}

// ParseSymbols splits the Symbols string into a normalized slice.
func (c *Config) ParseSymbols() []string {
	parts := strings.Split(c.Symbols, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
