package sigengine

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all env-parsed configuration for the signal engine service.
type Config struct {
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	HTTPAddr      string
	WebhookURL    string

	TelegramBotToken string
	TelegramChatID   string

	HistoryLen       int
	CVDMaxLen        int
	SnapshotHorizonS int
	PurgeIntervalS   int
	TickRingSize     int

	Symbols []string
}

// LoadConfig reads all environment variables and returns a Config.
func LoadConfig() Config {
	return Config{
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/signals.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		HTTPAddr:      getEnv("SIGENGINE_HTTP_ADDR", ":9095"),
		WebhookURL:    getEnv("SIGNAL_WEBHOOK_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		HistoryLen:       getEnvInt("HISTORY_LEN", DefaultHistoryLen),
		CVDMaxLen:        getEnvInt("CVD_MAX_LEN", 100),
		SnapshotHorizonS: getEnvInt("SNAPSHOT_HORIZON_SEC", 60),
		PurgeIntervalS:   getEnvInt("SNAPSHOT_PURGE_SEC", 10),
		TickRingSize:     getEnvInt("TICK_RING_SIZE", 8192),

		Symbols: parseSymbols(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT")),
	}
}

func parseSymbols(s string) []string {
	parts := strings.Split(s, ",")
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

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
