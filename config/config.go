package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Listing source: "supabase" (REST) or "postgres" (direct DSN).
	Source string

	SupabaseURL string
	SupabaseKey string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Port      string
	LogLevel  string
	LogFormat string

	MaxRetries  int
	RetryBaseMs int

	FeedOutputPath string
	CSVDumpPath    string

	CianAPIBaseURL string
	CianAPIToken   string
	CianTimeoutSec int
	CianImagesPage int

	TelegramBotToken    string
	TelegramChatID      string
	TelegramThreadID    string
	TelegramErrorUserID string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Source: getEnv("LISTING_SOURCE", "supabase"),

		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "feed"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MaxRetries:  getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs: getEnvInt("RETRY_BASE_MS", 500),

		FeedOutputPath: getEnv("FEED_OUTPUT_PATH", "./output/feed.xml"),
		CSVDumpPath:    getEnv("CSV_DUMP_PATH", ""),

		CianAPIBaseURL: getEnv("CIAN_API_BASE_URL", "https://public-api.cian.ru"),
		CianAPIToken:   getEnv("CIAN_API_TOKEN", ""),
		CianTimeoutSec: getEnvInt("CIAN_API_TIMEOUT", 15),
		CianImagesPage: getEnvInt("CIAN_IMAGES_PAGE_SIZE", 100),

		TelegramBotToken:    getEnv("TG_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TG_CHAT_ID", ""),
		TelegramThreadID:    getEnv("TG_THREAD_ID", ""),
		TelegramErrorUserID: getEnv("TG_ERROR_USER_ID", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
