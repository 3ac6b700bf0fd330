package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quizdrill/backend/internal/importer"
	"github.com/quizdrill/backend/internal/store"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Storage
	DBDriver store.Driver // "sqlite" or "postgres"
	DBDSN    string       // empty picks the driver's local default
	SeedBank bool

	// Sessions
	TickInterval     time.Duration
	SessionRetention time.Duration
	AnswerPolicy     importer.AnswerPolicy

	CORSOrigins []string
	LogLevel    slog.Level
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	policy, err := importer.ParseAnswerPolicy(os.Getenv("IMPORT_ANSWER_POLICY"))
	if err != nil {
		log.Fatalf("config: IMPORT_ANSWER_POLICY: %v", err)
	}

	return &Config{
		ServerAddress:    getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout:  getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBDriver:         store.Driver(getenvDefault("DB_DRIVER", string(store.DriverSQLite))),
		DBDSN:            os.Getenv("DB_DSN"),
		SeedBank:         getBoolDefault("SEED_BANK", true),
		TickInterval:     getDurationDefault("TICK_INTERVAL", 250*time.Millisecond),
		SessionRetention: getDurationDefault("SESSION_RETENTION", 30*time.Minute),
		AnswerPolicy:     policy,
		CORSOrigins:      splitList(getenvDefault("CORS_ORIGINS", "*")),
		LogLevel:         parseLevel(os.Getenv("LOG_LEVEL")),
	}
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getBoolDefault(k string, fallback bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid boolean: %v", k, v, err)
	}
	return b
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseLevel accepts debug, info, warn or error; anything else is info.
func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}
