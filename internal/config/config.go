package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	SecretKey []byte
	TokenTTL  time.Duration

	RevocationStore         string
	RevocationPruneInterval time.Duration

	KafkaBrokers []string

	SearchBackend string
	ESURL         string
	ESUser        string
	ESPassword    string
	ESIndex       string
}

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("dotenv_not_loaded", "reason", err.Error())
	}

	return Config{
		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SecretKey: []byte(os.Getenv("SECRET_KEY")),
		TokenTTL:  EnvDurationDefault("TOKEN_TTL", time.Hour),

		RevocationStore:         EnvDefault("REVOCATION_STORE", "db"),
		RevocationPruneInterval: EnvDurationDefault("REVOCATION_PRUNE_INTERVAL", time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		SearchBackend: EnvDefault("SEARCH_BACKEND", "db"),
		ESURL:         os.Getenv("ES_URL"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		ESIndex:       EnvDefault("ES_INDEX", "boards"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
