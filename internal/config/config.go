package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppName    string
	ServerPort string
	LogLevel   string
	LogFormat  string

	AllowedOrigins []string

	// Advisory amount bounds enforced at the validation layer, never by
	// the transaction engine.
	MinTransactionAmount decimal.Decimal
	MaxTransactionAmount decimal.Decimal

	// SeedAccounts is the fixed initial account set, account id → balance.
	SeedAccounts map[string]decimal.Decimal
}

// Load reads an optional .env file, then environment variables, falling
// back to defaults suitable for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	return &Config{
		AppName:              getEnv("APP_NAME", "transaction-processor"),
		ServerPort:           getEnv("PORT", "8000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "*")),
		MinTransactionAmount: getDecimalEnv("MIN_TRANSACTION_AMOUNT", "0.01"),
		MaxTransactionAmount: getDecimalEnv("MAX_TRANSACTION_AMOUNT", "1000000.00"),
		SeedAccounts:         parseSeedAccounts(getEnv("SEED_ACCOUNTS", "acc_001=1000.00,acc_002=500.00,acc_003=0.00")),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDecimalEnv(key, fallback string) decimal.Decimal {
	raw := getEnv(key, fallback)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		slog.Warn("Invalid decimal in environment, using default", "key", key, "value", raw)
		value = decimal.RequireFromString(fallback)
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseSeedAccounts parses "id=balance" pairs; malformed entries are
// skipped with a warning rather than aborting startup.
func parseSeedAccounts(raw string) map[string]decimal.Decimal {
	seeds := make(map[string]decimal.Decimal)
	for _, pair := range splitList(raw) {
		id, balanceStr, ok := strings.Cut(pair, "=")
		if !ok {
			slog.Warn("Skipping malformed seed account entry", "entry", pair)
			continue
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			slog.Warn("Skipping seed account with invalid balance", "account_id", id, "balance", balanceStr)
			continue
		}
		seeds[strings.TrimSpace(id)] = balance
	}
	return seeds
}

// SlogLevel maps the configured log level onto slog's scale.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
