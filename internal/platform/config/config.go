package config

import (
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
)

const (
	defaultJWTSecret  = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer  = "fund-reconciliation"
	defaultRateLimit  = "120-M"
	defaultMigrations = "file://migrations"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	DBMaxConns    int32
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      slog.Level

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string // ulule formatted rate, e.g. "120-M"

	PosthogAPIKey   string
	PosthogEndpoint string

	MigrationsPath string

	// Matching policy
	TolerancePercent  decimal.Decimal
	ToleranceFloor    decimal.Decimal
	WindowDays        int
	SplitCandidateCap int

	// Batch runner
	MatchWorkers     int
	DefaultBatchSize int
	MaxBatchSize     int
}

// MatchingPolicy builds the engine policy from the loaded values.
func (c *Config) MatchingPolicy() matching.Policy {
	return matching.Policy{
		Tolerance: matching.Tolerance{
			Percent: c.TolerancePercent,
			Floor:   c.ToleranceFloor,
		},
		WindowDays:        c.WindowDays,
		SplitCandidateCap: c.SplitCandidateCap,
	}
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	defaults := matching.DefaultPolicy()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", defaultRateLimit)
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("MATCH_TOLERANCE_PERCENT", defaults.Tolerance.Percent.String())
	viper.SetDefault("MATCH_TOLERANCE_FLOOR", defaults.Tolerance.Floor.String())
	viper.SetDefault("MATCH_WINDOW_DAYS", defaults.WindowDays)
	viper.SetDefault("SPLIT_CANDIDATE_CAP", defaults.SplitCandidateCap)
	viper.SetDefault("MATCH_WORKERS", 4)
	viper.SetDefault("DEFAULT_BATCH_SIZE", 50)
	viper.SetDefault("MAX_BATCH_SIZE", 500)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.DBMaxConns = int32(positiveInt("DB_MAX_CONNS", 10))

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	levelStr := viper.GetString("LOG_LEVEL")
	if err := cfg.LogLevel.UnmarshalText([]byte(levelStr)); err != nil {
		cfg.LogLevel = slog.LevelInfo
		log.Printf("Warning: Invalid value for LOG_LEVEL ('%s'). Defaulting to %s.\n", levelStr, cfg.LogLevel)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = defaultRateLimit
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = defaultMigrations
	}

	cfg.TolerancePercent = nonNegativeDecimal("MATCH_TOLERANCE_PERCENT", defaults.Tolerance.Percent)
	cfg.ToleranceFloor = nonNegativeDecimal("MATCH_TOLERANCE_FLOOR", defaults.Tolerance.Floor)
	cfg.WindowDays = nonNegativeInt("MATCH_WINDOW_DAYS", defaults.WindowDays)
	cfg.SplitCandidateCap = positiveInt("SPLIT_CANDIDATE_CAP", defaults.SplitCandidateCap)
	if cfg.SplitCandidateCap < 2 {
		log.Printf("Warning: SPLIT_CANDIDATE_CAP must be at least 2. Defaulting to %d.\n", defaults.SplitCandidateCap)
		cfg.SplitCandidateCap = defaults.SplitCandidateCap
	}

	cfg.MatchWorkers = positiveInt("MATCH_WORKERS", 4)
	cfg.MaxBatchSize = positiveInt("MAX_BATCH_SIZE", 500)
	cfg.DefaultBatchSize = positiveInt("DEFAULT_BATCH_SIZE", 50)
	if cfg.DefaultBatchSize > cfg.MaxBatchSize {
		log.Printf("Warning: DEFAULT_BATCH_SIZE (%d) exceeds MAX_BATCH_SIZE (%d). Clamping.\n", cfg.DefaultBatchSize, cfg.MaxBatchSize)
		cfg.DefaultBatchSize = cfg.MaxBatchSize
	}

	return cfg, nil
}

func positiveInt(key string, fallback int) int {
	v := viper.GetInt(key)
	if v <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, viper.GetString(key), fallback)
		return fallback
	}
	return v
}

func nonNegativeInt(key string, fallback int) int {
	raw := viper.GetString(key)
	v := viper.GetInt(key)
	if v < 0 || (v == 0 && strings.TrimSpace(raw) != "0") {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, raw, fallback)
		return fallback
	}
	return v
}

func nonNegativeDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	raw := viper.GetString(key)
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || v.IsNegative() {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return v
}
