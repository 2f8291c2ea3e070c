package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"monetization-backend/internal/infrastructure/database"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database *database.DBConfig // nil khi STORE_DRIVER=memory
	Redis    RedisConfig
	JWT      JWTConfig
	Social   SocialConfig
	Ledger   LedgerConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	StoreDriver string // postgres, memory
	CORSOrigins []string
}

type RedisConfig struct {
	Host          string
	Password      string
	DB            int
	ChangeChannel string // pub/sub channel for record change fan-out
	UsageCacheTTL time.Duration
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// SocialConfig controls the social-existence check
type SocialConfig struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	UserAgent      string
}

// LedgerConfig holds the money rules. Amounts are in whole currency units.
type LedgerConfig struct {
	CommissionRatePercent int64
	MinWithdrawal         int64
	TaxPerThousand        int64
	ApplicationFee        int64
	StrikeLimit           int
	PromoCodeLength       int
	PromoCodeMaxAttempts  int
}

type WorkerConfig struct {
	Concurrency      int
	ReconcileCron    string
	UsageRecountCron string
	HealthCheckPort  string
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	ledger := DefaultLedgerConfig()
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Monetization API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			StoreDriver: getEnv("STORE_DRIVER", "postgres"),
			CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
		Redis: RedisConfig{
			Host:          getEnv("REDIS_HOST", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			ChangeChannel: getEnv("REDIS_CHANGE_CHANNEL", "monetization:changes"),
			UsageCacheTTL: getEnvDuration("PROMO_USAGE_CACHE_TTL", time.Hour),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Social: SocialConfig{
			Timeout:        getEnvDuration("SOCIAL_VERIFY_TIMEOUT", 5*time.Second),
			RequestsPerSec: getEnvFloat("SOCIAL_VERIFY_RPS", 2),
			Burst:          getEnvInt("SOCIAL_VERIFY_BURST", 4),
			UserAgent:      getEnv("SOCIAL_VERIFY_USER_AGENT", "Mozilla/5.0 (compatible; AmbassadorVerifier/1.0)"),
		},
		Ledger: LedgerConfig{
			CommissionRatePercent: int64(getEnvInt("COMMISSION_RATE_PERCENT", int(ledger.CommissionRatePercent))),
			MinWithdrawal:         int64(getEnvInt("MIN_WITHDRAWAL", int(ledger.MinWithdrawal))),
			TaxPerThousand:        int64(getEnvInt("WITHDRAWAL_TAX_PER_THOUSAND", int(ledger.TaxPerThousand))),
			ApplicationFee:        int64(getEnvInt("AMBASSADOR_APPLICATION_FEE", int(ledger.ApplicationFee))),
			StrikeLimit:           getEnvInt("SOCIAL_STRIKE_LIMIT", ledger.StrikeLimit),
			PromoCodeLength:       getEnvInt("PROMO_CODE_LENGTH", ledger.PromoCodeLength),
			PromoCodeMaxAttempts:  getEnvInt("PROMO_CODE_MAX_ATTEMPTS", ledger.PromoCodeMaxAttempts),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvInt("WORKER_CONCURRENCY", 5),
			ReconcileCron:    getEnv("RECONCILE_CRON", "*/30 * * * *"),
			UsageRecountCron: getEnv("USAGE_RECOUNT_CRON", "0 * * * *"),
			HealthCheckPort:  getEnv("WORKER_HEALTH_PORT", "8081"),
		},
	}

	if cfg.App.StoreDriver == "postgres" {
		dbConfig, err := LoadDatabaseConfig()
		if err != nil {
			return nil, err
		}
		cfg.Database = dbConfig
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultLedgerConfig returns the production money rules, overridable per env var
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		CommissionRatePercent: 10,
		MinWithdrawal:         10000,
		TaxPerThousand:        20,
		ApplicationFee:        10000,
		StrikeLimit:           3,
		PromoCodeLength:       6,
		PromoCodeMaxAttempts:  5,
	}
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.App.StoreDriver != "postgres" && c.App.StoreDriver != "memory" {
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.App.StoreDriver)
	}
	if c.Ledger.StrikeLimit < 1 {
		return fmt.Errorf("SOCIAL_STRIKE_LIMIT must be >= 1")
	}
	if c.Ledger.CommissionRatePercent < 0 || c.Ledger.CommissionRatePercent > 100 {
		return fmt.Errorf("COMMISSION_RATE_PERCENT must be within 0..100")
	}

	// Production environment phải có JWT secret
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database != nil && c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.App.StoreDriver == "memory" {
			return fmt.Errorf("memory store is not allowed in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
