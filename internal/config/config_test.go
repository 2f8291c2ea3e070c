package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv đảm bảo env của máy chạy test không lọt vào Load
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "STORE_DRIVER", "CORS_ORIGINS", "JWT_SECRET",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"DB_MAX_RETRIES", "DB_CONNECT_TIMEOUT", "DB_RETRY_DELAY",
		"COMMISSION_RATE_PERCENT", "MIN_WITHDRAWAL", "WITHDRAWAL_TAX_PER_THOUSAND",
		"AMBASSADOR_APPLICATION_FEE", "SOCIAL_STRIKE_LIMIT", "PROMO_CODE_LENGTH", "PROMO_CODE_MAX_ATTEMPTS",
		"PROMO_USAGE_CACHE_TTL", "SOCIAL_VERIFY_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MemoryDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.Database)
	assert.Equal(t, DefaultLedgerConfig(), cfg.Ledger)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.Redis.UsageCacheTTL)
}

func TestLoad_LedgerOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("COMMISSION_RATE_PERCENT", "15")
	t.Setenv("MIN_WITHDRAWAL", "20000")
	t.Setenv("PROMO_USAGE_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(15), cfg.Ledger.CommissionRatePercent)
	assert.Equal(t, int64(20000), cfg.Ledger.MinWithdrawal)
	assert.Equal(t, int64(20), cfg.Ledger.TaxPerThousand)
	assert.Equal(t, 5*time.Minute, cfg.Redis.UsageCacheTTL)
}

func TestLoad_PostgresReadsDatabaseConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_CONNECT_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Database)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "monetization", cfg.Database.DBName)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_InvalidDatabasePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_PORT", "not-a-port")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development", StoreDriver: "memory"},
			JWT:    JWTConfig{Secret: "your-secret-key-change-in-production"},
			Ledger: DefaultLedgerConfig(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.App.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"zero strike limit", func(c *Config) { c.Ledger.StrikeLimit = 0 }, "SOCIAL_STRIKE_LIMIT"},
		{"rate above 100", func(c *Config) { c.Ledger.CommissionRatePercent = 101 }, "COMMISSION_RATE_PERCENT"},
		{"production default secret", func(c *Config) { c.App.Environment = "production" }, "JWT_SECRET"},
		{"production memory store", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = "real-secret"
		}, "memory store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
