package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ledger", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.NotEmpty(t, cfg.App.DefaultTenant)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ledger", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30, cfg.Ledger.DefaultDueDays)
		assert.True(t, cfg.Ledger.TotalsTolerance.Equal(decimal.RequireFromString("0.01")))
		assert.Equal(t, "memory", cfg.Ledger.IdempotencyBackend)
		assert.Empty(t, cfg.Partner.BaseURL)
	})

	t.Run("loads values from environment variables with LEDGER prefix", func(t *testing.T) {
		t.Setenv("LEDGER_APP_PORT", "9000")
		t.Setenv("LEDGER_DATABASE_HOST", "testdb.local")
		t.Setenv("LEDGER_DATABASE_PORT", "5433")
		t.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("LEDGER_LEDGER_DEFAULT_DUE_DAYS", "45")
		t.Setenv("LEDGER_LEDGER_TOTALS_TOLERANCE", "0.05")
		t.Setenv("LEDGER_LEDGER_IDEMPOTENCY_BACKEND", "redis")
		t.Setenv("LEDGER_PARTNER_BASE_URL", "http://partners.local")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 45, cfg.Ledger.DefaultDueDays)
		assert.True(t, cfg.Ledger.TotalsTolerance.Equal(decimal.RequireFromString("0.05")))
		assert.Equal(t, "redis", cfg.Ledger.IdempotencyBackend)
		assert.Equal(t, "http://partners.local", cfg.Partner.BaseURL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("LEDGER_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LEDGER_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects malformed tolerance", func(t *testing.T) {
		t.Setenv("LEDGER_LEDGER_TOTALS_TOLERANCE", "one cent")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "totals_tolerance")
	})

	t.Run("rejects unknown idempotency backend", func(t *testing.T) {
		t.Setenv("LEDGER_LEDGER_IDEMPOTENCY_BACKEND", "memcached")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "idempotency_backend")
	})

	t.Run("jwt enabled without secret fails", func(t *testing.T) {
		t.Setenv("LEDGER_JWT_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setProd := func(t *testing.T) {
		t.Setenv("LEDGER_APP_ENV", "production")
		t.Setenv("LEDGER_JWT_ENABLED", "true")
		t.Setenv("LEDGER_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("LEDGER_DATABASE_PASSWORD", "secret")
		t.Setenv("LEDGER_DATABASE_SSLMODE", "require")
	}

	t.Run("valid production config", func(t *testing.T) {
		setProd(t)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.App.DefaultTenant)
	})

	t.Run("short secret", func(t *testing.T) {
		setProd(t)
		t.Setenv("LEDGER_JWT_SECRET", "short")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 characters")
	})

	t.Run("sslmode disable", func(t *testing.T) {
		setProd(t)
		t.Setenv("LEDGER_DATABASE_SSLMODE", "disable")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/ledger?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
