package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "STATIC_DIR", "STORE_BACKEND", "MONGO_URI", "MONGO_DATABASE",
		"DATABASE_URL", "REDIS_URL", "LOCK_TTL", "LOCK_WAIT", "USAGE_STRICT_MDN", "TELEGRAM_TOKEN",
		"OPERATOR_TELEGRAM_ID", "LOG_LEVEL", "ENVIRONMENT", "CRON_SPEC_METRICS", "CRON_SPEC_DIGEST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "usmob", cfg.MongoDatabase)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, 5*time.Second, cfg.LockWait)
	assert.True(t, cfg.StrictMDN)
	assert.False(t, cfg.TelegramEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "@every 1m", cfg.CronSpecMetrics)
	assert.Equal(t, "0 9 * * *", cfg.CronSpecDigest)
}

func TestLoad_Postgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/usage")
	t.Setenv("USAGE_STRICT_MDN", "false")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("LOCK_WAIT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.False(t, cfg.StrictMDN)
	assert.Equal(t, 3*time.Second, cfg.LockTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.LockWait)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"mongo without uri", map[string]string{}, "MONGO_URI"},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}, "DATABASE_URL"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "sqlite"}, "STORE_BACKEND"},
		{"bad ttl", map[string]string{"STORE_BACKEND": "memory", "LOCK_TTL": "soon"}, "LOCK_TTL"},
		{"negative ttl", map[string]string{"STORE_BACKEND": "memory", "LOCK_TTL": "-1s"}, "LOCK_TTL"},
		{"zero wait", map[string]string{"STORE_BACKEND": "memory", "LOCK_WAIT": "0s"}, "LOCK_WAIT"},
		{"bad strict flag", map[string]string{"STORE_BACKEND": "memory", "USAGE_STRICT_MDN": "maybe"}, "USAGE_STRICT_MDN"},
		{"token without operator", map[string]string{"STORE_BACKEND": "memory", "TELEGRAM_TOKEN": "t"}, "OPERATOR_TELEGRAM_ID"},
		{"bad operator id", map[string]string{"STORE_BACKEND": "memory", "TELEGRAM_TOKEN": "t", "OPERATOR_TELEGRAM_ID": "abc"}, "OPERATOR_TELEGRAM_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Telegram(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("OPERATOR_TELEGRAM_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TelegramEnabled())
	assert.EqualValues(t, 42, cfg.OperatorTelegramID)
}
