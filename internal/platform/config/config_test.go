package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("SUMMARY_CACHE_TTL", "30s")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "0s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("JWT_EXPIRY_DURATION", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
	assert.Equal(t, time.Duration(0), cfg.ExpirySweepInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration, "malformed duration falls back to default")
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
}

func TestLoadConfig_UnknownDriverFallsBack(t *testing.T) {
	viper.Reset()
	t.Setenv("STORAGE_DRIVER", "mongo")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
}
