package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFile, cfg.StoreBackend)
	assert.Equal(t, "argon2id", cfg.VaultKDF)
	assert.Equal(t, 2*time.Minute, cfg.InflightTimeout)
	assert.Equal(t, 4*time.Minute, cfg.SendCooldownDuration())
	assert.Empty(t, cfg.WorkURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NANO_STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("NANO_WORK_URL", "http://work:7000")
	t.Setenv("POW_WORKERS", "3")
	t.Setenv("INFLIGHT_TIMEOUT", "45s")
	t.Setenv("SEND_COOLDOWN_MINUTES", "0")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "http://work:7000", cfg.WorkURL)
	assert.Equal(t, 3, cfg.PowWorkers)
	assert.Equal(t, 45*time.Second, cfg.InflightTimeout)
	assert.Zero(t, cfg.SendCooldownDuration())
	assert.True(t, cfg.LogPretty)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "NANO_STORE_BACKEND", "sqlite"},
		{"empty file path", "NANO_STORE_PATH", ""},
		{"negative workers", "POW_WORKERS", "-1"},
		{"negative cooldown", "SEND_COOLDOWN_MINUTES", "-2"},
		{"zero timeout", "INFLIGHT_TIMEOUT", "0s"},
		{"bad duration", "INFLIGHT_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
