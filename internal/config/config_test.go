package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "TOKEN_EXPIRY", "STRICT_AGGREGATE", "ALLOWED_ORIGINS", "MAX_PHOTO_BYTES"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.True(t, cfg.StrictAggregate)
	assert.True(t, cfg.Rollback)
	assert.False(t, cfg.EnforceDailyLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(5<<20), cfg.MaxPhotoBytes)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("TOKEN_EXPIRY", "2")
	t.Setenv("STRICT_AGGREGATE", "false")
	t.Setenv("ENFORCE_DAILY_LIMIT", "true")
	t.Setenv("REFLECTION_MIN_LENGTH", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := LoadConfig()
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 5, cfg.ReflectionMinLength)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	opts := cfg.JourneyOptions()
	assert.False(t, opts.StrictAggregate)
	assert.True(t, opts.EnforceDailyLimit)
	assert.Equal(t, 20, opts.GateResponseMinLength)
}
