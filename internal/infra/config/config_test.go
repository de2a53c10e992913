package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "KAFKA_BROKERS", "S3_BUCKET", "FEES_FILE", "HOURS_PER_DAY", "APP_ENV"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.MongoEnabled())
	assert.False(t, cfg.KafkaEnabled())
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, cfg.S3Endpoint, cfg.S3PublicEndpoint)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("RETRY_BACKOFF", "2s")
	t.Setenv("TAX_PCT", "0.05")
	t.Setenv("HOURS_PER_DAY", "10")
	t.Setenv("S3_USE_SSL", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MongoEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []time.Duration{2 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, "0.05", cfg.FeeOverrides.TaxPct)
	assert.Equal(t, 10, cfg.FeeOverrides.HoursPerDay)
	assert.True(t, cfg.S3UseSSL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SESSION_TTL":   "soon",
		"RETRY_BACKOFF": "1s,later",
		"HOURS_PER_DAY": "eight",
		"S3_USE_SSL":    "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
