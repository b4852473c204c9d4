package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Analyzer.RequestTimeout)
	assert.Equal(t, DefaultUserAgent, cfg.Analyzer.UserAgent)
	assert.GreaterOrEqual(t, cfg.Analyzer.MaxWorkers, 1)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.Tasks.TTL)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MAX_WORKERS", "3")
	t.Setenv("REQUESTS_PER_SECOND", "0")
	t.Setenv("TASK_TTL", "15m")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Analyzer.MaxWorkers)
	assert.Zero(t, cfg.Analyzer.RequestsPerSecond)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.TTL)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"REQUEST_TIMEOUT": "soon",
		"MAX_WORKERS":     "0",
		"TASK_TTL":        "forever",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := New()
			assert.Error(t, err)
		})
	}
}
