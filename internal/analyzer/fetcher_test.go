package analyzer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"webPageProbeGO/internal/config"
)

func TestFetcherReservesLargestReadableBody(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultAnalyzerConfig()

	cfg.MaxMemoryMB = 1024
	assert.Equal(t, int64(maxResponseBody), NewFetcher(cfg, logger).reserve)

	cfg.MaxMemoryMB = 1
	assert.Equal(t, int64(1<<20), NewFetcher(cfg, logger).reserve)

	cfg.MaxMemoryMB = 0
	assert.Equal(t, int64(maxResponseBody), NewFetcher(cfg, logger).reserve)
}
