package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webPageProbeGO/internal/aggregator"
	"webPageProbeGO/internal/models"
)

func TestSummary(t *testing.T) {
	view, err := aggregator.Aggregate(models.ResultMap{
		"https://a.example": {
			{SpeedRating: models.SpeedExcellent, LoadTimeMS: 300, SizeKB: 50, HTMLLineCount: 10, HTMLCharCount: 500},
			{SpeedRating: models.SpeedExcellent, LoadTimeMS: 500, SizeKB: 50, Repetition: 1},
		},
		"https://b.example": {
			{SpeedRating: models.SpeedGood, LoadTimeMS: 1200, SizeKB: 150},
		},
	})
	require.NoError(t, err)

	out := Summary(view)
	assert.Contains(t, out, "Probe summary")
	assert.Contains(t, out, "666.67")
	assert.Contains(t, out, "EXCELLENT: 2")
	assert.Contains(t, out, "100-500KB: 1")
	assert.Contains(t, out, "HTML source")
	assert.Contains(t, out, "https://a.example: 400 over 2")
	assert.Contains(t, out, "https://b.example: 1200 over 1")
}

func TestSummaryWithoutHTMLStats(t *testing.T) {
	view, err := aggregator.Aggregate(models.ResultMap{
		"https://a.example": {{SpeedRating: models.SpeedFair, LoadTimeMS: 2500, SizeKB: 600, Repetition: 1}},
	})
	require.NoError(t, err)

	out := Summary(view)
	assert.NotContains(t, out, "HTML source")
	assert.Contains(t, out, "500-1000KB: 1")
}
