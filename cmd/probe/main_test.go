package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webPageProbeGO/internal/aggregator"
	"webPageProbeGO/internal/models"
)

func TestReadURLs(t *testing.T) {
	input := "https://a.example\n\n  # comment\n  https://b.example  \n"
	urls, err := readURLs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, urls)
}

func TestBuildRequest(t *testing.T) {
	req := buildRequest([]string{"https://a.example", "https://b.example"}, 4)
	require.Len(t, req.URLs, 2)
	assert.Equal(t, 8, req.TotalSamples())
	assert.NoError(t, req.Validate(0))

	assert.Error(t, buildRequest(nil, 3).Validate(0))
}

func TestWriteResultsRoundTrip(t *testing.T) {
	msg := "failed to fetch URL"
	results := models.ResultMap{
		"https://a.example": {
			{StatusCode: 200, SpeedRating: models.SpeedGood, LoadTimeMS: 1500, SizeKB: 12.5},
			{Error: &msg, Title: "Error", SpeedRating: models.SpeedError, Repetition: 1},
		},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, writeResults(path, results))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := aggregator.DecodeResultMap(f)
	require.NoError(t, err)
	assert.Equal(t, results, decoded)
}

func TestWriteTable(t *testing.T) {
	results := models.ResultMap{"https://a.example": {{StatusCode: 200, LoadTimeMS: 10}}}
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "table.csv")
	require.NoError(t, writeTable(csvPath, results))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://a.example,1,200,10,")

	require.NoError(t, writeTable(filepath.Join(dir, "table.xlsx"), results))
	assert.Error(t, writeTable(filepath.Join(dir, "table.txt"), results))
}
