package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webPageProbeGO/internal/errs"
)

func TestAnalysisRequestValidate(t *testing.T) {
	valid := AnalysisRequest{URLs: []URLRequest{
		{URL: "https://example.com", RepeatCount: 3},
		{URL: "https://example.org", RepeatCount: 1},
	}}
	require.NoError(t, valid.Validate(0))
	assert.Equal(t, 4, valid.TotalSamples())

	cases := map[string]AnalysisRequest{
		"empty batch":     {},
		"blank url":       {URLs: []URLRequest{{URL: "  ", RepeatCount: 1}}},
		"zero repeat":     {URLs: []URLRequest{{URL: "https://example.com", RepeatCount: 0}}},
		"negative repeat": {URLs: []URLRequest{{URL: "https://example.com", RepeatCount: -2}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := req.Validate(0)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.MalformedInput))
		})
	}

	t.Run("unparsable url is left to the fetcher", func(t *testing.T) {
		req := AnalysisRequest{URLs: []URLRequest{
			{URL: "https://example.com", RepeatCount: 1},
			{URL: "http://exa mple.com", RepeatCount: 1},
		}}
		assert.NoError(t, req.Validate(0))
	})

	t.Run("sample cap", func(t *testing.T) {
		err := valid.Validate(3)
		assert.True(t, errs.Is(err, errs.MalformedInput))
	})
}

func TestSampleResultIsFlatOnTheWire(t *testing.T) {
	desc := "hello"
	sample := SampleResult{
		StatusCode:  200,
		SpeedRating: SpeedGood,
		PerformanceMetrics: PerformanceMetrics{
			ImageCount: 2,
		},
		SEOMetrics: SEOMetrics{
			MetaDescription: &desc,
		},
		SecurityMetrics: SecurityMetrics{SSLGrade: SSLGradeA},
	}

	raw, err := json.Marshal(sample)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))

	assert.Equal(t, float64(2), flat["image_count"])
	assert.Equal(t, "hello", flat["meta_description"])
	assert.Equal(t, "A", flat["ssl_grade"])
	assert.Nil(t, flat["meta_keywords"])
	assert.Nil(t, flat["error"])
	assert.NotContains(t, flat, "PerformanceMetrics")
}

func TestResultMapClone(t *testing.T) {
	m := ResultMap{"https://example.com": {{StatusCode: 200}}}
	c := m.Clone()
	m["https://example.com"] = append(m["https://example.com"], SampleResult{StatusCode: 500})
	m["https://example.com"][0].StatusCode = 404

	assert.Len(t, c["https://example.com"], 1)
	assert.Equal(t, 200, c["https://example.com"][0].StatusCode)
}
