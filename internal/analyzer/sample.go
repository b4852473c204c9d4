package analyzer

import (
	"context"
	"log/slog"
	"time"

	"webPageProbeGO/internal/errs"
	"webPageProbeGO/internal/models"
)

// Outcome is the tagged result of one sample. Err is nil on success;
// Sample is always fully populated, with sentinel values when Err is set.
type Outcome struct {
	Sample models.SampleResult
	Err    error
}

// SampleRunner fetches and analyzes a URL once
type SampleRunner struct {
	fetcher PageFetcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewSampleRunner creates a SampleRunner. timeout is reported in timeout sentinels.
func NewSampleRunner(fetcher PageFetcher, timeout time.Duration, logger *slog.Logger) *SampleRunner {
	return &SampleRunner{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
	}
}

// Run analyzes urlStr and always returns a complete record
func (r *SampleRunner) Run(ctx context.Context, urlStr string, repetition int) models.SampleResult {
	return r.Analyze(ctx, urlStr, repetition).Sample
}

// Analyze is Run with the typed failure kept visible
func (r *SampleRunner) Analyze(ctx context.Context, urlStr string, repetition int) Outcome {
	resp, err := r.fetcher.Fetch(ctx, urlStr)
	if err != nil {
		r.logger.Warn("Sample failed", "url", urlStr, "repetition", repetition, "kind", errs.KindOf(err).String(), "error", err)
		return Outcome{Sample: r.Sentinel(err, repetition), Err: err}
	}

	root, err := ParseDocument(resp)
	if err != nil {
		r.logger.Warn("Sample failed", "url", urlStr, "repetition", repetition, "error", err)
		return Outcome{Sample: r.Sentinel(err, repetition), Err: err}
	}

	sample := Extract(root, resp)
	sample.StatusCode = resp.StatusCode
	sample.SpeedRating = ClassifySpeed(resp.Elapsed)
	sample.Repetition = repetition
	sample.ResponseTimeS = round(resp.Elapsed.Seconds(), 3)
	sample.LoadTimeMS = round(resp.Elapsed.Seconds()*1000, 0)
	sample.SizeBytes = int64(len(resp.Body))
	sample.SizeKB = round(float64(len(resp.Body))/1024, 2)

	if repetition == 0 {
		sample.HTMLLineCount, sample.HTMLCharCount = HTMLSourceSize(root)
	}

	r.logger.Debug("Sample complete",
		"url", urlStr,
		"repetition", repetition,
		"status", sample.StatusCode,
		"load_time_ms", sample.LoadTimeMS,
		"speed_rating", sample.SpeedRating,
	)
	return Outcome{Sample: sample}
}

// Sentinel builds the all-zero record standing in for a failed sample
func (r *SampleRunner) Sentinel(err error, repetition int) models.SampleResult {
	if errs.Is(err, errs.Timeout) {
		sample := errorSample(TimeoutMessage(r.timeout), repetition)
		sample.Title = "Timeout"
		sample.SpeedRating = models.SpeedVerySlow
		sample.ResponseTimeS = r.timeout.Seconds()
		sample.LoadTimeMS = r.timeout.Seconds() * 1000
		return sample
	}

	return errorSample(err.Error(), repetition)
}

func errorSample(msg string, repetition int) models.SampleResult {
	return models.SampleResult{
		Error:           &msg,
		Title:           "Error",
		SpeedRating:     models.SpeedError,
		Repetition:      repetition,
		SecurityMetrics: models.SecurityMetrics{SSLGrade: models.SSLGradeF},
	}
}
