package models

import (
	"strings"
	"time"

	"webPageProbeGO/internal/errs"
)

// URLRequest asks for one URL to be sampled RepeatCount times
type URLRequest struct {
	URL         string `json:"url" binding:"required"`
	RepeatCount int    `json:"repeat_count" binding:"required,min=1"`
}

// AnalysisRequest represents one submitted batch
type AnalysisRequest struct {
	URLs []URLRequest `json:"urls" binding:"required,min=1,dive"`
}

// TotalSamples returns the number of work items the batch expands into
func (r AnalysisRequest) TotalSamples() int {
	total := 0
	for _, u := range r.URLs {
		total += u.RepeatCount
	}
	return total
}

// Validate checks the batch shape. maxSamples <= 0 disables the size cap.
// URL syntax is not checked here; an unparsable URL fails only its own samples.
func (r AnalysisRequest) Validate(maxSamples int) error {
	if len(r.URLs) == 0 {
		return errs.Malformed("batch must contain at least one url")
	}
	for i, u := range r.URLs {
		if strings.TrimSpace(u.URL) == "" {
			return errs.Malformed("urls[%d]: url is required", i)
		}
		if u.RepeatCount < 1 {
			return errs.Malformed("urls[%d]: repeat_count must be at least 1, got %d", i, u.RepeatCount)
		}
	}
	if maxSamples > 0 && r.TotalSamples() > maxSamples {
		return errs.Malformed("batch expands to %d samples, limit is %d", r.TotalSamples(), maxSamples)
	}
	return nil
}

// TaskStatus is the lifecycle state of a batch
type TaskStatus string

const (
	TaskProcessing TaskStatus = "processing"
	TaskDone       TaskStatus = "done"
)

// Task is the pollable state of one batch
type Task struct {
	ID               string     `json:"id"`
	Status           TaskStatus `json:"status"`
	Progress         int        `json:"progress"`
	TotalSamples     int        `json:"total_samples"`
	CompletedSamples int        `json:"completed_samples"`
	Result           ResultMap  `json:"result"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ResponseTimePoint is one entry of the flattened response time list
type ResponseTimePoint struct {
	URL        string  `json:"url"`
	LoadTimeMS float64 `json:"load_time_ms"`
}

// ResponseTimeStats summarizes load times across all valid samples
type ResponseTimeStats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Total int     `json:"total"`
}

// HTMLStats summarizes HTML source size over first repetitions
type HTMLStats struct {
	URLCount  int     `json:"url_count"`
	MeanLines float64 `json:"mean_lines"`
	MinLines  int     `json:"min_lines"`
	MaxLines  int     `json:"max_lines"`
	MeanChars float64 `json:"mean_chars"`
	MinChars  int     `json:"min_chars"`
	MaxChars  int     `json:"max_chars"`
}

// AggregatedView is the chart-ready reduction of a result map
type AggregatedView struct {
	ResponseTimes     []float64         `json:"response_times"`
	URLs              []string          `json:"urls"`
	SpeedRatings      []SpeedRating     `json:"speed_ratings"`
	SizesKB           []float64         `json:"sizes_kb"`
	HTMLLines         []int             `json:"html_lines"`
	HTMLChars         []int             `json:"html_chars"`
	HTMLURLs          []string          `json:"html_urls"`
	Statistics        ResponseTimeStats `json:"statistics"`
	HTMLStats         *HTMLStats        `json:"html_stats,omitempty"`
	SpeedDistribution map[string]int    `json:"speed_distribution"`
	SizeDistribution  map[string]int    `json:"size_distribution"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}
