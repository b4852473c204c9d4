// Package aggregator reduces completed result maps into chart-ready views.
package aggregator

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"webPageProbeGO/internal/errs"
	"webPageProbeGO/internal/models"
)

// ErrNoValidData is returned when no sample carries a usable load time
var ErrNoValidData = errors.New("no valid data to process")

// Size bucket labels, upper bounds inclusive
const (
	Bucket0To100     = "0-100KB"
	Bucket100To500   = "100-500KB"
	Bucket500To1000  = "500-1000KB"
	Bucket1000OrMore = "1000+KB"
)

// Aggregate builds the AggregatedView of results. URLs are visited in sorted
// order and samples in stored order, so equal maps give equal views.
func Aggregate(results models.ResultMap) (*models.AggregatedView, error) {
	view := &models.AggregatedView{
		ResponseTimes:     []float64{},
		URLs:              []string{},
		SpeedRatings:      []models.SpeedRating{},
		SizesKB:           []float64{},
		HTMLLines:         []int{},
		HTMLChars:         []int{},
		HTMLURLs:          []string{},
		SpeedDistribution: map[string]int{},
		SizeDistribution: map[string]int{
			Bucket0To100:     0,
			Bucket100To500:   0,
			Bucket500To1000:  0,
			Bucket1000OrMore: 0,
		},
	}

	for _, url := range sortedURLs(results) {
		for _, sample := range results[url] {
			if sample.Error == nil && sample.LoadTimeMS != 0 {
				view.ResponseTimes = append(view.ResponseTimes, sample.LoadTimeMS)
				view.URLs = append(view.URLs, url)
				view.SpeedRatings = append(view.SpeedRatings, sample.SpeedRating)
				view.SizesKB = append(view.SizesKB, sample.SizeKB)

				if sample.SpeedRating != "" {
					view.SpeedDistribution[string(sample.SpeedRating)]++
				}
				view.SizeDistribution[SizeBucket(sample.SizeKB)]++
			}

			if sample.Repetition == 0 && sample.HTMLLineCount > 0 {
				view.HTMLLines = append(view.HTMLLines, sample.HTMLLineCount)
				view.HTMLChars = append(view.HTMLChars, sample.HTMLCharCount)
				view.HTMLURLs = append(view.HTMLURLs, url)
			}
		}
	}

	if len(view.ResponseTimes) == 0 {
		return nil, ErrNoValidData
	}

	times := stats.Float64Data(view.ResponseTimes)
	mean, _ := times.Mean()
	lo, _ := times.Min()
	hi, _ := times.Max()
	mean, _ = stats.Round(mean, 2)
	view.Statistics = models.ResponseTimeStats{
		Mean:  mean,
		Min:   lo,
		Max:   hi,
		Total: len(view.ResponseTimes),
	}

	if len(view.HTMLLines) > 0 {
		view.HTMLStats = htmlStats(view.HTMLLines, view.HTMLChars)
	}

	return view, nil
}

// SizeBucket returns the distribution bucket for a page size in KB
func SizeBucket(sizeKB float64) string {
	switch {
	case sizeKB <= 100:
		return Bucket0To100
	case sizeKB <= 500:
		return Bucket100To500
	case sizeKB <= 1000:
		return Bucket500To1000
	default:
		return Bucket1000OrMore
	}
}

func htmlStats(lines, chars []int) *models.HTMLStats {
	l := stats.LoadRawData(lines)
	c := stats.LoadRawData(chars)

	meanLines, _ := l.Mean()
	meanChars, _ := c.Mean()
	meanLines, _ = stats.Round(meanLines, 0)
	meanChars, _ = stats.Round(meanChars, 0)
	minLines, _ := l.Min()
	maxLines, _ := l.Max()
	minChars, _ := c.Min()
	maxChars, _ := c.Max()

	return &models.HTMLStats{
		URLCount:  len(lines),
		MeanLines: meanLines,
		MinLines:  int(minLines),
		MaxLines:  int(maxLines),
		MeanChars: meanChars,
		MinChars:  int(minChars),
		MaxChars:  int(maxChars),
	}
}

// ExtractResponseTimes flattens results into one {url, load_time_ms} entry per sample
func ExtractResponseTimes(results models.ResultMap) []models.ResponseTimePoint {
	points := []models.ResponseTimePoint{}
	for _, url := range sortedURLs(results) {
		for _, sample := range results[url] {
			points = append(points, models.ResponseTimePoint{URL: url, LoadTimeMS: sample.LoadTimeMS})
		}
	}
	return points
}

// DecodeResultMap reads an exported result map, rejecting anything that is
// not an object of sample arrays keyed by non-empty URLs.
func DecodeResultMap(r io.Reader) (models.ResultMap, error) {
	var results models.ResultMap
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, &errs.AppError{Kind: errs.MalformedInput, Message: "invalid JSON document", Cause: err}
	}
	if results == nil {
		return nil, errs.Malformed("result document must be an object keyed by URL")
	}
	for url := range results {
		if strings.TrimSpace(url) == "" {
			return nil, errs.Malformed("result document contains an empty URL key")
		}
	}
	return results, nil
}

func sortedURLs(results models.ResultMap) []string {
	urls := make([]string, 0, len(results))
	for url := range results {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}
