package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"webPageProbeGO/internal/config"
	"webPageProbeGO/internal/errs"
)

// maxResponseBody bounds how much of a single page is read into memory
const maxResponseBody = 32 << 20

// Response is the raw outcome of one successful GET
type Response struct {
	StatusCode    int
	Header        http.Header
	FinalURL      *url.URL
	RedirectCount int
	Body          []byte
	Elapsed       time.Duration
}

// PageFetcher performs a single attempt against a URL
type PageFetcher interface {
	Fetch(ctx context.Context, urlStr string) (*Response, error)
}

// Fetcher implements PageFetcher with a shared http.Client
type Fetcher struct {
	client  *http.Client
	config  config.AnalyzerConfig
	logger  *slog.Logger
	memory  *semaphore.Weighted
	reserve int64
}

// NewFetcher creates a Fetcher whose total in-flight body memory is bounded by cfg.MaxMemoryMB
func NewFetcher(cfg config.AnalyzerConfig, logger *slog.Logger) *Fetcher {
	budget := cfg.MaxMemoryMB * 1024 * 1024
	if budget <= 0 {
		budget = maxResponseBody
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config:  cfg,
		logger:  logger,
		memory:  semaphore.NewWeighted(budget),
		reserve: min(int64(maxResponseBody), budget),
	}
}

// Fetch retrieves urlStr once. Failures are *errs.AppError of kind Timeout or Network.
// Waiting for the memory budget is not part of Elapsed and does not count
// against the request timeout.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*Response, error) {
	// Ensure scheme is set
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.Network, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedURL.String(), nil)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.Network, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	// Reserve the largest body LimitReader can return
	if err := f.memory.Acquire(ctx, f.reserve); err != nil {
		return nil, &errs.AppError{Kind: errs.Network, Message: "resource acquisition failed", Cause: err}
	}
	defer f.memory.Release(f.reserve)

	start := time.Now()
	f.logger.Debug("Sending request", "url", urlStr)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, f.classify(fmt.Errorf("failed to read response body: %w", err))
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		FinalURL:      resp.Request.URL,
		RedirectCount: redirectCount(resp),
		Body:          body,
		Elapsed:       time.Since(start),
	}, nil
}

// classify collapses a transport error into a Timeout or Network failure
func (f *Fetcher) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &errs.AppError{Kind: errs.Timeout, Message: TimeoutMessage(f.config.RequestTimeout), Cause: err}
	}
	return &errs.AppError{Kind: errs.Network, Message: "failed to fetch URL", Cause: err}
}

// TimeoutMessage is the error text carried by timeout sentinel samples
func TimeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Timeout - request took longer than %g seconds", timeout.Seconds())
}

// redirectCount walks the chain of responses that led to resp
func redirectCount(resp *http.Response) int {
	count := 0
	for r := resp.Request; r != nil && r.Response != nil; r = r.Response.Request {
		count++
	}
	return count
}
