package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Analyzer AnalyzerConfig
	Tasks    TaskConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// AnalyzerConfig holds page fetching and batch execution configuration
type AnalyzerConfig struct {
	RequestTimeout     time.Duration
	UserAgent          string
	MaxWorkers         int
	RequestsPerSecond  float64
	MaxMemoryMB        int64
	MaxSamplesPerBatch int
}

// TaskConfig holds task retention configuration
type TaskConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// DefaultUserAgent identifies the prober as a desktop browser
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// New creates a new Config with values from environment variables
func New() (*Config, error) {
	port := getEnv("PORT", "9090")
	readTimeout, err := strconv.Atoi(getEnv("READ_TIMEOUT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := strconv.Atoi(getEnv("WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := strconv.Atoi(getEnv("SHUTDOWN_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	maxUploadMB, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "32"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	requestTimeout, err := strconv.Atoi(getEnv("REQUEST_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	maxWorkers, err := strconv.Atoi(getEnv("MAX_WORKERS", strconv.Itoa(runtime.NumCPU())))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return nil, fmt.Errorf("invalid MAX_WORKERS: must be at least 1, got %d", maxWorkers)
	}

	rps, err := strconv.ParseFloat(getEnv("REQUESTS_PER_SECOND", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
	}

	maxMemoryMB, err := strconv.ParseInt(getEnv("MAX_MEMORY_MB", "1024"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_MEMORY_MB: %w", err)
	}

	maxSamples, err := strconv.Atoi(getEnv("MAX_SAMPLES_PER_BATCH", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SAMPLES_PER_BATCH: %w", err)
	}

	taskTTL, err := time.ParseDuration(getEnv("TASK_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TASK_TTL: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("TASK_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TASK_SWEEP_INTERVAL: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     time.Duration(readTimeout) * time.Second,
			WriteTimeout:    time.Duration(writeTimeout) * time.Second,
			ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
			MaxUploadBytes:  maxUploadMB << 20,
		},
		Analyzer: AnalyzerConfig{
			RequestTimeout:     time.Duration(requestTimeout) * time.Second,
			UserAgent:          getEnv("USER_AGENT", DefaultUserAgent),
			MaxWorkers:         maxWorkers,
			RequestsPerSecond:  rps,
			MaxMemoryMB:        maxMemoryMB,
			MaxSamplesPerBatch: maxSamples,
		},
		Tasks: TaskConfig{
			TTL:           taskTTL,
			SweepInterval: sweepInterval,
		},
	}, nil
}

// DefaultAnalyzerConfig returns the analyzer settings used when no environment is present
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		RequestTimeout:     30 * time.Second,
		UserAgent:          DefaultUserAgent,
		MaxWorkers:         runtime.NumCPU(),
		RequestsPerSecond:  20,
		MaxMemoryMB:        1024,
		MaxSamplesPerBatch: 1000,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
