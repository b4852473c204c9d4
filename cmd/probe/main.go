package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"webPageProbeGO/internal/aggregator"
	"webPageProbeGO/internal/analyzer"
	"webPageProbeGO/internal/config"
	"webPageProbeGO/internal/export"
	"webPageProbeGO/internal/models"
	"webPageProbeGO/internal/report"
	"webPageProbeGO/internal/repository"
)

type Options struct {
	URLs       []string `short:"u" long:"url" description:"URL to probe (repeatable)"`
	InputFile  string   `short:"i" long:"input-file" description:"File with one URL per line"`
	Repeat     int      `short:"r" long:"repeat" description:"Samples per URL" default:"3"`
	OutputFile string   `short:"o" long:"output-file" description:"Where to write the result map" default:"results.json"`
	TableFile  string   `long:"table-file" description:"Also write one row per sample; .csv or .xlsx picks the format"`
	Timeout    int      `short:"t" long:"timeout" description:"Timeout of each HTTP request (in seconds), overrides REQUEST_TIMEOUT"`
	NumWorkers int      `short:"n" long:"num-workers" description:"Number of workers, overrides MAX_WORKERS"`
	Debug      bool     `short:"d" long:"debug" description:"Enable debug logging"`
}

const pollInterval = 200 * time.Millisecond

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, report.Failure("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(opts Options) error {
	_ = godotenv.Load()

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if opts.Timeout > 0 {
		cfg.Analyzer.RequestTimeout = time.Duration(opts.Timeout) * time.Second
	}
	if opts.NumWorkers > 0 {
		cfg.Analyzer.MaxWorkers = opts.NumWorkers
	}

	urls := opts.URLs
	if opts.InputFile != "" {
		f, err := os.Open(opts.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		fromFile, err := readURLs(f)
		f.Close()
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	req := buildRequest(urls, opts.Repeat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewMemoryTaskStore(0, logger)
	fetcher := analyzer.NewFetcher(cfg.Analyzer, logger)
	runner := analyzer.NewSampleRunner(fetcher, cfg.Analyzer.RequestTimeout, logger)
	orchestrator := analyzer.NewOrchestrator(runner, store, cfg.Analyzer, logger)

	job, err := orchestrator.Submit(ctx, req)
	if err != nil {
		return err
	}

	task, err := track(ctx, store, job)
	if err != nil {
		return err
	}

	if err := writeResults(opts.OutputFile, task.Result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d samples to %s\n", task.CompletedSamples, opts.OutputFile)

	if opts.TableFile != "" {
		if err := writeTable(opts.TableFile, task.Result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote table to %s\n", opts.TableFile)
	}

	view, err := aggregator.Aggregate(task.Result)
	if errors.Is(err, aggregator.ErrNoValidData) {
		fmt.Println(report.Failure("No successful samples to summarize"))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(report.Summary(view))
	return nil
}

// track mirrors the task's progress on a terminal bar until the job finishes
func track(ctx context.Context, store *repository.MemoryTaskStore, job *analyzer.Job) (*models.Task, error) {
	p := mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(job.Total),
		mpb.PrependDecorators(
			decor.Name("probing", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
			decor.Percentage(decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncSpace), "done",
			),
		),
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			bar.Abort(false)
			p.Wait()
			return nil, ctx.Err()
		case <-job.Done():
		case <-ticker.C:
		}

		task, err := store.Get(ctx, job.ID)
		if err != nil {
			bar.Abort(false)
			p.Wait()
			return nil, fmt.Errorf("failed to read task: %w", err)
		}

		bar.EwmaSetCurrent(int64(task.CompletedSamples), time.Since(last))
		last = time.Now()

		if task.Status == models.TaskDone {
			p.Wait()
			return task, nil
		}
	}
}

// readURLs reads one URL per line, skipping blank lines and # comments
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}
	return urls, nil
}

func buildRequest(urls []string, repeat int) models.AnalysisRequest {
	req := models.AnalysisRequest{URLs: make([]models.URLRequest, 0, len(urls))}
	for _, u := range urls {
		req.URLs = append(req.URLs, models.URLRequest{URL: u, RepeatCount: repeat})
	}
	return req
}

func writeResults(path string, results models.ResultMap) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

func writeTable(path string, results models.ResultMap) error {
	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	if err := export.Write(f, format, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
