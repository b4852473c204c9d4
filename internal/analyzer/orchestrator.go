package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"webPageProbeGO/internal/config"
	"webPageProbeGO/internal/models"
)

// TaskStore is the serialized state the orchestrator publishes progress into
type TaskStore interface {
	Create(ctx context.Context, total int) (*models.Task, error)
	RecordSample(ctx context.Context, id, url string, sample models.SampleResult) (models.TaskStatus, int, error)
}

// Recorder observes batch activity, e.g. for metrics export
type Recorder interface {
	TaskStarted()
	TaskFinished(elapsed time.Duration)
	SampleRecorded(rating models.SpeedRating, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) TaskStarted()                                    {}
func (noopRecorder) TaskFinished(time.Duration)                      {}
func (noopRecorder) SampleRecorded(models.SpeedRating, time.Duration) {}

// Runner produces one sample for a URL
type Runner interface {
	Run(ctx context.Context, urlStr string, repetition int) models.SampleResult
}

// workItem is one sample to take, tagged with its submission index within its URL
type workItem struct {
	URL        string
	Repetition int
}

// Job is the handle returned by Submit
type Job struct {
	ID    string
	Total int
	done  chan struct{}
}

// Done is closed once every sample of the job has been recorded
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx ends
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Orchestrator fans batches out over a bounded worker pool
type Orchestrator struct {
	runner   Runner
	store    TaskStore
	config   config.AnalyzerConfig
	logger   *slog.Logger
	limiter  *rate.Limiter
	workers  int
	recorder Recorder
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRecorder attaches a Recorder
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// NewOrchestrator creates an Orchestrator. A non-positive RequestsPerSecond disables rate limiting.
func NewOrchestrator(runner Runner, store TaskStore, cfg config.AnalyzerConfig, logger *slog.Logger, opts ...Option) *Orchestrator {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	o := &Orchestrator{
		runner:   runner,
		store:    store,
		config:   cfg,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, 1),
		workers:  workers,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit validates and registers the batch, then runs it in the background.
// The returned job is not cancelled when ctx ends.
func (o *Orchestrator) Submit(ctx context.Context, req models.AnalysisRequest) (*Job, error) {
	if err := req.Validate(o.config.MaxSamplesPerBatch); err != nil {
		return nil, err
	}

	items := expand(req)
	task, err := o.store.Create(ctx, len(items))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	job := &Job{ID: task.ID, Total: len(items), done: make(chan struct{})}
	o.logger.Info("Batch submitted", "task_id", job.ID, "urls", len(req.URLs), "samples", job.Total)

	go o.run(context.WithoutCancel(ctx), job, items)
	return job, nil
}

// run owns the worker pool for one job
func (o *Orchestrator) run(ctx context.Context, job *Job, items []workItem) {
	defer close(job.done)

	start := time.Now()
	o.recorder.TaskStarted()

	var g errgroup.Group
	g.SetLimit(o.workers)

	for _, item := range items {
		g.Go(func() error {
			o.process(ctx, job.ID, item)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	o.recorder.TaskFinished(elapsed)
	o.logger.Info("Batch finished", "task_id", job.ID, "samples", job.Total, "elapsed", elapsed.String())
}

// process takes one sample and publishes it; failures never escape
func (o *Orchestrator) process(ctx context.Context, taskID string, item workItem) {
	sampleStart := time.Now()

	var sample models.SampleResult
	if err := o.limiter.Wait(ctx); err != nil {
		sample = errorSample(fmt.Sprintf("rate limiter error: %v", err), item.Repetition)
	} else {
		sample = o.runner.Run(ctx, item.URL, item.Repetition)
	}
	o.recorder.SampleRecorded(sample.SpeedRating, time.Since(sampleStart))

	status, progress, err := o.store.RecordSample(ctx, taskID, item.URL, sample)
	if err != nil {
		o.logger.Error("Failed to record sample", "task_id", taskID, "url", item.URL, "error", err)
		return
	}
	o.logger.Debug("Progress", "task_id", taskID, "status", status, "progress", progress)
}

// expand turns the batch into one work item per repetition, in submission order.
// A URL listed twice continues its repetition numbering.
func expand(req models.AnalysisRequest) []workItem {
	items := make([]workItem, 0, req.TotalSamples())
	next := make(map[string]int, len(req.URLs))
	for _, u := range req.URLs {
		for i := 0; i < u.RepeatCount; i++ {
			items = append(items, workItem{URL: u.URL, Repetition: next[u.URL]})
			next[u.URL]++
		}
	}
	return items
}
