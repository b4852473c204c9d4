package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"webPageProbeGO/internal/models"
)

var (
	// ErrTaskNotFound is returned for unknown or evicted task ids
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskComplete is returned when a sample arrives for a finished task
	ErrTaskComplete = errors.New("task already complete")
)

// TaskRepository defines operations on batch task state
type TaskRepository interface {
	Create(ctx context.Context, total int) (*models.Task, error)
	RecordSample(ctx context.Context, id, url string, sample models.SampleResult) (models.TaskStatus, int, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	Sweep(now time.Time) int
}

// MemoryTaskStore keeps tasks in process memory. All mutations are serialized by mu.
// Finished tasks are evicted once they are older than ttl; a zero ttl keeps them forever.
type MemoryTaskStore struct {
	mu     sync.RWMutex
	tasks  map[string]*models.Task
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewMemoryTaskStore creates an empty store
func NewMemoryTaskStore(ttl time.Duration, logger *slog.Logger) *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks:  make(map[string]*models.Task),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a processing task expecting total samples
func (s *MemoryTaskStore) Create(_ context.Context, total int) (*models.Task, error) {
	if total < 1 {
		return nil, fmt.Errorf("task must expect at least one sample, got %d", total)
	}

	now := s.now()
	task := &models.Task{
		ID:           uuid.New().String(),
		Status:       models.TaskProcessing,
		TotalSamples: total,
		Result:       models.ResultMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	return snapshot(task), nil
}

// RecordSample appends a sample and recomputes progress. The update that
// records the last sample also marks the task done.
func (s *MemoryTaskStore) RecordSample(_ context.Context, id, url string, sample models.SampleResult) (models.TaskStatus, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return "", 0, ErrTaskNotFound
	}
	if task.Status == models.TaskDone {
		return task.Status, task.Progress, ErrTaskComplete
	}

	task.Result[url] = append(task.Result[url], sample)
	task.CompletedSamples++
	task.Progress = task.CompletedSamples * 100 / task.TotalSamples
	task.UpdatedAt = s.now()

	if task.CompletedSamples == task.TotalSamples {
		task.Status = models.TaskDone
		task.Progress = 100
	}

	return task.Status, task.Progress, nil
}

// Get returns a copy of the task's current state
func (s *MemoryTaskStore) Get(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || s.expired(task, s.now()) {
		return nil, ErrTaskNotFound
	}
	return snapshot(task), nil
}

// Sweep evicts expired tasks and returns how many were removed
func (s *MemoryTaskStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, task := range s.tasks {
		if s.expired(task, now) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is cancelled
func (s *MemoryTaskStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Info("Evicted finished tasks", "count", n)
			}
		}
	}
}

// Len returns the number of retained tasks
func (s *MemoryTaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *MemoryTaskStore) expired(task *models.Task, now time.Time) bool {
	return s.ttl > 0 && task.Status == models.TaskDone && now.Sub(task.UpdatedAt) > s.ttl
}

func snapshot(task *models.Task) *models.Task {
	cp := *task
	cp.Result = task.Result.Clone()
	return &cp
}
