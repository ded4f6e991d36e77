// Package scheduler runs background maintenance jobs on a small worker pool.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medrent/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the body of a registered job
type JobFunc func(ctx context.Context) error

// Job is one execution of a registered job
type Job struct {
	ID          uuid.UUID
	Name        string
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

// NewJob creates a pending job execution
func NewJob(name string, maxRetries int) *Job {
	return &Job{ID: uuid.New(), Name: name, Status: JobStatusPending, MaxRetries: maxRetries}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

// ShouldRetry reports whether a failed job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

func (j *Job) scheduleRetry(delay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	next := time.Now().Add(delay)
	j.NextRetryAt = &next
	j.Error = ""
}

// Config holds worker pool settings
type Config struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultConfig returns default worker pool settings
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Scheduler executes submitted jobs on a fixed pool of workers
type Scheduler struct {
	config Config
	logger *zap.Logger

	registry map[string]JobFunc
	jobs     chan *Job
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// OnFinish, when set, observes every terminal job state
	OnFinish func(*Job)
}

// New creates a scheduler; call Register before Start
func New(config Config, logger *zap.Logger) *Scheduler {
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = 1
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	return &Scheduler{
		config:   config,
		logger:   logger,
		registry: make(map[string]JobFunc),
		jobs:     make(chan *Job, 32),
	}
}

// Register binds a job name to its body
func (s *Scheduler) Register(name string, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[name] = fn
}

// Start launches the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs and waits for workers until ctx expires
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a new execution of the named job
func (s *Scheduler) Submit(name string) (*Job, error) {
	s.mu.Lock()
	running := s.running
	_, known := s.registry[name]
	s.mu.Unlock()
	if !running {
		return nil, ErrSchedulerNotRunning
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	job := NewJob(name, s.config.RetryAttempts)
	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted", zap.String("job", name), zap.String("job_id", job.ID.String()))
		return job, nil
	default:
		return nil, ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.process(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job *Job, workerID int) {
	if job.NextRetryAt != nil {
		wait := time.Until(*job.NextRetryAt)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	s.mu.Lock()
	fn := s.registry[job.Name]
	s.mu.Unlock()

	job.start()
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job", job.Name),
		zap.String("job_id", job.ID.String()),
	)
	log.Info("Running job")

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	jobCtx, span := telemetry.StartSpan(jobCtx, "job."+job.Name,
		attribute.String("job_id", job.ID.String()),
		attribute.Int("retry_count", job.RetryCount),
	)
	err := fn(jobCtx)
	telemetry.RecordError(span, err)
	span.End()
	cancel()

	if err == nil {
		job.complete()
		log.Info("Job completed")
		s.finished(job)
		return
	}

	job.fail(err)
	log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))
	if !job.ShouldRetry() || ctx.Err() != nil {
		s.finished(job)
		return
	}
	job.scheduleRetry(s.config.RetryDelay)
	select {
	case s.jobs <- job:
	default:
		log.Warn("Failed to re-queue job for retry")
		s.finished(job)
	}
}

func (s *Scheduler) finished(job *Job) {
	if s.OnFinish != nil {
		s.OnFinish(job)
	}
}
