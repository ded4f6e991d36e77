package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when submitting to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrUnknownJob is returned when submitting a job name nobody registered
	ErrUnknownJob = errors.New("unknown job")

	// ErrInvalidSchedule is returned for cron expressions outside the daily form
	ErrInvalidSchedule = errors.New("invalid daily cron schedule")
)
