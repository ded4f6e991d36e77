package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTime is the wall-clock time a daily job fires
type DailyTime struct {
	Hour   int
	Minute int
}

// ParseDailyCron accepts the daily subset of cron syntax: "M H * * *".
func ParseDailyCron(expr string) (DailyTime, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return DailyTime{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
	}
	for _, f := range fields[2:] {
		if f != "*" {
			return DailyTime{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, expr)
		}
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return DailyTime{}, fmt.Errorf("%w: minute %q", ErrInvalidSchedule, fields[0])
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return DailyTime{}, fmt.Errorf("%w: hour %q", ErrInvalidSchedule, fields[1])
	}
	return DailyTime{Hour: hour, Minute: minute}, nil
}

// CronTrigger submits a set of jobs once per day at a fixed time
type CronTrigger struct {
	at            DailyTime
	jobNames      []string
	scheduler     *Scheduler
	checkInterval time.Duration
	logger        *zap.Logger
	now           func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
	lastRunDate string
}

// NewCronTrigger fires jobNames on scheduler every day at `at`
func NewCronTrigger(at DailyTime, scheduler *Scheduler, logger *zap.Logger, jobNames ...string) *CronTrigger {
	return &CronTrigger{
		at:            at,
		jobNames:      jobNames,
		scheduler:     scheduler,
		checkInterval: 30 * time.Second,
		logger:        logger,
		now:           time.Now,
	}
}

// Start begins polling the clock
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	c.running = true

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.loop(ctx)

	c.logger.Info("Daily trigger started",
		zap.Int("hour", c.at.Hour),
		zap.Int("minute", c.at.Minute),
		zap.Strings("jobs", c.jobNames),
	)
	return nil
}

// Stop ends polling
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	c.cancel()
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) loop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick submits the jobs when the clock has reached today's slot and they
// have not run yet today. Reaching the slot late (after a restart) still
// fires once.
func (c *CronTrigger) tick() bool {
	now := c.now()
	today := now.Format(time.DateOnly)
	slot := time.Date(now.Year(), now.Month(), now.Day(), c.at.Hour, c.at.Minute, 0, 0, now.Location())

	c.mu.Lock()
	if c.lastRunDate == today || now.Before(slot) {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = today
	c.mu.Unlock()

	for _, name := range c.jobNames {
		if _, err := c.scheduler.Submit(name); err != nil {
			c.logger.Error("Failed to submit daily job", zap.String("job", name), zap.Error(err))
		}
	}
	return true
}
