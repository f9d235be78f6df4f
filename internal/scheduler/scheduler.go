package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one periodic engine task.
type Job func(ctx context.Context)

// Scheduler runs the engine's periodic tasks on independent intervals.
// Each task is chained with SkipIfStillRunning, so cycle N+1 of a task
// starts only after cycle N completes, and with Recover, so a panicking
// cycle never kills the loop. Stopping the scheduler cancels all tasks.
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// New creates a scheduler.
func New(logger *zap.Logger) *Scheduler {
	cl := &cronLogger{logger: logger.Named("cron")}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger.Named("scheduler"),
		cron: cron.New(
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a named job on a fixed interval. Intervals below one second
// are rejected; cron's constant-delay schedule has second granularity.
func (s *Scheduler) Add(name string, interval time.Duration, job Job) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("interval for job %q must be at least 1s, got %s", name, interval)
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		job(s.ctx)
	}))

	s.logger.Info("Registered job",
		zap.String("name", name),
		zap.Duration("interval", interval))
	return id, nil
}

// Remove unregisters a job by its entry ID.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop cancels all tasks and waits for in-flight cycles to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
