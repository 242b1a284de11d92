// Package scheduler runs the training pipeline on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/pipeline"
)

// Trainer runs one training pass
type Trainer interface {
	Run(ctx context.Context) (*pipeline.Manifest, error)
}

// Scheduler manages scheduled retraining jobs
type Scheduler struct {
	cron            *cron.Cron
	trainer         Trainer
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	runTimeout      time.Duration
	gracefulTimeout time.Duration
	onSuccess       func(*pipeline.Manifest)
}

// NewScheduler creates a new scheduler. Overlapping runs are skipped.
func NewScheduler(trainer Trainer, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logger.Discard()
	}
	entry := log.WithField("component", "scheduler")

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(entry))),
		),
		trainer:         trainer,
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      4 * time.Hour,
		gracefulTimeout: 30 * time.Second,
	}
}

// OnSuccess registers a callback invoked after every successful run
func (s *Scheduler) OnSuccess(fn func(*pipeline.Manifest)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSuccess = fn
}

// RunOnce runs the trainer immediately
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled retraining")
	start := time.Now()

	manifest, err := s.trainer.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled retraining failed")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":        manifest.RunID,
		"model_version": manifest.ModelVersion,
		"duration":      time.Since(start).String(),
	}).Info("Scheduled retraining completed")

	s.mu.RLock()
	fn := s.onSuccess
	s.mu.RUnlock()
	if fn != nil {
		fn(manifest)
	}
	return nil
}

// ScheduleRetrain schedules the pipeline on a cron expression
func (s *Scheduler) ScheduleRetrain(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		// failures are logged in RunOnce and retried on the next tick
		_ = s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Infof("Scheduled retraining job with cron expression: %s", cronExpression)

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// ErrStopTimeout is returned when a running job outlives the graceful timeout
var ErrStopTimeout = errors.New("timed out waiting for running jobs")

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return ErrStopTimeout
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
