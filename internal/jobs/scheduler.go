package jobs

import (
	"fmt"

	"github.com/dvillanueva/loanpulse-api/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler fires recurring jobs on cron specs and hands them to the worker
// pool, so a slow run never blocks the cron loop.
type Scheduler struct {
	cron   *cron.Cron
	worker *Worker
}

// NewScheduler creates a scheduler backed by the given worker
func NewScheduler(worker *Worker) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		worker: worker,
	}
}

// Add registers a recurring job under a cron spec (robfig/cron format,
// including descriptors like @hourly)
func (s *Scheduler) Add(spec string, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		logger.Info(fmt.Sprintf("[Scheduler] Triggering %s", name))
		s.worker.Enqueue(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

// Start begins firing scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop; jobs already handed to the worker keep running
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
