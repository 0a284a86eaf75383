// Package scheduler runs periodic background jobs such as retraining the
// scoring model and the template library from the corpus.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/hooklab/content-intelligence-service/internal/logging"
)

const jobTimeout = 30 * time.Minute

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New creates a scheduler running in loc. A nil loc means UTC.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		log:  logging.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]cron.EntryID),
	}
}

// AddJob adds a job with a cron schedule such as "0 * * * *" or "@every 1h"
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(name, job); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("job failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = entryID
	s.mu.Unlock()

	s.log.Info().Str("job", name).Str("schedule", schedule).Msg("job added")
	return nil
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.log.Info().Str("job", name).Msg("job removed")
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.log.Info().Msg("starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info().Msg("stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes job immediately with the standard job timeout
func (s *Scheduler) RunNow(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	s.log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("job completed")
	return nil
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"nextRun"`
	LastRun time.Time `json:"lastRun"`
}

// ListJobs returns info about scheduled jobs
func (s *Scheduler) ListJobs() []JobInfo {
	entries := s.cron.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}
	return infos
}
