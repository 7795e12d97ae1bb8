package cron

import (
	"context"
	"sync"
	"time"
)

// JobStatus represents the last known state of a job.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

// Job defines a scheduled background task.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

// jobState holds runtime state for a registered job.
type jobState struct {
	Job
	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt *time.Time
}

// Scheduler manages a collection of named periodic jobs.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]*jobState)}
}

// Register adds a job to the scheduler. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{Job: job, status: StatusIdle}
}

// Start launches all registered jobs in background goroutines. Each job
// ticks at its own interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, state := range s.jobs {
		go s.runLoop(ctx, state)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, state *jobState) {
	ticker := time.NewTicker(state.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, state)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, state *jobState) {
	state.mu.Lock()
	if state.status == StatusRunning {
		state.mu.Unlock()
		return
	}
	state.status = StatusRunning
	state.mu.Unlock()

	err := state.Fn(ctx)
	now := time.Now()

	state.mu.Lock()
	state.lastRunAt = &now
	if err != nil {
		state.status = StatusReject
		state.message = err.Error()
	} else {
		state.status = StatusFulfill
		state.message = ""
	}
	state.mu.Unlock()
}
