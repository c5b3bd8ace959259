package reminder

import (
	"log/slog"
	"sync"
	"time"
)

// Job is a deferred unit of work.
type Job func()

// OnceScheduler registers a job to run once at or after a target time.
// Injected into consumers so the process-wide instance stays explicit
// instead of hiding behind package globals.
type OnceScheduler interface {
	ScheduleOnce(at time.Time, job Job)
}

// Scheduler runs one-shot deferred jobs on a bounded worker pool. Jobs are
// ephemeral: pending work is lost on process exit. Registration is
// thread-safe; each job fires at most once, at or after its target time,
// and a panic in one job never affects others.
type Scheduler struct {
	log  *slog.Logger
	jobs chan Job
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	pending int
}

var _ OnceScheduler = (*Scheduler)(nil)

// NewScheduler starts a pool of workers draining the job queue.
func NewScheduler(workers int, log *slog.Logger) *Scheduler {
	if workers <= 0 {
		workers = 10
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Scheduler{
		log:  log,
		jobs: make(chan Job),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// ScheduleOnce registers job to run at the given time. A target at or
// before now fires as soon as a worker is free.
func (s *Scheduler) ScheduleOnce(at time.Time, job Job) {
	if job == nil {
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.log.Warn("scheduler stopped, dropping job", "fire_at", at)
		return
	}
	s.pending++
	s.mu.Unlock()

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case s.jobs <- job:
		case <-s.quit:
			s.finish()
		}
	})
}

// Pending reports jobs registered but not yet finished.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Stop prevents new registrations and shuts the workers down. Jobs whose
// timers have not fired yet are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.quit)
	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			s.run(job)
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) run(job Job) {
	defer s.finish()
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("scheduled job panicked", "panic", p)
		}
	}()
	job()
}

func (s *Scheduler) finish() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
}
