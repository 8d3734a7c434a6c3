package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       JobFunc
	// running is set while fn executes; ticks that arrive meanwhile are dropped.
	running atomic.Bool
}

// Scheduler runs interval jobs, one goroutine per job.
type Scheduler struct {
	log *zap.Logger

	mu      sync.Mutex
	jobs    []*job
	started bool

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{
		log:  log.Named("cron"),
		stop: make(chan struct{}),
	}
}

// AddJob registers fn to run every interval. Each run is bounded by the
// interval itself. Jobs added after Start only run through RunOnce.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &job{name: name, interval: interval, timeout: interval, fn: fn})
	s.log.Info("cron job registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	s.log.Info("cron scheduler started", zap.Int("job_count", len(s.jobs)))
}

// Stop cancels pending ticks and waits for in-flight runs. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.log.Info("cron scheduler stopped")
}

func (s *Scheduler) loop(j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.run(ctx, j)
		}
	}
}

// run executes j unless a previous run is still going.
func (s *Scheduler) run(ctx context.Context, j *job) error {
	if !j.running.CompareAndSwap(false, true) {
		s.log.Warn("cron job still running, tick skipped", zap.String("name", j.name))
		return nil
	}
	defer j.running.Store(false)

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	start := time.Now()
	err := j.fn(ctx)
	fields := []zap.Field{zap.String("name", j.name), zap.Duration("duration", time.Since(start))}
	if err != nil {
		s.log.Error("cron job failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("%s: %w", j.name, err)
	}
	s.log.Debug("cron job completed", fields...)
	return nil
}

// RunOnce runs every job immediately and returns the joined failures.
// Shutdown uses it for a final flush after Stop.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]*job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.run(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
