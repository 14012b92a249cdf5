package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/descomplaca/internal/clock"
	obscontext "github.com/smallbiznis/descomplaca/internal/observability/context"
	obslogger "github.com/smallbiznis/descomplaca/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/descomplaca/internal/observability/metrics"
	"go.uber.org/zap"
)

var ErrInvalidJob = errors.New("invalid_job")

const defaultRunInterval = time.Minute

const (
	outcomeOK      = "ok"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

// Job is a unit of background work run at most once per Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	log      *zap.Logger
	clock    clock.Clock
	metrics  *obsmetrics.MarketplaceMetrics
	interval time.Duration

	mu      sync.Mutex
	jobs    []Job
	lastRun map[string]time.Time
}

func New(interval time.Duration, clk clock.Clock, log *zap.Logger, metrics *obsmetrics.MarketplaceMetrics) *Scheduler {
	if interval <= 0 {
		interval = defaultRunInterval
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		log:      log.Named("scheduler").With(zap.String("component", "scheduler")),
		clock:    clk,
		metrics:  metrics,
		interval: interval,
		lastRun:  make(map[string]time.Time),
	}
}

// Register adds a job. The timeout defaults to the job interval.
func (s *Scheduler) Register(job Job) error {
	job.Name = strings.TrimSpace(job.Name)
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return ErrInvalidJob
	}
	if job.Timeout <= 0 {
		job.Timeout = job.Interval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.jobs {
		if existing.Name == job.Name {
			return fmt.Errorf("%w: duplicate job %s", ErrInvalidJob, job.Name)
		}
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.Name)
	}
	return names
}

func (s *Scheduler) runJob(parent context.Context, job Job) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, job.Timeout)
	defer cancel()

	ctx = obscontext.WithActor(ctx, "scheduler")
	log := obslogger.WithContext(ctx, s.log).With(zap.String("job", job.Name))
	log.Debug("scheduler.job.start", zap.Duration("timeout", job.Timeout))

	err := job.Run(ctx)
	elapsed := s.clock.Now().Sub(start)
	if err == nil {
		s.metrics.ObserveJob(job.Name, outcomeOK, elapsed)
		log.Info("scheduler.job.finish", zap.Int64("duration_ms", elapsed.Milliseconds()))
		return nil
	}

	// deadline is a soft timeout, the next tick retries
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.metrics.ObserveJob(job.Name, outcomeTimeout, elapsed)
		log.Warn("job timed out",
			zap.Duration("timeout", job.Timeout),
			zap.Error(err),
		)
		return nil
	}

	s.metrics.ObserveJob(job.Name, outcomeError, elapsed)
	return fmt.Errorf("%s: %w", job.Name, err)
}

// RunOnce runs every job whose interval has elapsed since its last attempt.
func (s *Scheduler) RunOnce(parent context.Context) error {
	now := s.clock.Now()

	s.mu.Lock()
	due := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		last, ok := s.lastRun[job.Name]
		if ok && now.Sub(last) < job.Interval {
			continue
		}
		s.lastRun[job.Name] = now
		due = append(due, job)
	}
	s.mu.Unlock()

	var err error
	for _, job := range due {
		if parent.Err() != nil {
			break
		}
		err = errors.Join(err, s.runJob(parent, job))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
