package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"rentbook/internal/app/commands"
)

var ErrUnknownJob = errors.New("schedule: unknown job")

// DefaultJobTimeout bounds a single run.
const DefaultJobTimeout = time.Minute

// Job dispatches Command on the bus whenever Spec fires.
type Job struct {
	Name    string
	Spec    string
	Command commands.Command
}

// Scheduler runs maintenance commands on cron schedules. Overlapping runs of
// the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	bus     commands.Bus
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]Job
}

func New(bus commands.Bus, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		bus:     bus,
		logger:  logger,
		timeout: DefaultJobTimeout,
		ctx:     context.Background(),
		jobs:    make(map[string]Job),
	}
}

// Register adds a job. An empty spec disables it.
func (s *Scheduler) Register(job Job) error {
	if job.Spec == "" {
		s.logger.Info("scheduled job disabled", slog.String("job", job.Name))
		return nil
	}
	if job.Command == nil {
		return fmt.Errorf("schedule: job %q has no command", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { _ = s.run(s.baseContext(), job) }); err != nil {
		return fmt.Errorf("schedule: job %q: %w", job.Name, err)
	}
	s.mu.Lock()
	s.jobs[job.Name] = job
	s.mu.Unlock()
	s.logger.Info("scheduled job", slog.String("job", job.Name), slog.String("spec", job.Spec))
	return nil
}

// RunNow runs a registered job immediately.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, job)
}

// Start runs jobs until ctx is canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
}

// Stop halts the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	result, err := s.bus.Dispatch(ctx, job.Command)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed",
			slog.String("job", job.Name),
			slog.Any("err", err),
		)
		return err
	}
	s.logger.InfoContext(ctx, "scheduled job done",
		slog.String("job", job.Name),
		slog.Any("result", result),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
