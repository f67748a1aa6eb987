package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a unit of scheduled work. Its error is logged, never retried.
type Task func(ctx context.Context) error

// Scheduler runs registered tasks on cron specs evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	entries map[string]cron.EntryID
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
	}
}

// Register adds a task under a standard five-field cron spec.
func (s *Scheduler) Register(spec, name string, task Task) error {
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}

	log := s.log.With(zap.String("task", name))
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		log.Info("Scheduled task started")
		if err := task(s.ctx); err != nil {
			log.Error("Scheduled task failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
			return
		}
		log.Info("Scheduled task finished", zap.Duration("duration", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for task %q: %w", spec, name, err)
	}

	s.entries[name] = id
	s.log.Info("Task scheduled", zap.String("task", name), zap.String("spec", spec))
	return nil
}

// Next returns the next activation time of a registered task after t, in the
// scheduler's location.
func (s *Scheduler) Next(name string, t time.Time) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(t.In(s.cron.Location())), true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started", zap.Int("tasks", len(s.entries)))
}

// Stop prevents new runs and waits for running tasks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}
