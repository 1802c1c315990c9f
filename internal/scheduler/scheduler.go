package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Refresher is the part of climate.Service the scheduler drives.
type Refresher interface {
	RefreshToday(ctx context.Context) error
	RefreshRecommendations(ctx context.Context) error
}

// Scheduler periodically refreshes the cached scan results.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	log       *zap.SugaredLogger

	interval          time.Duration
	recommendationsAt string
	jobTimeout        time.Duration
}

// New creates a new Scheduler. recommendationsAt is a daily "HH:MM" UTC time.
func New(service Refresher, interval time.Duration, recommendationsAt string, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		scheduler:         gocron.NewScheduler(time.UTC),
		service:           service,
		log:               log,
		interval:          interval,
		recommendationsAt: recommendationsAt,
		jobTimeout:        2 * time.Hour,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
// Today's extremes are computed immediately; recommendations wait for
// their daily slot.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Tag("extremes").Do(s.runExtremes)
	if err != nil {
		return err
	}

	_, err = s.scheduler.Every(1).Day().At(s.recommendationsAt).WaitForSchedule().
		SingletonMode().Tag("recommendations").Do(s.runRecommendations)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runExtremes() {
	s.log.Info("scheduler: refreshing today's extremes")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if err := s.service.RefreshToday(ctx); err != nil {
		s.log.Warnw("scheduler: extremes refresh failed", "error", err)
		return
	}
	s.log.Info("scheduler: extremes refreshed")
}

func (s *Scheduler) runRecommendations() {
	s.log.Info("scheduler: refreshing recommendations")
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	if err := s.service.RefreshRecommendations(ctx); err != nil {
		s.log.Warnw("scheduler: recommendations refresh failed", "error", err)
		return
	}
	s.log.Info("scheduler: recommendations refreshed")
}
