package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurger drops sessions that can no longer authenticate.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, before time.Time) (int64, error)
}

// GaugeRefresher recomputes the unpaid commission gauge.
type GaugeRefresher interface {
	RefreshUnpaidGauge(ctx context.Context) error
}

type Specs struct {
	SessionPurge string
	UnpaidGauge  string
}

type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPurger
	gauge    GaugeRefresher
	logger   *zap.Logger
	timeout  time.Duration
}

func NewScheduler(sessions SessionPurger, gauge GaugeRefresher, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		sessions: sessions,
		gauge:    gauge,
		logger:   logger,
		timeout:  time.Minute,
	}
}

// Register adds the maintenance jobs. An empty spec disables that job.
func (s *Scheduler) Register(specs Specs) error {
	if specs.SessionPurge != "" {
		if _, err := s.cron.AddFunc(specs.SessionPurge, s.PurgeSessions); err != nil {
			return fmt.Errorf("schedule session purge %q: %w", specs.SessionPurge, err)
		}
	}
	if specs.UnpaidGauge != "" {
		if _, err := s.cron.AddFunc(specs.UnpaidGauge, s.RefreshUnpaid); err != nil {
			return fmt.Errorf("schedule unpaid gauge %q: %w", specs.UnpaidGauge, err)
		}
	}
	return nil
}

func (s *Scheduler) PurgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sessions.PurgeSessions(ctx, time.Now())
	if err != nil {
		s.logger.Error("session purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", n))
	}
}

func (s *Scheduler) RefreshUnpaid() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.gauge.RefreshUnpaidGauge(ctx); err != nil {
		s.logger.Error("unpaid commission gauge refresh failed", zap.Error(err))
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.RefreshUnpaid()

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	return nil
}
