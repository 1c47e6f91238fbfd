// Package scheduler runs periodic maintenance jobs inside serve.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
	"github.com/eslsoft/vocengage/internal/usecase"
)

const recomputeTimeout = time.Hour

// Recomputer rebuilds every user's stats from session history.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (usecase.RecomputeSummary, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	recomputer Recomputer
	cron       string
	logger     logrus.FieldLogger
}

// New creates a scheduler running in the engagement time zone.
func New(cfg *config.Config, recomputer Recomputer, logger *logrus.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		recomputer: recomputer,
		cron:       cfg.Engagement.RecomputeCron,
		logger:     logger,
	}, nil
}

// Start registers the configured jobs and runs them in the background. Without a cron
// expression nothing is scheduled.
func (s *Scheduler) Start() error {
	if s.cron == "" {
		s.logger.Info("scheduled recompute disabled")
		return nil
	}
	if _, err := s.scheduler.Cron(s.cron).Do(s.recomputeAll); err != nil {
		return fmt.Errorf("schedule recompute %q: %w", s.cron, err)
	}
	s.scheduler.StartAsync()
	s.logger.WithField("cron", s.cron).Info("scheduled recompute enabled")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) recomputeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), recomputeTimeout)
	defer cancel()

	summary, err := s.recomputer.RecomputeAll(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("failed", summary.Failed).Error("scheduled recompute failed")
		return
	}
	s.logger.WithFields(logrus.Fields{"users": summary.Users, "updated": summary.Updated}).Info("scheduled recompute finished")
}
