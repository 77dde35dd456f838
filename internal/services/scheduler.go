package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs ingestion passes on a cron schedule in server mode.
// Overlapping runs are harmless thanks to idempotent persistence, but the
// rate limiter keeps them from hammering the source anyway.
type Scheduler struct {
	cron      *cron.Cron
	ingestion *IngestionService
	logger    *logrus.Logger
}

// NewScheduler creates a scheduler around an ingestion service.
func NewScheduler(ingestion *IngestionService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		ingestion: ingestion,
		logger:    logger,
	}
}

// Start registers the schedule and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.logger.WithField("component", "scheduler").Info("Scheduled ingestion starting")
		if _, err := s.ingestion.Run(); err != nil {
			s.logger.WithField("component", "scheduler").WithError(err).Error("Scheduled ingestion failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid scrape schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"schedule":  schedule,
	}).Info("Ingestion schedule registered")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
