package fraud

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/activities"
)

// Sweeper periodically scans every activity and materializes fraud alerts
// for newly flagged ones, so the admin surface reads a registry instead of
// deriving alerts on demand.
type Sweeper struct {
	store   activities.Repository
	service Service
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewSweeper creates a sweeper; call Start with a cron expression to run it.
func NewSweeper(store activities.Repository, service Service, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		store:   store,
		service: service,
		logger:  logger,
	}
}

// Start schedules recurring sweeps. schedule is a standard cron expression,
// e.g. "*/10 * * * *".
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("fraud sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("fraud sweeper started", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one full scan over the activity store.
func (s *Sweeper) Sweep(ctx context.Context) error {
	all, err := s.store.List(ctx, activities.ListFilter{})
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}

	raised := 0
	for i := range all {
		alert, err := s.service.ScanActivity(ctx, &all[i])
		if err != nil {
			s.logger.Error("failed to scan activity",
				zap.String("activity_id", all[i].ID.String()), zap.Error(err))
			continue
		}
		if alert != nil {
			raised++
		}
	}

	s.logger.Info("fraud sweep complete",
		zap.Int("activities", len(all)),
		zap.Int("alerts_raised", raised))
	return nil
}
