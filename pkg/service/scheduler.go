package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PruneScheduler runs Prune on a cron schedule.
type PruneScheduler struct {
	cron    *cron.Cron
	service *Service
	logger  zerolog.Logger
}

// NewPruneScheduler schedules Prune(olderThanDays) on the given cron
// spec (e.g. "0 3 * * *" for daily at 03:00).
func NewPruneScheduler(svc *Service, spec string, olderThanDays int, logger zerolog.Logger) (*PruneScheduler, error) {
	if olderThanDays <= 0 {
		return nil, fmt.Errorf("prune days must be positive, got %d", olderThanDays)
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		pruned, err := svc.Prune(context.Background(), olderThanDays)
		if err != nil {
			logger.Error().Err(err).Msg("Scheduled prune failed")
			return
		}
		if pruned > 0 {
			logger.Info().Int("pruned", pruned).Msg("Scheduled prune completed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}

	return &PruneScheduler{cron: c, service: svc, logger: logger}, nil
}

// Start begins the schedule in its own goroutine.
func (p *PruneScheduler) Start() {
	p.cron.Start()
	p.logger.Info().Msg("Prune scheduler started")
}

// Stop halts the schedule and waits for a running job to finish.
func (p *PruneScheduler) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info().Msg("Prune scheduler stopped")
}
