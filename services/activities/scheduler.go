package activities

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type ScheduleConfig struct {
	// cron expressions; empty picks the defaults below
	Sweep string `json:"sweep"`
	Staff string `json:"staff"`
}

// Scheduler drives the periodic sweeps. Jobs run detached from any
// request context; overlapping runs are tolerated since every pass is
// idempotent and fetches share one worker bound anyway.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(service *Service, config ScheduleConfig) (*Scheduler, error) {
	if config.Sweep == "" {
		config.Sweep = "@every 30m"
	}
	if config.Staff == "" {
		config.Staff = "@every 6h"
	}

	c := cron.New()
	_, err := c.AddFunc(config.Sweep, func() {
		err := service.RefreshStale(context.Background())
		if err != nil {
			slog.Warn("scheduled staleness sweep failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	_, err = c.AddFunc(config.Staff, func() {
		err := service.RefreshStaffIfDue(context.Background(), false)
		if err != nil {
			slog.Warn("scheduled staff refresh failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
