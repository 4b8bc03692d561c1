package scheduler

import (
	"context"
	"time"

	"travel_crm_backend/internal/leads"
	"travel_crm_backend/platform/logger"

	"github.com/robfig/cron/v3"
)

// ReminderSweepSchedule runs shortly after midnight in the business timezone.
const ReminderSweepSchedule = "5 0 * * *"

// ReminderSweep closes travel reminders whose date has passed.
type ReminderSweep struct {
	cron    *cron.Cron
	sweeper leads.ReminderSweeper
	loc     *time.Location
	log     *logger.Logger
}

func NewReminderSweep(sweeper leads.ReminderSweeper, loc *time.Location, log *logger.Logger) *ReminderSweep {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderSweep{
		cron:    cron.New(cron.WithLocation(loc)),
		sweeper: sweeper,
		loc:     loc,
		log:     log,
	}
}

// Run schedules the sweep, runs it once immediately and blocks until ctx ends.
func (s *ReminderSweep) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(ReminderSweepSchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		s.sweep(jobCtx)
	}); err != nil {
		return err
	}

	s.sweep(ctx)
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *ReminderSweep) sweep(ctx context.Context) {
	closed, err := s.sweeper.SweepElapsed(ctx, time.Now().In(s.loc))
	if err != nil {
		s.log.Warn("reminder sweep failed", "error", err)
		return
	}
	if closed > 0 {
		s.log.Info("reminder sweep completed", "closed", closed)
	}
}
