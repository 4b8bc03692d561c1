// Package reminders books the pre-travel reminder for a confirmed lead in
// the external calendar and keeps a local record of it.
package reminders

import (
	"context"
	"fmt"
	"time"

	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Calendar is the external calendar collaborator.
type Calendar interface {
	CreateReminder(ctx context.Context, title, description string, start time.Time, leadID uuid.UUID, leadName string) (string, error)
}

// Store persists reminders. Only CreateReminder and MarkElapsedReminders are used here.
type Store interface {
	CreateReminder(ctx context.Context, params repository.CreateReminderParams) (repository.Reminder, error)
	MarkElapsedReminders(ctx context.Context, today time.Time) (int64, error)
}

type Service struct {
	calendar Calendar
	store    Store
	cfg      config.WorkflowConfig
	log      *logger.Logger
}

func New(calendar Calendar, store Store, cfg config.WorkflowConfig, log *logger.Logger) *Service {
	return &Service{calendar: calendar, store: store, cfg: cfg, log: log}
}

// Request describes the confirmed trip a reminder is booked for.
type Request struct {
	LeadID     uuid.UUID
	AgentID    uuid.UUID
	ClientName string
	Place      string
	NoOfPax    int
	TravelDate time.Time
}

// Schedule books the reminder seven calendar days before travel at the
// configured time. The row is written only after the calendar
// returned an event id; a calendar failure leaves no row behind.
func (s *Service) Schedule(ctx context.Context, req Request) (repository.Reminder, error) {
	loc := s.cfg.GetLocation()
	travel := domain.DateOnly(req.TravelDate)
	reminderDate := domain.ReminderDate(travel)

	start, err := domain.At(reminderDate, s.cfg.GetReminderTime(), loc)
	if err != nil {
		return repository.Reminder{}, apperr.Internal("reminder time is misconfigured").WithOp("reminders.Schedule")
	}

	title := fmt.Sprintf("Upcoming trip: %s to %s", req.ClientName, req.Place)
	description := fmt.Sprintf("%s travels to %s on %s with %d pax.", req.ClientName, req.Place, travel.Format(time.DateOnly), req.NoOfPax)

	eventID, err := s.calendar.CreateReminder(ctx, title, description, start, req.LeadID, req.ClientName)
	if err != nil {
		return repository.Reminder{}, apperr.External("calendar reminder could not be created", err)
	}

	reminder, err := s.store.CreateReminder(ctx, repository.CreateReminderParams{
		LeadID:          req.LeadID,
		AgentID:         req.AgentID,
		TravelDate:      travel,
		ReminderDate:    reminderDate,
		ReminderTime:    s.cfg.GetReminderTime(),
		CalendarEventID: eventID,
	})
	if err != nil {
		// The calendar event exists without a local row; the event id is
		// logged so it can be reconciled by hand.
		s.log.WithContext(ctx).Error("reminder row not saved", "leadId", req.LeadID, "eventId", eventID, "error", err)
		return repository.Reminder{}, apperr.Store("reminders.Create", err)
	}
	return reminder, nil
}

// SweepElapsed marks pending reminders whose date has passed as done.
func (s *Service) SweepElapsed(ctx context.Context, now time.Time) (int64, error) {
	today := domain.DateOnly(now.In(s.cfg.GetLocation()))
	n, err := s.store.MarkElapsedReminders(ctx, today)
	if err != nil {
		return 0, apperr.Store("reminders.MarkElapsed", err)
	}
	if n > 0 {
		s.log.Info("elapsed reminders marked done", "count", n)
	}
	return n, nil
}
