// Package followup records agent follow-ups on a lead. Each follow-up is
// validated, checked against the lifecycle table and written together with
// the status change it drives; reminders and notifications follow the commit.
package followup

import (
	"context"
	"fmt"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/reminders"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// Repository is the slice of the lead store the recorder needs.
type Repository interface {
	RecordFollowUp(ctx context.Context, params repository.RecordFollowUpParams, decide repository.Decide) (repository.RecordFollowUpResult, error)
	repository.ItineraryChecker
}

// ReminderScheduler books the pre-travel reminder of a confirmed lead.
type ReminderScheduler interface {
	Schedule(ctx context.Context, req reminders.Request) (repository.Reminder, error)
}

type Service struct {
	repo      Repository
	reminders ReminderScheduler
	bus       events.Bus
	cfg       config.WorkflowConfig
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func New(repo Repository, sched ReminderScheduler, bus events.Bus, cfg config.WorkflowConfig, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, reminders: sched, bus: bus, cfg: cfg, metrics: m, log: log}
}

// Record validates and appends one follow-up. Every call appends a row;
// submitting the same follow-up twice records it twice.
func (s *Service) Record(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.RecordFollowUpRequest) (transport.ActionResponse, error) {
	cmd, err := parseRequest(req, s.cfg.GetLocation())
	if err != nil {
		return transport.ActionResponse{}, err
	}

	if cmd.ItineraryID != nil {
		exists, err := s.repo.ItineraryExists(ctx, *cmd.ItineraryID)
		if err != nil {
			return transport.ActionResponse{}, apperr.Store("itineraries.Exists", err)
		}
		if !exists {
			return transport.ActionResponse{}, apperr.Validation("itinerary not found").WithCode("unknown_itinerary")
		}
	}

	params := cmd.params(leadID, actor.ID)
	res, err := s.repo.RecordFollowUp(ctx, params, s.decide(actor, cmd.Action))
	if err != nil {
		return transport.ActionResponse{}, repository.MapError("leads.RecordFollowUp", err)
	}
	s.metrics.RecordFollowUp(string(cmd.Action))

	out := transport.ToActionResponse(res)
	out.Warnings = s.afterCommit(ctx, actor, cmd, res, &out)
	return out, nil
}

// decide runs inside the write transaction against the locked lead.
func (s *Service) decide(actor auth.Actor, action domain.Action) repository.Decide {
	return func(current repository.Lead) (domain.Status, error) {
		if !actor.IsAdmin() && !current.OwnedBy(actor.ID) {
			return "", apperr.Forbidden("only the assigned agent or an admin can record follow-ups")
		}
		next, err := domain.Next(current.Status, action)
		if err != nil {
			s.metrics.RecordRejectedTransition(string(current.Status), string(action))
			return "", err
		}
		return next, nil
	}
}

// afterCommit runs the side effects of a committed follow-up. Failures are
// logged and returned as warnings; the follow-up stays recorded.
func (s *Service) afterCommit(ctx context.Context, actor auth.Actor, cmd command, res repository.RecordFollowUpResult, out *transport.ActionResponse) transport.Warnings {
	var warnings transport.Warnings
	lead := res.Lead

	owner := actor.ID
	if lead.AssignedTo != nil {
		owner = *lead.AssignedTo
	}
	recipient := actor.ID
	if lead.AssignedBy != nil {
		recipient = *lead.AssignedBy
	}

	if res.Confirmation != nil {
		reminder, err := s.reminders.Schedule(ctx, reminders.Request{
			LeadID:     lead.ID,
			AgentID:    owner,
			ClientName: lead.ClientName,
			Place:      lead.Place,
			NoOfPax:    lead.NoOfPax,
			TravelDate: res.Confirmation.TravelDate,
		})
		if err != nil {
			warnings = s.warn(ctx, warnings, "reminder", lead.ID, err)
		} else {
			r := transport.ToReminderResponse(reminder)
			out.Reminder = &r
		}

		err = s.bus.PublishSync(ctx, events.LeadConfirmed{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      lead.ID,
			ClientName:  lead.ClientName,
			ActorID:     actor.ID,
			ActorName:   res.FollowUp.AgentName,
			RecipientID: recipient,
			TotalAmount: res.Confirmation.TotalAmount.StringFixed(2),
			TravelDate:  res.Confirmation.TravelDate,
		})
		return s.warn(ctx, warnings, "notification", lead.ID, err)
	}

	err := s.bus.PublishSync(ctx, events.FollowUpRecorded{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		ClientName:     lead.ClientName,
		ActorID:        actor.ID,
		ActorName:      res.FollowUp.AgentName,
		OwnerID:        owner,
		RecipientID:    recipient,
		Action:         string(cmd.Action),
		Status:         string(lead.Status),
		NextFollowUpAt: cmd.NextFollowUpAt,
	})
	return s.warn(ctx, warnings, "notification", lead.ID, err)
}

func (s *Service) warn(ctx context.Context, warnings transport.Warnings, effect string, leadID uuid.UUID, err error) transport.Warnings {
	if err == nil {
		return warnings
	}
	s.log.WithContext(ctx).SideEffectFailed(effect, leadID.String(), err)
	s.metrics.RecordSideEffectFailure(effect)
	return append(warnings, fmt.Sprintf("%s: %v", effect, err))
}

// command is a validated follow-up request.
type command struct {
	Action           domain.Action
	Remark           string
	NextFollowUpDate *time.Time
	NextFollowUpTime *string
	NextFollowUpAt   *time.Time
	ItineraryID      *uuid.UUID
	Payment          *domain.Payment
	TransactionID    *string
	TravelDate       *time.Time
	DeadReason       *string
}

func (c command) params(leadID, agentID uuid.UUID) repository.RecordFollowUpParams {
	return repository.RecordFollowUpParams{
		LeadID:           leadID,
		AgentID:          agentID,
		Action:           c.Action,
		Remark:           c.Remark,
		NextFollowUpDate: c.NextFollowUpDate,
		NextFollowUpTime: c.NextFollowUpTime,
		ItineraryID:      c.ItineraryID,
		Payment:          c.Payment,
		TransactionID:    c.TransactionID,
		TravelDate:       c.TravelDate,
		DeadReason:       c.DeadReason,
	}
}
