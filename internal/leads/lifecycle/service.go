// Package lifecycle holds the lead operations that are not agent follow-ups:
// giving up on an unresponsive client, handing a booking to operations,
// asking for feedback, and the dedicated confirmation form.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"
	"travel_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the slice of the lead store lifecycle operations need.
type Repository interface {
	ApplyTransition(ctx context.Context, params repository.TransitionParams, decide repository.Decide) (repository.RecordFollowUpResult, error)
	FirstAdmin(ctx context.Context) (repository.Agent, error)
}

// Recorder is the follow-up recorder; confirmations go through it so both
// confirmation paths share one implementation.
type Recorder interface {
	Record(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.RecordFollowUpRequest) (transport.ActionResponse, error)
}

// Messenger sends a text message to a client's phone.
type Messenger interface {
	SendMessage(ctx context.Context, countryCode, phoneNumber, message string) error
}

type Service struct {
	repo      Repository
	recorder  Recorder
	messenger Messenger
	bus       events.Bus
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func New(repo Repository, recorder Recorder, messenger Messenger, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, messenger: messenger, bus: bus, metrics: m, log: log}
}

const defaultFeedbackMessage = "Hi %s, thank you for booking your %s trip with us. We would love to hear your feedback!"

func remarkOr(remark, fallback string) string {
	if cleaned := sanitize.Text(remark); cleaned != "" {
		return cleaned
	}
	return fallback
}

// ownerOrAdmin builds a Decide that checks the actor before consulting the table.
func (s *Service) ownerOrAdmin(actor auth.Actor, action domain.Action) repository.Decide {
	return func(current repository.Lead) (domain.Status, error) {
		if !actor.IsAdmin() && !current.OwnedBy(actor.ID) {
			return "", apperr.Forbidden("only the assigned agent or an admin can change this lead")
		}
		return s.next(current, action)
	}
}

func (s *Service) next(current repository.Lead, action domain.Action) (domain.Status, error) {
	status, err := domain.Next(current.Status, action)
	if err != nil {
		s.metrics.RecordRejectedTransition(string(current.Status), string(action))
		return "", err
	}
	return status, nil
}

// MarkNoResponse closes a lead whose client stopped answering.
func (s *Service) MarkNoResponse(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.TransitionRequest) (transport.ActionResponse, error) {
	res, err := s.repo.ApplyTransition(ctx, repository.TransitionParams{
		LeadID:  leadID,
		ActorID: actor.ID,
		Action:  domain.ActionNoResponse,
		Remark:  remarkOr(req.Remark, "Marked as no response"),
	}, s.ownerOrAdmin(actor, domain.ActionNoResponse))
	if err != nil {
		return transport.ActionResponse{}, repository.MapError("leads.MarkNoResponse", err)
	}
	s.metrics.RecordFollowUp(string(domain.ActionNoResponse))

	out := transport.ToActionResponse(res)
	out.Warnings = s.warn(ctx, out.Warnings, "notification", leadID, s.bus.PublishSync(ctx, s.followUpEvent(actor, res)))
	return out, nil
}

// AllocateToOperations hands a confirmed booking to the operations team and
// notifies the first admin.
func (s *Service) AllocateToOperations(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.TransitionRequest) (transport.ActionResponse, error) {
	if !actor.IsAdmin() {
		return transport.ActionResponse{}, apperr.Forbidden("only admins can allocate leads to operations")
	}

	res, err := s.repo.ApplyTransition(ctx, repository.TransitionParams{
		LeadID:  leadID,
		ActorID: actor.ID,
		Action:  domain.ActionAllocateToOperations,
		Remark:  remarkOr(req.Remark, "Allocated to operations"),
	}, func(current repository.Lead) (domain.Status, error) {
		return s.next(current, domain.ActionAllocateToOperations)
	})
	if err != nil {
		return transport.ActionResponse{}, repository.MapError("leads.AllocateToOperations", err)
	}
	s.metrics.RecordFollowUp(string(domain.ActionAllocateToOperations))

	out := transport.ToActionResponse(res)

	admin, err := s.repo.FirstAdmin(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrAgentNotFound) {
			err = errors.New("no active admin to notify")
		}
		out.Warnings = s.warn(ctx, out.Warnings, "notification", leadID, err)
		return out, nil
	}

	err = s.bus.PublishSync(ctx, events.LeadAllocatedToOperations{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     res.Lead.ID,
		ClientName: res.Lead.ClientName,
		Place:      res.Lead.Place,
		TravelDate: res.Lead.TravelDate,
		ActorID:    actor.ID,
		AdminID:    admin.ID,
	})
	out.Warnings = s.warn(ctx, out.Warnings, "notification", leadID, err)
	return out, nil
}

// RequestFeedback stamps feedback_requested_at on a confirmed or handed-over
// lead and optionally messages the client.
func (s *Service) RequestFeedback(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.FeedbackRequest) (transport.ActionResponse, error) {
	res, err := s.repo.ApplyTransition(ctx, repository.TransitionParams{
		LeadID:  leadID,
		ActorID: actor.ID,
		Action:  domain.ActionFeedbackRequested,
		Remark:  remarkOr(req.Remark, "Feedback requested"),
	}, s.ownerOrAdmin(actor, domain.ActionFeedbackRequested))
	if err != nil {
		return transport.ActionResponse{}, repository.MapError("leads.RequestFeedback", err)
	}

	out := transport.ToActionResponse(res)
	if req.SendWhatsApp {
		message := strings.TrimSpace(req.Message)
		if message == "" {
			message = fmt.Sprintf(defaultFeedbackMessage, res.Lead.ClientName, res.Lead.Place)
		}
		err := s.messenger.SendMessage(ctx, res.Lead.CountryCode, res.Lead.ContactNumber, message)
		out.Warnings = s.warn(ctx, out.Warnings, "whatsapp", leadID, err)
	}
	return out, nil
}

// Confirm is the dedicated confirmation form. It records the same
// confirmed_advance_paid follow-up the follow-up form does.
func (s *Service) Confirm(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.ConfirmLeadRequest) (transport.ActionResponse, error) {
	total, advance := req.TotalAmount, req.AdvanceAmount
	txID, travel := req.TransactionID, req.TravelDate

	return s.recorder.Record(ctx, actor, leadID, transport.RecordFollowUpRequest{
		Action:        string(domain.ActionConfirmedAdvancePaid),
		Remark:        remarkOr(req.Remark, "Confirmed with advance payment"),
		ItineraryID:   req.ItineraryID,
		TotalAmount:   &total,
		AdvanceAmount: &advance,
		TransactionID: &txID,
		TravelDate:    &travel,
	})
}

func (s *Service) followUpEvent(actor auth.Actor, res repository.RecordFollowUpResult) events.FollowUpRecorded {
	lead := res.Lead
	owner, recipient := actor.ID, actor.ID
	if lead.AssignedTo != nil {
		owner = *lead.AssignedTo
	}
	if lead.AssignedBy != nil {
		recipient = *lead.AssignedBy
	}
	return events.FollowUpRecorded{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		ClientName:  lead.ClientName,
		ActorID:     actor.ID,
		ActorName:   res.FollowUp.AgentName,
		OwnerID:     owner,
		RecipientID: recipient,
		Action:      string(res.FollowUp.Action),
		Status:      string(lead.Status),
	}
}

func (s *Service) warn(ctx context.Context, warnings transport.Warnings, effect string, leadID uuid.UUID, err error) transport.Warnings {
	if err == nil {
		return warnings
	}
	s.log.WithContext(ctx).SideEffectFailed(effect, leadID.String(), err)
	s.metrics.RecordSideEffectFailure(effect)
	return append(warnings, fmt.Sprintf("%s: %v", effect, err))
}
