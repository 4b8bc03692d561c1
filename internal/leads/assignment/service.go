// Package assignment decides which sales agent owns a lead: manual picks,
// round-robin auto-assignment on creation, and admin reassignment.
package assignment

import (
	"context"
	"errors"
	"fmt"

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

var (
	// ErrInvalidAssignee is returned when a manual target is not an active sales agent.
	ErrInvalidAssignee = errors.New("assignee must be an active sales agent")
	// ErrNoAgentsAvailable is returned when auto-assignment finds nobody to pick.
	ErrNoAgentsAvailable = errors.New("no active sales agents available")
)

// Repository is the slice of the lead store assignment needs.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	repository.Reassigner
}

type Service struct {
	repo    Repository
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
}

func New(repo Repository, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, metrics: m, log: log}
}

// mapError turns assignment sentinels into typed errors; everything else
// goes through the lead store mapping.
func mapError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrAgentNotFound), errors.Is(err, repository.ErrAgentNotEligible):
		return apperr.Wrap(apperr.KindValidation, ErrInvalidAssignee.Error(), errors.Join(ErrInvalidAssignee, err)).WithCode("invalid_assignee")
	case errors.Is(err, repository.ErrNoAgentsAvailable):
		return apperr.Wrap(apperr.KindConflict, ErrNoAgentsAvailable.Error(), errors.Join(ErrNoAgentsAvailable, err)).WithCode("no_agents_available")
	}
	return repository.MapError(op, err)
}

// CreateAssigned inserts a lead owned by params.AssignTo, or by the next
// agent in rotation when AssignTo is nil, and announces the assignment.
// Notification failures come back as warnings; the lead stays created.
func (s *Service) CreateAssigned(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, transport.Warnings, error) {
	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return repository.Lead{}, nil, mapError("leads.Create", err)
	}

	mode := "manual"
	if params.AssignTo == nil {
		mode = "auto"
	}
	s.metrics.RecordLeadCreated(mode)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		ClientName: lead.ClientName,
		Place:      lead.Place,
		Priority:   string(lead.Priority),
		AutoAssign: params.AssignTo == nil,
	})

	var warnings transport.Warnings
	if lead.AssignedTo != nil {
		err = s.bus.PublishSync(ctx, events.LeadAssigned{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			ClientName:   lead.ClientName,
			AgentID:      *lead.AssignedTo,
			AssignedByID: params.AssignedBy,
		})
		warnings = s.warn(ctx, warnings, "notification", lead.ID, err)
	}
	return lead, warnings, nil
}

// Reassign moves a lead to another active sales agent. The status stays as
// it is unless reopen is requested for a no_response lead.
func (s *Service) Reassign(ctx context.Context, actor auth.Actor, leadID uuid.UUID, req transport.ReassignLeadRequest) (transport.ActionResponse, error) {
	if !actor.IsAdmin() {
		return transport.ActionResponse{}, apperr.Forbidden("only admins can reassign leads")
	}

	decide := func(current repository.Lead) (domain.Status, error) {
		if req.Reopen {
			return domain.Reopen(current.Status, current.Priority)
		}
		return domain.Next(current.Status, domain.ActionReassigned)
	}

	res, err := s.repo.Reassign(ctx, repository.ReassignParams{
		LeadID:     leadID,
		NewAgentID: req.AgentID,
		ActorID:    actor.ID,
		Remark:     sanitize.Text(req.Remark),
		Reopen:     req.Reopen,
	}, decide)
	if err != nil {
		return transport.ActionResponse{}, mapError("leads.Reassign", err)
	}

	event := events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       res.Lead.ID,
		ClientName:   res.Lead.ClientName,
		AgentID:      res.NewAgent.ID,
		AssignedByID: actor.ID,
	}
	if res.PreviousAgent != nil {
		event.PreviousAgentID = &res.PreviousAgent.ID
	}

	out := transport.ActionResponse{
		Lead:     transport.ToLeadResponse(res.Lead),
		FollowUp: transport.ToFollowUpResponse(res.FollowUp),
	}
	out.Warnings = s.warn(ctx, out.Warnings, "notification", res.Lead.ID, s.bus.PublishSync(ctx, event))
	return out, nil
}

func (s *Service) warn(ctx context.Context, warnings transport.Warnings, effect string, leadID uuid.UUID, err error) transport.Warnings {
	if err == nil {
		return warnings
	}
	s.log.WithContext(ctx).SideEffectFailed(effect, leadID.String(), err)
	s.metrics.RecordSideEffectFailure(effect)
	return append(warnings, fmt.Sprintf("%s: %v", effect, err))
}
