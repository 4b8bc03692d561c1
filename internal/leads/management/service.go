// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, updating, and deleting leads, plus call logging
// and the follow-up history views.
package management

import (
	"context"
	"math"
	"strings"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/phone"
	"travel_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	Update(ctx context.Context, id uuid.UUID, scope repository.Scope, params repository.UpdateLeadParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	repository.HistoryReader
	repository.CallLogger
}

// Assigner creates leads together with their first assignment.
type Assigner interface {
	CreateAssigned(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, transport.Warnings, error)
}

// Service handles lead management operations (CRUD).
type Service struct {
	repo     Repository
	assigner Assigner
	cfg      config.WorkflowConfig
}

// New creates a new lead management service.
func New(repo Repository, assigner Assigner, cfg config.WorkflowConfig) *Service {
	return &Service{repo: repo, assigner: assigner, cfg: cfg}
}

func scopeOf(actor auth.Actor) repository.Scope {
	return repository.Scope{ActorID: actor.ID, Admin: actor.IsAdmin()}
}

func validationError(field, message string) error {
	return apperr.Validation(message).WithCode("validation_error").WithDetails(map[string]string{field: message})
}

// travelWindow parses and validates the one-of travel date / month pair.
func (s *Service) travelWindow(date, month *string) (domain.TravelWindow, error) {
	var w domain.TravelWindow
	if date != nil && strings.TrimSpace(*date) != "" {
		d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(*date), s.cfg.GetLocation())
		if err != nil {
			return w, validationError("travelDate", "must be a date in YYYY-MM-DD format")
		}
		w.Date = &d
	}
	if month != nil && strings.TrimSpace(*month) != "" {
		m := strings.TrimSpace(*month)
		w.Month = &m
	}
	if err := w.Validate(); err != nil {
		return w, validationError("travelDate", err.Error())
	}
	return w, nil
}

func normalizeContact(countryCode, number string) (string, error) {
	normalized := phone.NormalizeE164(countryCode, number)
	if !phone.Valid(countryCode, number) {
		return "", validationError("contactNumber", "contact number is not a valid phone number")
	}
	return normalized, nil
}

// Create validates a new lead and hands it to assignment. AssigneeID picks
// the agent; without it the next agent in rotation gets the lead.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req transport.CreateLeadRequest) (transport.CreateLeadResponse, error) {
	if req.AssigneeID != nil && !actor.IsAdmin() && *req.AssigneeID != actor.ID {
		return transport.CreateLeadResponse{}, apperr.Forbidden("only admins can assign leads to other agents")
	}

	window, err := s.travelWindow(req.TravelDate, req.TravelMonth)
	if err != nil {
		return transport.CreateLeadResponse{}, err
	}
	if req.NoOfPax <= 0 {
		return transport.CreateLeadResponse{}, validationError("noOfPax", "number of travellers must be positive")
	}
	if req.ExpectedBudget.IsNegative() {
		return transport.CreateLeadResponse{}, validationError("expectedBudget", "expected budget must not be negative")
	}

	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityNormal
	}
	source := domain.Source(req.Source)
	if !priority.Valid() || !source.Valid() {
		return transport.CreateLeadResponse{}, validationError("leadSource", "unknown lead source or priority")
	}

	contact, err := normalizeContact(req.CountryCode, req.ContactNumber)
	if err != nil {
		return transport.CreateLeadResponse{}, err
	}

	clientName := sanitize.Text(req.ClientName)
	if clientName == "" {
		return transport.CreateLeadResponse{}, validationError("clientName", "client name is required")
	}

	lead, warnings, err := s.assigner.CreateAssigned(ctx, repository.CreateLeadParams{
		ClientName:     clientName,
		CountryCode:    strings.TrimSpace(req.CountryCode),
		ContactNumber:  contact,
		Place:          sanitize.Text(req.Place),
		NoOfPax:        req.NoOfPax,
		ExpectedBudget: req.ExpectedBudget,
		TravelDate:     window.Date,
		TravelMonth:    window.Month,
		Source:         source,
		Priority:       priority,
		Remark:         sanitize.TextPtr(req.Remark),
		AssignTo:       req.AssigneeID,
		AssignedBy:     actor.ID,
	})
	if err != nil {
		return transport.CreateLeadResponse{}, err
	}

	return transport.CreateLeadResponse{Lead: transport.ToLeadResponse(lead), Warnings: warnings}, nil
}

// GetByID returns a lead the actor may see.
func (s *Service) GetByID(ctx context.Context, actor auth.Actor, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, scopeOf(actor))
	if err != nil {
		return transport.LeadResponse{}, repository.MapError("leads.GetByID", err)
	}
	return transport.ToLeadResponse(lead), nil
}

// List returns a page of leads. Sales agents only ever see their own.
func (s *Service) List(ctx context.Context, actor auth.Actor, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	params := repository.ListParams{
		Scope:     scopeOf(actor),
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return transport.LeadListResponse{}, validationError("status", "unknown status")
		}
		params.Status = &status
	}
	if req.Priority != "" {
		priority := domain.Priority(req.Priority)
		params.Priority = &priority
	}
	if req.Source != "" {
		source := domain.Source(req.Source)
		if !source.Valid() {
			return transport.LeadListResponse{}, validationError("source", "unknown lead source")
		}
		params.Source = &source
	}
	if req.AssignedTo != "" {
		assignee, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return transport.LeadListResponse{}, validationError("assignedTo", "must be a uuid")
		}
		params.AssignedTo = &assignee
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, repository.MapError("leads.List", err)
	}

	return transport.LeadListResponse{
		Items:      transport.ToLeadResponses(leads),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Update edits contact and trip fields. The travel window is replaced as a
// whole whenever either side is sent.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		NoOfPax:  req.NoOfPax,
		Remark:   sanitize.TextPtr(req.Remark),
		Priority: (*domain.Priority)(req.Priority),
		Source:   (*domain.Source)(req.Source),
	}

	if req.ClientName != nil {
		name := sanitize.Text(*req.ClientName)
		if name == "" {
			return transport.LeadResponse{}, validationError("clientName", "client name is required")
		}
		params.ClientName = &name
	}
	if req.Place != nil {
		place := sanitize.Text(*req.Place)
		params.Place = &place
	}
	if req.NoOfPax != nil && *req.NoOfPax <= 0 {
		return transport.LeadResponse{}, validationError("noOfPax", "number of travellers must be positive")
	}
	if req.ExpectedBudget != nil {
		if req.ExpectedBudget.IsNegative() {
			return transport.LeadResponse{}, validationError("expectedBudget", "expected budget must not be negative")
		}
		params.ExpectedBudget = req.ExpectedBudget
	}
	if params.Priority != nil && !params.Priority.Valid() {
		return transport.LeadResponse{}, validationError("leadPriority", "unknown priority")
	}
	if params.Source != nil && !params.Source.Valid() {
		return transport.LeadResponse{}, validationError("leadSource", "unknown lead source")
	}

	travelEdit := req.TravelDate != nil || req.TravelMonth != nil
	contactEdit := req.ContactNumber != nil || req.CountryCode != nil

	var current repository.Lead
	if travelEdit || contactEdit {
		lead, err := s.repo.GetByID(ctx, id, scopeOf(actor))
		if err != nil {
			return transport.LeadResponse{}, repository.MapError("leads.GetByID", err)
		}
		current = lead
	}

	if contactEdit {
		countryCode, number := current.CountryCode, current.ContactNumber
		if req.CountryCode != nil {
			countryCode = strings.TrimSpace(*req.CountryCode)
			params.CountryCode = &countryCode
		}
		if req.ContactNumber != nil {
			number = *req.ContactNumber
		}
		contact, err := normalizeContact(countryCode, number)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		params.ContactNumber = &contact
	}

	if travelEdit {
		if current.Status.Booked() {
			return transport.LeadResponse{}, apperr.InvalidTransition("travel dates of a booked lead cannot be changed").
				WithDetails(map[string]string{"status": string(current.Status)})
		}
		window, err := s.travelWindow(req.TravelDate, req.TravelMonth)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		params.TravelWindowSet = true
		params.TravelDate = window.Date
		params.TravelMonth = window.Month
	}

	lead, err := s.repo.Update(ctx, id, scopeOf(actor), params)
	if err != nil {
		return transport.LeadResponse{}, repository.MapError("leads.Update", err)
	}
	return transport.ToLeadResponse(lead), nil
}

// Delete is the admin override that removes a lead and its history.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can delete leads")
	}
	return repository.MapError("leads.Delete", s.repo.Delete(ctx, id))
}

// LogCall records a call and bumps the lead's call attempts.
func (s *Service) LogCall(ctx context.Context, actor auth.Actor, id uuid.UUID, req transport.LogCallRequest) (transport.CallLogResponse, error) {
	if req.DurationSeconds < 0 {
		return transport.CallLogResponse{}, validationError("durationSeconds", "duration must not be negative")
	}

	call, err := s.repo.LogCall(ctx, repository.LogCallParams{
		LeadID:          id,
		AgentID:         actor.ID,
		DurationSeconds: req.DurationSeconds,
		Outcome:         sanitize.TextPtr(req.Outcome),
	}, scopeOf(actor))
	if err != nil {
		return transport.CallLogResponse{}, repository.MapError("leads.LogCall", err)
	}

	lead, err := s.repo.GetByID(ctx, id, scopeOf(actor))
	if err != nil {
		return transport.CallLogResponse{}, repository.MapError("leads.GetByID", err)
	}

	return transport.CallLogResponse{
		ID:              call.ID,
		LeadID:          call.LeadID,
		AgentID:         call.AgentID,
		DurationSeconds: call.DurationSeconds,
		Outcome:         call.Outcome,
		CallAttempts:    lead.CallAttempts,
		CreatedAt:       call.CreatedAt,
	}, nil
}

// ListFollowUps returns the lead's history, newest first.
func (s *Service) ListFollowUps(ctx context.Context, actor auth.Actor, id uuid.UUID, req transport.PageRequest) (transport.FollowUpListResponse, error) {
	if _, err := s.repo.GetByID(ctx, id, scopeOf(actor)); err != nil {
		return transport.FollowUpListResponse{}, repository.MapError("leads.GetByID", err)
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)
	items, err := s.repo.ListFollowUps(ctx, id, pageSize, (page-1)*pageSize)
	if err != nil {
		return transport.FollowUpListResponse{}, repository.MapError("leads.ListFollowUps", err)
	}

	out := make([]transport.FollowUpResponse, 0, len(items))
	for _, f := range items {
		out = append(out, transport.ToFollowUpResponse(f))
	}
	return transport.FollowUpListResponse{Items: out}, nil
}

// ListAlmostConfirmed returns open leads whose latest follow-up is almost_confirmed.
func (s *Service) ListAlmostConfirmed(ctx context.Context, actor auth.Actor, req transport.PageRequest) ([]transport.LeadResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)
	leads, err := s.repo.ListAlmostConfirmed(ctx, scopeOf(actor), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, repository.MapError("leads.ListAlmostConfirmed", err)
	}
	return transport.ToLeadResponses(leads), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
