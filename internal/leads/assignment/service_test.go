package assignment

import (
	"context"
	"errors"
	"testing"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	agents       []uuid.UUID // active sales agents in rotation order
	next         int
	lead         repository.Lead
	createFn     func(params repository.CreateLeadParams) (repository.Lead, error)
	lastReassign repository.ReassignParams
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if f.createFn != nil {
		return f.createFn(params)
	}
	var assignee uuid.UUID
	if params.AssignTo != nil {
		assignee = *params.AssignTo
	} else {
		if len(f.agents) == 0 {
			return repository.Lead{}, repository.ErrNoAgentsAvailable
		}
		assignee = f.agents[f.next%len(f.agents)]
		f.next++
	}
	return repository.Lead{
		ID:         uuid.New(),
		ClientName: params.ClientName,
		Priority:   params.Priority,
		Status:     domain.InitialStatus(params.Priority),
		AssignedTo: &assignee,
	}, nil
}

func (f *fakeRepo) Reassign(_ context.Context, params repository.ReassignParams, decide repository.Decide) (repository.ReassignResult, error) {
	f.lastReassign = params
	status, err := decide(f.lead)
	if err != nil {
		return repository.ReassignResult{}, err
	}
	prev := &repository.Agent{ID: *f.lead.AssignedTo, Name: "Ravi"}
	f.lead.Status = status
	f.lead.AssignedTo = &params.NewAgentID
	return repository.ReassignResult{
		Lead:          f.lead,
		PreviousAgent: prev,
		NewAgent:      repository.Agent{ID: params.NewAgentID, Name: "Meera"},
		FollowUp:      repository.FollowUp{Action: domain.ActionReassigned, Remark: "reassigned from Ravi to Meera"},
	}, nil
}

type recordingBus struct {
	published []events.Event
	failSync  error
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return b.failSync
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) assigned() []events.LeadAssigned {
	var out []events.LeadAssigned
	for _, e := range b.published {
		if a, ok := e.(events.LeadAssigned); ok {
			out = append(out, a)
		}
	}
	return out
}

func newService(repo *fakeRepo, bus *recordingBus) *Service {
	return New(repo, bus, nil, logger.Discard())
}

func TestAutoAssignRotatesThroughAgents(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	repo := &fakeRepo{agents: []uuid.UUID{a, b}}
	bus := &recordingBus{}
	svc := newService(repo, bus)

	var got []uuid.UUID
	for range 4 {
		lead, warnings, err := svc.CreateAssigned(context.Background(), repository.CreateLeadParams{ClientName: "Kapoor", Priority: domain.PriorityNormal})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(warnings) != 0 {
			t.Fatalf("unexpected warnings %v", warnings)
		}
		got = append(got, *lead.AssignedTo)
	}

	want := []uuid.UUID{a, b, a, b}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assignment %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if n := len(bus.assigned()); n != 4 {
		t.Fatalf("expected 4 lead_assigned events, got %d", n)
	}
}

func TestAutoAssignWithoutAgents(t *testing.T) {
	svc := newService(&fakeRepo{}, &recordingBus{})

	_, _, err := svc.CreateAssigned(context.Background(), repository.CreateLeadParams{ClientName: "Kapoor"})
	if !errors.Is(err, ErrNoAgentsAvailable) {
		t.Fatalf("expected ErrNoAgentsAvailable, got %v", err)
	}
	if appErr, ok := apperr.As(err); !ok || appErr.Code != "no_agents_available" {
		t.Fatalf("expected no_agents_available code, got %v", err)
	}
}

func TestManualAssignRejectsIneligibleAgent(t *testing.T) {
	repo := &fakeRepo{createFn: func(repository.CreateLeadParams) (repository.Lead, error) {
		return repository.Lead{}, repository.ErrAgentNotEligible
	}}
	svc := newService(repo, &recordingBus{})

	target := uuid.New()
	_, _, err := svc.CreateAssigned(context.Background(), repository.CreateLeadParams{AssignTo: &target})
	if !errors.Is(err, ErrInvalidAssignee) || !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected invalid assignee validation error, got %v", err)
	}
}

func TestCreateKeepsLeadWhenNotificationFails(t *testing.T) {
	repo := &fakeRepo{agents: []uuid.UUID{uuid.New()}}
	bus := &recordingBus{failSync: errors.New("notifications table locked")}
	svc := newService(repo, bus)

	lead, warnings, err := svc.CreateAssigned(context.Background(), repository.CreateLeadParams{ClientName: "Iyer"})
	if err != nil {
		t.Fatalf("expected lead to be created, got %v", err)
	}
	if lead.ID == uuid.Nil || len(warnings) != 1 {
		t.Fatalf("expected created lead with one warning, got %v / %v", lead.ID, warnings)
	}
}

func TestReassignKeepsStatus(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepo{lead: repository.Lead{ID: uuid.New(), Status: domain.StatusFollowUp, AssignedTo: &owner}}
	bus := &recordingBus{}
	svc := newService(repo, bus)

	admin := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleAdmin}}
	target := uuid.New()
	res, err := svc.Reassign(context.Background(), admin, repo.lead.ID, transport.ReassignLeadRequest{AgentID: target})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if res.Lead.Status != string(domain.StatusFollowUp) {
		t.Fatalf("expected status to stay follow_up, got %s", res.Lead.Status)
	}

	assigned := bus.assigned()
	if len(assigned) != 1 || assigned[0].AgentID != target || assigned[0].PreviousAgentID == nil || *assigned[0].PreviousAgentID != owner {
		t.Fatalf("unexpected lead_assigned events %+v", assigned)
	}
}

func TestReassignReopenOnlyForNoResponse(t *testing.T) {
	owner := uuid.New()
	admin := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleAdmin}}

	repo := &fakeRepo{lead: repository.Lead{ID: uuid.New(), Status: domain.StatusNoResponse, Priority: domain.PriorityHot, AssignedTo: &owner}}
	svc := newService(repo, &recordingBus{})
	res, err := svc.Reassign(context.Background(), admin, repo.lead.ID, transport.ReassignLeadRequest{AgentID: uuid.New(), Reopen: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if res.Lead.Status != string(domain.StatusHot) {
		t.Fatalf("expected hot lead to reopen as hot, got %s", res.Lead.Status)
	}

	repo = &fakeRepo{lead: repository.Lead{ID: uuid.New(), Status: domain.StatusDead, AssignedTo: &owner}}
	svc = newService(repo, &recordingBus{})
	_, err = svc.Reassign(context.Background(), admin, repo.lead.ID, transport.ReassignLeadRequest{AgentID: uuid.New(), Reopen: true})
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition reopening a dead lead, got %v", err)
	}
}

func TestReassignSanitizesRemark(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepo{lead: repository.Lead{ID: uuid.New(), Status: domain.StatusHot, AssignedTo: &owner}}
	svc := newService(repo, &recordingBus{})
	admin := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleAdmin}}

	req := transport.ReassignLeadRequest{AgentID: uuid.New(), Remark: "<script>alert(1)</script>covering   <b>leave</b>"}
	if _, err := svc.Reassign(context.Background(), admin, repo.lead.ID, req); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if got := repo.lastReassign.Remark; got != "alert(1)covering leave" {
		t.Fatalf("expected markup stripped from remark, got %q", got)
	}
}

func TestReassignRequiresAdmin(t *testing.T) {
	svc := newService(&fakeRepo{}, &recordingBus{})
	sales := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleSales}}

	_, err := svc.Reassign(context.Background(), sales, uuid.New(), transport.ReassignLeadRequest{AgentID: uuid.New()})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
