package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	lead       repository.Lead
	admin      *repository.Agent
	lastParams repository.TransitionParams
	cancelled  int
}

func (f *fakeRepo) ApplyTransition(_ context.Context, p repository.TransitionParams, decide repository.Decide) (repository.RecordFollowUpResult, error) {
	next, err := decide(f.lead)
	if err != nil {
		return repository.RecordFollowUpResult{}, err
	}
	f.lastParams = p
	prev := f.lead.Status
	f.lead.Status = next
	released := domain.ReleasesBooking(prev, next)
	if released {
		f.cancelled++
	}
	if p.Action == domain.ActionFeedbackRequested {
		now := time.Now()
		f.lead.FeedbackRequestedAt = &now
	}
	return repository.RecordFollowUpResult{
		Lead:           f.lead,
		PreviousStatus: prev,
		FollowUp:       repository.FollowUp{ID: uuid.New(), Action: p.Action, Remark: p.Remark, AgentID: p.ActorID},
		Released:       released,
	}, nil
}

func (f *fakeRepo) FirstAdmin(context.Context) (repository.Agent, error) {
	if f.admin == nil {
		return repository.Agent{}, repository.ErrAgentNotFound
	}
	return *f.admin, nil
}

type fakeRecorder struct {
	got transport.RecordFollowUpRequest
}

func (f *fakeRecorder) Record(_ context.Context, _ auth.Actor, _ uuid.UUID, req transport.RecordFollowUpRequest) (transport.ActionResponse, error) {
	f.got = req
	return transport.ActionResponse{Lead: transport.LeadResponse{Status: string(domain.StatusConfirmed)}}, nil
}

type fakeMessenger struct {
	sent []string
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, _, _, message string) error {
	f.sent = append(f.sent, message)
	return f.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

var (
	agentID = uuid.New()
	sales   = auth.Actor{ID: agentID, Roles: []string{auth.RoleSales}}
	admin   = auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleAdmin}}
)

func newService(status domain.Status) (*Service, *fakeRepo, *recordingBus, *fakeMessenger, *fakeRecorder) {
	repo := &fakeRepo{lead: repository.Lead{ID: uuid.New(), ClientName: "Rao", Place: "Kerala", Status: status, AssignedTo: &agentID, CountryCode: "91", ContactNumber: "+919876543210"}}
	bus := &recordingBus{}
	msg := &fakeMessenger{}
	rec := &fakeRecorder{}
	return New(repo, rec, msg, bus, nil, logger.Discard()), repo, bus, msg, rec
}

func TestMarkNoResponseFromAnyNonTerminal(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusAllocated, domain.StatusHot, domain.StatusFollowUp, domain.StatusConfirmed} {
		svc, repo, _, _, _ := newService(status)
		res, err := svc.MarkNoResponse(context.Background(), sales, repo.lead.ID, transport.TransitionRequest{})
		if err != nil {
			t.Fatalf("%s: %v", status, err)
		}
		if res.Lead.Status != string(domain.StatusNoResponse) {
			t.Fatalf("%s: expected no_response, got %s", status, res.Lead.Status)
		}
		if repo.lastParams.Remark == "" {
			t.Fatalf("%s: expected a default remark", status)
		}
	}

	svc, repo, _, _, _ := newService(domain.StatusDead)
	if _, err := svc.MarkNoResponse(context.Background(), sales, repo.lead.ID, transport.TransitionRequest{}); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition from dead, got %v", err)
	}
}

func TestMarkNoResponseCancelsConfirmedBooking(t *testing.T) {
	svc, repo, _, _, _ := newService(domain.StatusConfirmed)
	res, err := svc.MarkNoResponse(context.Background(), sales, repo.lead.ID, transport.TransitionRequest{})
	if err != nil {
		t.Fatalf("no response: %v", err)
	}
	if !res.BookingCancelled || repo.cancelled != 1 {
		t.Fatalf("expected the confirmed booking to be cancelled, got %v / %d", res.BookingCancelled, repo.cancelled)
	}

	svc, repo, _, _, _ = newService(domain.StatusHot)
	res, err = svc.MarkNoResponse(context.Background(), sales, repo.lead.ID, transport.TransitionRequest{})
	if err != nil {
		t.Fatalf("no response: %v", err)
	}
	if res.BookingCancelled || repo.cancelled != 0 {
		t.Fatal("expected nothing to cancel for an unconfirmed lead")
	}
}

func TestAllocateToOperationsNotifiesFirstAdmin(t *testing.T) {
	svc, repo, bus, _, _ := newService(domain.StatusConfirmed)
	first := repository.Agent{ID: uuid.New(), Name: "Ops Admin"}
	repo.admin = &first

	res, err := svc.AllocateToOperations(context.Background(), admin, repo.lead.ID, transport.TransitionRequest{})
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if res.Lead.Status != string(domain.StatusAllocatedToOperations) {
		t.Fatalf("expected allocated_to_operations, got %s", res.Lead.Status)
	}
	ev, ok := bus.published[0].(events.LeadAllocatedToOperations)
	if !ok || ev.AdminID != first.ID {
		t.Fatalf("expected allocation event for first admin, got %+v", bus.published)
	}
}

func TestAllocateToOperationsRules(t *testing.T) {
	svc, repo, _, _, _ := newService(domain.StatusConfirmed)
	if _, err := svc.AllocateToOperations(context.Background(), sales, repo.lead.ID, transport.TransitionRequest{}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for sales, got %v", err)
	}

	svc, repo, _, _, _ = newService(domain.StatusFollowUp)
	if _, err := svc.AllocateToOperations(context.Background(), admin, repo.lead.ID, transport.TransitionRequest{}); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition from follow_up, got %v", err)
	}

	svc, repo, _, _, _ = newService(domain.StatusConfirmed)
	res, err := svc.AllocateToOperations(context.Background(), admin, repo.lead.ID, transport.TransitionRequest{})
	if err != nil {
		t.Fatalf("expected allocation without admins to succeed, got %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected a warning when no admin can be notified, got %v", res.Warnings)
	}
}

func TestRequestFeedbackSendsWhatsApp(t *testing.T) {
	svc, repo, _, msg, _ := newService(domain.StatusAllocatedToOperations)

	res, err := svc.RequestFeedback(context.Background(), sales, repo.lead.ID, transport.FeedbackRequest{SendWhatsApp: true})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if res.Lead.FeedbackRequestedAt == nil || res.Lead.Status != string(domain.StatusAllocatedToOperations) {
		t.Fatalf("expected timestamp set and status kept, got %+v", res.Lead)
	}
	if len(msg.sent) != 1 || msg.sent[0] == "" {
		t.Fatalf("expected one default message, got %v", msg.sent)
	}
}

func TestRequestFeedbackMessageFailureIsWarning(t *testing.T) {
	svc, repo, _, msg, _ := newService(domain.StatusConfirmed)
	msg.err = errors.New("gateway timeout")

	res, err := svc.RequestFeedback(context.Background(), sales, repo.lead.ID, transport.FeedbackRequest{SendWhatsApp: true, Message: "How was it?"})
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestRequestFeedbackRejectsOpenLeads(t *testing.T) {
	svc, repo, _, _, _ := newService(domain.StatusFollowUp)
	if _, err := svc.RequestFeedback(context.Background(), sales, repo.lead.ID, transport.FeedbackRequest{}); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestConfirmConvergesOnFollowUpRecorder(t *testing.T) {
	svc, repo, _, _, rec := newService(domain.StatusFollowUp)

	_, err := svc.Confirm(context.Background(), sales, repo.lead.ID, transport.ConfirmLeadRequest{
		TotalAmount:   decimal.NewFromInt(90000),
		AdvanceAmount: decimal.NewFromInt(30000),
		TransactionID: "NEFT-1",
		TravelDate:    "2026-01-10",
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if rec.got.Action != string(domain.ActionConfirmedAdvancePaid) || rec.got.Remark == "" {
		t.Fatalf("expected confirmed_advance_paid with default remark, got %+v", rec.got)
	}
	if rec.got.TotalAmount == nil || !rec.got.TotalAmount.Equal(decimal.NewFromInt(90000)) {
		t.Fatalf("expected amounts forwarded, got %+v", rec.got.TotalAmount)
	}
}
