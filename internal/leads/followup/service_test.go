package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/reminders"
	"travel_crm_backend/internal/leads/repository"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type workflowCfg struct{}

func (workflowCfg) GetLocation() *time.Location { return time.UTC }
func (workflowCfg) GetReminderTime() string     { return "10:00" }

// fakeRepo applies decide to an in-memory lead the way the store does
// inside its transaction.
type fakeRepo struct {
	lead        repository.Lead
	history     []repository.RecordFollowUpParams
	itineraries map[uuid.UUID]bool
	calls       int
}

func (f *fakeRepo) RecordFollowUp(_ context.Context, p repository.RecordFollowUpParams, decide repository.Decide) (repository.RecordFollowUpResult, error) {
	f.calls++
	prev := f.lead.Status
	next, err := decide(f.lead)
	if err != nil {
		return repository.RecordFollowUpResult{}, err
	}
	f.history = append(f.history, p)
	f.lead.Status = next

	res := repository.RecordFollowUpResult{
		PreviousStatus: prev,
		FollowUp:       repository.FollowUp{ID: uuid.New(), LeadID: p.LeadID, AgentID: p.AgentID, AgentName: "Asha", Action: p.Action, Remark: p.Remark},
	}
	if p.Payment != nil {
		f.lead.TravelDate = p.TravelDate
		f.lead.TravelMonth = nil
		res.Confirmation = &repository.Confirmation{
			ID:            uuid.New(),
			LeadID:        p.LeadID,
			TotalAmount:   p.Payment.Total,
			AdvanceAmount: p.Payment.Advance,
			DueAmount:     p.Payment.Due(),
			TravelDate:    *p.TravelDate,
		}
	}
	res.Lead = f.lead
	return res, nil
}

func (f *fakeRepo) ItineraryExists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.itineraries[id], nil
}

type fakeScheduler struct {
	requests []reminders.Request
	err      error
}

func (f *fakeScheduler) Schedule(_ context.Context, req reminders.Request) (repository.Reminder, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return repository.Reminder{}, f.err
	}
	return repository.Reminder{ID: uuid.New(), ReminderDate: domain.ReminderDate(req.TravelDate), ReminderTime: "10:00", CalendarEventID: "evt"}, nil
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

type fixture struct {
	repo  *fakeRepo
	sched *fakeScheduler
	bus   *recordingBus
	svc   *Service
	agent auth.Actor
	admin uuid.UUID
}

func newFixture(status domain.Status) fixture {
	agent := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleSales}}
	admin := uuid.New()
	month := "2025-12"
	repo := &fakeRepo{
		lead: repository.Lead{
			ID:          uuid.New(),
			ClientName:  "Mehta",
			Place:       "Goa",
			NoOfPax:     4,
			Status:      status,
			TravelMonth: &month,
			AssignedTo:  &agent.ID,
			AssignedBy:  &admin,
		},
		itineraries: map[uuid.UUID]bool{},
	}
	sched := &fakeScheduler{}
	bus := &recordingBus{}
	return fixture{
		repo:  repo,
		sched: sched,
		bus:   bus,
		svc:   New(repo, sched, bus, workflowCfg{}, nil, logger.Discard()),
		agent: agent,
		admin: admin,
	}
}

func strPtr(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func followUpRequest() transport.RecordFollowUpRequest {
	return transport.RecordFollowUpRequest{
		Action:           string(domain.ActionItinerarySent),
		Remark:           "Sent the 5N Goa plan",
		NextFollowUpDate: strPtr("2025-11-20"),
		NextFollowUpTime: strPtr("11:30"),
	}
}

func confirmRequest() transport.RecordFollowUpRequest {
	return transport.RecordFollowUpRequest{
		Action:        string(domain.ActionConfirmedAdvancePaid),
		Remark:        "Advance received",
		TotalAmount:   dec("150000.50"),
		AdvanceAmount: dec("50000.25"),
		TransactionID: strPtr("UPI-7781"),
		TravelDate:    strPtr("2025-12-20"),
	}
}

func TestItinerarySentMovesToFollowUpAndNotifiesAssigner(t *testing.T) {
	f := newFixture(domain.StatusAllocated)

	res, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, followUpRequest())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if res.Lead.Status != string(domain.StatusFollowUp) {
		t.Fatalf("expected follow_up, got %s", res.Lead.Status)
	}

	if len(f.bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(f.bus.published))
	}
	ev, ok := f.bus.published[0].(events.FollowUpRecorded)
	if !ok {
		t.Fatalf("expected FollowUpRecorded, got %T", f.bus.published[0])
	}
	if ev.RecipientID != f.admin || ev.OwnerID != f.agent.ID {
		t.Fatalf("expected assigner recipient and agent owner, got %+v", ev)
	}
	want := time.Date(2025, 11, 20, 11, 30, 0, 0, time.UTC)
	if ev.NextFollowUpAt == nil || !ev.NextFollowUpAt.Equal(want) {
		t.Fatalf("expected next follow-up at %s, got %v", want, ev.NextFollowUpAt)
	}
}

func TestRecipientFallsBackToActor(t *testing.T) {
	f := newFixture(domain.StatusHot)
	f.repo.lead.AssignedBy = nil

	if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, followUpRequest()); err != nil {
		t.Fatalf("record: %v", err)
	}
	ev := f.bus.published[0].(events.FollowUpRecorded)
	if ev.RecipientID != f.agent.ID {
		t.Fatalf("expected acting agent as recipient, got %s", ev.RecipientID)
	}
}

func TestValidationHappensBeforeAnyWrite(t *testing.T) {
	cases := map[string]func(*transport.RecordFollowUpRequest){
		"blank remark":        func(r *transport.RecordFollowUpRequest) { r.Remark = "   " },
		"missing next date":   func(r *transport.RecordFollowUpRequest) { r.NextFollowUpDate = nil },
		"missing next time":   func(r *transport.RecordFollowUpRequest) { r.NextFollowUpTime = strPtr("") },
		"unrecordable action": func(r *transport.RecordFollowUpRequest) { r.Action = string(domain.ActionNoResponse) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(domain.StatusAllocated)
			req := followUpRequest()
			mutate(&req)

			_, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.repo.calls != 0 {
				t.Fatal("expected no store call for an invalid follow-up")
			}
		})
	}
}

func TestConfirmationComputesDueAndSchedulesReminder(t *testing.T) {
	f := newFixture(domain.StatusFollowUp)

	res, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, confirmRequest())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Lead.Status != string(domain.StatusConfirmed) {
		t.Fatalf("expected confirmed, got %s", res.Lead.Status)
	}
	if res.Confirmation == nil || !res.Confirmation.DueAmount.Equal(decimal.RequireFromString("100000.25")) {
		t.Fatalf("expected due 100000.25, got %+v", res.Confirmation)
	}
	if res.Lead.TravelDate == nil || *res.Lead.TravelDate != "2025-12-20" || res.Lead.TravelMonth != nil {
		t.Fatalf("expected travel date set and month cleared, got %v / %v", res.Lead.TravelDate, res.Lead.TravelMonth)
	}
	if res.Reminder == nil || res.Reminder.ReminderDate != "2025-12-13" {
		t.Fatalf("expected reminder on 2025-12-13, got %+v", res.Reminder)
	}
	if len(f.sched.requests) != 1 || f.sched.requests[0].AgentID != f.agent.ID {
		t.Fatalf("expected one reminder for the owner, got %+v", f.sched.requests)
	}
	if _, ok := f.bus.published[0].(events.LeadConfirmed); !ok {
		t.Fatalf("expected LeadConfirmed, got %T", f.bus.published[0])
	}
}

func TestConfirmationKeptWhenCalendarFails(t *testing.T) {
	f := newFixture(domain.StatusHot)
	f.sched.err = apperr.External("calendar reminder could not be created", errors.New("503"))

	res, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, confirmRequest())
	if err != nil {
		t.Fatalf("expected confirmation to succeed, got %v", err)
	}
	if res.Lead.Status != string(domain.StatusConfirmed) || res.Reminder != nil {
		t.Fatalf("expected confirmed lead without reminder, got %s / %+v", res.Lead.Status, res.Reminder)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestConfirmationRejectsAdvanceAboveTotal(t *testing.T) {
	f := newFixture(domain.StatusFollowUp)
	req := confirmRequest()
	req.AdvanceAmount = dec("200000")

	if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.repo.calls != 0 {
		t.Fatal("expected no write")
	}
}

func TestConfirmationRejectsUnstorableAmounts(t *testing.T) {
	cases := []struct {
		name           string
		total, advance string
	}{
		{"sub-paisa amounts", "10.005", "0.004"},
		{"sub-paisa advance", "50000", "10000.001"},
		{"total overflows the column", "1000000000000000", "1000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(domain.StatusFollowUp)
			req := confirmRequest()
			req.TotalAmount = dec(tc.total)
			req.AdvanceAmount = dec(tc.advance)

			if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if f.repo.calls != 0 {
				t.Fatal("expected no write")
			}
		})
	}
}

func TestConfirmationRequiresEveryPaymentField(t *testing.T) {
	mutations := []func(*transport.RecordFollowUpRequest){
		func(r *transport.RecordFollowUpRequest) { r.TravelDate = nil },
		func(r *transport.RecordFollowUpRequest) { r.TotalAmount = nil },
		func(r *transport.RecordFollowUpRequest) { r.AdvanceAmount = nil },
		func(r *transport.RecordFollowUpRequest) { r.TransactionID = strPtr(" ") },
	}
	for i, mutate := range mutations {
		f := newFixture(domain.StatusFollowUp)
		req := confirmRequest()
		mutate(&req)
		if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestDeadNeedsReasonAndRespectsTable(t *testing.T) {
	f := newFixture(domain.StatusFollowUp)
	req := transport.RecordFollowUpRequest{Action: string(domain.ActionDead), Remark: "Booked elsewhere"}
	if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	req.DeadReason = strPtr("Booked with competitor")
	res, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req)
	if err != nil {
		t.Fatalf("dead: %v", err)
	}
	if res.Lead.Status != string(domain.StatusDead) {
		t.Fatalf("expected dead, got %s", res.Lead.Status)
	}

	_, err = f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, followUpRequest())
	if !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition on a dead lead, got %v", err)
	}
}

func TestAlmostConfirmedKeepsStatus(t *testing.T) {
	f := newFixture(domain.StatusFollowUp)
	req := transport.RecordFollowUpRequest{Action: string(domain.ActionAlmostConfirmed), Remark: "Waiting on visa"}

	res, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req)
	if err != nil {
		t.Fatalf("almost confirmed: %v", err)
	}
	if res.Lead.Status != string(domain.StatusFollowUp) {
		t.Fatalf("expected status unchanged, got %s", res.Lead.Status)
	}
}

func TestOnlyOwnerOrAdminMayRecord(t *testing.T) {
	f := newFixture(domain.StatusAllocated)
	stranger := auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleSales}}

	if _, err := f.svc.Record(context.Background(), stranger, f.repo.lead.ID, followUpRequest()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := auth.Actor{ID: f.admin, Roles: []string{auth.RoleAdmin}}
	if _, err := f.svc.Record(context.Background(), admin, f.repo.lead.ID, followUpRequest()); err != nil {
		t.Fatalf("expected admin to record, got %v", err)
	}
}

func TestDuplicateFollowUpsAppend(t *testing.T) {
	f := newFixture(domain.StatusFollowUp)
	req := transport.RecordFollowUpRequest{
		Action:           string(domain.ActionFollowUp),
		Remark:           "Called, no answer",
		NextFollowUpDate: strPtr("2025-11-21"),
		NextFollowUpTime: strPtr("09:00"),
	}

	for range 2 {
		if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if len(f.repo.history) != 2 {
		t.Fatalf("expected two history rows, got %d", len(f.repo.history))
	}
}

func TestUnknownItineraryIsRejected(t *testing.T) {
	f := newFixture(domain.StatusAllocated)
	req := followUpRequest()
	id := uuid.New()
	req.ItineraryID = &id

	if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.repo.itineraries[id] = true
	if _, err := f.svc.Record(context.Background(), f.agent, f.repo.lead.ID, req); err != nil {
		t.Fatalf("expected known itinerary to pass, got %v", err)
	}
}
