package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/email"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/internal/notification/inapp"
	"travel_crm_backend/internal/notification/outbox"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// Notifier persists in-app notifications.
type Notifier interface {
	Send(ctx context.Context, p inapp.SendParams) (inapp.Notification, error)
}

// OutboxWriter queues device pushes.
type OutboxWriter interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
}

// UserDirectory resolves recipients.
type UserDirectory interface {
	auth.UserProvider
	PushToken(ctx context.Context, userID uuid.UUID) (string, bool, error)
}

// Dispatcher turns lead workflow events into notification rows, live SSE
// events and queued device pushes. Lead creation is only audited; the
// agent hears about it through the assignment that follows. Handler errors reach the publisher,
// which reports them as warnings; nothing is retried here.
type Dispatcher struct {
	inapp    Notifier
	outbox   OutboxWriter
	users    UserDirectory
	mailer   email.Sender
	opsEmail string
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewDispatcher(n Notifier, o OutboxWriter, users UserDirectory, mailer email.Sender, opsEmail string, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		inapp:    n,
		outbox:   o,
		users:    users,
		mailer:   mailer,
		opsEmail: opsEmail,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// RegisterHandlers subscribes to the events the dispatcher handles.
func (d *Dispatcher) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), d)
	bus.Subscribe(events.LeadAssigned{}.EventName(), d)
	bus.Subscribe(events.FollowUpRecorded{}.EventName(), d)
	bus.Subscribe(events.LeadConfirmed{}.EventName(), d)
	bus.Subscribe(events.LeadAllocatedToOperations{}.EventName(), d)
	bus.Subscribe(events.MessageSent{}.EventName(), d)
}

// Handle routes events to the appropriate handler method.
func (d *Dispatcher) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		d.log.WithContext(ctx).LeadCreated(e.LeadID.String(), e.Priority, e.AutoAssign)
		return nil
	case events.LeadAssigned:
		return d.handleLeadAssigned(ctx, e)
	case events.FollowUpRecorded:
		return d.handleFollowUpRecorded(ctx, e)
	case events.LeadConfirmed:
		return d.handleLeadConfirmed(ctx, e)
	case events.LeadAllocatedToOperations:
		return d.handleAllocated(ctx, e)
	case events.MessageSent:
		return d.handleMessageSent(ctx, e)
	}
	return nil
}

type notice struct {
	userID  uuid.UUID
	kind    inapp.Type
	title   string
	message string
	leadID  *uuid.UUID
}

// notify writes the row, which also goes out over SSE, and queues an
// immediate push when the recipient has a device token.
func (d *Dispatcher) notify(ctx context.Context, n notice) error {
	if n.userID == uuid.Nil {
		return nil
	}
	_, err := d.inapp.Send(ctx, inapp.SendParams{
		UserID:  n.userID,
		Type:    n.kind,
		Title:   n.title,
		Message: n.message,
		LeadID:  n.leadID,
	})
	if err != nil {
		return fmt.Errorf("%s notification: %w", n.kind, err)
	}
	d.metrics.RecordNotification(string(n.kind))

	return d.queuePush(ctx, n, d.now())
}

func (d *Dispatcher) queuePush(ctx context.Context, n notice, runAt time.Time) error {
	token, ok, err := d.users.PushToken(ctx, n.userID)
	if err != nil {
		return fmt.Errorf("look up push token: %w", err)
	}
	if !ok {
		return nil
	}

	_, err = d.outbox.Insert(ctx, outbox.InsertParams{
		Kind: outbox.KindPush,
		Payload: outbox.PushPayload{
			UserID: n.userID,
			Token:  token,
			Title:  n.title,
			Body:   n.message,
			Type:   string(n.kind),
			LeadID: n.leadID,
		},
		RunAt: runAt,
	})
	if err != nil {
		return fmt.Errorf("queue push: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	title := "New lead assigned"
	if e.PreviousAgentID != nil {
		title = "Lead reassigned to you"
	}
	return d.notify(ctx, notice{
		userID:  e.AgentID,
		kind:    inapp.TypeLeadAssigned,
		title:   title,
		message: fmt.Sprintf("%s has been assigned to you.", e.ClientName),
		leadID:  &e.LeadID,
	})
}

func (d *Dispatcher) handleFollowUpRecorded(ctx context.Context, e events.FollowUpRecorded) error {
	err := d.notify(ctx, notice{
		userID:  e.RecipientID,
		kind:    inapp.TypeFollowUp,
		title:   "Follow-up recorded",
		message: fmt.Sprintf("%s recorded %s for %s.", e.ActorName, humanize(e.Action), e.ClientName),
		leadID:  &e.LeadID,
	})

	// The next follow-up becomes a push at that time for the lead's owner.
	if e.NextFollowUpAt != nil && e.OwnerID != uuid.Nil {
		due := notice{
			userID:  e.OwnerID,
			kind:    inapp.TypeFollowUp,
			title:   "Follow-up due",
			message: fmt.Sprintf("Time to follow up with %s.", e.ClientName),
			leadID:  &e.LeadID,
		}
		if pushErr := d.queuePush(ctx, due, *e.NextFollowUpAt); pushErr != nil {
			err = errors.Join(err, fmt.Errorf("schedule follow-up push: %w", pushErr))
		}
	}
	return err
}

func (d *Dispatcher) handleLeadConfirmed(ctx context.Context, e events.LeadConfirmed) error {
	return d.notify(ctx, notice{
		userID: e.RecipientID,
		kind:   inapp.TypeConfirmation,
		title:  "Lead confirmed",
		message: fmt.Sprintf("%s confirmed %s: total %s, travelling on %s.",
			e.ActorName, e.ClientName, e.TotalAmount, e.TravelDate.Format(time.DateOnly)),
		leadID: &e.LeadID,
	})
}

func (d *Dispatcher) handleAllocated(ctx context.Context, e events.LeadAllocatedToOperations) error {
	var errs []error
	if e.AdminID != uuid.Nil {
		errs = append(errs, d.notify(ctx, notice{
			userID:  e.AdminID,
			kind:    inapp.TypeAllocation,
			title:   "Booking allocated to operations",
			message: fmt.Sprintf("%s (%s) has been handed over to operations.", e.ClientName, e.Place),
			leadID:  &e.LeadID,
		}))
	}

	if d.opsEmail != "" {
		allocatedBy := e.ActorID.String()
		if actor, err := d.users.GetUserByID(ctx, e.ActorID); err == nil {
			allocatedBy = actor.Name
		}
		err := d.mailer.SendAllocationEmail(ctx, d.opsEmail, email.AllocationEmail{
			ClientName:  e.ClientName,
			Place:       e.Place,
			TravelDate:  e.TravelDate,
			AllocatedBy: allocatedBy,
			LeadID:      e.LeadID.String(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("operations email: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) handleMessageSent(ctx context.Context, e events.MessageSent) error {
	return d.notify(ctx, notice{
		userID:  e.RecipientID,
		kind:    inapp.TypeMessage,
		title:   e.Title,
		message: e.Body,
		leadID:  e.LeadID,
	})
}

func humanize(action string) string {
	return strings.ReplaceAll(action, "_", " ")
}
