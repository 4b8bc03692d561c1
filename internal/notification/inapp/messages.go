package inapp

import (
	"context"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/events"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// MessageRequest is a direct message between users.
type MessageRequest struct {
	RecipientID uuid.UUID  `json:"recipientId" validate:"required"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	Title       string     `json:"title" validate:"required,max=200"`
	Message     string     `json:"message" validate:"required,max=2000"`
}

// Messenger sends direct messages through the bus so they take the same
// path as workflow notifications.
type Messenger struct {
	bus   events.Bus
	users auth.UserProvider
}

func NewMessenger(bus events.Bus, users auth.UserProvider) *Messenger {
	return &Messenger{bus: bus, users: users}
}

func (m *Messenger) SendMessage(ctx context.Context, senderID uuid.UUID, req MessageRequest) error {
	title, body := sanitize.Text(req.Title), sanitize.Text(req.Message)
	if title == "" || body == "" {
		return apperr.Validation("title and message are required")
	}
	if _, err := m.users.GetUserByID(ctx, req.RecipientID); err != nil {
		return apperr.Wrap(apperr.KindValidation, "unknown recipient", err).WithCode("invalid_recipient")
	}

	err := m.bus.PublishSync(ctx, events.MessageSent{
		BaseEvent:   events.NewBaseEvent(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		LeadID:      req.LeadID,
		Title:       title,
		Body:        body,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "message could not be delivered", err)
	}
	return nil
}
