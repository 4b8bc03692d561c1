// Package events defines the domain events exchanged between the leads,
// notification and scheduling modules. Bus infrastructure lives in
// platform/events.
package events

import (
	"time"

	"travel_crm_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published after a lead row and its assignment commit.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	ClientName string    `json:"clientName"`
	Place      string    `json:"place"`
	Priority   string    `json:"priority"`
	AutoAssign bool      `json:"autoAssign"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published on first assignment and on every reassignment.
type LeadAssigned struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	ClientName      string     `json:"clientName"`
	AgentID         uuid.UUID  `json:"agentId"`
	AssignedByID    uuid.UUID  `json:"assignedById"`
	PreviousAgentID *uuid.UUID `json:"previousAgentId,omitempty"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// FollowUpRecorded is published for every follow-up that did not confirm
// the lead. RecipientID is the lead's assigner, or the acting agent when the
// lead has none.
type FollowUpRecorded struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	ClientName     string     `json:"clientName"`
	ActorID        uuid.UUID  `json:"actorId"`
	ActorName      string     `json:"actorName"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	RecipientID    uuid.UUID  `json:"recipientId"`
	Action         string     `json:"action"`
	Status         string     `json:"status"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
}

func (e FollowUpRecorded) EventName() string { return "leads.follow_up.recorded" }

// LeadConfirmed is published when an advance payment confirms a lead.
type LeadConfirmed struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	ClientName  string    `json:"clientName"`
	ActorID     uuid.UUID `json:"actorId"`
	ActorName   string    `json:"actorName"`
	RecipientID uuid.UUID `json:"recipientId"`
	TotalAmount string    `json:"totalAmount"`
	TravelDate  time.Time `json:"travelDate"`
}

func (e LeadConfirmed) EventName() string { return "leads.lead.confirmed" }

// LeadAllocatedToOperations is published when a confirmed booking is handed
// over. AdminID is the first admin by creation time.
type LeadAllocatedToOperations struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	ClientName string     `json:"clientName"`
	Place      string     `json:"place"`
	TravelDate *time.Time `json:"travelDate,omitempty"`
	ActorID    uuid.UUID  `json:"actorId"`
	AdminID    uuid.UUID  `json:"adminId"`
}

func (e LeadAllocatedToOperations) EventName() string { return "leads.lead.allocated_to_operations" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// MessageSent is a direct message from one user to another.
type MessageSent struct {
	BaseEvent
	SenderID    uuid.UUID  `json:"senderId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
}

func (e MessageSent) EventName() string { return "notifications.message.sent" }
