package repository

import (
	"time"

	"travel_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scope narrows reads and writes to what the actor may see. Sales agents
// see only leads assigned to them; admins see everything.
type Scope struct {
	ActorID uuid.UUID
	Admin   bool
}

type Lead struct {
	ID                  uuid.UUID
	ClientName          string
	CountryCode         string
	ContactNumber       string
	Place               string
	NoOfPax             int
	ExpectedBudget      decimal.Decimal
	TravelDate          *time.Time
	TravelMonth         *string
	Source              domain.Source
	Priority            domain.Priority
	CallAttempts        int
	FeedbackRequestedAt *time.Time
	AssignedTo          *uuid.UUID
	AssignedBy          *uuid.UUID
	AssigneeName        *string
	Status              domain.Status
	Remark              *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OwnedBy reports whether the lead is assigned to userID.
func (l Lead) OwnedBy(userID uuid.UUID) bool {
	return l.AssignedTo != nil && *l.AssignedTo == userID
}

// FollowUp is one immutable entry in a lead's history.
type FollowUp struct {
	ID               uuid.UUID
	LeadID           uuid.UUID
	AgentID          uuid.UUID
	AgentName        string
	Action           domain.Action
	Remark           string
	NextFollowUpDate *time.Time
	NextFollowUpTime *string
	ItineraryID      *uuid.UUID
	TotalAmount      decimal.NullDecimal
	AdvanceAmount    decimal.NullDecimal
	DueAmount        decimal.NullDecimal
	TransactionID    *string
	TravelDate       *time.Time
	DeadReason       *string
	CreatedAt        time.Time
}

type Confirmation struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	AgentID        uuid.UUID
	ItineraryID    *uuid.UUID
	TotalAmount    decimal.Decimal
	AdvanceAmount  decimal.Decimal
	DueAmount      decimal.Decimal
	TransactionID  string
	TravelDate     time.Time
	Remark         *string
	ReceiptFileKey *string
	CreatedAt      time.Time
}

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderDone      ReminderStatus = "done"
	ReminderCancelled ReminderStatus = "cancelled"
)

type Reminder struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	AgentID         uuid.UUID
	TravelDate      time.Time
	ReminderDate    time.Time
	ReminderTime    string
	CalendarEventID string
	Status          ReminderStatus
	CreatedAt       time.Time
}

type CallLog struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	AgentID         uuid.UUID
	DurationSeconds int
	Outcome         *string
	CreatedAt       time.Time
}

// Agent is the slice of a user the lead workflow needs.
type Agent struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      string
	Status    string
	PushToken *string
}

type CreateLeadParams struct {
	ClientName     string
	CountryCode    string
	ContactNumber  string
	Place          string
	NoOfPax        int
	ExpectedBudget decimal.Decimal
	TravelDate     *time.Time
	TravelMonth    *string
	Source         domain.Source
	Priority       domain.Priority
	Remark         *string
	// AssignTo is the manual assignee. When nil the next agent in rotation
	// is claimed inside the same transaction.
	AssignTo   *uuid.UUID
	AssignedBy uuid.UUID
}

type UpdateLeadParams struct {
	ClientName     *string
	CountryCode    *string
	ContactNumber  *string
	Place          *string
	NoOfPax        *int
	ExpectedBudget *decimal.Decimal
	// Travel window is replaced as a whole when TravelWindowSet is true.
	TravelWindowSet bool
	TravelDate      *time.Time
	TravelMonth     *string
	Source          *domain.Source
	Priority        *domain.Priority
	Remark          *string
}

type ListParams struct {
	Scope      Scope
	Status     *domain.Status
	Priority   *domain.Priority
	Source     *domain.Source
	AssignedTo *uuid.UUID
	Search     string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

// Decide is called with the row-locked lead inside the write transaction
// and returns the status to store. Returning an error aborts the write.
type Decide func(current Lead) (domain.Status, error)

type RecordFollowUpParams struct {
	LeadID           uuid.UUID
	AgentID          uuid.UUID
	Action           domain.Action
	Remark           string
	NextFollowUpDate *time.Time
	NextFollowUpTime *string
	ItineraryID      *uuid.UUID
	Payment          *domain.Payment
	TransactionID    *string
	TravelDate       *time.Time
	DeadReason       *string
}

type RecordFollowUpResult struct {
	Lead           Lead
	PreviousStatus domain.Status
	FollowUp       FollowUp
	Confirmation   *Confirmation
	Released       bool
}

type TransitionParams struct {
	LeadID  uuid.UUID
	ActorID uuid.UUID
	Action  domain.Action
	Remark  string
}

type ReassignParams struct {
	LeadID     uuid.UUID
	NewAgentID uuid.UUID
	ActorID    uuid.UUID
	Remark     string
	Reopen     bool
}

type ReassignResult struct {
	Lead          Lead
	PreviousAgent *Agent
	NewAgent      Agent
	FollowUp      FollowUp
}

type LogCallParams struct {
	LeadID          uuid.UUID
	AgentID         uuid.UUID
	DurationSeconds int
	Outcome         *string
}

type CreateReminderParams struct {
	LeadID          uuid.UUID
	AgentID         uuid.UUID
	TravelDate      time.Time
	ReminderDate    time.Time
	ReminderTime    string
	CalendarEventID string
}
