package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warnings lists side effects that failed after the main write committed.
type Warnings []string

type CreateLeadRequest struct {
	ClientName     string          `json:"clientName" validate:"required,min=1,max=200"`
	CountryCode    string          `json:"countryCode" validate:"required,max=6"`
	ContactNumber  string          `json:"contactNumber" validate:"required,min=5,max=20"`
	Place          string          `json:"place" validate:"required,max=120"`
	NoOfPax        int             `json:"noOfPax" validate:"required,min=1,max=500"`
	ExpectedBudget decimal.Decimal `json:"expectedBudget"`
	TravelDate     *string         `json:"travelDate,omitempty" validate:"omitempty,isodate"`
	TravelMonth    *string         `json:"travelMonth,omitempty" validate:"omitempty,yearmonth"`
	Source         string          `json:"leadSource" validate:"required,oneof=Instagram Facebook 'Google Ads' Website WhatsApp Phone Other"`
	Priority       string          `json:"leadPriority" validate:"omitempty,oneof=normal urgent hot"`
	Remark         *string         `json:"remark,omitempty" validate:"omitempty,max=2000"`
	// AssigneeID selects manual assignment. Omitted means auto-assign.
	AssigneeID *uuid.UUID `json:"assignedTo,omitempty"`
}

// UpdateLeadRequest edits contact and trip fields. Status is never changed here.
type UpdateLeadRequest struct {
	ClientName     *string          `json:"clientName,omitempty" validate:"omitempty,min=1,max=200"`
	CountryCode    *string          `json:"countryCode,omitempty" validate:"omitempty,max=6"`
	ContactNumber  *string          `json:"contactNumber,omitempty" validate:"omitempty,min=5,max=20"`
	Place          *string          `json:"place,omitempty" validate:"omitempty,max=120"`
	NoOfPax        *int             `json:"noOfPax,omitempty" validate:"omitempty,min=1,max=500"`
	ExpectedBudget *decimal.Decimal `json:"expectedBudget,omitempty"`
	TravelDate     *string          `json:"travelDate,omitempty" validate:"omitempty,isodate"`
	TravelMonth    *string          `json:"travelMonth,omitempty" validate:"omitempty,yearmonth"`
	Source         *string          `json:"leadSource,omitempty" validate:"omitempty,oneof=Instagram Facebook 'Google Ads' Website WhatsApp Phone Other"`
	Priority       *string          `json:"leadPriority,omitempty" validate:"omitempty,oneof=normal urgent hot"`
	Remark         *string          `json:"remark,omitempty" validate:"omitempty,max=2000"`
}

type ListLeadsRequest struct {
	Status     string `form:"status" validate:"omitempty,oneof=allocated hot follow_up confirmed allocated_to_operations dead no_response"`
	Priority   string `form:"priority" validate:"omitempty,oneof=normal urgent hot"`
	Source     string `form:"source"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Search     string `form:"search" validate:"max=100"`
	SortBy     string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt clientName travelDate priority status"`
	SortOrder  string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type PageRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type LeadResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ClientName          string          `json:"clientName"`
	CountryCode         string          `json:"countryCode"`
	ContactNumber       string          `json:"contactNumber"`
	Place               string          `json:"place"`
	NoOfPax             int             `json:"noOfPax"`
	ExpectedBudget      decimal.Decimal `json:"expectedBudget"`
	TravelDate          *string         `json:"travelDate,omitempty"`
	TravelMonth         *string         `json:"travelMonth,omitempty"`
	Source              string          `json:"leadSource"`
	Priority            string          `json:"leadPriority"`
	Status              string          `json:"status"`
	AllowedActions      []string        `json:"allowedActions"`
	CallAttempts        int             `json:"callAttempts"`
	FeedbackRequestedAt *time.Time      `json:"feedbackRequestedAt,omitempty"`
	AssignedTo          *uuid.UUID      `json:"assignedTo,omitempty"`
	AssigneeName        *string         `json:"assigneeName,omitempty"`
	AssignedBy          *uuid.UUID      `json:"assignedBy,omitempty"`
	Remark              *string         `json:"remark,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type CreateLeadResponse struct {
	Lead     LeadResponse `json:"lead"`
	Warnings Warnings     `json:"warnings,omitempty"`
}

// RecordFollowUpRequest carries the fields of every recordable action;
// which ones are required depends on Action.
type RecordFollowUpRequest struct {
	Action           string           `json:"action" validate:"required,oneof=itinerary_sent itinerary_updated follow_up almost_confirmed confirmed_advance_paid dead"`
	Remark           string           `json:"remark" validate:"max=2000"`
	NextFollowUpDate *string          `json:"nextFollowUpDate,omitempty" validate:"omitempty,isodate"`
	NextFollowUpTime *string          `json:"nextFollowUpTime,omitempty" validate:"omitempty,hhmm"`
	ItineraryID      *uuid.UUID       `json:"itineraryId,omitempty"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	AdvanceAmount    *decimal.Decimal `json:"advanceAmount,omitempty"`
	TransactionID    *string          `json:"transactionId,omitempty" validate:"omitempty,max=120"`
	TravelDate       *string          `json:"travelDate,omitempty" validate:"omitempty,isodate"`
	DeadReason       *string          `json:"deadReason,omitempty" validate:"omitempty,max=500"`
}

// ConfirmLeadRequest is the dedicated confirmation form.
type ConfirmLeadRequest struct {
	Remark        string          `json:"remark" validate:"max=2000"`
	ItineraryID   *uuid.UUID      `json:"itineraryId,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AdvanceAmount decimal.Decimal `json:"advanceAmount"`
	TransactionID string          `json:"transactionId" validate:"max=120"`
	TravelDate    string          `json:"travelDate" validate:"omitempty,isodate"`
}

type FollowUpResponse struct {
	ID               uuid.UUID        `json:"id"`
	LeadID           uuid.UUID        `json:"leadId"`
	AgentID          uuid.UUID        `json:"agentId"`
	AgentName        string           `json:"agentName"`
	Action           string           `json:"action"`
	Remark           string           `json:"remark"`
	NextFollowUpDate *string          `json:"nextFollowUpDate,omitempty"`
	NextFollowUpTime *string          `json:"nextFollowUpTime,omitempty"`
	ItineraryID      *uuid.UUID       `json:"itineraryId,omitempty"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	AdvanceAmount    *decimal.Decimal `json:"advanceAmount,omitempty"`
	DueAmount        *decimal.Decimal `json:"dueAmount,omitempty"`
	TransactionID    *string          `json:"transactionId,omitempty"`
	TravelDate       *string          `json:"travelDate,omitempty"`
	DeadReason       *string          `json:"deadReason,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type ConfirmationResponse struct {
	ID            uuid.UUID       `json:"id"`
	LeadID        uuid.UUID       `json:"leadId"`
	AgentID       uuid.UUID       `json:"agentId"`
	ItineraryID   *uuid.UUID      `json:"itineraryId,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AdvanceAmount decimal.Decimal `json:"advanceAmount"`
	DueAmount     decimal.Decimal `json:"dueAmount"`
	TransactionID string          `json:"transactionId"`
	TravelDate    string          `json:"travelDate"`
	HasReceipt    bool            `json:"hasReceipt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ReminderResponse struct {
	ID              uuid.UUID `json:"id"`
	ReminderDate    string    `json:"reminderDate"`
	ReminderTime    string    `json:"reminderTime"`
	CalendarEventID string    `json:"calendarEventId"`
	Status          string    `json:"status"`
}

// ActionResponse is returned by every operation that appends history.
type ActionResponse struct {
	Lead             LeadResponse          `json:"lead"`
	FollowUp         FollowUpResponse      `json:"followUp"`
	Confirmation     *ConfirmationResponse `json:"confirmation,omitempty"`
	Reminder         *ReminderResponse     `json:"reminder,omitempty"`
	BookingCancelled bool                  `json:"bookingCancelled,omitempty"`
	Warnings         Warnings              `json:"warnings,omitempty"`
}

type FollowUpListResponse struct {
	Items []FollowUpResponse `json:"items"`
}

type ReassignLeadRequest struct {
	AgentID uuid.UUID `json:"agentId" validate:"required"`
	Remark  string    `json:"remark" validate:"max=2000"`
	// Reopen moves a no_response lead back to its initial status.
	Reopen bool `json:"reopen"`
}

type TransitionRequest struct {
	Remark string `json:"remark" validate:"max=2000"`
}

type FeedbackRequest struct {
	Remark string `json:"remark" validate:"max=2000"`
	// SendWhatsApp also messages the client on WhatsApp when configured.
	SendWhatsApp bool   `json:"sendWhatsApp"`
	Message      string `json:"message" validate:"max=1000"`
}

type LogCallRequest struct {
	DurationSeconds int     `json:"durationSeconds" validate:"min=0,max=86400"`
	Outcome         *string `json:"outcome,omitempty" validate:"omitempty,max=200"`
}

type CallLogResponse struct {
	ID              uuid.UUID `json:"id"`
	LeadID          uuid.UUID `json:"leadId"`
	AgentID         uuid.UUID `json:"agentId"`
	DurationSeconds int       `json:"durationSeconds"`
	Outcome         *string   `json:"outcome,omitempty"`
	CallAttempts    int       `json:"callAttempts"`
	CreatedAt       time.Time `json:"createdAt"`
}

type ReceiptUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=200"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

type PresignedURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
