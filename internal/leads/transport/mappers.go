package transport

import (
	"time"

	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/repository"

	"github.com/shopspring/decimal"
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func ToLeadResponse(l repository.Lead) LeadResponse {
	allowed := domain.Allowed(l.Status)
	actions := make([]string, 0, len(allowed))
	for _, a := range allowed {
		actions = append(actions, string(a))
	}

	return LeadResponse{
		ID:                  l.ID,
		ClientName:          l.ClientName,
		CountryCode:         l.CountryCode,
		ContactNumber:       l.ContactNumber,
		Place:               l.Place,
		NoOfPax:             l.NoOfPax,
		ExpectedBudget:      l.ExpectedBudget,
		TravelDate:          formatDate(l.TravelDate),
		TravelMonth:         l.TravelMonth,
		Source:              string(l.Source),
		Priority:            string(l.Priority),
		Status:              string(l.Status),
		AllowedActions:      actions,
		CallAttempts:        l.CallAttempts,
		FeedbackRequestedAt: l.FeedbackRequestedAt,
		AssignedTo:          l.AssignedTo,
		AssigneeName:        l.AssigneeName,
		AssignedBy:          l.AssignedBy,
		Remark:              l.Remark,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadResponse(l))
	}
	return out
}

func ToFollowUpResponse(f repository.FollowUp) FollowUpResponse {
	return FollowUpResponse{
		ID:               f.ID,
		LeadID:           f.LeadID,
		AgentID:          f.AgentID,
		AgentName:        f.AgentName,
		Action:           string(f.Action),
		Remark:           f.Remark,
		NextFollowUpDate: formatDate(f.NextFollowUpDate),
		NextFollowUpTime: f.NextFollowUpTime,
		ItineraryID:      f.ItineraryID,
		TotalAmount:      nullDecimal(f.TotalAmount),
		AdvanceAmount:    nullDecimal(f.AdvanceAmount),
		DueAmount:        nullDecimal(f.DueAmount),
		TransactionID:    f.TransactionID,
		TravelDate:       formatDate(f.TravelDate),
		DeadReason:       f.DeadReason,
		CreatedAt:        f.CreatedAt,
	}
}

func ToConfirmationResponse(c repository.Confirmation) ConfirmationResponse {
	return ConfirmationResponse{
		ID:            c.ID,
		LeadID:        c.LeadID,
		AgentID:       c.AgentID,
		ItineraryID:   c.ItineraryID,
		TotalAmount:   c.TotalAmount,
		AdvanceAmount: c.AdvanceAmount,
		DueAmount:     c.DueAmount,
		TransactionID: c.TransactionID,
		TravelDate:    c.TravelDate.Format(time.DateOnly),
		HasReceipt:    c.ReceiptFileKey != nil,
		CreatedAt:     c.CreatedAt,
	}
}

func ToReminderResponse(r repository.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:              r.ID,
		ReminderDate:    r.ReminderDate.Format(time.DateOnly),
		ReminderTime:    r.ReminderTime,
		CalendarEventID: r.CalendarEventID,
		Status:          string(r.Status),
	}
}

// ToActionResponse maps a committed history write.
func ToActionResponse(res repository.RecordFollowUpResult) ActionResponse {
	out := ActionResponse{
		Lead:             ToLeadResponse(res.Lead),
		FollowUp:         ToFollowUpResponse(res.FollowUp),
		BookingCancelled: res.Released,
	}
	if res.Confirmation != nil {
		c := ToConfirmationResponse(*res.Confirmation)
		out.Confirmation = &c
	}
	return out
}
