package followup

import (
	"errors"
	"strings"
	"time"

	"travel_crm_backend/internal/leads/domain"
	"travel_crm_backend/internal/leads/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/sanitize"
)

func validationError(field, message string) error {
	return apperr.Validation(message).WithCode("validation_error").WithDetails(map[string]string{field: message})
}

func parseDate(field, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, validationError(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// parseRequest checks the per-action required fields. It never touches the
// store, so a rejected follow-up leaves no trace.
func parseRequest(req transport.RecordFollowUpRequest, loc *time.Location) (command, error) {
	action := domain.Action(req.Action)
	if !action.IsRecordable() {
		return command{}, validationError("action", "unsupported follow-up action")
	}

	cmd := command{
		Action:      action,
		Remark:      sanitize.Text(req.Remark),
		ItineraryID: req.ItineraryID,
	}
	if cmd.Remark == "" {
		return command{}, validationError("remark", "remark is required")
	}

	if action.RequiresNextFollowUp() {
		if !present(req.NextFollowUpDate) || !present(req.NextFollowUpTime) {
			return command{}, validationError("nextFollowUpDate", "next follow-up date and time are required")
		}
		day, err := parseDate("nextFollowUpDate", *req.NextFollowUpDate, loc)
		if err != nil {
			return command{}, err
		}
		at, err := domain.At(day, strings.TrimSpace(*req.NextFollowUpTime), loc)
		if err != nil {
			return command{}, validationError("nextFollowUpTime", "must be a time in HH:MM format")
		}
		clock := at.Format("15:04")
		cmd.NextFollowUpDate = &day
		cmd.NextFollowUpTime = &clock
		cmd.NextFollowUpAt = &at
	}

	switch action {
	case domain.ActionConfirmedAdvancePaid:
		if !present(req.TravelDate) {
			return command{}, validationError("travelDate", "travel date is required to confirm")
		}
		if req.TotalAmount == nil || req.AdvanceAmount == nil {
			return command{}, validationError("totalAmount", "total and advance amounts are required to confirm")
		}
		if !present(req.TransactionID) {
			return command{}, validationError("transactionId", "transaction id is required to confirm")
		}
		travel, err := parseDate("travelDate", *req.TravelDate, loc)
		if err != nil {
			return command{}, err
		}
		payment := domain.Payment{Total: *req.TotalAmount, Advance: *req.AdvanceAmount}
		if err := payment.Validate(); err != nil {
			field := "advanceAmount"
			if errors.Is(err, domain.ErrAmountPrecision) || errors.Is(err, domain.ErrAmountTooLarge) {
				field = "totalAmount"
			}
			return command{}, validationError(field, err.Error())
		}
		txID := strings.TrimSpace(*req.TransactionID)
		cmd.TravelDate = &travel
		cmd.Payment = &payment
		cmd.TransactionID = &txID

	case domain.ActionDead:
		if !present(req.DeadReason) {
			return command{}, validationError("deadReason", "dead reason is required")
		}
		cmd.DeadReason = sanitize.TextPtr(req.DeadReason)
	}

	return cmd, nil
}
