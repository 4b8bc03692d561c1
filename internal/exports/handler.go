package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout   = "2006-01-02"
	defaultDays  = 90
	defaultLimit = 5000
	maxLimit     = 50000
)

// BookingLister is the read the export needs.
type BookingLister interface {
	ListBookings(ctx context.Context, from, to time.Time, limit int) ([]Booking, error)
}

// Handler streams confirmed bookings as CSV for the finance team.
type Handler struct {
	repo BookingLister
	loc  *time.Location
	now  func() time.Time
}

func NewHandler(repo BookingLister, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{repo: repo, loc: loc, now: time.Now}
}

func (h *Handler) HandleBookingsCSV(c *gin.Context) {
	from, to, err := h.parseDateRange(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	limit := parseLimit(c, defaultLimit, maxLimit)

	bookings, err := h.repo.ListBookings(c.Request.Context(), from, to, limit)
	if err != nil {
		httpkit.HandleError(c, apperr.Store("exports.ListBookings", err))
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=bookings-%s-%s.csv",
		from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout)))

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(csvHeaders()); err != nil {
		return
	}
	for _, b := range bookings {
		if err := writer.Write(h.row(b)); err != nil {
			return
		}
	}
	writer.Flush()
}

func csvHeaders() []string {
	return []string{
		"Confirmation ID",
		"Lead ID",
		"Client Name",
		"Contact Number",
		"Place",
		"Pax",
		"Lead Source",
		"Agent",
		"Travel Date",
		"Total Amount",
		"Advance Amount",
		"Due Amount",
		"Transaction ID",
		"Confirmed At",
	}
}

func (h *Handler) row(b Booking) []string {
	return []string{
		b.ConfirmationID.String(),
		b.LeadID.String(),
		b.ClientName,
		b.CountryCode + " " + b.ContactNumber,
		b.Place,
		strconv.Itoa(b.NoOfPax),
		b.LeadSource,
		b.AgentName,
		b.TravelDate.Format(dateLayout),
		b.TotalAmount.StringFixed(2),
		b.AdvanceAmount.StringFixed(2),
		b.DueAmount.StringFixed(2),
		b.TransactionID,
		b.ConfirmedAt.In(h.loc).Format(time.RFC3339),
	}
}

// parseDateRange reads inclusive fromDate/toDate days in the business
// timezone and defaults to the last 90 days.
func (h *Handler) parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := h.now().In(h.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	from := today.AddDate(0, 0, -defaultDays)
	to := today.AddDate(0, 0, 1)

	if raw := strings.TrimSpace(c.Query("fromDate")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("fromDate must be YYYY-MM-DD")
		}
		from = parsed
	}
	if raw := strings.TrimSpace(c.Query("toDate")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("toDate must be YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("toDate before fromDate")
	}
	return from, to, nil
}

func parseLimit(c *gin.Context, fallback int, max int) int {
	limit := fallback
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit > max {
		return max
	}
	if limit < 1 {
		return fallback
	}
	return limit
}
