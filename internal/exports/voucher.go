package exports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travel_crm_backend/internal/auth"
	"travel_crm_backend/internal/pdf"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VoucherReader loads the data printed on a voucher.
type VoucherReader interface {
	GetVoucher(ctx context.Context, leadID uuid.UUID) (Voucher, error)
}

// VoucherHandler serves booking vouchers. Sales agents only see vouchers
// for leads assigned to them.
type VoucherHandler struct {
	repo   VoucherReader
	agency string
	loc    *time.Location
	render func(pdf.VoucherData) ([]byte, error)
}

func NewVoucherHandler(repo VoucherReader, agency string, loc *time.Location) *VoucherHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &VoucherHandler{repo: repo, agency: agency, loc: loc, render: pdf.GenerateBookingVoucher}
}

func (h *VoucherHandler) HandleVoucherPDF(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	v, err := h.repo.GetVoucher(c.Request.Context(), leadID)
	if errors.Is(err, ErrNoConfirmation) {
		httpkit.HandleError(c, apperr.NotFound("lead has no active confirmation"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, apperr.Store("exports.GetVoucher", err))
		return
	}
	actor := auth.ActorFromIdentity(id)
	if !actor.IsAdmin() && (v.AssignedTo == nil || *v.AssignedTo != actor.ID) {
		// Other agents' leads look missing.
		httpkit.HandleError(c, apperr.NotFound("lead has no active confirmation"))
		return
	}

	doc, err := h.render(h.voucherData(v))
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "render voucher", err).WithOp("exports.Voucher"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=voucher-%s.pdf", voucherNumber(v.ConfirmationID)))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (h *VoucherHandler) voucherData(v Voucher) pdf.VoucherData {
	data := pdf.VoucherData{
		AgencyName:    h.agency,
		VoucherNumber: voucherNumber(v.ConfirmationID),
		IssuedAt:      v.ConfirmedAt.In(h.loc),
		ClientName:    v.ClientName,
		Contact:       strings.TrimSpace(v.CountryCode + " " + v.ContactNumber),
		Place:         v.Place,
		Pax:           v.NoOfPax,
		TravelDate:    v.TravelDate,
		AgentName:     v.AgentName,
		Total:         v.TotalAmount,
		Advance:       v.AdvanceAmount,
		Due:           v.DueAmount,
		TransactionID: v.TransactionID,
	}
	if v.ItineraryTitle != nil {
		data.ItineraryTitle = *v.ItineraryTitle
		data.Days = deref(v.Days)
		data.Nights = deref(v.Nights)
		if v.TransportMode != nil {
			data.TransportMode = *v.TransportMode
		}
	}
	if v.Remark != nil {
		data.Remark = *v.Remark
	}
	return data
}

// voucherNumber is the short, printable form of a confirmation id.
func voucherNumber(id uuid.UUID) string {
	return "TD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
