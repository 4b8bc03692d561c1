package exports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNoConfirmation means the lead has no active confirmation.
var ErrNoConfirmation = errors.New("no active confirmation")

// Booking is one active confirmation joined with its lead and agent.
type Booking struct {
	ConfirmationID uuid.UUID
	LeadID         uuid.UUID
	ClientName     string
	CountryCode    string
	ContactNumber  string
	Place          string
	NoOfPax        int
	LeadSource     string
	AgentName      string
	TravelDate     time.Time
	TotalAmount    decimal.Decimal
	AdvanceAmount  decimal.Decimal
	DueAmount      decimal.Decimal
	TransactionID  string
	ConfirmedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListBookings returns active confirmations created in [from, to), oldest
// first, capped at limit.
func (r *Repository) ListBookings(ctx context.Context, from, to time.Time, limit int) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, l.id, l.client_name, l.country_code, l.contact_number, l.place, l.no_of_pax,
			l.lead_source, COALESCE(u.name, ''), c.travel_date, c.total_amount, c.advance_amount,
			c.due_amount, c.transaction_id, c.created_at
		FROM lead_confirmations c
		JOIN leads l ON l.id = c.lead_id
		LEFT JOIN users u ON u.id = c.agent_id
		WHERE c.cancelled_at IS NULL AND c.created_at >= $1 AND c.created_at < $2
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ConfirmationID, &b.LeadID, &b.ClientName, &b.CountryCode, &b.ContactNumber,
			&b.Place, &b.NoOfPax, &b.LeadSource, &b.AgentName, &b.TravelDate, &b.TotalAmount,
			&b.AdvanceAmount, &b.DueAmount, &b.TransactionID, &b.ConfirmedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Voucher is the active confirmation of one lead with its package details.
type Voucher struct {
	Booking
	AssignedTo     *uuid.UUID
	ItineraryTitle *string
	Days           *int
	Nights         *int
	TransportMode  *string
	Remark         *string
}

// GetVoucher loads the active confirmation for leadID.
func (r *Repository) GetVoucher(ctx context.Context, leadID uuid.UUID) (Voucher, error) {
	var v Voucher
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, l.id, l.client_name, l.country_code, l.contact_number, l.place, l.no_of_pax,
			l.lead_source, COALESCE(u.name, ''), c.travel_date, c.total_amount, c.advance_amount,
			c.due_amount, c.transaction_id, c.created_at, l.assigned_to,
			i.title, i.days, i.nights, i.transport_mode, c.remark
		FROM lead_confirmations c
		JOIN leads l ON l.id = c.lead_id
		LEFT JOIN users u ON u.id = c.agent_id
		LEFT JOIN itineraries i ON i.id = c.itinerary_id
		WHERE c.lead_id = $1 AND c.cancelled_at IS NULL`, leadID).Scan(
		&v.ConfirmationID, &v.LeadID, &v.ClientName, &v.CountryCode, &v.ContactNumber,
		&v.Place, &v.NoOfPax, &v.LeadSource, &v.AgentName, &v.TravelDate, &v.TotalAmount,
		&v.AdvanceAmount, &v.DueAmount, &v.TransactionID, &v.ConfirmedAt, &v.AssignedTo,
		&v.ItineraryTitle, &v.Days, &v.Nights, &v.TransportMode, &v.Remark)
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, ErrNoConfirmation
	}
	return v, err
}
