package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrAlreadyConfirmed is returned when a lead already has an active
// confirmation. The partial unique index is the backstop.
var ErrAlreadyConfirmed = errors.New("lead already has an active confirmation")

const pgUniqueViolation = "23505"

func insertConfirmation(ctx context.Context, tx pgx.Tx, p RecordFollowUpParams) (Confirmation, error) {
	c := Confirmation{
		ID:            uuid.New(),
		LeadID:        p.LeadID,
		AgentID:       p.AgentID,
		ItineraryID:   p.ItineraryID,
		TotalAmount:   p.Payment.Total,
		AdvanceAmount: p.Payment.Advance,
		DueAmount:     p.Payment.Due(),
		TravelDate:    *p.TravelDate,
	}
	if p.TransactionID != nil {
		c.TransactionID = *p.TransactionID
	}
	if p.Remark != "" {
		remark := p.Remark
		c.Remark = &remark
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO lead_confirmations (
			id, lead_id, agent_id, itinerary_id, total_amount, advance_amount, due_amount,
			transaction_id, travel_date, remark
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`,
		c.ID, c.LeadID, c.AgentID, c.ItineraryID, c.TotalAmount, c.AdvanceAmount, c.DueAmount,
		c.TransactionID, c.TravelDate, c.Remark,
	).Scan(&c.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return Confirmation{}, ErrAlreadyConfirmed
	}
	return c, err
}

const confirmationColumns = `id, lead_id, agent_id, itinerary_id, total_amount, advance_amount, due_amount,
	transaction_id, travel_date, remark, receipt_file_key, created_at`

func scanConfirmation(row pgx.Row) (Confirmation, error) {
	var c Confirmation
	err := row.Scan(
		&c.ID, &c.LeadID, &c.AgentID, &c.ItineraryID, &c.TotalAmount, &c.AdvanceAmount, &c.DueAmount,
		&c.TransactionID, &c.TravelDate, &c.Remark, &c.ReceiptFileKey, &c.CreatedAt,
	)
	return c, err
}

// GetActiveConfirmation returns the lead's current confirmation.
func (r *Repository) GetActiveConfirmation(ctx context.Context, leadID uuid.UUID) (Confirmation, error) {
	c, err := scanConfirmation(r.pool.QueryRow(ctx, `
		SELECT `+confirmationColumns+` FROM lead_confirmations
		WHERE lead_id = $1 AND cancelled_at IS NULL
	`, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Confirmation{}, ErrNotFound
	}
	return c, err
}

// SetReceiptKey records the object key of an uploaded payment receipt.
func (r *Repository) SetReceiptKey(ctx context.Context, confirmationID uuid.UUID, key string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE lead_confirmations SET receipt_file_key = $2 WHERE id = $1 AND cancelled_at IS NULL
	`, confirmationID, key)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// cancelActiveConfirmation marks the active confirmation cancelled when a
// confirmed lead is declared dead, freeing the slot for a later rebooking.
func cancelActiveConfirmation(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE lead_confirmations SET cancelled_at = $2 WHERE lead_id = $1 AND cancelled_at IS NULL
	`, leadID, at)
	return err
}
