package repository

import (
	"context"
	"errors"

	"travel_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// lockLead loads a lead with a row lock for the rest of the transaction.
func lockLead(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1 FOR UPDATE OF l`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func insertFollowUp(ctx context.Context, tx pgx.Tx, p RecordFollowUpParams) (FollowUp, error) {
	fu := FollowUp{
		ID:               uuid.New(),
		LeadID:           p.LeadID,
		AgentID:          p.AgentID,
		Action:           p.Action,
		Remark:           p.Remark,
		NextFollowUpDate: p.NextFollowUpDate,
		NextFollowUpTime: p.NextFollowUpTime,
		ItineraryID:      p.ItineraryID,
		TransactionID:    p.TransactionID,
		TravelDate:       p.TravelDate,
		DeadReason:       p.DeadReason,
	}
	if p.Payment != nil {
		fu.TotalAmount = decimal.NewNullDecimal(p.Payment.Total)
		fu.AdvanceAmount = decimal.NewNullDecimal(p.Payment.Advance)
		fu.DueAmount = decimal.NewNullDecimal(p.Payment.Due())
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO lead_follow_ups (
			id, lead_id, agent_id, action, remark, next_follow_up_date, next_follow_up_time, itinerary_id,
			total_amount, advance_amount, due_amount, transaction_id, travel_date, dead_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, (SELECT name FROM users WHERE id = $3)
	`,
		fu.ID, fu.LeadID, fu.AgentID, fu.Action, fu.Remark, fu.NextFollowUpDate, fu.NextFollowUpTime, fu.ItineraryID,
		fu.TotalAmount, fu.AdvanceAmount, fu.DueAmount, fu.TransactionID, fu.TravelDate, fu.DeadReason,
	).Scan(&fu.CreatedAt, &fu.AgentName)
	return fu, err
}

// RecordFollowUp appends the follow-up, applies the status decided by
// decide and, for confirmations, stores the travel date and the
// confirmation row. All of it commits or none of it does.
func (r *Repository) RecordFollowUp(ctx context.Context, params RecordFollowUpParams, decide Decide) (result RecordFollowUpResult, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return RecordFollowUpResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	current, err := lockLead(ctx, tx, params.LeadID)
	if err != nil {
		return RecordFollowUpResult{}, err
	}

	next, err := decide(current)
	if err != nil {
		return RecordFollowUpResult{}, err
	}

	fu, err := insertFollowUp(ctx, tx, params)
	if err != nil {
		return RecordFollowUpResult{}, err
	}

	switch {
	case params.Action == domain.ActionConfirmedAdvancePaid && params.TravelDate != nil:
		_, err = tx.Exec(ctx, `
			UPDATE leads SET status = $2, travel_date = $3, travel_month = NULL, updated_at = now()
			WHERE id = $1
		`, params.LeadID, next, *params.TravelDate)
	case params.Action == domain.ActionFeedbackRequested:
		_, err = tx.Exec(ctx, `
			UPDATE leads SET status = $2, feedback_requested_at = now(), updated_at = now()
			WHERE id = $1
		`, params.LeadID, next)
	default:
		_, err = tx.Exec(ctx, `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, params.LeadID, next)
	}
	if err != nil {
		return RecordFollowUpResult{}, err
	}

	var confirmation *Confirmation
	if params.Action == domain.ActionConfirmedAdvancePaid && params.Payment != nil && params.TravelDate != nil {
		c, err := insertConfirmation(ctx, tx, params)
		if err != nil {
			return RecordFollowUpResult{}, err
		}
		confirmation = &c
	}

	released := domain.ReleasesBooking(current.Status, next)
	if released {
		if _, err = tx.Exec(ctx, `
			UPDATE lead_reminders SET status = 'cancelled'
			WHERE lead_id = $1 AND status = 'pending'
		`, params.LeadID); err != nil {
			return RecordFollowUpResult{}, err
		}
		if err = cancelActiveConfirmation(ctx, tx, params.LeadID, fu.CreatedAt); err != nil {
			return RecordFollowUpResult{}, err
		}
	}

	lead, err := scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1`, params.LeadID))
	if err != nil {
		return RecordFollowUpResult{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return RecordFollowUpResult{}, err
	}

	return RecordFollowUpResult{
		Lead:           lead,
		PreviousStatus: current.Status,
		FollowUp:       fu,
		Confirmation:   confirmation,
		Released:       released,
	}, nil
}

// ApplyTransition is RecordFollowUp for operations that carry only a remark:
// no response, allocation to operations and feedback requests. A feedback
// request also overwrites feedback_requested_at.
func (r *Repository) ApplyTransition(ctx context.Context, params TransitionParams, decide Decide) (RecordFollowUpResult, error) {
	return r.RecordFollowUp(ctx, RecordFollowUpParams{
		LeadID:  params.LeadID,
		AgentID: params.ActorID,
		Action:  params.Action,
		Remark:  params.Remark,
	}, decide)
}

// ListFollowUps returns the lead's history, newest first.
func (r *Repository) ListFollowUps(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.lead_id, f.agent_id, COALESCE(u.name, ''), f.action, f.remark, f.next_follow_up_date,
			f.next_follow_up_time, f.itinerary_id, f.total_amount, f.advance_amount, f.due_amount,
			f.transaction_id, f.travel_date, f.dead_reason, f.created_at
		FROM lead_follow_ups f
		LEFT JOIN users u ON u.id = f.agent_id
		WHERE f.lead_id = $1
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT $2 OFFSET $3
	`, leadID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]FollowUp, 0)
	for rows.Next() {
		var f FollowUp
		if err := rows.Scan(
			&f.ID, &f.LeadID, &f.AgentID, &f.AgentName, &f.Action, &f.Remark, &f.NextFollowUpDate,
			&f.NextFollowUpTime, &f.ItineraryID, &f.TotalAmount, &f.AdvanceAmount, &f.DueAmount,
			&f.TransactionID, &f.TravelDate, &f.DeadReason, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// ItineraryExists reports whether an active itinerary with id exists.
func (r *Repository) ItineraryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM itineraries WHERE id = $1 AND is_active)`, id).Scan(&exists)
	return exists, err
}
