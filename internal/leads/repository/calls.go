package repository

import (
	"context"

	"github.com/google/uuid"
)

// LogCall stores a call and bumps the lead's call counter together.
func (r *Repository) LogCall(ctx context.Context, params LogCallParams, scope Scope) (call CallLog, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CallLog{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	result, err := tx.Exec(ctx, `
		UPDATE leads l SET call_attempts = call_attempts + 1, updated_at = now()
		WHERE l.id = $1 AND `+scopeClause(2, 3),
		params.LeadID, scope.Admin, scope.ActorID,
	)
	if err != nil {
		return CallLog{}, err
	}
	if result.RowsAffected() == 0 {
		err = ErrNotFound
		return CallLog{}, err
	}

	call = CallLog{
		ID:              uuid.New(),
		LeadID:          params.LeadID,
		AgentID:         params.AgentID,
		DurationSeconds: params.DurationSeconds,
		Outcome:         params.Outcome,
	}
	if err = tx.QueryRow(ctx, `
		INSERT INTO lead_calls (id, lead_id, agent_id, duration_seconds, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, call.ID, call.LeadID, call.AgentID, call.DurationSeconds, call.Outcome).Scan(&call.CreatedAt); err != nil {
		return CallLog{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return CallLog{}, err
	}
	return call, nil
}
