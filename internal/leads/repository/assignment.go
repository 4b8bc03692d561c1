package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// claimNextAgentQuery picks the least recently assigned active sales agent
// (never-assigned first, ties by id) and stamps it in the same statement.
// SKIP LOCKED makes a concurrent claimer move on to the next agent instead
// of waiting and then picking the same one.
const claimNextAgentQuery = `
	UPDATE users SET last_assigned_at = now()
	WHERE id = (
		SELECT id FROM users
		WHERE role = 'sales' AND status = 'active'
		ORDER BY last_assigned_at ASC NULLS FIRST, id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING id`

const agentColumns = `id, name, email, role, status, push_token`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.Status, &a.PushToken)
	return a, err
}

// lockEligibleAgent loads an agent and fails unless it is an active sales
// agent. The row is share-locked so it cannot be deactivated mid-assignment.
func lockEligibleAgent(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Agent, error) {
	agent, err := scanAgent(tx.QueryRow(ctx, `SELECT `+agentColumns+` FROM users WHERE id = $1 FOR SHARE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	if err != nil {
		return Agent{}, err
	}
	if agent.Role != "sales" || agent.Status != "active" {
		return Agent{}, ErrAgentNotEligible
	}
	return agent, nil
}

// Reassign moves a lead to another active sales agent and appends the
// history row in one transaction. last_assigned_at is not touched so manual
// moves do not disturb the rotation.
func (r *Repository) Reassign(ctx context.Context, params ReassignParams, decide Decide) (result ReassignResult, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ReassignResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	current, err := lockLead(ctx, tx, params.LeadID)
	if err != nil {
		return ReassignResult{}, err
	}

	newAgent, err := lockEligibleAgent(ctx, tx, params.NewAgentID)
	if err != nil {
		return ReassignResult{}, err
	}

	nextStatus, err := decide(current)
	if err != nil {
		return ReassignResult{}, err
	}

	if current.AssignedTo != nil {
		prev, err := scanAgent(tx.QueryRow(ctx, `SELECT `+agentColumns+` FROM users WHERE id = $1`, *current.AssignedTo))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return ReassignResult{}, err
		}
		if err == nil {
			result.PreviousAgent = &prev
		}
	}

	if _, err = tx.Exec(ctx, `
		UPDATE leads SET assigned_to = $2, assigned_by = $3, status = $4, updated_at = now()
		WHERE id = $1
	`, params.LeadID, params.NewAgentID, params.ActorID, nextStatus); err != nil {
		return ReassignResult{}, err
	}

	fu, err := insertFollowUp(ctx, tx, RecordFollowUpParams{
		LeadID:  params.LeadID,
		AgentID: params.ActorID,
		Action:  domain.ActionReassigned,
		Remark:  reassignmentRemark(result.PreviousAgent, newAgent, params.Remark),
	})
	if err != nil {
		return ReassignResult{}, err
	}

	lead, err := scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1`, params.LeadID))
	if err != nil {
		return ReassignResult{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return ReassignResult{}, err
	}

	return ReassignResult{
		Lead:          lead,
		PreviousAgent: result.PreviousAgent,
		NewAgent:      newAgent,
		FollowUp:      fu,
	}, nil
}

// reassignmentRemark reads "reassigned from <old> to <new>", followed by the
// caller's note when one was given.
func reassignmentRemark(prev *Agent, next Agent, note string) string {
	from := "unassigned"
	if prev != nil {
		from = prev.Name
	}
	remark := fmt.Sprintf("reassigned from %s to %s", from, next.Name)
	if note = strings.TrimSpace(note); note != "" {
		remark += ": " + note
	}
	return remark
}

func (r *Repository) GetAgent(ctx context.Context, id uuid.UUID) (Agent, error) {
	agent, err := scanAgent(r.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	return agent, err
}

// FirstAdmin returns the earliest created active admin, ties broken by id.
func (r *Repository) FirstAdmin(ctx context.Context) (Agent, error) {
	agent, err := scanAgent(r.pool.QueryRow(ctx, `
		SELECT `+agentColumns+` FROM users
		WHERE role = 'admin' AND status = 'active'
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	return agent, err
}
