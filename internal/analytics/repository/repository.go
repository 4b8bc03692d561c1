// Package repository runs the read-only count and sum queries behind the
// sales analytics screens.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrAgentNotFound = errors.New("agent not found")

// Window is a half-open [From, To) range on created_at. Nil bounds are open.
type Window struct {
	From *time.Time
	To   *time.Time
}

type Agent struct {
	ID   uuid.UUID
	Name string
	Role string
}

type CallStats struct {
	Count           int64
	DurationSeconds int64
}

type ConversionStats struct {
	Count   int64
	Revenue decimal.Decimal
}

type Target struct {
	Month       string
	Revenue     decimal.Decimal
	Conversions int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetAgent(ctx context.Context, id uuid.UUID) (Agent, error) {
	var a Agent
	err := r.pool.QueryRow(ctx, `SELECT id, name, role FROM users WHERE id = $1`, id).Scan(&a.ID, &a.Name, &a.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	return a, err
}

// ListSalesAgents returns active sales agents ordered by name.
func (r *Repository) ListSalesAgents(ctx context.Context) ([]Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, role FROM users
		 WHERE role = 'sales' AND status = 'active'
		 ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Role); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *Repository) CallStats(ctx context.Context, agentID uuid.UUID, w Window) (CallStats, error) {
	var s CallStats
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(duration_seconds), 0)
		 FROM lead_calls
		 WHERE agent_id = $1
		   AND ($2::timestamptz IS NULL OR created_at >= $2)
		   AND ($3::timestamptz IS NULL OR created_at < $3)`,
		agentID, w.From, w.To).Scan(&s.Count, &s.DurationSeconds)
	return s, err
}

// ConversionStats counts active confirmations recorded by the agent and sums
// their total amounts.
func (r *Repository) ConversionStats(ctx context.Context, agentID uuid.UUID, w Window) (ConversionStats, error) {
	var s ConversionStats
	err := r.pool.QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(total_amount), 0)
		 FROM lead_confirmations
		 WHERE agent_id = $1 AND cancelled_at IS NULL
		   AND ($2::timestamptz IS NULL OR created_at >= $2)
		   AND ($3::timestamptz IS NULL OR created_at < $3)`,
		agentID, w.From, w.To).Scan(&s.Count, &s.Revenue)
	return s, err
}

func (r *Repository) LeadsAssigned(ctx context.Context, agentID uuid.UUID, w Window) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM leads
		 WHERE assigned_to = $1
		   AND ($2::timestamptz IS NULL OR created_at >= $2)
		   AND ($3::timestamptz IS NULL OR created_at < $3)`,
		agentID, w.From, w.To).Scan(&n)
	return n, err
}

// GetTarget reports false when no target is set for the month.
func (r *Repository) GetTarget(ctx context.Context, agentID uuid.UUID, month string) (Target, bool, error) {
	t := Target{Month: month}
	err := r.pool.QueryRow(ctx,
		`SELECT revenue_target, conversions_target FROM sales_targets WHERE user_id = $1 AND month = $2`,
		agentID, month).Scan(&t.Revenue, &t.Conversions)
	if errors.Is(err, pgx.ErrNoRows) {
		return Target{}, false, nil
	}
	if err != nil {
		return Target{}, false, err
	}
	return t, true, nil
}

func (r *Repository) UpsertTarget(ctx context.Context, agentID uuid.UUID, t Target) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sales_targets (user_id, month, revenue_target, conversions_target)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, month)
		 DO UPDATE SET revenue_target = EXCLUDED.revenue_target, conversions_target = EXCLUDED.conversions_target`,
		agentID, t.Month, t.Revenue, t.Conversions)
	return err
}
