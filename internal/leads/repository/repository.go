package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("lead not found")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrAgentNotEligible  = errors.New("agent is not an active sales agent")
	ErrNoAgentsAvailable = errors.New("no active sales agents available")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	l.id, l.client_name, l.country_code, l.contact_number, l.place, l.no_of_pax, l.expected_budget,
	l.travel_date, l.travel_month, l.lead_source, l.lead_priority, l.call_attempts, l.feedback_requested_at,
	l.assigned_to, l.assigned_by, u.name, l.status, l.remark, l.created_at, l.updated_at`

const leadFrom = `FROM leads l LEFT JOIN users u ON u.id = l.assigned_to`

// scopeClause restricts non-admin actors to their own leads. It expects the
// admin flag and actor id at the given argument positions.
func scopeClause(adminArg, actorArg int) string {
	return fmt.Sprintf("($%d::boolean OR l.assigned_to = $%d)", adminArg, actorArg)
}

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.ClientName, &lead.CountryCode, &lead.ContactNumber, &lead.Place, &lead.NoOfPax, &lead.ExpectedBudget,
		&lead.TravelDate, &lead.TravelMonth, &lead.Source, &lead.Priority, &lead.CallAttempts, &lead.FeedbackRequestedAt,
		&lead.AssignedTo, &lead.AssignedBy, &lead.AssigneeName, &lead.Status, &lead.Remark, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// Create inserts a lead and assigns it in one transaction. With no manual
// assignee the least recently assigned active sales agent is claimed and
// stamped by a single UPDATE so concurrent creations never pick the same
// agent.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (lead Lead, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var assignee uuid.UUID
	if params.AssignTo != nil {
		if _, err = lockEligibleAgent(ctx, tx, *params.AssignTo); err != nil {
			return Lead{}, err
		}
		assignee = *params.AssignTo
	} else {
		err = tx.QueryRow(ctx, claimNextAgentQuery).Scan(&assignee)
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNoAgentsAvailable
			return Lead{}, err
		}
		if err != nil {
			return Lead{}, err
		}
	}

	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO leads (
			id, client_name, country_code, contact_number, place, no_of_pax, expected_budget,
			travel_date, travel_month, lead_source, lead_priority, assigned_to, assigned_by, status, remark
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		id, params.ClientName, params.CountryCode, params.ContactNumber, params.Place, params.NoOfPax, params.ExpectedBudget,
		params.TravelDate, params.TravelMonth, params.Source, params.Priority, assignee, params.AssignedBy,
		domain.InitialStatus(params.Priority), params.Remark,
	)
	if err != nil {
		return Lead{}, err
	}

	lead, err = scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1`, id))
	if err != nil {
		return Lead{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, scope Scope) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` `+leadFrom+` WHERE l.id = $1 AND `+scopeClause(2, 3),
		id, scope.Admin, scope.ActorID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, scope Scope, params UpdateLeadParams) (Lead, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   any
	}{
		{params.ClientName != nil, "client_name", params.ClientName},
		{params.CountryCode != nil, "country_code", params.CountryCode},
		{params.ContactNumber != nil, "contact_number", params.ContactNumber},
		{params.Place != nil, "place", params.Place},
		{params.NoOfPax != nil, "no_of_pax", params.NoOfPax},
		{params.ExpectedBudget != nil, "expected_budget", params.ExpectedBudget},
		{params.TravelWindowSet, "travel_date", params.TravelDate},
		{params.TravelWindowSet, "travel_month", params.TravelMonth},
		{params.Source != nil, "lead_source", params.Source},
		{params.Priority != nil, "lead_priority", params.Priority},
		{params.Remark != nil, "remark", params.Remark},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id, scope)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id, scope.Admin, scope.ActorID)

	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE leads l SET %s
			WHERE l.id = $%d AND %s
			RETURNING l.*
		)
		SELECT %s FROM updated l LEFT JOIN users u ON u.id = l.assigned_to
	`, strings.Join(setClauses, ", "), argIdx, scopeClause(argIdx+1, argIdx+2), leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Delete removes a lead and, through cascades, its history. Only the admin
// override calls it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", leadFrom, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE %s
		ORDER BY %s %s, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, leadFrom, whereClause, mapLeadSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)

	leads, err := r.queryLeads(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListAlmostConfirmed returns leads whose latest follow-up is
// almost_confirmed. Status is not consulted: almost_confirmed never changes it.
func (r *Repository) ListAlmostConfirmed(ctx context.Context, scope Scope, limit, offset int) ([]Lead, error) {
	return r.queryLeads(ctx, `
		SELECT `+leadColumns+`
		`+leadFrom+`
		JOIN LATERAL (
			SELECT f.action FROM lead_follow_ups f
			WHERE f.lead_id = l.id
			ORDER BY f.created_at DESC, f.id DESC
			LIMIT 1
		) latest ON true
		WHERE latest.action = 'almost_confirmed'
			AND l.status IN ('allocated', 'hot', 'follow_up')
			AND `+scopeClause(1, 2)+`
		ORDER BY l.updated_at DESC, l.id
		LIMIT $3 OFFSET $4
	`, scope.Admin, scope.ActorID, limit, offset)
}

func (r *Repository) queryLeads(ctx context.Context, query string, args ...any) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func buildLeadListWhere(params ListParams) (string, []any, int) {
	whereClauses := []string{scopeClause(1, 2)}
	args := []any{params.Scope.Admin, params.Scope.ActorID}
	argIdx := 3

	addEquals := func(column string, value any) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", *params.Status)
	}
	if params.Priority != nil {
		addEquals("l.lead_priority", *params.Priority)
	}
	if params.Source != nil {
		addEquals("l.lead_source", *params.Source)
	}
	if params.AssignedTo != nil {
		addEquals("l.assigned_to", *params.AssignedTo)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.client_name ILIKE $%d OR l.contact_number ILIKE $%d OR l.place ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+search+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "clientName":
		return "l.client_name"
	case "travelDate":
		return "l.travel_date"
	case "updatedAt":
		return "l.updated_at"
	case "status":
		return "l.status"
	case "priority":
		return "l.lead_priority"
	default:
		return "l.created_at"
	}
}
