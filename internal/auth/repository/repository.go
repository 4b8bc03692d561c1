package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          *string
	Role           string
	Status         string
	LastAssignedAt *time.Time
	PushToken      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ListFilter struct {
	Role   *string
	Status *string
}

const userColumns = `id, name, email, phone, role, status, last_assigned_at, push_token, created_at, updated_at`

const getUserByIDQuery = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

const listUsersQuery = `
	SELECT ` + userColumns + `
	FROM users
	WHERE ($1::text IS NULL OR role = $1)
	  AND ($2::text IS NULL OR status = $2)
	ORDER BY name ASC, id ASC`

const setPushTokenQuery = `
	UPDATE users SET push_token = $2, updated_at = now()
	WHERE id = $1 AND status = 'active'`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status, &u.LastAssignedAt, &u.PushToken, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByIDQuery, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *Repository) ListUsers(ctx context.Context, filter ListFilter) ([]User, error) {
	rows, err := r.pool.Query(ctx, listUsersQuery, filter.Role, filter.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetPushToken stores the device token used for push delivery. A nil token
// unregisters the device.
func (r *Repository) SetPushToken(ctx context.Context, userID uuid.UUID, token *string) error {
	tag, err := r.pool.Exec(ctx, setPushTokenQuery, userID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
