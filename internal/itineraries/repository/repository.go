package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("itinerary not found")

type Itinerary struct {
	ID            uuid.UUID
	Place         string
	Title         string
	TransportMode string
	Days          int
	Nights        int
	PriceUSD      decimal.Decimal
	PriceINR      decimal.NullDecimal
	IsActive      bool
	CreatedAt     time.Time
}

type CreateParams struct {
	Place         string
	Title         string
	TransportMode string
	Days          int
	Nights        int
	PriceUSD      decimal.Decimal
	PriceINR      decimal.NullDecimal
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itineraryColumns = `id, place, title, transport_mode, days, nights, price_usd, price_inr, is_active, created_at`

func scanItinerary(row pgx.Row) (Itinerary, error) {
	var it Itinerary
	err := row.Scan(&it.ID, &it.Place, &it.Title, &it.TransportMode, &it.Days, &it.Nights,
		&it.PriceUSD, &it.PriceINR, &it.IsActive, &it.CreatedAt)
	return it, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Itinerary, error) {
	it, err := scanItinerary(r.pool.QueryRow(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Itinerary{}, ErrNotFound
	}
	return it, err
}

// ListActive returns active itineraries, optionally filtered by a
// case-insensitive place match.
func (r *Repository) ListActive(ctx context.Context, place string) ([]Itinerary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itineraryColumns+`
		 FROM itineraries
		 WHERE is_active AND ($1 = '' OR lower(place) = lower($1))
		 ORDER BY place, days, title`, strings.TrimSpace(place))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Itinerary, 0)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Itinerary, error) {
	return scanItinerary(r.pool.QueryRow(ctx,
		`INSERT INTO itineraries (id, place, title, transport_mode, days, nights, price_usd, price_inr)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+itineraryColumns,
		uuid.New(), p.Place, p.Title, p.TransportMode, p.Days, p.Nights, p.PriceUSD, p.PriceINR))
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE itineraries SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
